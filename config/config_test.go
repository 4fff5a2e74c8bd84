package config

import (
	"time"

	"github.com/0xERR0R/argus/helpertest"
	"github.com/0xERR0R/argus/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var tmpDir *helpertest.TmpFolder

	suiteBeforeEach()

	BeforeEach(func() {
		tmpDir = helpertest.NewTmpFolder("config")
		Expect(tmpDir.Error).Should(Succeed())
		DeferCleanup(tmpDir.Clean)
	})

	Describe("Default values", func() {
		It("should apply defaults", func() {
			cfg, err := NewDefaultConfig()
			Expect(err).Should(Succeed())

			Expect(cfg.Ports.Proxy).Should(Equal(":8080"))
			Expect(cfg.Ports.HTTP).Should(Equal(":5000"))
			Expect(cfg.Rules.File).Should(Equal("config/blocked_domains.txt"))
			Expect(cfg.Rules.PollInterval).Should(Equal(Duration(2 * time.Second)))
			Expect(cfg.BlockPage.Template).Should(Equal("templates/blocked_page.html"))
			Expect(cfg.QueryLog.Type).Should(Equal(QueryLogTypeSqlite))
			Expect(cfg.QueryLog.Target).Should(Equal("argus.db"))
			Expect(cfg.QueryLog.CreationAttempts).Should(BeNumerically("==", 3))
			Expect(cfg.QueryLog.CreationCooldown).Should(Equal(Duration(2 * time.Second)))
			Expect(cfg.Proxy.UpstreamTimeout).Should(Equal(Duration(30 * time.Second)))
			Expect(cfg.Prometheus.Path).Should(Equal("/metrics"))
			Expect(cfg.Log.Level).Should(Equal(log.LevelInfo))
			Expect(cfg.Log.Timestamp).Should(BeTrue())
		})
	})

	Describe("LoadConfig", func() {
		When("config file is valid", func() {
			It("should override defaults", func() {
				f := tmpDir.CreateStringFile("config.yml",
					"ports:",
					"  proxy: 127.0.0.1:3128",
					"rules:",
					"  file: /etc/argus/rules.txt",
					"  pollInterval: 500ms",
					"queryLog:",
					"  type: mysql",
					"  target: user:secret@tcp(db:3306)/argus",
					"  logRetentionDays: 7",
					"log:",
					"  level: debug",
					"  format: json",
				)

				cfg, err := LoadConfig(f.Path, true)
				Expect(err).Should(Succeed())

				Expect(cfg.Ports.Proxy).Should(Equal("127.0.0.1:3128"))
				Expect(cfg.Ports.HTTP).Should(Equal(":5000"))
				Expect(cfg.Rules.File).Should(Equal("/etc/argus/rules.txt"))
				Expect(cfg.Rules.PollInterval).Should(Equal(Duration(500 * time.Millisecond)))
				Expect(cfg.QueryLog.Type).Should(Equal(QueryLogTypeMysql))
				Expect(cfg.QueryLog.LogRetentionDays).Should(BeNumerically("==", 7))
				Expect(cfg.Log.Level).Should(Equal(log.LevelDebug))
				Expect(cfg.Log.Format).Should(Equal(log.FormatTypeJSON))
			})
		})

		When("config file contains unknown keys", func() {
			It("should fail", func() {
				f := tmpDir.CreateStringFile("config.yml", "unknownKey: 1")

				_, err := LoadConfig(f.Path, true)
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("wrong file structure"))
			})
		})

		When("config values are invalid", func() {
			It("should report every problem", func() {
				f := tmpDir.CreateStringFile("config.yml",
					"rules:",
					"  pollInterval: 1ms",
					"proxy:",
					"  upstreamTimeout: 0s",
				)

				_, err := LoadConfig(f.Path, true)
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("rules.pollInterval"))
				Expect(err.Error()).Should(ContainSubstring("proxy.upstreamTimeout"))
			})

			It("should reject unknown query log types", func() {
				f := tmpDir.CreateStringFile("config.yml",
					"queryLog:",
					"  type: oracle",
				)

				_, err := LoadConfig(f.Path, true)
				Expect(err).Should(HaveOccurred())
			})
		})

		When("config file does not exist", func() {
			It("should return defaults if not mandatory", func() {
				cfg, err := LoadConfig(tmpDir.JoinPath("missing.yml"), false)
				Expect(err).Should(Succeed())
				Expect(cfg.Ports.Proxy).Should(Equal(":8080"))
			})

			It("should fail if mandatory", func() {
				_, err := LoadConfig(tmpDir.JoinPath("missing.yml"), true)
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("can't read config file"))
			})
		})
	})

	Describe("LogConfig", func() {
		It("should log all sections", func() {
			cfg, err := NewDefaultConfig()
			Expect(err).Should(Succeed())

			cfg.LogConfig(logger)

			Expect(hook.GetMessages()).Should(ContainElement(ContainSubstring("ports:")))
			Expect(hook.GetMessages()).Should(ContainElement("rules:"))
			Expect(hook.GetMessages()).Should(ContainElement("prometheus: disabled"))
			Expect(hook.GetMessages()).Should(ContainElement("pollInterval = 2 seconds"))
		})
	})
})
