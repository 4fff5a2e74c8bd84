package cmd

import (
	"io"
	"net/http"
	"os"

	. "github.com/0xERR0R/argus/helpertest"
	"github.com/0xERR0R/argus/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockResponse struct {
	statusCode int
	status     string
}

func (m mockResponse) StatusCode() int {
	return m.statusCode
}

func (m mockResponse) Status() string {
	return m.status
}

var _ = Describe("root command", func() {
	When("help is called", func() {
		It("should execute without error", func() {
			c := NewRootCommand()
			c.SetOut(io.Discard)
			c.SetArgs([]string{"help"})

			Expect(c.Execute()).Should(Succeed())
		})
	})

	Describe("initConfig", func() {
		var (
			tmpDir  *TmpFolder
			tmpFile *TmpFile
		)

		BeforeEach(func() {
			configPath = defaultConfigPath
			apiHost = ""
			apiPort = 0

			if val, present := os.LookupEnv(configFileEnvVar); present {
				Expect(os.Unsetenv(configFileEnvVar)).Should(Succeed())
				DeferCleanup(os.Setenv, configFileEnvVar, val)
			}

			tmpDir = NewTmpFolder("RootCommand")
			Expect(tmpDir.Error).Should(Succeed())
			DeferCleanup(tmpDir.Clean)

			tmpFile = tmpDir.CreateStringFile("argus.yml",
				"ports:",
				"  proxy: 127.0.0.1:3128",
				"  http: 127.0.0.1:8081",
				"log:",
				"  level: debug",
			)
		})

		It("should accept the env var", func() {
			os.Setenv(configFileEnvVar, tmpFile.Path)
			DeferCleanup(func() { os.Unsetenv(configFileEnvVar) })

			Expect(initConfig()).Should(Succeed())

			Expect(configPath).Should(Equal(tmpFile.Path))
			Expect(cfg.Ports.Proxy).Should(Equal("127.0.0.1:3128"))
		})

		It("should prefer the flag over the env var", func() {
			os.Setenv(configFileEnvVar, "/not/existing.yml")
			DeferCleanup(func() { os.Unsetenv(configFileEnvVar) })

			configPath = tmpFile.Path

			Expect(initConfig()).Should(Succeed())
			Expect(configPath).Should(Equal(tmpFile.Path))
		})

		It("should apply the log configuration", func() {
			DeferCleanup(func() { log.ConfigureLogger(log.Config{Level: log.LevelInfo}) })

			configPath = tmpFile.Path

			Expect(initConfig()).Should(Succeed())
			Expect(log.Log().GetLevel().String()).Should(Equal("debug"))
		})

		It("should take the API address from the config", func() {
			configPath = tmpFile.Path

			Expect(initConfig()).Should(Succeed())
			Expect(apiHost).Should(Equal("127.0.0.1"))
			Expect(apiPort).Should(Equal(uint16(8081)))
		})

		It("should keep API address flags", func() {
			configPath = tmpFile.Path
			apiHost = "example.com"
			apiPort = 1234

			Expect(initConfig()).Should(Succeed())
			Expect(apiHost).Should(Equal("example.com"))
			Expect(apiPort).Should(Equal(uint16(1234)))
		})

		It("should use localhost for a wildcard address", func() {
			configPath = tmpDir.CreateStringFile("wildcard.yml", "ports:", "  http: 0.0.0.0:5001").Path

			Expect(initConfig()).Should(Succeed())
			Expect(apiHost).Should(Equal(defaultHost))
			Expect(apiPort).Should(Equal(uint16(5001)))
		})

		It("should fail on an invalid http port", func() {
			configPath = tmpDir.CreateStringFile("invalid.yml", "ports:", "  http: 127.0.0.1:invalid").Path

			err := initConfig()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(ContainSubstring("can't convert port"))
		})

		It("should fail if an explicit config file doesn't exist", func() {
			configPath = tmpDir.JoinPath("missing.yml")

			err := initConfig()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(ContainSubstring("unable to load configuration"))
		})

		It("should use defaults if the default config file doesn't exist", func() {
			wd, err := os.Getwd()
			Expect(err).Should(Succeed())
			emptyDir := tmpDir.CreateSubFolder("empty")
			Expect(emptyDir.Error).Should(Succeed())
			Expect(os.Chdir(emptyDir.Path)).Should(Succeed())
			DeferCleanup(os.Chdir, wd)

			Expect(initConfig()).Should(Succeed())
			Expect(cfg.Ports.HTTP).Should(Equal(":5000"))
			Expect(apiHost).Should(Equal(defaultHost))
			Expect(apiPort).Should(Equal(uint16(defaultPort)))
		})
	})

	Describe("apiURL", func() {
		It("should build the URL from host and port", func() {
			apiHost = "127.0.0.1"
			apiPort = 8080

			Expect(apiURL("/api/logs")).Should(Equal("http://127.0.0.1:8080/api/logs"))
		})

		It("should bracket IPv6 hosts", func() {
			apiHost = "::1"

			Expect(apiURL("/healthz")).Should(Equal("http://[::1]:5000/healthz"))
		})
	})

	Describe("printOkOrError", func() {
		It("should return nil for 2xx status", func() {
			Expect(printOkOrError(mockResponse{statusCode: http.StatusCreated, status: "201 Created"}, "")).
				Should(Succeed())
			Expect(loggerHook.LastEntry().Message).Should(Equal("OK"))
		})

		It("should return error for non-OK status", func() {
			err := printOkOrError(mockResponse{statusCode: http.StatusBadRequest, status: "400 Bad Request"}, "Error message")

			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(Equal("response NOK, 400 Bad Request Error message"))
		})
	})

	Describe("NewRootCommand", func() {
		It("should register all subcommands", func() {
			var names []string
			for _, c := range NewRootCommand().Commands() {
				names = append(names, c.Name())
			}

			Expect(names).Should(ContainElements("serve", "logs", "rules", "healthcheck", "validate", "version"))
		})

		It("should define the persistent flags", func() {
			c := NewRootCommand()

			configFlag := c.PersistentFlags().Lookup("config")
			Expect(configFlag).ShouldNot(BeNil())
			Expect(configFlag.Shorthand).Should(Equal("c"))
			Expect(configFlag.DefValue).Should(Equal(defaultConfigPath))

			Expect(c.PersistentFlags().Lookup("apiHost")).ShouldNot(BeNil())
			Expect(c.PersistentFlags().Lookup("apiPort")).ShouldNot(BeNil())
		})
	})
})
