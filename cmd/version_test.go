package cmd

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Version command", func() {
	When("Version command is called", func() {
		It("should print version and build time", func() {
			out := new(bytes.Buffer)

			c := NewVersionCommand()
			c.SetOut(out)
			c.SetArgs(make([]string, 0))

			Expect(c.Execute()).Should(Succeed())
			Expect(out.String()).Should(Equal("argus\nVersion: undefined\nBuild time: undefined\n"))
		})

		It("should not need a configuration file", func() {
			c := NewRootCommand()
			c.SetOut(new(bytes.Buffer))
			c.SetArgs([]string{"version", "--config", "/not/existing.yml"})

			Expect(c.Execute()).Should(Succeed())
		})
	})
})
