package rules

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Rule file parser", func() {
	DescribeTable("processLine",
		func(line, expected string) {
			Expect(processLine(line)).Should(Equal(expected))
		},
		Entry("plain domain", "example.com", "example.com"),
		Entry("upper case", "Ads.Example.COM", "ads.example.com"),
		Entry("surrounding whitespace", "  \texample.com \r", "example.com"),
		Entry("empty line", "", ""),
		Entry("whitespace only", "   ", ""),
		Entry("comment", "# comment", ""),
		Entry("indented comment", "   #example.com", ""),
	)

	It("should skip duplicates and keep file order", func() {
		domains, err := parseRules(strings.NewReader(
			"# header\nb.com\r\nA.com\n\nb.com\n  a.com  \nc.com"))

		Expect(err).Should(Succeed())
		Expect(domains).Should(Equal([]string{"b.com", "a.com", "c.com"}))
	})

	It("should return an empty list for empty input", func() {
		domains, err := parseRules(strings.NewReader(""))

		Expect(err).Should(Succeed())
		Expect(domains).ShouldNot(BeNil())
		Expect(domains).Should(BeEmpty())
	})

	It("should parse files with lines longer than the default scanner buffer", func() {
		longLine := strings.Repeat("x", 2*1024*1024)

		domains, err := parseRules(strings.NewReader("a.com\n" + longLine + "\nb.com\n"))

		Expect(err).Should(Succeed())
		Expect(domains).Should(Equal([]string{"a.com", longLine, "b.com"}))
	})
})
