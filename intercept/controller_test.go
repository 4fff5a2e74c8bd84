package intercept

import (
	"context"
	"errors"
	"net/http"

	"github.com/0xERR0R/argus/config"
	. "github.com/0xERR0R/argus/evt"
	. "github.com/0xERR0R/argus/helpertest"
	"github.com/0xERR0R/argus/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

var _ = Describe("Controller", func() {
	var (
		sut     *Controller
		decider *mockDecider
		writer  *mockLogWriter
		ctx     context.Context
		hook    *log.MockLoggerHook
	)

	BeforeEach(func() {
		decider = &mockDecider{blocked: map[string]string{
			"ads.example.com": "example.com",
		}}

		writer = &mockLogWriter{}
		writer.On("Append", mock.Anything, mock.Anything).Return(nil)

		var logger *logrus.Entry
		logger, hook = log.NewMockEntry()
		ctx, _ = log.NewCtx(context.Background(), logger)

		sut = NewController(decider, NewBlockPage(config.BlockPage{}), writer)
	})

	Describe("OnRequest", func() {
		When("host is blocked", func() {
			It("should return a denial response", func() {
				req, _ := http.NewRequest(http.MethodGet, "http://ads.example.com:8080/banner.js", nil)

				resp := sut.OnRequest(ctx, req)

				Expect(resp).ShouldNot(BeNil())
				Expect(resp).Should(BeBlockedWithReason("Blocked by domain rule: example.com"))
				Expect(resp).Should(HaveHeader("Content-Type", Equal("text/html; charset=utf-8")))
				Expect(ReadBody(resp)).Should(ContainSubstring("Reason: Blocked by domain rule: example.com"))
				Expect(hook.GetMessages()).Should(ContainElement("BLOCKED: http://ads.example.com:8080/banner.js"))
			})

			It("should publish the matching rule", func() {
				rules := make(chan string, 1)
				fn := func(rule string) { rules <- rule }

				Expect(Bus().Subscribe(ExchangeBlocked, fn)).Should(Succeed())
				DeferCleanup(func() {
					Expect(Bus().Unsubscribe(ExchangeBlocked, fn)).Should(Succeed())
				})

				req, _ := http.NewRequest(http.MethodGet, "http://ads.example.com/", nil)
				sut.OnRequest(ctx, req)

				Eventually(rules).Should(Receive(Equal("example.com")))
			})
		})

		When("host is not blocked", func() {
			It("should let the request pass", func() {
				req, _ := http.NewRequest(http.MethodGet, "http://example.org/", nil)

				Expect(sut.OnRequest(ctx, req)).Should(BeNil())
			})
		})
	})

	Describe("OnResponse", func() {
		It("should record an upstream response", func() {
			req, _ := http.NewRequest(http.MethodPost, "http://example.org/api?x=1", nil)
			resp := &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
			}

			sut.OnResponse(ctx, req, resp)

			Expect(writer.entries()).Should(HaveLen(1))

			entry := writer.entries()[0]
			Expect(entry.Method).Should(Equal(http.MethodPost))
			Expect(entry.URL).Should(Equal("http://example.org/api?x=1"))
			Expect(entry.Host).Should(Equal("example.org"))
			Expect(*entry.StatusCode).Should(Equal(http.StatusOK))
			Expect(entry.ContentType).Should(Equal("application/json"))
			Expect(entry.IsBlocked).Should(BeFalse())
			Expect(entry.BlockReason).Should(BeEmpty())
		})

		It("should record a denial response as blocked", func() {
			req, _ := http.NewRequest(http.MethodGet, "http://ads.example.com/", nil)

			resp := sut.OnRequest(ctx, req)
			sut.OnResponse(ctx, req, resp)

			Expect(writer.entries()).Should(HaveLen(1))

			entry := writer.entries()[0]
			Expect(*entry.StatusCode).Should(Equal(http.StatusForbidden))
			Expect(entry.ContentType).Should(Equal("text/html; charset=utf-8"))
			Expect(entry.IsBlocked).Should(BeTrue())
			Expect(entry.BlockReason).Should(Equal("Blocked by domain rule: example.com"))
		})

		It("should derive the block state only from the marker header", func() {
			req, _ := http.NewRequest(http.MethodGet, "http://example.org/", nil)
			resp := &http.Response{
				StatusCode: http.StatusForbidden,
				Header:     http.Header{BlockReasonHeader: []string{"custom reason"}},
			}

			sut.OnResponse(ctx, req, resp)

			entry := writer.entries()[0]
			Expect(entry.IsBlocked).Should(BeTrue())
			Expect(entry.BlockReason).Should(Equal("custom reason"))
		})

		It("should not record exchanges without response", func() {
			req, _ := http.NewRequest(http.MethodGet, "http://example.org/", nil)

			sut.OnResponse(ctx, req, nil)

			writer.AssertNotCalled(GinkgoT(), "Append", mock.Anything, mock.Anything)
		})

		It("should log and swallow write errors", func() {
			writer = &mockLogWriter{}
			writer.On("Append", mock.Anything, mock.Anything).
				Return(errors.New("disk full"))
			sut = NewController(decider, NewBlockPage(config.BlockPage{}), writer)

			req, _ := http.NewRequest(http.MethodGet, "http://example.org/", nil)
			resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}

			Expect(func() { sut.OnResponse(ctx, req, resp) }).ShouldNot(Panic())

			writer.AssertNumberOfCalls(GinkgoT(), "Append", 1)
			Expect(hook.GetMessages()).Should(ContainElement(ContainSubstring("can't write log entry")))
		})
	})

	Describe("NewExchangeContext", func() {
		It("should attach an exchange id to the context logger", func() {
			ctx, logger := NewExchangeContext(context.Background())

			Expect(logger.Data).Should(HaveKey("exchange"))
			Expect(log.FromCtx(ctx).Data["exchange"]).Should(Equal(logger.Data["exchange"]))

			_, other := NewExchangeContext(context.Background())
			Expect(other.Data["exchange"]).ShouldNot(Equal(logger.Data["exchange"]))
		})
	})
})
