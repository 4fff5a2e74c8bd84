package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/0xERR0R/argus/api"
	"github.com/0xERR0R/argus/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logs command", func() {
	var (
		ts          *httptest.Server
		mockFn      func(w http.ResponseWriter, r *http.Request)
		lastRequest *http.Request
	)

	JustBeforeEach(func() {
		ts = testHTTPAPIServer(func(w http.ResponseWriter, r *http.Request) {
			lastRequest = r
			mockFn(w, r)
		})
	})

	JustAfterEach(func() {
		ts.Close()
	})

	BeforeEach(func() {
		lastRequest = nil
		mockFn = func(w http.ResponseWriter, _ *http.Request) {}
	})

	Describe("list", func() {
		BeforeEach(func() {
			status := http.StatusForbidden

			mockFn = func(w http.ResponseWriter, _ *http.Request) {
				response, err := json.Marshal([]model.LogEntry{
					{
						ID:          2,
						Timestamp:   time.Now(),
						Method:      http.MethodGet,
						URL:         "http://ads.example.com/",
						StatusCode:  &status,
						IsBlocked:   true,
						BlockReason: "example.com",
					},
					{ID: 1, Timestamp: time.Now(), Method: http.MethodConnect, URL: "https://example.org:443"},
				})
				Expect(err).Should(Succeed())

				_, err = w.Write(response)
				Expect(err).Should(Succeed())
			}
		})

		It("should print the entries", func() {
			c := NewLogsCommand()
			c.SetArgs([]string{"list"})

			Expect(c.Execute()).Should(Succeed())

			Expect(lastRequest.Method).Should(Equal(http.MethodGet))
			Expect(lastRequest.URL.Path).Should(Equal(api.PathLogs))
			Expect(lastRequest.URL.Query().Get("limit")).Should(Equal("250"))

			entries := loggerHook.AllEntries()
			Expect(entries).Should(HaveLen(3))
			Expect(entries[0].Message).Should(Equal("2 log entries:"))
			Expect(entries[1].Message).Should(And(
				ContainSubstring("GET"),
				ContainSubstring("403 http://ads.example.com/ (blocked by example.com)"),
			))
			Expect(entries[2].Message).Should(ContainSubstring("CONNECT   - https://example.org:443"))
		})

		It("should pass the limit", func() {
			c := NewLogsCommand()
			c.SetArgs([]string{"list", "--limit", "5"})

			Expect(c.Execute()).Should(Succeed())
			Expect(lastRequest.URL.Query().Get("limit")).Should(Equal("5"))
		})

		When("Server returns 400", func() {
			BeforeEach(func() {
				mockFn = func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusBadRequest)
				}
			})

			It("should end with error", func() {
				c := NewLogsCommand()
				c.SetArgs([]string{"list"})

				err := c.Execute()
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("400 Bad Request"))
			})
		})

		When("Server returns invalid JSON", func() {
			BeforeEach(func() {
				mockFn = func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte("not json"))
				}
			})

			It("should end with error", func() {
				c := NewLogsCommand()
				c.SetArgs([]string{"list"})

				err := c.Execute()
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("can't read response"))
			})
		})
	})

	Describe("clear", func() {
		It("should send a DELETE request", func() {
			c := NewLogsCommand()
			c.SetArgs([]string{"clear"})

			Expect(c.Execute()).Should(Succeed())

			Expect(lastRequest.Method).Should(Equal(http.MethodDelete))
			Expect(lastRequest.URL.Path).Should(Equal(api.PathLogs))
			Expect(loggerHook.LastEntry().Message).Should(Equal("OK"))
		})

		When("Server returns 500", func() {
			BeforeEach(func() {
				mockFn = func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"Failed to clear logs"}`))
				}
			})

			It("should end with error", func() {
				err := newLogsClearCommand().Execute()

				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(Equal(`response NOK, 500 Internal Server Error {"error":"Failed to clear logs"}`))
			})
		})

		When("Url is wrong", func() {
			It("should end with error", func() {
				apiPort = 0

				err := newLogsClearCommand().Execute()
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("connection refused"))
			})
		})
	})
})
