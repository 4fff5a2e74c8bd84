package helpertest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

// GetIntPort returns an port for the current testing
// process by adding the current ginkgo parallel process to
// the base port and returning it as int
func GetIntPort(port int) int {
	return port + ginkgo.GinkgoParallelProcess()
}

// GetStringPort returns an port for the current testing
// process by adding the current ginkgo parallel process to
// the base port and returning it as string
func GetStringPort(port int) string {
	return fmt.Sprintf("%d", GetIntPort(port))
}

// DoGetRequest performs a GET request
func DoGetRequest(ctx context.Context, url string,
	fn func(w http.ResponseWriter, r *http.Request),
) (*httptest.ResponseRecorder, *bytes.Buffer) {
	return DoRequest(ctx, http.MethodGet, url, nil, fn)
}

// DoRequest performs a request with the given method and body
func DoRequest(ctx context.Context, method, url string, body io.Reader,
	fn func(w http.ResponseWriter, r *http.Request),
) (*httptest.ResponseRecorder, *bytes.Buffer) {
	r, _ := http.NewRequestWithContext(ctx, method, url, body)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(fn)

	handler.ServeHTTP(rr, r)

	return rr, rr.Body
}

// ReadBody returns the response body and closes it
func ReadBody(resp *http.Response) string {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	gomega.Expect(err).Should(gomega.Succeed())

	return string(b)
}

// HaveStatusCode checks the status code of a *http.Response
func HaveStatusCode(code int) types.GomegaMatcher {
	return gomega.WithTransform(func(resp *http.Response) int {
		return resp.StatusCode
	}, gomega.Equal(code))
}

// HaveHeader checks a header value of a *http.Response
func HaveHeader(name string, matcher types.GomegaMatcher) types.GomegaMatcher {
	return gomega.WithTransform(func(resp *http.Response) string {
		return resp.Header.Get(name)
	}, matcher)
}

// blockReasonHeader mirrors the marker header set on denial responses
const blockReasonHeader = "X-Argus-Block-Reason"

// BeBlockedWithReason checks that a *http.Response is a denial carrying the given reason
func BeBlockedWithReason(reason string) types.GomegaMatcher {
	return gomega.SatisfyAll(
		HaveStatusCode(http.StatusForbidden),
		HaveHeader(blockReasonHeader, gomega.Equal(reason)),
	)
}
