package helpertest

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/onsi/ginkgo/v2"
)

// Upstream is a test origin server which records the latest request
type Upstream struct {
	Addr          net.Addr
	body          string
	status        int
	requestTarget atomic.Value // string: HTTP Host of latest request
	requestPath   atomic.Value // string: path of latest request
	requestCount  atomic.Int32
}

// TestUpstream returns a new Upstream server answering every request with status and body.
func TestUpstream(status int, body string) *Upstream {
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		ginkgo.Fail(fmt.Sprintf("could not create upstream listener: %s", err))
	}

	upstream := &Upstream{
		Addr:   listener.Addr(),
		body:   body,
		status: status,
	}

	srv := http.Server{ //nolint:gosec
		Addr:    "127.0.0.1:0",
		Handler: upstream,
	}

	go func() { _ = srv.Serve(listener) }()
	ginkgo.DeferCleanup(srv.Close)

	return upstream
}

// URL returns the upstream's base URL.
func (u *Upstream) URL() *url.URL {
	return &url.URL{
		Scheme: "http",
		Host:   u.Addr.String(),
	}
}

// RequestTarget returns the Host of the last request.
func (u *Upstream) RequestTarget() string {
	val := u.requestTarget.Load()
	if val == nil {
		ginkgo.Fail(fmt.Sprintf("upstream %s received no requests", u.Addr))
	}

	return val.(string)
}

// RequestPath returns the path of the last request.
func (u *Upstream) RequestPath() string {
	val := u.requestPath.Load()
	if val == nil {
		return ""
	}

	return val.(string)
}

// RequestCount returns the number of received requests.
func (u *Upstream) RequestCount() int {
	return int(u.requestCount.Load())
}

func (u *Upstream) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	u.requestTarget.Store(req.Host)
	u.requestPath.Store(req.URL.Path)
	u.requestCount.Add(1)

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(u.status)
	_, _ = w.Write([]byte(u.body))
}
