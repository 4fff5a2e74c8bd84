package proxy

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"net/http/httputil"
	"sync"
	"time"

	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/intercept"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/util"

	"github.com/sirupsen/logrus"
)

const connectionEstablished = "HTTP/1.1 200 Connection Established\r\n\r\n"

// Proxy is a forward HTTP proxy which passes every exchange through an interceptor.
// CONNECT tunnels are not decrypted, they are classified on the tunnel host.
type Proxy struct {
	interceptor intercept.Interceptor
	forwarder   *httputil.ReverseProxy
	dialer      *net.Dialer
}

func logger() *logrus.Entry {
	return log.PrefixedLog("proxy")
}

// New creates a proxy forwarding requests with the configured upstream timeout
func New(cfg config.Proxy, interceptor intercept.Interceptor) *Proxy {
	timeout := cfg.UpstreamTimeout.ToDuration()

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := util.DefaultHTTPTransport()
	transport.DialContext = dialer.DialContext
	transport.ResponseHeaderTimeout = timeout

	p := &Proxy{
		interceptor: interceptor,
		dialer:      dialer,
	}

	p.forwarder = &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			if _, ok := req.Header["User-Agent"]; !ok {
				// don't let the transport add its own
				req.Header.Set("User-Agent", "")
			}
		},
		Transport:      transport,
		ModifyResponse: p.onUpstreamResponse,
		ErrorHandler:   p.onUpstreamError,
		ErrorLog:       stdlog.New(logger().WriterLevel(logrus.DebugLevel), "", 0),
	}

	return p
}

func (p *Proxy) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	ctx, _ := intercept.NewExchangeContext(req.Context())
	req = req.WithContext(ctx)

	if req.Method == http.MethodConnect {
		p.tunnel(ctx, rw, req)

		return
	}

	if !req.URL.IsAbs() {
		http.Error(rw, "this is a forward proxy, requests must use an absolute URL", http.StatusBadRequest)

		return
	}

	if resp := p.interceptor.OnRequest(ctx, req); resp != nil {
		p.interceptor.OnResponse(ctx, req, resp)
		writeResponse(ctx, rw, resp)

		return
	}

	p.forwarder.ServeHTTP(rw, req)
}

// onUpstreamResponse runs before the upstream body is copied to the client
func (p *Proxy) onUpstreamResponse(resp *http.Response) error {
	p.interceptor.OnResponse(resp.Request.Context(), resp.Request, resp)

	return nil
}

// onUpstreamError answers with 502, there is no response to record
func (p *Proxy) onUpstreamError(rw http.ResponseWriter, req *http.Request, err error) {
	logger := log.FromCtx(req.Context())

	if errors.Is(err, context.Canceled) {
		logger.Debug("client canceled request: ", err)
	} else {
		logger.WithField("url", log.EscapeInput(util.RequestURL(req))).Warn("upstream request failed: ", err)
	}

	rw.WriteHeader(http.StatusBadGateway)
}

func (p *Proxy) tunnel(ctx context.Context, rw http.ResponseWriter, req *http.Request) {
	logger := log.FromCtx(ctx)

	if resp := p.interceptor.OnRequest(ctx, req); resp != nil {
		p.interceptor.OnResponse(ctx, req, resp)
		writeResponse(ctx, rw, resp)

		return
	}

	hijacker, ok := rw.(http.Hijacker)
	if !ok {
		http.Error(rw, "tunneling not supported", http.StatusInternalServerError)

		return
	}

	upstream, err := p.dialer.DialContext(ctx, "tcp", req.Host)
	if err != nil {
		logger.WithField("host", log.EscapeInput(req.Host)).Warn("can't connect to upstream: ", err)
		http.Error(rw, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)

		return
	}

	client, buf, err := hijacker.Hijack()
	if err != nil {
		logger.Error("can't hijack connection: ", err)
		upstream.Close()

		return
	}

	// tunnels live longer than the server's timeouts
	_ = client.SetDeadline(time.Time{})

	p.interceptor.OnResponse(ctx, req, &http.Response{
		Status:     "200 Connection Established",
		StatusCode: http.StatusOK,
		Proto:      req.Proto,
		ProtoMajor: req.ProtoMajor,
		ProtoMinor: req.ProtoMinor,
		Header:     make(http.Header),
		Request:    req,
	})

	if _, err := client.Write([]byte(connectionEstablished)); err != nil {
		logger.Debug("can't confirm tunnel: ", err)
		client.Close()
		upstream.Close()

		return
	}

	pipe(client, buf.Reader, upstream)

	logger.Debug("tunnel closed")
}

// pipe copies in both directions until both sides are done
func pipe(client net.Conn, clientReader io.Reader, upstream net.Conn) {
	var wg sync.WaitGroup

	wg.Add(2)

	go transfer(&wg, upstream, clientReader)
	go transfer(&wg, client, upstream)

	wg.Wait()

	client.Close()
	upstream.Close()
}

type closeWriter interface {
	CloseWrite() error
}

func transfer(wg *sync.WaitGroup, dst net.Conn, src io.Reader) {
	defer wg.Done()

	_, _ = io.Copy(dst, src)

	if cw, ok := dst.(closeWriter); ok {
		_ = cw.CloseWrite()
	} else {
		_ = dst.Close()
	}
}

func writeResponse(ctx context.Context, rw http.ResponseWriter, resp *http.Response) {
	defer resp.Body.Close()

	for k, v := range resp.Header {
		rw.Header()[k] = v
	}

	rw.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(rw, resp.Body); err != nil {
		log.FromCtx(ctx).Debug("can't write response: ", err)
	}
}
