package util

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

//nolint:gochecknoglobals
var baseTransport *http.Transport

//nolint:gochecknoinits
func init() {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		panic(fmt.Errorf(
			"unsupported Go version: http.DefaultTransport is not of type *http.Transport: it is a %T",
			http.DefaultTransport,
		))
	}

	baseTransport = base
}

// DefaultHTTPTransport returns a new Transport with the same defaults as net/http.
// The proxy environment is ignored: the transport itself is the proxy.
func DefaultHTTPTransport() *http.Transport {
	return &http.Transport{
		DialContext:           baseTransport.DialContext,
		ForceAttemptHTTP2:     baseTransport.ForceAttemptHTTP2,
		IdleConnTimeout:       baseTransport.IdleConnTimeout,
		MaxIdleConns:          baseTransport.MaxIdleConns,
		ExpectContinueTimeout: baseTransport.ExpectContinueTimeout,
		TLSHandshakeTimeout:   baseTransport.TLSHandshakeTimeout,
		TLSClientConfig:       baseTransport.TLSClientConfig,
	}
}

// RequestHost returns the host of the request without port
func RequestHost(req *http.Request) string {
	host := req.Host
	if host == "" && req.URL != nil {
		host = req.URL.Host
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}

	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// RequestURL returns the absolute URL of the request. Requests read from a tunnel
// usually carry only the path, scheme and host are completed from the request.
func RequestURL(req *http.Request) string {
	if req.URL == nil {
		return ""
	}

	if req.URL.IsAbs() {
		return req.URL.String()
	}

	u := *req.URL

	if u.Host == "" {
		u.Host = req.Host
	}

	if u.Scheme == "" {
		u.Scheme = "http"
		if req.TLS != nil || req.Method == http.MethodConnect {
			u.Scheme = "https"
		}
	}

	return u.String()
}
