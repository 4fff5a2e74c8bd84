package server

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/0xERR0R/argus/api"
	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/filter"
	"github.com/0xERR0R/argus/intercept"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/metrics"
	"github.com/0xERR0R/argus/proxy"
	"github.com/0xERR0R/argus/querylog"
	"github.com/0xERR0R/argus/rules"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Server controls the proxy and the dashboard API endpoints
type Server struct {
	cfg *config.Config

	ruleStore *rules.Store
	logStore  querylog.Store

	proxyServer   *httpServer
	proxyListener net.Listener
	apiServer     *httpServer
	apiListener   net.Listener

	wg sync.WaitGroup
}

func logger() *logrus.Entry {
	return log.PrefixedLog("server")
}

// NewServer creates new server instance with passed config
func NewServer(cfg *config.Config) (*Server, error) {
	log.ConfigureLogger(cfg.Log)

	ruleStore, err := rules.NewStore(cfg.Rules)
	if err != nil {
		// the store serves an empty set until the file becomes readable
		logger().Error("can't load rule file: ", err)
	}

	logStore, err := querylog.NewStore(cfg.QueryLog)
	if err != nil {
		return nil, fmt.Errorf("query log creation failed: %w", err)
	}

	controller := intercept.NewController(
		filter.NewEngine(ruleStore),
		intercept.NewBlockPage(cfg.BlockPage),
		logStore,
	)

	router := createRouter(cfg, api.NewFacade(ruleStore, logStore))

	metrics.Start(router, cfg.Prometheus)

	proxyListener, httpListener, err := createListeners(cfg)
	if err != nil {
		return nil, multierror.Append(err, logStore.Close())
	}

	s := &Server{
		cfg:           cfg,
		ruleStore:     ruleStore,
		logStore:      logStore,
		proxyServer:   newProxyServer("proxy", proxy.New(cfg.Proxy, controller)),
		proxyListener: proxyListener,
		apiServer:     newHTTPServer("http", router),
		apiListener:   httpListener,
	}

	s.printConfiguration()

	return s, nil
}

func createListeners(cfg *config.Config) (proxyListener, httpListener net.Listener, err error) {
	proxyListener, err = newListener("proxy", cfg.Ports.Proxy)
	if err != nil {
		return nil, nil, err
	}

	httpListener, err = newListener("http", cfg.Ports.HTTP)
	if err != nil {
		proxyListener.Close()

		return nil, nil, err
	}

	return proxyListener, httpListener, nil
}

func newListener(name, address string) (net.Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("start %s listener on %s failed: %w", name, address, err)
	}

	return listener, nil
}

// ProxyAddr returns the address the proxy listens on
func (s *Server) ProxyAddr() net.Addr {
	return s.proxyListener.Addr()
}

// HTTPAddr returns the address the dashboard API listens on
func (s *Server) HTTPAddr() net.Addr {
	return s.apiListener.Addr()
}

func (s *Server) printConfiguration() {
	logger().Info("current configuration:")

	s.cfg.LogConfig(logger())

	logger().Infof("- proxy listening on %s", s.proxyListener.Addr())
	logger().Infof("- http listening on %s", s.apiListener.Addr())
	logger().Infof("- %d domains blocked", s.ruleStore.Snapshot().Len())

	logger().Info("runtime information:")

	// force garbage collector
	runtime.GC()
	debug.FreeOSMemory()

	// gather memory stats
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	logger().Infof("MEM Alloc =        %10v MB", toMB(m.Alloc))
	logger().Infof("MEM HeapAlloc =    %10v MB", toMB(m.HeapAlloc))
	logger().Infof("MEM Sys =          %10v MB", toMB(m.Sys))
	logger().Infof("MEM NumGC =        %10v", m.NumGC)
	logger().Infof("RUN NumCPU =       %10d", runtime.NumCPU())
	logger().Infof("RUN NumGoroutine = %10d", runtime.NumGoroutine())
}

func toMB(b uint64) uint64 {
	const bytesInKB = 1024

	return b / bytesInKB / bytesInKB
}

// Start starts the server and the background jobs. Listener failures are reported on errCh.
func (s *Server) Start(ctx context.Context, errCh chan<- error) {
	logger().Info("Starting server")

	s.ruleStore.Start(ctx)
	querylog.StartCleanUp(ctx, s.logStore)

	s.serve(ctx, s.proxyServer, s.proxyListener, errCh)
	s.serve(ctx, s.apiServer, s.apiListener, errCh)

	registerPrintConfigurationTrigger(ctx, s)
}

func (s *Server) serve(ctx context.Context, srv *httpServer, listener net.Listener, errCh chan<- error) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		logger().Infof("%s server is up and running on addr/port %s", srv, listener.Addr())

		if err := srv.Serve(ctx, listener); err != nil {
			errCh <- fmt.Errorf("start %s listener failed: %w", srv, err)
		}
	}()
}

// Stop stops the listeners and closes the log store
func (s *Server) Stop(ctx context.Context) error {
	logger().Info("Stopping server")

	var err *multierror.Error

	for _, srv := range []*httpServer{s.proxyServer, s.apiServer} {
		if e := srv.Shutdown(ctx); e != nil {
			err = multierror.Append(err, fmt.Errorf("stop %s listener failed: %w", srv, e))
		}
	}

	s.wg.Wait()

	if e := s.logStore.Close(); e != nil {
		err = multierror.Append(err, fmt.Errorf("can't close query log: %w", e))
	}

	return err.ErrorOrNil()
}
