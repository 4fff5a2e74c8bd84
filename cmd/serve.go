package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xERR0R/argus/evt"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/server"
	"github.com/0xERR0R/argus/util"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	done    = make(chan bool, 1)
	signals = make(chan os.Signal, 1)
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "start argus proxy (default command)",
		RunE:  startServer,
	}
}

func startServer(_ *cobra.Command, _ []string) error {
	printBanner()

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("can't start server: %w", err)
	}

	const errChanSize = 10
	errChan := make(chan error, errChanSize)

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	srv.Start(ctx, errChan)

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	var terminationErr error

	go func() {
		select {
		case <-signals:
			log.Log().Infof("Terminating...")
		case err := <-errChan:
			log.Log().Error("server start failed: ", err)

			terminationErr = err
		}

		stopCtx, stopCancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancelFn()

		util.LogOnError("can't stop server: ", srv.Stop(stopCtx))

		done <- true
	}()

	evt.Bus().Publish(evt.ApplicationStarted, util.Version, util.BuildTime)
	<-done

	return terminationErr
}

func printBanner() {
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/        _/_/_/  _/  _/_/    _/_/_/  _/    _/    _/_/_/        _/")
	log.Log().Info("_/     _/    _/  _/_/      _/    _/  _/    _/  _/_/             _/")
	log.Log().Info("_/    _/    _/  _/        _/    _/  _/    _/      _/_/          _/")
	log.Log().Info("_/     _/_/_/  _/          _/_/_/    _/_/_/  _/_/_/             _/")
	log.Log().Info("_/                            _/                                _/")
	log.Log().Info("_/                       _/_/                                   _/")
	log.Log().Info("_/                                                              _/")
	log.Log().Infof("_/  Version: %-18s Build time: %-18s  _/", util.Version, util.BuildTime)
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
}
