//go:build windows

package server

import "context"

func registerPrintConfigurationTrigger(_ context.Context, _ *Server) {
}
