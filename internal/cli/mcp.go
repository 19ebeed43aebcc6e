package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/chatlist/internal/config"
	"github.com/aretw0/chatlist/pkg/adapters/mcp"
)

// MCPOptions configures RunMCP.
type MCPOptions struct {
	Transport string // stdio | sse
	Port      int
}

// RunMCP serves the list tools over the Model Context Protocol.
func RunMCP(ctx context.Context, cfg config.Config, opts MCPOptions, logger *slog.Logger) error {
	mgr, closeStore, err := createManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(mgr, logger)

	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting chatlist MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting chatlist MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	}
	return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
}
