package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/middleware"
	"github.com/gitrules/gitrules/internal/server"
	"github.com/gitrules/gitrules/internal/svc"
)

// ServeCmd starts the HTTP API and MCP endpoint
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and MCP server",
		Long: `Start the HTTP API on server.host:server.port. The MCP endpoint is mounted at /mcp.

With catalog.watch the catalog reloads when a source file changes; with
catalog.reload_schedule (a cron spec such as "@every 10m") it also reloads on a timer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	c := *ServerConfig

	svcCtx, err := svc.NewServiceContext(c, Version)
	if err != nil {
		return err
	}
	defer svcCtx.Close()
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if c.Catalog.Watch {
		if err := svcCtx.Catalog.Watch(ctx, c.Catalog.Dir); err != nil {
			return fmt.Errorf("watch catalog: %w", err)
		}
	}
	if c.Catalog.ReloadSchedule != "" {
		if err := svcCtx.Catalog.Schedule(c.Catalog.ReloadSchedule); err != nil {
			return err
		}
	}

	for _, l := range []*middleware.RateLimiter{svcCtx.APILimiter, svcCtx.RecommendLimiter} {
		if l == nil {
			continue
		}
		g.Go(func() error {
			l.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		return server.Run(ctx, svcCtx)
	})

	logging.Infof("gitrules %s serving catalog %s", Version, c.Catalog.Dir)
	return g.Wait()
}
