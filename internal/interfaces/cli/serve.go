package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/encuestaia/backend/internal/infrastructure/config"
	applog "github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/encuestaia/backend/internal/infrastructure/singleton"
	"github.com/encuestaia/backend/internal/wire"
	"github.com/spf13/cobra"
)

// errAlreadyRunning 已有实例持有端口
var errAlreadyRunning = errors.New("another encuesta.ia backend is already running")

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP, WebSocket and MCP backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				if err := os.Setenv(config.EnvHTTPPort, port); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (env "+config.EnvHTTPPort+", default :3001)")
	return cmd
}

// serve 启动后端并阻塞到 ctx 结束
func serve(ctx context.Context) error {
	applog.Init(nil)
	logger := applog.GetLogger()

	cfg := config.NewConfig()
	listener, err := singleton.CheckAndLock(cfg.Server.HTTPPort)
	if err != nil {
		return err
	}
	if listener == nil {
		return errAlreadyRunning
	}

	app, err := wire.InitializeAll()
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := app.Start(listener); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down application...")
	return app.Stop()
}
