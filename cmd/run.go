package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口
	runMode string // 启动模式
	config  string // 配置文件路径
}

// shutdownTimeout 优雅关闭等待时间
const shutdownTimeout = 10 * time.Second

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run notes sync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				} else {
					bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
				}
			}

			path, err := resolveConfig(configPath)
			if err != nil {
				return err
			}
			runEnv.config = path

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, runEnv)
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
}

// serve 启动服务，配置文件变更时重建，ctx 结束时优雅关闭
func serve(ctx context.Context, runEnv *runFlags) error {
	s, err := NewServer(runEnv)
	if err != nil {
		bootstrapLogger.Error("api service start err", zap.Error(err))
		return err
	}
	s.Start(ctx)

	w := watcher.New()
	// 每个监听周期至多一个事件
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)
	if err := w.Add(runEnv.config); err != nil {
		s.logger.Error("config watcher file error", zap.Error(err))
	}
	go func() {
		if err := w.Start(5 * time.Second); err != nil {
			bootstrapLogger.Error("config watcher start error", zap.Error(err))
		}
	}()
	defer w.Close()

	for {
		select {
		case event := <-w.Event:
			s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
			shutdown(s)

			// 重新初始化 server
			next, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("service restart err", zap.Error(err))
				return err
			}
			s = next
			s.Start(ctx)

		case err := <-w.Error:
			s.logger.Error("config watcher error", zap.Error(err))

		case err := <-s.Err():
			shutdown(s)
			return err

		case <-ctx.Done():
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			if err := shutdown(s); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
				return err
			}
			s.logger.Info("Service has been shut down gracefully.")
			return nil
		}
	}
}

func shutdown(s *Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}
