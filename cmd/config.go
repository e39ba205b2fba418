package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/service"
	"github.com/dejay09121/Noteapp/internal/task"
	"github.com/dejay09121/Noteapp/pkg/fileurl"
	"github.com/dejay09121/Noteapp/pkg/logger"
	"github.com/dejay09121/Noteapp/pkg/util"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// defaultSecretKey 内置配置中的占位密钥，首次生成配置时替换为随机串
const defaultSecretKey = "noteapp-Auth-Token"

// resolveConfig 未指定配置文件时按顺序查找，均不存在则写出默认配置
func resolveConfig(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	path = "config/config.yaml"
	bootstrapLogger.Warn("config file not found, creating default config", zap.String("path", path))

	content := strings.Replace(configDefault, defaultSecretKey, util.GetRandomString(32), 1)
	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "config file auto create")
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.Wrap(err, "config file auto create writing")
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	return path, nil
}

// loadConfig 读取 --config 指定（或自动查找）的配置
func loadConfig() (*app.AppConfig, error) {
	path, err := resolveConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg, _, err := app.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

// openClient 加载配置并组装客户端容器
// 命令行客户端的日志只写文件，终端只保留命令输出
func openClient(ctx context.Context) (*app.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	lc := cfg.LoggerConfig()
	lc.NoConsole = true
	lg, err := logger.NewLogger(lc)
	if err != nil {
		return nil, err
	}
	return app.NewClient(cfg, lg)
}

// loadNotes 拉取一次远端集合到本地
func loadNotes(ctx context.Context, c *app.Client) error {
	if _, err := requireUser(ctx, c); err != nil {
		return err
	}
	return c.Sync.RefreshWithTrigger(ctx, service.TriggerMount)
}

// startClientTasks 启动客户端兜底轮询
func startClientTasks(ctx context.Context, c *app.Client) *task.Manager {
	m := task.NewManager(c.Logger())
	if err := m.RegisterClientTasks(c); err != nil {
		c.Logger().Error("failed to register tasks", zap.Error(err))
	}
	m.Start(ctx)
	return m
}
