package cmd

import (
	"context"

	"github.com/dejay09121/Noteapp/internal/app"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var configDefault string

// configPath 全局 --config 参数
var configPath string

var rootCmd = &cobra.Command{
	Use:   "noteapp",
	Short: "Notes sync service and client",
	Long: `noteapp keeps a per-user notes collection on a server and
mirrors it locally: list, search, select and delete notes from the
terminal, or expose them to MCP clients.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file")
}

// Execute 执行根命令，defaultConfig 为内置的默认配置文件内容
func Execute(ctx context.Context, defaultConfig string) error {
	configDefault = defaultConfig
	return fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(app.Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}
