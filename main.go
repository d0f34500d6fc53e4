// Command vitae renders résumé JSON documents into paginated PDF files.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ByLCY/vitae/config"
	"github.com/ByLCY/vitae/dsl"
	"github.com/ByLCY/vitae/layout"
)

var rootCmd = &cobra.Command{
	Use:               "vitae",
	Short:             "CV to PDF exporter",
	Long:              "vitae lays out a structured résumé on A4 pages and encodes it as a PDF, from the command line or over HTTP.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string
	logLevel   string

	appConfig = config.Default()
	logger    = slog.Default()
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON 配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug|info|warn|error)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig 依次合并配置文件、环境变量与命令行参数。
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	appConfig = cfg
	logger = cfg.Logger()
	return nil
}

// loadStyle 解析主题文件；路径为空时使用默认样式。
func loadStyle(path string) (layout.Style, error) {
	if path == "" {
		return layout.DefaultStyle(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return layout.Style{}, fmt.Errorf("无法打开主题文件 %s: %w", path, err)
	}
	defer file.Close()

	theme, err := dsl.Parse(path, file)
	if err != nil {
		return layout.Style{}, fmt.Errorf("解析主题失败: %w", err)
	}
	style, err := layout.StyleFromTheme(theme)
	if err != nil {
		return layout.Style{}, fmt.Errorf("应用主题失败: %w", err)
	}
	return style, nil
}
