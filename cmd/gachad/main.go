package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gachago/v1/internal/app"
)

const version = "1.0.0"

var (
	configPath string
	disableAPI bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "gachad",
	Short: "机密盲盒抽取协议服务节点",
	Long: `gachad - 机密盲盒抽取协议的服务节点

运营方把隐藏奖励金额承诺进可购买的抽取槽位而不揭示；买家支付
固定售价购买；随后在唯一授权的揭示点把加密托管余额原子地转给
买家。金额在揭示前对所有观察者保持机密。

使用方式:
  gachad run                    # 使用默认配置启动
  gachad run --config <path>    # 使用指定配置文件启动`,
}

// runCmd 启动服务节点
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动服务节点",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []app.Option{}
		if configPath != "" {
			opts = append(opts, app.WithConfigFile(configPath))
		}
		if disableAPI {
			opts = append(opts, app.WithoutAPI())
		}

		application, err := app.Start(opts...)
		if err != nil {
			return fmt.Errorf("启动失败: %w", err)
		}

		fmt.Println("✅ gachad 已启动，按 Ctrl+C 停止")
		application.Wait()
		return nil
	},
}

// versionCmd 显示版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gachad v%s\n", version)
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "配置文件路径（JSON格式）")
	runCmd.Flags().BoolVar(&disableAPI, "no-api", false, "禁用HTTP API服务")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
