// cached is the standalone cache daemon: it assembles the config, logger,
// redis and cache components and runs them until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/puzzleforge/liveops-cache/app"
	"github.com/puzzleforge/liveops-cache/cache"
	"github.com/puzzleforge/liveops-cache/logger"
	"github.com/puzzleforge/liveops-cache/redis"
)

var (
	configPath string
	envPrefix  string
)

func main() {
	root := &cobra.Command{
		Use:   "cached",
		Short: "Tiered live-ops cache daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.Flags().StringVar(&configPath, "config", "config.yaml", "configuration file path")
	root.Flags().StringVar(&envPrefix, "env-prefix", "APP", "environment variable prefix")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configComp := app.NewConfigComponent(configPath, envPrefix)
	loggerComp := app.NewLoggerComponent()
	redisComp := redis.NewComponent()
	cacheComp := cache.NewComponent()
	cacheComp.SetRedisManagerProvider(redisComp.Manager)

	runner := app.NewRunner(configComp, logger.GetLogger("app"))
	runner.MustRegister(configComp)
	runner.MustRegister(loggerComp)
	runner.MustRegister(redisComp)
	runner.MustRegister(cacheComp)

	return runner.Run(ctx)
}
