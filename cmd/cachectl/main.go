// cachectl is the operator tool for the live-ops cache: it inspects the
// distributed tier and exposes the clear/flush escape hatches that must
// never be reached from application logic paths.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/puzzleforge/liveops-cache/cache"
	"github.com/puzzleforge/liveops-cache/config"
	"github.com/puzzleforge/liveops-cache/logger"
	"github.com/puzzleforge/liveops-cache/redis"
)

var (
	configPath string
	redisAddr  string
	instance   string
	confirm    bool
)

func main() {
	root := &cobra.Command{
		Use:   "cachectl",
		Short: "Operator tool for the tiered live-ops cache",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")
	root.PersistentFlags().StringVar(&redisAddr, "addr", "", "redis address override (host:port)")
	root.PersistentFlags().StringVar(&instance, "instance", "main", "redis instance name in the configuration")

	ping := &cobra.Command{
		Use:   "ping",
		Short: "Probe the distributed tier",
		RunE:  runPing,
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show key counts per namespace in the distributed tier",
		RunE:  runStats,
	}

	clear := &cobra.Command{
		Use:   "clear <namespace>",
		Short: "Delete every key under a namespace prefix",
		Args:  cobra.ExactArgs(1),
		RunE:  runClear,
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Flush the entire distributed store",
		RunE:  runFlush,
	}
	flush.Flags().BoolVar(&confirm, "yes", false, "confirm the flush")

	root.AddCommand(ping, stats, clear, flush)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// connect builds a client from the --addr override or the configuration file
func connect() (*goredis.Client, error) {
	cfg := redis.Config{Addr: redisAddr}
	if redisAddr == "" {
		loader := config.NewLoader(configPath, "APP")
		if err := loader.Load(); err != nil {
			return nil, err
		}
		var configs map[string]redis.Config
		if err := loader.Unmarshal("redis", &configs); err != nil {
			return nil, err
		}
		instanceCfg, ok := configs[instance]
		if !ok {
			return nil, fmt.Errorf("redis instance %q not configured in %s", instance, configPath)
		}
		cfg = instanceCfg
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}), nil
}

func runPing(cmd *cobra.Command, args []string) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Printf("degraded: %v\n", err)
		return nil
	}
	fmt.Printf("healthy (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	total, err := client.DBSize(ctx).Result()
	if err != nil {
		return err
	}

	namespaces := make([]string, 0)
	for name := range cache.DefaultNamespaces() {
		namespaces = append(namespaces, name)
	}
	sort.Strings(namespaces)

	fmt.Printf("%-18s %s\n", "NAMESPACE", "KEYS")
	for _, namespace := range namespaces {
		count, err := countKeys(ctx, client, namespace+":*")
		if err != nil {
			return err
		}
		fmt.Printf("%-18s %d\n", namespace, count)
	}
	fmt.Printf("%-18s %d\n", "total (db)", total)
	return nil
}

func countKeys(ctx context.Context, client *goredis.Client, pattern string) (int64, error) {
	var cursor uint64
	var count int64
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return 0, err
		}
		count += int64(len(batch))
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

func runClear(cmd *cobra.Command, args []string) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	namespace := args[0]
	store := cache.NewRedisStore(client, logger.GetLogger("cachectl"))
	if store.Degraded() {
		return fmt.Errorf("distributed tier unreachable")
	}
	if err := store.ClearNamespace(context.Background(), namespace); err != nil {
		return err
	}
	fmt.Printf("namespace %q cleared\n", namespace)
	return nil
}

func runFlush(cmd *cobra.Command, args []string) error {
	if !confirm {
		return fmt.Errorf("refusing to flush without --yes")
	}
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	store := cache.NewRedisStore(client, logger.GetLogger("cachectl"))
	if store.Degraded() {
		return fmt.Errorf("distributed tier unreachable")
	}
	if err := store.ClearAll(context.Background()); err != nil {
		return err
	}
	fmt.Println("distributed store flushed")
	return nil
}
