package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/pagelog/internal/cmd/client"
	serverrun "github.com/rzbill/pagelog/internal/cmd/server"
	cfgpkg "github.com/rzbill/pagelog/internal/config"
	pebblestore "github.com/rzbill/pagelog/internal/storage/pebble"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

func main() {
	// Respect PAGELOG_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("PAGELOG_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs to our logger
	logpkg.RedirectStdLog(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger logpkg.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagelog",
		Short: "pagelog segment writer CLI",
		Long:  "pagelog buffers records into pages and appends them to rotating segment files.",
	}
	rootCmd.PersistentFlags().String("config", os.Getenv("PAGELOG_CONFIG"), "JSON config file")

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the writer with gRPC and HTTP ingest",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir, _ := cmd.Flags().GetString("data-dir")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			catalogSync, _ := cmd.Flags().GetString("catalog-sync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			policy, err := parseCatalogSync(catalogSync)
			if err != nil {
				return err
			}
			if logLevel != "" {
				_ = os.Setenv("PAGELOG_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("PAGELOG_LOG_FORMAT", logFormat)
			}

			if err := serverrun.Run(cmd.Context(), serverrun.Options{
				DataDir:     dataDir,
				GRPCAddr:    grpcAddr,
				HTTPAddr:    httpAddr,
				CatalogSync: policy,
				Config:      cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	addWriterFlags(serverStartCmd)
	serverStartCmd.Flags().String("grpc", ":50051", "gRPC listen address")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("catalog-sync", "grouped", "Catalog WAL sync: always|grouped|none")
	serverStartCmd.Flags().String("amqp-url", "", "AMQP broker URL; enables the broker source")
	serverStartCmd.Flags().String("amqp-queue", "", "AMQP queue to consume")
	serverStartCmd.Flags().String("log-level", os.Getenv("PAGELOG_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("PAGELOG_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// write
	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write stdin lines to segments without a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir, _ := cmd.Flags().GetString("data-dir")
			if dataDir == "" {
				dataDir = cfgpkg.DefaultDataDir()
			}
			res, err := serverrun.Write(cmd.Context(), dataDir, cfg, cmd.InOrStdin(), logger)
			fmt.Fprintf(cmd.OutOrStdout(), "written: %d filtered: %d skipped: %d\n", res.Written, res.Filtered, res.Skipped)
			return err
		},
	}
	addWriterFlags(writeCmd)
	rootCmd.AddCommand(writeCmd)

	for _, c := range clientcmd.Commands(apiURL) {
		rootCmd.AddCommand(c)
	}
	return rootCmd
}

func addWriterFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	cmd.Flags().Int("page-size", 0, "Page size in bytes")
	cmd.Flags().Int("file-size", 0, "Segment size budget in bytes")
	cmd.Flags().Int("queue-capacity", -1, "Record queue capacity")
	cmd.Flags().String("segment-prefix", "", "Segment file name prefix")
	cmd.Flags().String("namer", "", "Segment naming: catalog|sequence|unique")
	cmd.Flags().String("sync", "", "Segment sync: never|page|rotate")
	cmd.Flags().String("serializer", "", "Record serializer: text|json|protojson")
	cmd.Flags().String("filter", "", "CEL expression; records it rejects are dropped")
	cmd.Flags().Int("stop-timeout-ms", 0, "Graceful stop timeout in ms")
}

// loadConfig layers defaults, the --config file, PAGELOG_* env and flags.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfg, err
	}
	cfgpkg.FromEnv(&cfg)

	flags := cmd.Flags()
	if flags.Changed("page-size") {
		cfg.PageSize, _ = flags.GetInt("page-size")
	}
	if flags.Changed("file-size") {
		cfg.FileSize, _ = flags.GetInt("file-size")
	}
	if flags.Changed("queue-capacity") {
		cfg.QueueCapacity, _ = flags.GetInt("queue-capacity")
	}
	for name, dst := range map[string]*string{
		"segment-prefix": &cfg.SegmentPrefix,
		"namer":          &cfg.Namer,
		"sync":           &cfg.Sync,
		"serializer":     &cfg.Serializer,
		"filter":         &cfg.Filter,
		"amqp-url":       &cfg.AMQP.URL,
		"amqp-queue":     &cfg.AMQP.Queue,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("stop-timeout-ms") {
		cfg.StopTimeoutMs, _ = flags.GetInt("stop-timeout-ms")
	}
	return cfg, cfg.Validate()
}

func parseCatalogSync(s string) (pebblestore.SyncPolicy, error) {
	switch s {
	case "", "grouped":
		return pebblestore.SyncGrouped, nil
	case "always":
		return pebblestore.SyncAlways, nil
	case "none":
		return pebblestore.SyncNone, nil
	default:
		return 0, fmt.Errorf("invalid --catalog-sync %q; use always|grouped|none", s)
	}
}

func apiURL() string {
	if v := os.Getenv("PAGELOG_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
