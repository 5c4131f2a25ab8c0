package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skylinedata/transnet/internal/config"
	"github.com/skylinedata/transnet/internal/consume"
	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/reader"
	"github.com/skylinedata/transnet/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath   string
		providerName string
		mode         string
		chunkSize    int
		width        int
		verbose      bool
		mongoURI     string
		database     string
	)

	cmd := &cobra.Command{
		Use:   "transnet [flags] FILE",
		Short: "Parse a transportation-network data file and load it into MongoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				data, err := os.ReadFile(configPath)
				if err != nil {
					return fmt.Errorf("read config: %w", err)
				}
				if cfg, err = config.Load(data); err != nil {
					return err
				}
			}

			// Command-line flags win over the config file.
			if cmd.Flags().Changed("mode") {
				cfg.Mode = config.Mode(mode)
			}
			if cmd.Flags().Changed("chunk-size") {
				cfg.ChunkSize = chunkSize
			}
			if cmd.Flags().Changed("width") {
				cfg.Width = width
			}
			if cmd.Flags().Changed("uri") {
				cfg.MongoURI = mongoURI
			}
			if cmd.Flags().Changed("database") {
				cfg.Database = database
			}
			cfg.Verbose = cfg.Verbose || verbose
			if err := cfg.Validate(); err != nil {
				return err
			}

			contract, ok := provider.ByName(providerName)
			if !ok {
				return fmt.Errorf("unknown provider type %q (choices: %s)",
					providerName, strings.Join(provider.Names(), ", "))
			}

			log := newLogger(cfg)
			return run(cmd.Context(), cfg, contract, args[0], log)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML run configuration")
	cmd.Flags().StringVarP(&providerName, "type", "t", "", "provider type of the file to parse (required)")
	cmd.Flags().StringVar(&mode, "mode", string(config.ModeSequential), "dispatch mode: sequential, thread or process")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "rows per chunk")
	cmd.Flags().IntVar(&width, "width", 0, "worker count for thread/process mode")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().StringVar(&mongoURI, "uri", "", "MongoDB connection URI")
	cmd.Flags().StringVar(&database, "database", "", "MongoDB database name")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func run(ctx context.Context, cfg config.Config, contract *provider.Contract, path string, log *slog.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	st, err := store.Connect(ctx, cfg.MongoURI, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	// Process-mode workers each get their own connection.
	factory := reader.StoreFactory(func(ctx context.Context) (store.Store, error) {
		return store.Connect(ctx, cfg.MongoURI, cfg.Database, log)
	})

	consumer := consume.New(cfg, st, factory, log)
	_, err = consumer.Run(ctx, contract, path, file)
	return err
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
