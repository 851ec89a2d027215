// Package app wires configuration, storage and the HTTP server behind the
// bookshelf command line
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/htol/bookshelf/config"
	"github.com/htol/bookshelf/importer"
	"github.com/htol/bookshelf/logger"
	"github.com/htol/bookshelf/repo"
	"github.com/htol/bookshelf/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X github.com/htol/bookshelf/app.Version=..."
var Version = "dev"

func CLI(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("Runtime error", "error", err)
		return 1
	}
	return 0
}

type appEnv struct {
	v          *viper.Viper
	configFile string
	config     *config.Config
}

func newRootCmd() *cobra.Command {
	app := &appEnv{v: config.New()}

	root := &cobra.Command{
		Use:               "bookshelf",
		Short:             "A personal library catalog",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "config file (default: ./bookshelf.yaml if present)")
	flags.String("db", "", "path to the SQLite database")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	// BindPFlag only fails on a nil flag
	_ = app.v.BindPFlag("database.path", flags.Lookup("db"))
	_ = app.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(app.serveCmd(), app.initCmd(), app.importCmd(), versionCmd())
	return root
}

// load reads the config file and environment once flags are parsed
func (app *appEnv) load(cmd *cobra.Command, args []string) error {
	if err := config.ReadFile(app.v, app.configFile); err != nil {
		return err
	}
	cfg, err := config.Decode(app.v)
	if err != nil {
		return err
	}
	app.config = cfg
	logger.Init(cfg.LogLevel)
	return nil
}

func (app *appEnv) openStorage() (*repo.Repo, error) {
	storage, err := repo.GetStorageWithConfig(app.config.Database.Path, app.config)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return storage, nil
}

func (app *appEnv) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.openStorage()
			if err != nil {
				return err
			}
			srv := NewServer(storage, app.config)
			defer func() {
				logger.Info("Closing database connection...")
				if err := srv.Close(); err != nil {
					logger.Error("Error closing storage", "error", err)
				}
			}()
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().IntP("port", "p", 0, "port number")
	_ = app.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func (app *appEnv) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the database and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.openStorage()
			if err != nil {
				return err
			}
			defer func() {
				if err := storage.Close(); err != nil {
					logger.Error("Error closing storage", "error", err)
				}
			}()

			version, err := storage.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Database %s ready (schema version %d)\n", app.config.Database.Path, version)
			return nil
		},
	}
}

func (app *appEnv) importCmd() *cobra.Command {
	var opts importer.Options

	cmd := &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Import books from a CSV file of title,author[,bookshelf]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			storage, err := app.openStorage()
			if err != nil {
				return err
			}
			defer func() {
				if err := storage.Close(); err != nil {
					logger.Error("Error closing storage", "error", err)
				}
			}()

			res, err := importer.Import(cmd.Context(), f, opts, service.New(storage))
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			cmd.Printf("Imported %d book(s), skipped %d row(s)\n", res.Imported, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Charset, "charset", "", "input encoding, e.g. windows-1251 (default: detect)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", importer.DefaultBatchSize, "books written per transaction")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("bookshelf " + Version)
		},
	}
}
