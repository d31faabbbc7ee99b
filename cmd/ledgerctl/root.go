package main

import (
	"context"
	"io"
	"os"

	"github.com/JonMunkholm/ledger/internal/archive"
	"github.com/JonMunkholm/ledger/internal/config"
	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/logging"
	"github.com/JonMunkholm/ledger/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app holds what a command needs once the ledger is open.
type app struct {
	driver   string
	database string

	cfg     *config.Config
	service *core.Service
	closers []func()
}

// run executes ledgerctl with args and releases everything it opened.
func run(args []string) error {
	return execute(args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Manage the print shop invoice ledger",
		Long: `ledgerctl reads and edits the invoice ledger the web server uses.

Configuration comes from the same environment variables (and .env file) as
the server. --driver and --database override DATABASE_DRIVER and DATABASE_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
				return nil
			}
			return a.open(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.driver, "driver", "", "store driver: postgres, sqlite or memory")
	root.PersistentFlags().StringVar(&a.database, "database", "", "PostgreSQL URL or SQLite file")

	root.AddCommand(
		a.importCmd(),
		a.exportCmd(),
		a.summaryCmd(),
		a.searchCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.migrateCmd(),
		a.snapshotCmd(),
	)
	return root
}

// open loads configuration and connects the service. Logs go to stderr so
// exports written to stdout stay clean.
func (a *app) open(cmd *cobra.Command) error {
	_ = godotenv.Load()

	if a.driver != "" {
		os.Setenv("DATABASE_DRIVER", a.driver)
	}
	if a.database != "" {
		os.Setenv("DATABASE_URL", a.database)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	a.cfg = cfg

	ctx := cmd.Context()
	ledgerStore, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeStore)

	archiver, closeArchive, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() { closeArchive() })

	var opts []core.ServiceOption
	if archiver != nil {
		opts = append(opts, core.WithArchiver(archiver))
	}
	a.service = core.NewService(ledgerStore, cfg, opts...)

	if cfg.Ledger.AutoMigrate && cmd.Name() != "migrate" {
		_, err := a.service.Migrate(ctx)
		return err
	}
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// auditCtx returns the command context with the CLI marked as the audit client.
func auditCtx(cmd *cobra.Command) context.Context {
	return core.ContextWithClient(cmd.Context(), "cli", "ledgerctl")
}
