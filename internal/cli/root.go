// Package cli implements the careledger command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/careledger/ledger"
	"github.com/careledger/ledger/patient"
	"github.com/careledger/ledger/store"
	"github.com/careledger/ledger/store/flatfile"
	"github.com/careledger/ledger/store/memory"
	"github.com/careledger/ledger/store/sqlite"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	dataDir string
	store   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "careledger",
		Short:         "Patient billing from the terminal",
		Long:          "Careledger keeps patient bills and payments in plain files you can read, grep, and back up.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data", "", `data directory (default from .careledger.yaml, else ".")`)
	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "storage backend: flatfile, sqlite or memory (default flatfile)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newBillCmd(opts))
	cmd.AddCommand(newPatientCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// open builds the stack behind every command: config, store, patient
// directory, engine. The returned stop function closes the store.
func (o *rootOptions) open(cmd *cobra.Command) (*ledger.Ledger, *patient.FileDirectory, func(), error) {
	cfg, err := LoadConfig(".")
	if err != nil {
		return nil, nil, nil, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.store != "" {
		cfg.Store = o.store
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var s store.Store
	switch cfg.Store {
	case "flatfile":
		s = flatfile.New(cfg.DataDir, flatfile.WithLogger(logger))
	case "sqlite":
		s, err = sqlite.Open(filepath.Join(cfg.DataDir, "ledger.db"), sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
	case "memory":
		s = memory.New()
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q (want flatfile, sqlite or memory)", cfg.Store)
	}

	patients, err := patient.OpenFileDirectory(filepath.Join(cfg.DataDir, "patients.txt"), patient.WithFileLogger(logger))
	if err != nil {
		_ = s.Close()
		return nil, nil, nil, fmt.Errorf("opening patient directory: %w", err)
	}

	l := ledger.New(s, patients, ledger.WithLogger(logger))
	if err := l.Start(cmd.Context()); err != nil {
		_ = s.Close()
		return nil, nil, nil, fmt.Errorf("starting ledger: %w", err)
	}

	stop := func() { _ = l.Stop() }
	return l, patients, stop, nil
}
