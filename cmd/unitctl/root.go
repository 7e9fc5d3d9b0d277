package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/unit"
	"github.com/AnatoleLucet/unit/store"
)

type rootOptions struct {
	backend string
	path    string
	verbose bool

	log zerolog.Logger
}

type closableStore interface {
	unit.Store
	io.Closer
}

func newRootCommand(log zerolog.Logger) *cobra.Command {
	opts := &rootOptions{log: log}

	cmd := &cobra.Command{
		Use:           "unitctl",
		Short:         "Inspect persisted units",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := zerolog.InfoLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			opts.log = opts.log.Level(level)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "sqlite", "store backend (sqlite or badger)")
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "database file (sqlite) or directory (badger)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkPersistentFlagRequired("path")

	cmd.AddCommand(
		newKeysCommand(opts),
		newGetCommand(opts),
		newRmCommand(opts),
		newClearCommand(opts),
	)

	return cmd
}

func (o *rootOptions) open() (closableStore, error) {
	o.log.Debug().Str("backend", o.backend).Str("path", o.path).Msg("opening store")

	switch o.backend {
	case "sqlite":
		return store.OpenSQLite(o.path)
	case "badger":
		return store.OpenBadger(store.BadgerConfig{Path: o.path, SyncWrites: true, Logger: &o.log})
	default:
		return nil, fmt.Errorf("unknown backend %q", o.backend)
	}
}

// withStore opens the store for the duration of fn.
func (o *rootOptions) withStore(fn func(unit.Store) error) (err error) {
	s, err := o.open()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	return fn(s)
}

func newKeysCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List persisted unit ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withStore(func(s unit.Store) error {
				ids, err := unit.PersistedKeys(s)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the persisted value of a unit as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s unit.Store) error {
				raw, ok := unit.ReadPersisted(s, args[0])
				if !ok {
					return fmt.Errorf("no persisted value for %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			})
		},
	}
}

func newRmCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove persisted units",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s unit.Store) error {
				for _, id := range args {
					if err := unit.RemovePersisted(s, id); err != nil {
						return err
					}
					opts.log.Debug().Str("unit", id).Msg("removed")
				}
				return nil
			})
		},
	}
}

func newClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every persisted unit, leaving other keys alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withStore(func(s unit.Store) error {
				ids, err := unit.PersistedKeys(s)
				if err != nil {
					return err
				}
				if err := unit.ClearPersisted(s); err != nil {
					return err
				}
				opts.log.Info().Int("removed", len(ids)).Msg("cleared persisted units")
				return nil
			})
		},
	}
}
