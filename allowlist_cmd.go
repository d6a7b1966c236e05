package main

import (
	"codeberg.org/miketth/kanatafocus/pkg/allowlist/sqlite"
	"fmt"
	"github.com/spf13/cobra"
	"io"
)

// newAllowListCmd manages the lists kept in the database, for setups using
// `db: true` instead of a file or directory.
func newAllowListCmd(f *flags) *cobra.Command {
	var layers bool

	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage the allow-list database",
	}
	cmd.PersistentFlags().BoolVar(&layers, "layers", false, "operate on the per-application layer list instead of the allow-list")

	listName := func() string {
		if layers {
			return sqlite.LayerList
		}
		return sqlite.AllowList
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the entries of a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, f, func(store *sqlite.Store) error {
				return printList(cmd, store, listName(), cmd.OutOrStdout())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Add entries to a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, f, func(store *sqlite.Store) error {
				for _, name := range args {
					if err := store.Add(cmd.Context(), listName(), name); err != nil {
						return fmt.Errorf("add %q: %w", name, err)
					}
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove NAME...",
		Short: "Remove entries from a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, f, func(store *sqlite.Store) error {
				for _, name := range args {
					removed, err := store.Remove(cmd.Context(), listName(), name)
					if err != nil {
						return fmt.Errorf("remove %q: %w", name, err)
					}
					if !removed {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: not in %s list\n", name, listName())
					}
				}
				return nil
			})
		},
	})

	return cmd
}

// withStore opens the database the daemon would use, honouring --config and
// the database key as well as --database.
func withStore(cmd *cobra.Command, f *flags, fn func(store *sqlite.Store) error) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	store, err := sqlite.NewStore(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open allow-list database: %w", err)
	}
	defer store.Close()

	return fn(store)
}

func printList(cmd *cobra.Command, store *sqlite.Store, list string, w io.Writer) error {
	names, err := store.Names(cmd.Context(), list)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}
