package sqlite

import (
	"codeberg.org/miketth/kanatafocus/pkg/allowlist"
	"codeberg.org/miketth/kanatafocus/pkg/allowlist/sqlite/migrations"
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Names of the lists kept in the entries table.
const (
	AllowList = "allow"
	LayerList = "layers"
)

type Store struct {
	db      *sql.DB
	querier *Queries
}

func NewStore(filename string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	version, err := migrations.Migrate(db, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("opened allow-list database %s (schema v%d)", filename, version)

	return &Store{
		db:      db,
		querier: New(db),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Names(ctx context.Context, list string) ([]string, error) {
	names, err := s.querier.GetEntries(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	return names, nil
}

func (s *Store) Add(ctx context.Context, list, name string) error {
	if err := s.querier.AddEntry(ctx, AddEntryParams{List: list, Name: name}); err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

// Remove deletes name from list and reports whether it was present.
func (s *Store) Remove(ctx context.Context, list, name string) (bool, error) {
	n, err := s.querier.RemoveEntry(ctx, RemoveEntryParams{List: list, Name: name})
	if err != nil {
		return false, fmt.Errorf("sqlite delete: %w", err)
	}
	return n > 0, nil
}

// Provider returns an allow-list provider reading the named list. Every
// Resolve queries the database.
func (s *Store) Provider(list string) allowlist.Provider {
	return listProvider{store: s, list: list}
}

type listProvider struct {
	store *Store
	list  string
}

func (p listProvider) Resolve() (allowlist.Set, error) {
	names, err := p.store.Names(context.Background(), p.list)
	if err != nil {
		return nil, err
	}
	return allowlist.NewSet(names...), nil
}
