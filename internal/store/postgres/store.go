// Package postgres implements the reference and record stores on top of an
// ERP PostgreSQL database using pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// DBTX is the query surface shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a DBTX that can start transactions, such as *pgxpool.Pool.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options configure a Store.
type Options struct {
	CompanyID int64  // Company whose accounts and warehouse are used (default 1)
	Lang      string // Language of field labels (default "en_US")
}

// Store implements core.ReferenceStore and core.RecordStore.
type Store struct {
	db        DB
	companyID int64
	lang      string
}

// New creates a Store.
func New(db DB, opts Options) *Store {
	if opts.CompanyID == 0 {
		opts.CompanyID = 1
	}
	if opts.Lang == "" {
		opts.Lang = "en_US"
	}
	return &Store{db: db, companyID: opts.CompanyID, lang: opts.Lang}
}

// Capabilities reports which optional fields the database supports:
// SIREN/SIRET columns on partners and the point of sale category table.
func (s *Store) Capabilities(ctx context.Context) (core.Capabilities, error) {
	var caps core.Capabilities
	var err error

	if caps.SupportsSiren, err = s.columnExists(ctx, "res_partner", "siren"); err != nil {
		return caps, err
	}
	if caps.SupportsSiret, err = s.columnExists(ctx, "res_partner", "siret"); err != nil {
		return caps, err
	}
	if caps.SupportsPOS, err = s.tableExists(ctx, "pos_category"); err != nil {
		return caps, err
	}
	return caps, nil
}

func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(ctx, sqlTableExists, table).Scan(&ok); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return ok, nil
}

func (s *Store) columnExists(ctx context.Context, table, column string) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(ctx, sqlColumnExists, table, column).Scan(&ok); err != nil {
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	return ok, nil
}

var (
	_ core.ReferenceStore = (*Store)(nil)
	_ core.RecordStore    = (*Store)(nil)
)

var (
	_ core.ReferenceStore = (*Store)(nil)
	_ core.RecordStore    = (*Store)(nil)
)
