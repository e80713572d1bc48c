package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/project"
)

const (
	AdapterMysql      = "Mysql"
	AdapterPostgresql = "Postgresql"
	AdapterSqlite     = "Sqlite"
)

// Adapters lists the supported project database adapters.
var Adapters = []string{AdapterMysql, AdapterPostgresql, AdapterSqlite}

// Inspector reads table metadata from a database.
type Inspector interface {
	TableExists(ctx context.Context, table, schema string) (bool, error)
	DescribeColumns(ctx context.Context, table, schema string) ([]model.Column, error)
	Close() error
}

// Opener connects an Inspector for a database configuration.
type Opener func(ctx context.Context, db *project.Database) (Inspector, error)

// Supported reports whether adapter names one of Adapters.
func Supported(adapter string) bool {
	for _, a := range Adapters {
		if a == adapter {
			return true
		}
	}
	return false
}

// Open connects to the configured database and returns the inspector for its adapter.
func Open(ctx context.Context, db *project.Database) (Inspector, error) {
	var (
		driver, dsn string
		wrap        func(*sql.DB) Inspector
	)
	switch db.Adapter {
	case AdapterMysql:
		driver, dsn = "mysql", mysqlDSN(db)
		wrap = func(c *sql.DB) Inspector { return NewMysql(c) }
	case AdapterPostgresql:
		driver, dsn = "pgx", postgresDSN(db)
		wrap = func(c *sql.DB) Inspector { return NewPostgres(c) }
	case AdapterSqlite:
		driver, dsn = "sqlite", sqliteDSN(db.DBName)
		wrap = func(c *sql.DB) Inspector { return NewSqlite(c) }
	default:
		return nil, fmt.Errorf("unsupported adapter %q, expected one of %s", db.Adapter, strings.Join(Adapters, ", "))
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", db.Adapter, err)
	}
	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect %s: %w", db.Adapter, err)
	}
	return wrap(conn), nil
}

// sqlInspector holds the connection shared by every adapter.
type sqlInspector struct {
	db *sql.DB
}

func (s *sqlInspector) Close() error {
	return s.db.Close()
}

func (s *sqlInspector) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
