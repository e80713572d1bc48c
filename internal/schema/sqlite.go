package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cmmoran/modelgen/internal/model"
)

const sqliteTableExists = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

// Sqlite inspects a SQLite database file. Schema names are ignored.
type Sqlite struct {
	sqlInspector
}

func NewSqlite(db *sql.DB) *Sqlite {
	return &Sqlite{sqlInspector{db: db}}
}

func (s *Sqlite) TableExists(ctx context.Context, table, _ string) (bool, error) {
	n, err := s.count(ctx, sqliteTableExists, table)
	if err != nil {
		return false, fmt.Errorf("sqlite table lookup %s: %w", table, err)
	}
	return n > 0, nil
}

func (s *Sqlite) DescribeColumns(ctx context.Context, table, _ string) ([]model.Column, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("sqlite describe %s: %w", table, err)
	}
	defer rows.Close()

	var columns []model.Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declared   string
			dflt             sql.NullString
		)
		if err = rows.Scan(&cid, &name, &declared, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqlite describe %s: %w", table, err)
		}
		columns = append(columns, model.Column{
			Name:       name,
			Type:       Classify(declared),
			Annotation: declared,
			Constraints: model.Constraints{
				Nullable: notNull == 0,
				Size:     declaredSize(declared),
				Primary:  pk > 0,
			},
		})
	}
	return columns, rows.Err()
}

var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// sqliteDSN opens the file read-only, so a wrong path fails instead of
// leaving an empty database behind.
func sqliteDSN(file string) string {
	return "file:" + uriPath.Replace(file) + "?mode=ro"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// declaredSize returns n from "VARCHAR(n)" style declarations, 0 otherwise.
func declaredSize(declared string) int {
	open := strings.IndexByte(declared, '(')
	end := strings.IndexByte(declared, ')')
	if open < 0 || end < open {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(strings.Split(declared[open+1:end], ",")[0]))
	return n
}
