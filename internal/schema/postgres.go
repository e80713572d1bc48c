package schema

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/project"
)

const (
	postgresTableExists = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`
	postgresColumns     = `SELECT column_name, data_type, is_nullable, character_maximum_length
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`
)

// Postgres inspects PostgreSQL through information_schema using the pgx driver.
type Postgres struct {
	sqlInspector
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{sqlInspector{db: db}}
}

func (p *Postgres) TableExists(ctx context.Context, table, schema string) (bool, error) {
	n, err := p.count(ctx, postgresTableExists, schema, table)
	if err != nil {
		return false, fmt.Errorf("postgres table lookup %s.%s: %w", schema, table, err)
	}
	return n > 0, nil
}

func (p *Postgres) DescribeColumns(ctx context.Context, table, schema string) ([]model.Column, error) {
	rows, err := p.db.QueryContext(ctx, postgresColumns, schema, table)
	if err != nil {
		return nil, fmt.Errorf("postgres describe %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []model.Column
	for rows.Next() {
		var (
			name, dataType, nullable string
			size                     sql.NullInt64
		)
		if err = rows.Scan(&name, &dataType, &nullable, &size); err != nil {
			return nil, fmt.Errorf("postgres describe %s.%s: %w", schema, table, err)
		}
		annotation := dataType
		if size.Valid {
			annotation = fmt.Sprintf("%s(%d)", dataType, size.Int64)
		}
		columns = append(columns, model.Column{
			Name:       name,
			Type:       Classify(dataType),
			Annotation: annotation,
			Constraints: model.Constraints{
				Nullable: nullable == "YES",
				Size:     int(size.Int64),
			},
		})
	}
	return columns, rows.Err()
}

func postgresDSN(db *project.Database) string {
	host, port := db.Host, db.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + db.DBName,
	}
	if db.Username != "" {
		u.User = url.UserPassword(db.Username, db.Password)
	}
	return u.String()
}
