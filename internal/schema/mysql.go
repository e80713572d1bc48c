package schema

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/project"
)

const (
	mysqlTableExists = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`
	mysqlColumns     = `SELECT column_name, data_type, column_type, is_nullable, character_maximum_length, column_key
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`
)

// Mysql inspects MySQL and MariaDB through information_schema.
type Mysql struct {
	sqlInspector
}

func NewMysql(db *sql.DB) *Mysql {
	return &Mysql{sqlInspector{db: db}}
}

func (m *Mysql) TableExists(ctx context.Context, table, schema string) (bool, error) {
	n, err := m.count(ctx, mysqlTableExists, schema, table)
	if err != nil {
		return false, fmt.Errorf("mysql table lookup %s.%s: %w", schema, table, err)
	}
	return n > 0, nil
}

// DescribeColumns keeps column_type as the annotation, so enum('a','b')
// columns carry their domain.
func (m *Mysql) DescribeColumns(ctx context.Context, table, schema string) ([]model.Column, error) {
	rows, err := m.db.QueryContext(ctx, mysqlColumns, schema, table)
	if err != nil {
		return nil, fmt.Errorf("mysql describe %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []model.Column
	for rows.Next() {
		var (
			name, dataType, columnType, nullable, key string
			size                                      sql.NullInt64
		)
		if err = rows.Scan(&name, &dataType, &columnType, &nullable, &size, &key); err != nil {
			return nil, fmt.Errorf("mysql describe %s.%s: %w", schema, table, err)
		}
		columns = append(columns, model.Column{
			Name:       name,
			Type:       Classify(dataType),
			Annotation: columnType,
			Constraints: model.Constraints{
				Nullable: nullable == "YES",
				Size:     int(size.Int64),
				Primary:  key == "PRI",
			},
		})
	}
	return columns, rows.Err()
}

func mysqlDSN(db *project.Database) string {
	host, port := db.Host, db.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = db.Username
	cfg.Passwd = db.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = db.DBName
	if db.Charset != "" {
		cfg.Params = map[string]string{"charset": db.Charset}
	}
	return cfg.FormatDSN()
}
