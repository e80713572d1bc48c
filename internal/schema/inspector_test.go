package schema

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/project"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mk, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mk
}

func TestMysql(t *testing.T) {
	db, mk := newMock(t)
	mk.ExpectQuery(mysqlTableExists).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mk.ExpectQuery(mysqlTableExists).
		WithArgs("shop", "ghosts").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mk.ExpectQuery(mysqlColumns).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "column_type", "is_nullable", "character_maximum_length", "column_key"}).
			AddRow("id", "int", "int(10) unsigned", "NO", nil, "PRI").
			AddRow("email", "varchar", "varchar(120)", "NO", 120, "").
			AddRow("status", "enum", "enum('active','inactive')", "YES", 8, ""))

	m := NewMysql(db)
	ctx := context.Background()
	ok, err := m.TableExists(ctx, "users", "shop")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = m.TableExists(ctx, "ghosts", "shop")
	require.NoError(t, err)
	require.False(t, ok)

	columns, err := m.DescribeColumns(ctx, "users", "shop")
	require.NoError(t, err)
	require.Equal(t, []model.Column{
		{Name: "id", Type: model.ColumnInteger, Annotation: "int(10) unsigned", Constraints: model.Constraints{Primary: true}},
		{Name: "email", Type: model.ColumnVarchar, Annotation: "varchar(120)", Constraints: model.Constraints{Size: 120}},
		{Name: "status", Type: model.ColumnChar, Annotation: "enum('active','inactive')", Constraints: model.Constraints{Nullable: true, Size: 8}},
	}, columns)
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestMysqlQueryError(t *testing.T) {
	db, mk := newMock(t)
	boom := errors.New("boom")
	mk.ExpectQuery(mysqlTableExists).WithArgs("shop", "users").WillReturnError(boom)
	mk.ExpectQuery(mysqlColumns).WithArgs("shop", "users").WillReturnError(boom)

	m := NewMysql(db)
	_, err := m.TableExists(context.Background(), "users", "shop")
	require.ErrorIs(t, err, boom)
	_, err = m.DescribeColumns(context.Background(), "users", "shop")
	require.ErrorIs(t, err, boom)
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestPostgres(t *testing.T) {
	db, mk := newMock(t)
	mk.ExpectQuery(postgresTableExists).
		WithArgs("public", "robots").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mk.ExpectQuery(postgresColumns).
		WithArgs("public", "robots").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "character_maximum_length"}).
			AddRow("id", "integer", "NO", nil).
			AddRow("name", "character varying", "NO", 70).
			AddRow("price", "numeric", "YES", nil))

	p := NewPostgres(db)
	ctx := context.Background()
	ok, err := p.TableExists(ctx, "robots", "public")
	require.NoError(t, err)
	require.True(t, ok)

	columns, err := p.DescribeColumns(ctx, "robots", "public")
	require.NoError(t, err)
	require.Equal(t, []model.Column{
		{Name: "id", Type: model.ColumnInteger, Annotation: "integer"},
		{Name: "name", Type: model.ColumnVarchar, Annotation: "character varying(70)", Constraints: model.Constraints{Size: 70}},
		{Name: "price", Type: model.ColumnDecimal, Annotation: "numeric", Constraints: model.Constraints{Nullable: true}},
	}, columns)
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestSqlite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop#1.db")
	setup, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = setup.ExecContext(ctx, `CREATE TABLE "order items" (
		id INTEGER PRIMARY KEY,
		email VARCHAR(120) NOT NULL,
		status CHAR(8),
		price DECIMAL(10,2),
		payload BLOB
	)`)
	require.NoError(t, err)
	require.NoError(t, setup.Close())

	insp, err := Open(ctx, &project.Database{Adapter: AdapterSqlite, DBName: path})
	require.NoError(t, err)
	defer func() { require.NoError(t, insp.Close()) }()

	_, err = insp.(*Sqlite).db.ExecContext(ctx, `CREATE TABLE scratch (id INTEGER)`)
	require.Error(t, err, "inspection must not write to the database")

	ok, err := insp.TableExists(ctx, "order items", "ignored")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = insp.TableExists(ctx, "orders", "")
	require.NoError(t, err)
	require.False(t, ok)

	columns, err := insp.DescribeColumns(ctx, "order items", "")
	require.NoError(t, err)
	require.Equal(t, []model.Column{
		{Name: "id", Type: model.ColumnInteger, Annotation: "INTEGER", Constraints: model.Constraints{Nullable: true, Primary: true}},
		{Name: "email", Type: model.ColumnVarchar, Annotation: "VARCHAR(120)", Constraints: model.Constraints{Size: 120}},
		{Name: "status", Type: model.ColumnChar, Annotation: "CHAR(8)", Constraints: model.Constraints{Nullable: true, Size: 8}},
		{Name: "price", Type: model.ColumnDecimal, Annotation: "DECIMAL(10,2)", Constraints: model.Constraints{Nullable: true, Size: 10}},
		{Name: "payload", Type: model.ColumnOther, Annotation: "BLOB", Constraints: model.Constraints{Nullable: true}},
	}, columns)
}

func TestOpenSqliteMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.db")
	_, err := Open(context.Background(), &project.Database{Adapter: AdapterSqlite, DBName: path})
	require.Error(t, err)
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), &project.Database{Adapter: "Oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Oracle")
	require.False(t, Supported("Oracle"))
	require.True(t, Supported(AdapterPostgresql))
}

func TestDSN(t *testing.T) {
	require.Equal(t, "tcp(localhost:3306)/shop", mysqlDSN(&project.Database{DBName: "shop"}))
	dsn := mysqlDSN(&project.Database{Host: "db", Port: 3307, Username: "root", Password: "secret", DBName: "shop", Charset: "utf8mb4"})
	require.True(t, strings.HasPrefix(dsn, "root:secret@tcp(db:3307)/shop?"), dsn)
	require.Contains(t, dsn, "charset=utf8mb4")

	require.Equal(t, "file:/srv/app/shop.db?mode=ro", sqliteDSN("/srv/app/shop.db"))
	require.Equal(t, "file:/srv/a%3fb%23c%25d.db?mode=ro", sqliteDSN("/srv/a?b#c%d.db"))

	require.Equal(t, "postgres://localhost:5432/shop", postgresDSN(&project.Database{DBName: "shop"}))
	require.Equal(t, "postgres://app:pw@db:5433/shop", postgresDSN(&project.Database{Host: "db", Port: 5433, Username: "app", Password: "pw", DBName: "shop"}))
}
