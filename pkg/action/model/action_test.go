package model_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/project"
	"github.com/cmmoran/modelgen/internal/schema"
	action "github.com/cmmoran/modelgen/pkg/action/model"
	"github.com/cmmoran/modelgen/pkg/builder"
)

type fakeInspector struct {
	tables map[string][]model.Column
	closed bool
}

func (f *fakeInspector) TableExists(_ context.Context, table, _ string) (bool, error) {
	_, ok := f.tables[table]
	return ok, nil
}

func (f *fakeInspector) DescribeColumns(_ context.Context, table, _ string) ([]model.Column, error) {
	return f.tables[table], nil
}

func (f *fakeInspector) Close() error {
	f.closed = true
	return nil
}

// opener counts how often the database was opened.
type opener struct {
	insp  *fakeInspector
	calls int
}

func (o *opener) open(context.Context, *project.Database) (schema.Inspector, error) {
	o.calls++
	return o.insp, nil
}

func newOpener() *opener {
	return &opener{insp: &fakeInspector{tables: map[string][]model.Column{
		"users": {
			{Name: "id", Type: model.ColumnInteger, Annotation: "int(11)"},
			{Name: "email", Type: model.ColumnVarchar, Annotation: "varchar(255)"},
			{Name: "status", Type: model.ColumnChar, Annotation: "enum('active','inactive')"},
		},
	}}}
}

func newProject(t *testing.T, database string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app", "config", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg), 0o755))
	require.NoError(t, os.WriteFile(cfg, []byte("application:\n  modelsDir: models/\ndatabase:\n"+database), 0o644))
	return dir
}

func usersOptions(dir string, extra ...builder.Option) *builder.Options {
	return builder.New(append([]builder.Option{
		builder.WithName("users"),
		builder.WithDirectory(dir),
		builder.WithModelsDir("models/"),
		builder.WithSettersGetters(),
	}, extra...)...)
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

const mysqlDatabase = "  adapter: Mysql\n  dbname: shop\n"

func TestRunUsers(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	o := newOpener()

	path, err := action.Run(context.Background(), usersOptions(dir), o.open)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "models", "Users.php"), path)
	require.True(t, o.insp.closed)

	src := read(t, path)
	require.Equal(t, 3, strings.Count(src, "    protected $"))
	require.Equal(t, 3, strings.Count(src, "public function set"))
	require.Equal(t, 3, strings.Count(src, "public function get"))
	require.Equal(t, 1, strings.Count(src, "public function validation()"))
	require.Equal(t, 1, strings.Count(src, "new Email("))
	require.Equal(t, 1, strings.Count(src, "'domain'   => array('active', 'inactive')"))
	require.Equal(t, 1, strings.Count(src, "validationHasFailed"))
	require.Less(t, strings.Index(src, "new Email("), strings.Index(src, "validationHasFailed"))
}

func TestRunConflict(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	existing := filepath.Join(dir, "models", "Users.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("<?php\n"), 0o644))
	o := newOpener()

	_, err := action.Run(context.Background(), usersOptions(dir), o.open)
	require.True(t, errors.Is(err, builder.ErrConflict), "got %v", err)
	require.Zero(t, o.calls, "the database must not be inspected")
	require.Equal(t, "<?php\n", read(t, existing))
}

func TestRunMissingTable(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	o := newOpener()

	_, err := action.Run(context.Background(), usersOptions(dir, builder.WithName("ghosts")), o.open)
	require.True(t, errors.Is(err, builder.ErrSchema), "got %v", err)
	require.True(t, o.insp.closed)
	_, err = os.Stat(filepath.Join(dir, "models", "Ghosts.php"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunOpenError(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	boom := errors.New("connection refused")
	_, err := action.Run(context.Background(), usersOptions(dir), func(context.Context, *project.Database) (schema.Inspector, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestRunIdempotent(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	opts := usersOptions(dir, builder.WithForce(), builder.WithDocMethods(), builder.WithMapColumn(), builder.WithNamespace(`App\Models`),
		builder.WithHasMany(builder.Relation{Fields: "id", Model: "Posts", RelationFields: "user_id", Options: map[string]any{"reusable": true}}))

	path, err := action.Run(context.Background(), opts, newOpener().open)
	require.NoError(t, err)
	first := read(t, path)

	_, err = action.Run(context.Background(), opts, newOpener().open)
	require.NoError(t, err)
	second := read(t, path)
	require.Empty(t, cmp.Diff(first, second))
}

func TestRunPreservesCustomMethods(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	opts := usersOptions(dir, builder.WithForce())

	path, err := action.Run(context.Background(), opts, newOpener().open)
	require.NoError(t, err)

	custom := "    /**\n     * Keep me.\n     */\n    public function doSomethingCustom()\n    {\n        return \"}\" . 42;\n    }\n"
	edited := strings.TrimSuffix(read(t, path), "}\n") + custom + "}\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	_, err = action.Run(context.Background(), opts, newOpener().open)
	require.NoError(t, err)
	second := read(t, path)
	require.Equal(t, 1, strings.Count(second, custom))
	require.Equal(t, 1, strings.Count(second, "public function setEmail("))

	_, err = action.Run(context.Background(), opts, newOpener().open)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(second, read(t, path)))
}

func TestRunSuppressesInitialize(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	path := filepath.Join(dir, "models", "Users.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`<?php

class Users extends \Phalcon\Mvc\Model
{
    public function initialize()
    {
        $this->useDynamicUpdate(true);
    }

    public function validation()
    {
        return true;
    }
}
`), 0o644))

	_, err := action.Run(context.Background(), usersOptions(dir, builder.WithForce(), builder.WithFileName("members")), newOpener().open)
	require.NoError(t, err)
	src := read(t, path)
	require.Equal(t, 1, strings.Count(src, "function initialize()"))
	require.NotContains(t, src, "useDynamicUpdate")
	require.Contains(t, src, "$this->setSource('users');")
	require.Equal(t, 1, strings.Count(src, "function validation()"))
	require.Contains(t, src, "    public function validation()\n    {\n        return true;\n    }\n")
	require.NotContains(t, src, "validationHasFailed")
}

func TestRunUnreadableExistingFile(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	path := filepath.Join(dir, "models", "Users.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<?php\nclass Users {\n    public function broken() {\n"), 0o644))

	_, err := action.Run(context.Background(), usersOptions(dir, builder.WithForce()), newOpener().open)
	require.NoError(t, err)
	src := read(t, path)
	require.NotContains(t, src, "broken")
	require.Contains(t, src, "public function getStatus()")
}

func TestGenerateSqlite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE robots (id INTEGER PRIMARY KEY, name VARCHAR(70) NOT NULL, price DECIMAL(10,2), created_at DATETIME)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	dir := newProject(t, fmt.Sprintf("  adapter: Sqlite\n  dbname: %q\n", dbPath))
	path, err := action.Generate(ctx, builder.New(builder.WithName("robots"), builder.WithDirectory(dir), builder.WithExcludeFields("created_at")))
	require.NoError(t, err)

	src := read(t, path)
	require.True(t, strings.HasPrefix(src, "<?php\n\nclass Robots extends \\Phalcon\\Mvc\\Model\n{\n"), src)
	require.Contains(t, src, "     * @var integer\n     */\n    public $id;")
	require.Contains(t, src, "     * @var string\n     */\n    public $name;")
	require.Contains(t, src, "     * @var double\n     */\n    public $price;")
	require.NotContains(t, src, "created_at")
}

func TestRunDropsAccessorsDeclaredInOtherCase(t *testing.T) {
	dir := newProject(t, mysqlDatabase)
	path := filepath.Join(dir, "models", "Users.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`<?php

class Users extends \Phalcon\Mvc\Model
{
    public function getemail()
    {
        return strtolower($this->email);
    }
}
`), 0o644))

	_, err := action.Run(context.Background(), usersOptions(dir, builder.WithForce()), newOpener().open)
	require.NoError(t, err)
	src := read(t, path)
	require.Equal(t, 1, strings.Count(strings.ToLower(src), "function getemail("))
	require.Contains(t, src, "public function getEmail()")
	require.NotContains(t, src, "strtolower")
}

func TestGenerateSqliteRelativeToProject(t *testing.T) {
	ctx := context.Background()
	dir := newProject(t, "  adapter: Sqlite\n  dbname: data/shop.db\n")
	dbPath := filepath.Join(dir, "data", "shop.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), 0o755))
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE robots (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// run from somewhere other than the project
	t.Chdir(t.TempDir())
	path, err := action.Generate(ctx, builder.New(builder.WithName("robots"), builder.WithDirectory(dir)))
	require.NoError(t, err)
	require.Contains(t, read(t, path), "public $id;")
}

func TestGenerateSqliteMissingFile(t *testing.T) {
	dir := newProject(t, "  adapter: Sqlite\n  dbname: typo.db\n")
	cwd := t.TempDir()
	t.Chdir(cwd)

	_, err := action.Generate(context.Background(), builder.New(builder.WithName("robots"), builder.WithDirectory(dir)))
	require.True(t, errors.Is(err, builder.ErrConfiguration), "got %v", err)
	for _, d := range []string{dir, cwd} {
		_, err = os.Stat(filepath.Join(d, "typo.db"))
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}
