package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/project"
	"github.com/cmmoran/modelgen/internal/schema"
	"github.com/cmmoran/modelgen/pkg/builder"
)

// Request is a fully resolved generation request. It is not modified after Resolve.
type Request struct {
	Table     string
	ClassName string
	FileName  string
	Extends   string

	ProjectPath string
	ModelsDir   string // absolute
	OutputPath  string // <ModelsDir>/<ClassName>.php
	LicensePath string

	Namespace        string
	DerivedNamespace string

	Schema    string
	SetSchema bool // emit setSchema() in initialize

	Force      bool
	Accessors  bool
	DocMethods bool
	MapColumn  bool

	Exclude   map[string]bool // lower-cased column names
	HasMany   []model.Relation
	BelongsTo []model.Relation
	TypeMap   map[string]string

	Database *project.Database
}

// Excluded reports whether column is in the exclusion list, ignoring case.
func (r *Request) Excluded(column string) bool {
	return r.Exclude[strings.ToLower(column)]
}

// RelationNamespace is the namespace relation entities are qualified with.
func (r *Request) RelationNamespace() string {
	if r.DerivedNamespace != "" {
		return r.DerivedNamespace
	}
	return r.Namespace
}

// Resolve validates opts, fills defaults and loads the project configuration
// found under the requested directory.
func Resolve(opts *builder.Options) (*Request, error) {
	if opts == nil || strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("%w: please, specify the model name", builder.ErrConfiguration)
	}

	req := &Request{
		Table:            strings.TrimSpace(opts.Name),
		ClassName:        opts.ClassName,
		FileName:         opts.FileName,
		Extends:          opts.Extends,
		LicensePath:      opts.License,
		Namespace:        namespace(opts.Namespace),
		DerivedNamespace: namespace(opts.DerivedNamespace),
		Force:            opts.Force,
		Accessors:        opts.GenSettersGetters,
		DocMethods:       opts.GenDocMethods,
		MapColumn:        opts.MapColumn,
		Exclude:          parseExclude(opts.ExcludeFields),
		TypeMap:          make(map[string]string, len(opts.TypeMap)),
	}
	if req.ClassName == "" {
		req.ClassName = inflect.Camelize(req.Table)
	}
	if req.FileName == "" {
		req.FileName = req.Table
	}
	if req.Extends == "" {
		req.Extends = builder.DefaultExtends
	}
	for k, v := range opts.TypeMap {
		req.TypeMap[k] = v
	}

	req.ProjectPath = "."
	if opts.Directory != "" {
		req.ProjectPath = opts.Directory
	}

	cfg, err := project.Load(req.ProjectPath)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return nil, fmt.Errorf("%w: builder can't locate the configuration file: %w", builder.ErrConfiguration, err)
		}
		return nil, fmt.Errorf("%w: %w", builder.ErrConfiguration, err)
	}

	modelsDir := opts.ModelsDir
	if modelsDir == "" {
		modelsDir = cfg.Application.ModelsDir
	}
	if modelsDir == "" {
		return nil, fmt.Errorf("%w: builder doesn't know where the models directory is", builder.ErrConfiguration)
	}
	if req.ModelsDir, err = modelsPath(req.ProjectPath, modelsDir); err != nil {
		return nil, fmt.Errorf("%w: models directory: %w", builder.ErrConfiguration, err)
	}
	req.OutputPath = filepath.Join(req.ModelsDir, req.ClassName+".php")

	db := cfg.Database
	if db == nil {
		return nil, fmt.Errorf("%w: database configuration cannot be loaded from %s", builder.ErrConfiguration, cfg.File)
	}
	if db.Adapter == "" {
		return nil, fmt.Errorf("%w: adapter was not found in the config, please specify [database][adapter]", builder.ErrConfiguration)
	}
	if !schema.Supported(db.Adapter) {
		return nil, fmt.Errorf("%w: adapter %q is not supported, use one of %s",
			builder.ErrConfiguration, db.Adapter, strings.Join(schema.Adapters, ", "))
	}
	if db.Adapter == schema.AdapterSqlite {
		if db, err = sqliteDatabase(req.ProjectPath, db); err != nil {
			return nil, err
		}
	}
	req.Database = db

	switch {
	case opts.Schema != "":
		req.Schema = opts.Schema
		req.SetSchema = opts.Schema != db.DBName
	case db.Adapter == schema.AdapterPostgresql:
		req.Schema = "public"
		req.SetSchema = true
	default:
		req.Schema = db.DBName
	}

	ns := req.RelationNamespace()
	if req.HasMany, err = relations(model.HasMany, opts.HasMany, ns); err != nil {
		return nil, err
	}
	if req.BelongsTo, err = relations(model.BelongsTo, opts.BelongsTo, ns); err != nil {
		return nil, err
	}

	return req, nil
}

// sqliteDatabase points a relative database file at the project directory.
// The file must exist; the inspector never creates one.
func sqliteDatabase(projectPath string, db *project.Database) (*project.Database, error) {
	if db.DBName == "" {
		return nil, fmt.Errorf("%w: sqlite needs [database][dbname] to name the database file", builder.ErrConfiguration)
	}
	file := db.DBName
	if !filepath.IsAbs(file) {
		file = filepath.Join(projectPath, file)
	}
	file, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite database %s: %w", builder.ErrConfiguration, db.DBName, err)
	}
	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite database %s: %w", builder.ErrConfiguration, file, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: sqlite database %s is a directory", builder.ErrConfiguration, file)
	}
	resolved := *db
	resolved.DBName = file
	return &resolved, nil
}

// namespace drops surrounding separators, so \App\Models\ becomes App\Models.
func namespace(ns string) string {
	return strings.Trim(strings.TrimSpace(ns), `\`)
}

func modelsPath(projectPath, dir string) (string, error) {
	dir = strings.TrimRight(dir, `/\`)
	if dir == "" {
		dir = string(filepath.Separator)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectPath, dir)
	}
	return filepath.Abs(dir)
}

func parseExclude(s string) map[string]bool {
	out := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out[name] = true
		}
	}
	return out
}

func relations(kind model.RelationKind, decls []builder.Relation, ns string) ([]model.Relation, error) {
	out := make([]model.Relation, 0, len(decls))
	for _, d := range decls {
		if d.Fields == "" || d.Model == "" || d.RelationFields == "" {
			return nil, fmt.Errorf("%w: %s relation needs fields, model and relationFields", builder.ErrConfiguration, kind)
		}
		r := model.Relation{
			Kind:            kind,
			Fields:          d.Fields,
			Entity:          d.Model,
			QualifiedEntity: d.Model,
			ReferencedField: d.RelationFields,
		}

		options := make(map[string]model.OptionValue, len(d.Options)+1)
		for k, v := range d.Options {
			options[k] = optionValue(v)
		}
		if ns != "" {
			r.QualifiedEntity = ns + `\` + d.Model
			if _, ok := options["alias"]; !ok {
				options["alias"] = model.Text(d.Model)
			}
		}

		keys := make([]string, 0, len(options))
		for k := range options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.Options = append(r.Options, model.RelationOption{Key: k, Value: options[k]})
		}
		out = append(out, r)
	}
	return out, nil
}

var numeric = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// optionValue tags a loosely typed option: booleans stay booleans, numbers
// and numeric strings render unquoted, anything else is text.
func optionValue(v any) model.OptionValue {
	switch x := v.(type) {
	case bool:
		return model.Bool(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return model.Number(fmt.Sprint(x))
	case string:
		if numeric.MatchString(x) {
			return model.Number(x)
		}
		return model.Text(x)
	case nil:
		return model.Text("")
	}
	return model.Text(fmt.Sprint(v))
}
