package builder

import (
	"strings"
)

const (
	DefaultExtends = `\Phalcon\Mvc\Model`
	DefaultLicense = "license.txt"
)

// Options control model generation.
//
// Name              – table to generate the model for (required).
// Force             – overwrite an existing model file.
// ClassName         – class name, defaults to the camelized table name.
// FileName          – base name the class is mapped to; setSource is emitted when it differs from Name.
// Directory         – project directory used to locate the configuration, defaults to ".".
// ModelsDir         – where models live, overrides application.modelsDir from the project config.
// Namespace         – PHP namespace of the generated class.
// DerivedNamespace  – namespace used to qualify relation entities, wins over Namespace.
// GenSettersGetters – protected attributes with fluent setters and getters.
// GenDocMethods     – typed find/findFirst overrides.
// Schema            – explicit schema, overrides the configured database name.
// ExcludeFields     – comma separated columns to leave out of attributes and accessors.
// Extends           – parent class.
// HasMany/BelongsTo – relation declarations.
// MapColumn         – emit an identity columnMap().
// License           – file whose trimmed contents are prepended to the output, if present.
// TypeMap           – scalar type → wrapper class used by getters, empty by default.
type Options struct {
	Name              string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" mapstructure:"name,omitempty"`
	Force             bool              `json:"force,omitempty" yaml:"force,omitempty" toml:"force,omitempty" mapstructure:"force,omitempty"`
	ClassName         string            `json:"className,omitempty" yaml:"className,omitempty" toml:"className,omitempty" mapstructure:"className,omitempty"`
	FileName          string            `json:"fileName,omitempty" yaml:"fileName,omitempty" toml:"fileName,omitempty" mapstructure:"fileName,omitempty"`
	Directory         string            `json:"directory,omitempty" yaml:"directory,omitempty" toml:"directory,omitempty" mapstructure:"directory,omitempty"`
	ModelsDir         string            `json:"modelsDir,omitempty" yaml:"modelsDir,omitempty" toml:"modelsDir,omitempty" mapstructure:"modelsDir,omitempty"`
	Namespace         string            `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty" mapstructure:"namespace,omitempty"`
	DerivedNamespace  string            `json:"derivedNamespace,omitempty" yaml:"derivedNamespace,omitempty" toml:"derivedNamespace,omitempty" mapstructure:"derivedNamespace,omitempty"`
	GenSettersGetters bool              `json:"genSettersGetters,omitempty" yaml:"genSettersGetters,omitempty" toml:"genSettersGetters,omitempty" mapstructure:"genSettersGetters,omitempty"`
	GenDocMethods     bool              `json:"genDocMethods,omitempty" yaml:"genDocMethods,omitempty" toml:"genDocMethods,omitempty" mapstructure:"genDocMethods,omitempty"`
	Schema            string            `json:"schema,omitempty" yaml:"schema,omitempty" toml:"schema,omitempty" mapstructure:"schema,omitempty"`
	ExcludeFields     string            `json:"excludeFields,omitempty" yaml:"excludeFields,omitempty" toml:"excludeFields,omitempty" mapstructure:"excludeFields,omitempty"`
	Extends           string            `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty" mapstructure:"extends,omitempty"`
	HasMany           []Relation        `json:"hasMany,omitempty" yaml:"hasMany,omitempty" toml:"hasMany,omitempty" mapstructure:"hasMany,omitempty"`
	BelongsTo         []Relation        `json:"belongsTo,omitempty" yaml:"belongsTo,omitempty" toml:"belongsTo,omitempty" mapstructure:"belongsTo,omitempty"`
	MapColumn         bool              `json:"mapColumn,omitempty" yaml:"mapColumn,omitempty" toml:"mapColumn,omitempty" mapstructure:"mapColumn,omitempty"`
	License           string            `json:"license,omitempty" yaml:"license,omitempty" toml:"license,omitempty" mapstructure:"license,omitempty"`
	TypeMap           map[string]string `json:"typeMap,omitempty" yaml:"typeMap,omitempty" toml:"typeMap,omitempty" mapstructure:"typeMap,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		Extends: DefaultExtends,
		License: DefaultLicense,
	}
}

// Normalize trims string options and parses relation declarations given in
// their CLI form (fields:Model:referencedFields?key=value).
func (o *Options) Normalize(hasMany, belongsTo []string) error {
	o.Name = strings.TrimSpace(o.Name)
	o.ClassName = strings.TrimSpace(o.ClassName)
	o.FileName = strings.TrimSpace(o.FileName)
	o.Namespace = strings.Trim(strings.TrimSpace(o.Namespace), `\`)
	o.DerivedNamespace = strings.Trim(strings.TrimSpace(o.DerivedNamespace), `\`)
	o.Extends = strings.TrimSpace(o.Extends)
	if len(o.Extends) == 0 {
		o.Extends = DefaultExtends
	}
	if len(o.License) == 0 {
		o.License = DefaultLicense
	}
	for _, s := range hasMany {
		r, err := ParseRelation(s)
		if err != nil {
			return err
		}
		o.HasMany = append(o.HasMany, r)
	}
	for _, s := range belongsTo {
		r, err := ParseRelation(s)
		if err != nil {
			return err
		}
		o.BelongsTo = append(o.BelongsTo, r)
	}
	return nil
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithName(n string) Option              { return func(o *Options) { o.Name = n } }
func WithForce() Option                     { return func(o *Options) { o.Force = true } }
func WithClassName(n string) Option         { return func(o *Options) { o.ClassName = n } }
func WithFileName(n string) Option          { return func(o *Options) { o.FileName = n } }
func WithDirectory(d string) Option         { return func(o *Options) { o.Directory = d } }
func WithModelsDir(d string) Option         { return func(o *Options) { o.ModelsDir = d } }
func WithNamespace(ns string) Option        { return func(o *Options) { o.Namespace = ns } }
func WithDerivedNamespace(ns string) Option { return func(o *Options) { o.DerivedNamespace = ns } }
func WithSettersGetters() Option            { return func(o *Options) { o.GenSettersGetters = true } }
func WithDocMethods() Option                { return func(o *Options) { o.GenDocMethods = true } }
func WithSchema(s string) Option            { return func(o *Options) { o.Schema = s } }
func WithExtends(e string) Option           { return func(o *Options) { o.Extends = e } }
func WithMapColumn() Option                 { return func(o *Options) { o.MapColumn = true } }
func WithLicense(path string) Option        { return func(o *Options) { o.License = path } }
func WithExcludeFields(names ...string) Option {
	return func(o *Options) {
		all := names
		if len(o.ExcludeFields) > 0 {
			all = append([]string{o.ExcludeFields}, names...)
		}
		o.ExcludeFields = strings.Join(all, ",")
	}
}
func WithHasMany(r Relation) Option   { return func(o *Options) { o.HasMany = append(o.HasMany, r) } }
func WithBelongsTo(r Relation) Option { return func(o *Options) { o.BelongsTo = append(o.BelongsTo, r) } }
func WithTypeMap(scalar, wrapper string) Option {
	return func(o *Options) {
		if o.TypeMap == nil {
			o.TypeMap = make(map[string]string)
		}
		o.TypeMap[scalar] = wrapper
	}
}

// New builds Options from defaults and opts.
func New(opts ...Option) *Options {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	return o
}
