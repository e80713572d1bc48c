package model

import "strings"

// ColumnType is the closed set of column types the generator distinguishes.
type ColumnType int

const (
	ColumnOther ColumnType = iota
	ColumnInteger
	ColumnDecimal
	ColumnFloat
	ColumnDate
	ColumnVarchar
	ColumnDatetime
	ColumnChar
	ColumnText
)

var columnTypeNames = map[ColumnType]string{
	ColumnOther:    "other",
	ColumnInteger:  "integer",
	ColumnDecimal:  "decimal",
	ColumnFloat:    "float",
	ColumnDate:     "date",
	ColumnVarchar:  "varchar",
	ColumnDatetime: "datetime",
	ColumnChar:     "char",
	ColumnText:     "text",
}

func (t ColumnType) String() string {
	if s, ok := columnTypeNames[t]; ok {
		return s
	}
	return "other"
}

// Constraints are passed through from the inspector untouched.
type Constraints struct {
	Nullable bool
	Size     int
	Primary  bool
}

type Column struct {
	Name        string     // column identifier as stored in the database
	Type        ColumnType // classified type
	Annotation  string     // raw declared type, e.g. "enum('a','b')" or "varchar(255)"
	Constraints Constraints
}

type RelationKind int

const (
	HasMany RelationKind = iota
	BelongsTo
)

func (k RelationKind) String() string {
	if k == BelongsTo {
		return "belongsTo"
	}
	return "hasMany"
}

// OptionKind tags the variant held by an OptionValue.
type OptionKind int

const (
	OptionText OptionKind = iota
	OptionBool
	OptionNumber
)

// OptionValue is a relation option rendered as a PHP literal.
// Number keeps its literal text so 1.50 stays 1.50.
type OptionValue struct {
	Kind OptionKind
	Text string
	Bool bool
}

func Text(s string) OptionValue   { return OptionValue{Kind: OptionText, Text: s} }
func Bool(b bool) OptionValue     { return OptionValue{Kind: OptionBool, Bool: b} }
func Number(n string) OptionValue { return OptionValue{Kind: OptionNumber, Text: n} }

// PHP renders the value as PHP source.
func (v OptionValue) PHP() string {
	switch v.Kind {
	case OptionBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case OptionNumber:
		return v.Text
	default:
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
		return "'" + r.Replace(v.Text) + "'"
	}
}

type RelationOption struct {
	Key   string
	Value OptionValue
}

type Relation struct {
	Kind            RelationKind
	Fields          string // local field
	Entity          string // referenced model name, unqualified
	QualifiedEntity string // namespace-prefixed entity
	ReferencedField string
	Options         []RelationOption // ordered by key
}
