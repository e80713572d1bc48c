package schema

import (
	"strings"

	"github.com/cmmoran/modelgen/internal/model"
)

// Classify maps a raw database type name onto the closed column type set.
// Only the base name matters; length and precision suffixes are ignored.
func Classify(raw string) model.ColumnType {
	base := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	base = strings.TrimSuffix(base, " unsigned")

	switch base {
	case "int", "integer", "tinyint", "smallint", "mediumint", "bigint", "int2", "int4", "int8",
		"serial", "bigserial", "smallserial":
		return model.ColumnInteger
	case "decimal", "numeric", "money":
		return model.ColumnDecimal
	case "float", "double", "real", "double precision", "float4", "float8":
		return model.ColumnFloat
	case "date":
		return model.ColumnDate
	case "varchar", "character varying", "varchar2", "nvarchar":
		return model.ColumnVarchar
	case "datetime", "timestamp", "timestamp without time zone", "timestamp with time zone", "timestamptz":
		return model.ColumnDatetime
	case "char", "character", "bpchar", "nchar", "enum":
		return model.ColumnChar
	case "text", "tinytext", "mediumtext", "longtext", "clob":
		return model.ColumnText
	}
	return model.ColumnOther
}
