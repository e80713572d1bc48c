package generator

import "github.com/cmmoran/modelgen/internal/model"

// PHPType returns the PHP scalar used for a column type. Unknown types are strings.
func PHPType(t model.ColumnType) string {
	switch t {
	case model.ColumnInteger:
		return "integer"
	case model.ColumnDecimal, model.ColumnFloat:
		return "double"
	case model.ColumnDate, model.ColumnVarchar, model.ColumnDatetime, model.ColumnChar, model.ColumnText:
		return "string"
	default:
		return "string"
	}
}
