package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/modelgen/internal/model"
)

func TestPHPType(t *testing.T) {
	for typ, want := range map[model.ColumnType]string{
		model.ColumnInteger:  "integer",
		model.ColumnDecimal:  "double",
		model.ColumnFloat:    "double",
		model.ColumnDate:     "string",
		model.ColumnVarchar:  "string",
		model.ColumnDatetime: "string",
		model.ColumnChar:     "string",
		model.ColumnText:     "string",
		model.ColumnOther:    "string",
		model.ColumnType(99): "string",
	} {
		require.Equal(t, want, PHPType(typ), typ.String())
	}
}
