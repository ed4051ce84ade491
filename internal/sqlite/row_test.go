package sqlite

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name string
		col  sql.NullString
		want []string
	}{
		{name: "null", col: sql.NullString{}, want: []string{}},
		{name: "empty", col: validString(""), want: []string{}},
		{name: "json array", col: validString(`["a"," b ",""]`), want: []string{"a", "b"}},
		{name: "comma list", col: validString("a, b,,c"), want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeTags(tt.col))
		})
	}
}

func TestStatementShapes(t *testing.T) {
	assert.Equal(t, len(writeColumns)+1, strings.Count(updateCafeSQL, "= ?"))
	assert.Equal(t, len(writeColumns)+1, strings.Count(insertCafeSQL, "?"))
	assert.Len(t, (&cafeRow{}).values(), len(writeColumns))
	assert.Len(t, (&cafeRow{}).scanTargets(), len(writeColumns)+2)
}
