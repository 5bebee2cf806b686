package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOrdinal(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Primero", 1},
		{"PRIMERA", 1},
		{"primer", 1},
		{"Séptimo", 7},
		{"septimo", 7},
		{"Décimo", 10},
		{"Décimo Primero", 11},
		{"decimo tercero", 13},
		{"Vigésimo Segunda", 22},
		{"Quincuagésimo Noveno", 59},
		{"Último", ordinalLast},
		{"última", ordinalLast},
		{"Decimoquinto", 0}, // fused compounds are not in the table
		{"decimo decimo", 0},
		{"primero segundo", 0},
		{"", 0},
		{"catorce", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveOrdinal(tt.in))
		})
	}
}

func TestNormalizeOrdinalWord(t *testing.T) {
	assert.Equal(t, "decimo", normalizeOrdinalWord("  DÉCIMO "))
	assert.Equal(t, "ultima", normalizeOrdinalWord("Última"))
}
