// internal/domain/catalog/service_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindChangeAllowed(t *testing.T) {
	tests := []struct {
		name        string
		variant     Variant
		movements   int64
		recipeEdges int64
		want        bool
	}{
		{"pristine simple variant", Variant{Kind: VariantKindSimple}, 0, 0, true},
		{"simple with cached stock", Variant{Kind: VariantKindSimple, WarehouseStock: 7}, 0, 0, false},
		{"simple with reserved stock", Variant{Kind: VariantKindSimple, ReservedStock: 2}, 0, 0, false},
		{"simple with ledger history", Variant{Kind: VariantKindSimple}, 3, 0, false},
		{"bundle without recipe", Variant{Kind: VariantKindBundle}, 0, 0, true},
		{"bundle with recipe edges", Variant{Kind: VariantKindBundle}, 0, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kindChangeAllowed(&tt.variant, tt.movements, tt.recipeEdges))
		})
	}
}
