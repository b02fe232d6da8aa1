package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIngredientStatement(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      []string
	}{
		{
			name:      "plain comma list with trailing period",
			statement: "Water, Sugar, Salt.",
			want:      []string{"Water", "Sugar", "Salt"},
		},
		{
			name:      "parenthetical qualifier dropped",
			statement: "Wheat Flour (Contains 2% or less of Niacin)",
			want:      []string{"Wheat Flour"},
		},
		{
			name:      "empty statement",
			statement: "",
			want:      nil,
		},
		{
			name:      "single character fragment discarded",
			statement: "A",
			want:      nil,
		},
		{
			name:      "mixed noise",
			statement: "Organic Oats (whole grain), , Sea Salt.,  B",
			want:      []string{"Organic Oats", "Sea Salt"},
		},
		{
			// Comma splitting happens before parenthesis handling, so a
			// comma inside a qualifier leaks its tail as a fragment.
			name:      "comma inside qualifier",
			statement: "Milk Chocolate (Sugar, Cocoa Butter), Almonds",
			want:      []string{"Milk Chocolate", "Cocoa Butter)", "Almonds"},
		},
		{
			name:      "multiple trailing periods",
			statement: "Salt..",
			want:      []string{"Salt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIngredientStatement(tt.statement)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
