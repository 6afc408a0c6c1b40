package transpile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"non-null assertion", "data!.test", "data.test"},
		{"type assertion", "(data as any).test", "data.test"},
		{"arrow with typed param", "(e: unknown) => handleClick(e as MouseEvent)", "(e) => handleClick(e)"},
		{"call", "handleClick()", "handleClick()"},
		{"identifier cast", "handleClick as () => void", "handleClick"},
		{"object literal", "{ active: isActive as boolean }", "{ active: isActive }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expression(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpression_Invalid(t *testing.T) {
	_, err := Expression("data.")
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"typed identifier", "item: string", "item"},
		{"two params", "item: string, index: number", "item, index"},
		{"destructured", "{ item }: { item: string }", "{ item }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Params(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_RejectsExpressions(t *testing.T) {
	_, err := Params("item as string")
	assert.Error(t, err)
}

func TestEnclosed(t *testing.T) {
	assert.True(t, enclosed("({ a: 1 })"))
	assert.True(t, enclosed(`(")")`))
	assert.False(t, enclosed("(a) + (b)"))
	assert.False(t, enclosed("a"))
}
