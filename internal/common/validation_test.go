package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		docName string
		wantErr string
	}{
		{"valid", "/data/materiais", "lista.pdf", ""},
		{"missing input", "  ", "lista.pdf", "input_path is required"},
		{"document with directory", "/data", "out/lista.pdf", "without directories"},
		{"document too long", "/data", strings.Repeat("a", 256), "at most 255"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator().
				Field("input_path", tt.input, Required).
				Field("document_name", tt.docName, Required, FileName, MaxLength(255))
			err := v.Err()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Empty(t, v.ErrorMessage())
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatorCollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("input_path", "", Required).
		Field("document_name", `a\b`, FileName)
	assert.Len(t, v.Errors(), 2)
	assert.Equal(t, 1, strings.Count(v.ErrorMessage(), ";"))
}

func TestNonNegative(t *testing.T) {
	assert.Nil(t, NonNegative("thickness", 0))
	assert.Nil(t, NonNegative("thickness", 18))
	assert.NotNil(t, NonNegative("thickness", -1))
	assert.NotNil(t, NonNegative("thickness", "18"))
}
