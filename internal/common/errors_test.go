package common

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMatchesSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"extraction", ExtractionError("open archive", fs.ErrNotExist), ErrExtraction, CodeExtraction},
		{"no data", NoDataError("nothing found"), ErrNoData, CodeNoData},
		{"render", RenderError("write pdf", errors.New("disk full")), ErrRender, CodeRender},
		{"unexpected", UnexpectedError("boom", nil), ErrUnexpected, CodeUnexpected},
		{"invalid input", InvalidInputError("missing path", nil), ErrInvalidInput, CodeInvalidInput},
		{"config", ConfigError("bad rules", nil), ErrConfig, CodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.code, KindOf(tt.err))

			wrapped := fmt.Errorf("job 1: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.code, KindOf(wrapped))
		})
	}
}

func TestAppErrorKeepsCause(t *testing.T) {
	err := ExtractionError("open archive", fs.ErrNotExist)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "open archive: file does not exist", err.Error())
	assert.NotErrorIs(t, err, ErrRender)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "", KindOf(nil))
	assert.Equal(t, CodeUnexpected, KindOf(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))
	err := WrapError(ErrBusy, "start job")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, "start job: a job is already running", err.Error())
}
