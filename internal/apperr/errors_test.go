package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(CodeTransport, "fetch match", errors.New("connection refused"))

	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrRejected)
	assert.Equal(t, "fetch match: connection refused", err.Error())
}

func TestIsSurvivesWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("load: %w", Wrap(CodeConfig, "bad payload", cause))

	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeConfig, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeInvalidMove, "not your turn", map[string]string{"player_index": "2"})
	assert.Equal(t, "2", err.Metadata["player_index"])
	assert.ErrorIs(t, err, ErrInvalidMove)
}
