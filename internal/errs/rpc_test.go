package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCErrorJSON(t *testing.T) {
	raw, err := json.Marshal(NotAFile("/gpfs/bbp.cscs.ch/project/x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":3,"text":"Not a file: /gpfs/bbp.cscs.ch/project/x"}`, string(raw))
}

func TestMissingAttribute(t *testing.T) {
	e := MissingAttribute("host")
	assert.Equal(t, CodeBadInput, e.Code)
	assert.Equal(t, `Missing mandatory input attribute: "host"!`, e.Text)
}

func TestAsRPCError(t *testing.T) {
	assert.Nil(t, AsRPCError(nil))

	escape := PathEscape("outside")
	wrapped := fmt.Errorf("listing: %w", escape)
	assert.Same(t, escape, AsRPCError(wrapped))

	cause := errors.New("connection refused")
	got := AsRPCError(cause)
	assert.Equal(t, CodeUnexpected, got.Code)
	assert.Equal(t, "connection refused", got.Text)
	assert.ErrorIs(t, got, cause)
}

func TestHTTPErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFoundError("Route not found", false, nil))
	assert.ErrorIs(t, err, &HTTPError{})
	assert.Equal(t, "NOT_FOUND", NewNotFoundError("x", false, nil).Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", NewServiceUnavailableError("down").Code)
}
