package proof

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_Passed(t *testing.T) {
	assert.True(t, agreed().Passed())
	assert.False(t, failed(CodeStateMismatch, reasonStateMismatch).Passed())
	assert.False(t, errored("query proof", fmt.Errorf("boom")).Passed())
}

func TestOutcome_Retryable(t *testing.T) {
	// Only a not-yet-visible proof is retryable; every other failure is
	// terminal and must be surfaced, never silently retried.
	for _, code := range []Code{CodeNoPrincipal, CodeNoProofKey, CodePrincipalMismatch, CodeStateMismatch, CodeError} {
		assert.False(t, Outcome{Code: code}.Retryable(), "code %s", code)
	}
	assert.True(t, Outcome{Code: CodeProofMissing}.Retryable())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "agreed", agreed().String())
	assert.Equal(t, "STATE_MISMATCH: proof does not match update",
		failed(CodeStateMismatch, reasonStateMismatch).String())
	assert.Equal(t, "ERROR: query proof: boom",
		errored("query proof", fmt.Errorf("boom")).String())
}
