package monitor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("token exchange failed")

	assert.Equal(t, KindProviderError, KindOf(NewFailure(KindProviderError, "oauth_callback", base)))
	assert.Equal(t, KindUnknown, KindOf(base))
	assert.Equal(t, KindUnknown, KindOf(nil))

	// Classification survives wrapping by callers.
	wrapped := fmt.Errorf("handle callback: %w", NewFailure(KindStateMismatch, "oauth_callback", base))
	assert.Equal(t, KindStateMismatch, KindOf(wrapped))
}

func TestFailureError(t *testing.T) {
	base := errors.New("no such user")

	assert.Equal(t, "login: no such user", NewFailure(KindInvalidCredentials, "login", base).Error())
	assert.Equal(t, "no such user", NewFailure(KindInvalidCredentials, "", base).Error())
	assert.Equal(t, "SessionExpired", NewFailure(KindSessionExpired, "refresh", nil).Error())
}

func TestFailureUnwrap(t *testing.T) {
	base := errors.New("boom")
	assert.True(t, errors.Is(NewFailure(KindCallbackError, "cb", base), base))
}

func TestStackOf(t *testing.T) {
	f := NewFailure(KindProviderError, "login", errors.New("x"))
	assert.Contains(t, StackOf(f), "errors_test.go")
	assert.Empty(t, StackOf(errors.New("unclassified")))
	assert.Empty(t, StackOf(nil))
}
