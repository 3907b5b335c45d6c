package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("invalid_request_error: prompt too long"), false},
		{"auth failure", errors.New("authentication_error: invalid x-api-key"), false},
		{"explicit transient", NewTransientError(errors.New("upstream hiccup"), 503), true},
		{"wrapped transient", fmt.Errorf("extract: %w", NewTransientError(errors.New("x"), 500)), true},
		{"api overloaded", eris.New("anthropic: create message: overloaded_error: Overloaded"), true},
		{"api rate limited", eris.New("anthropic: create message: rate_limit_error: request quota exceeded"), true},
		{"io timeout", errors.New("read tcp 10.0.0.2:54321: i/o timeout"), true},
		{"connection reset", errors.New("write: connection reset by peer"), true},
		{"dns failure", errors.New("dial tcp: lookup api.anthropic.com: no such host"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientNetTimeout(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(fmt.Errorf("dial: %w", errTimeoutNet{})))
}

func TestIsTransientSyscallErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, IsTransient(fmt.Errorf("write: %w", syscall.ECONNRESET)))
}

// errTimeoutNet satisfies net.Error with Timeout() true.
type errTimeoutNet struct{}

func (errTimeoutNet) Error() string   { return "deadline exceeded" }
func (errTimeoutNet) Timeout() bool   { return true }
func (errTimeoutNet) Temporary() bool { return true }

func TestTransientErrorChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	te := NewTransientError(inner, 529)

	assert.Equal(t, "boom", te.Error())
	assert.True(t, errors.Is(te, inner))

	var unwrapped *TransientError
	require.True(t, errors.As(fmt.Errorf("outer: %w", te), &unwrapped))
	assert.Equal(t, 529, unwrapped.StatusCode)
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
