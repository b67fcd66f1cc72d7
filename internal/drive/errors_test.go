package drive

import (
	"errors"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"invalid argument", NewInvalidArgument("bad path %q", "../x"), `invalid argument: bad path "../x"`},
		{"not logged in", NewNotLoggedIn(), "not logged in"},
		{"not found", NewNotFound("event %s", "abc"), "not found: event abc"},
		{"unauthorized", NewUnauthorized("not the author"), "unauthorized: not the author"},
		{"crypto failed", NewCryptoFailed("tag mismatch"), "crypto failed: tag mismatch"},
		{"concurrency terminated", NewConcurrencyTerminated(), "service has been disposed"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.err.Error(); got != c.want {
				t.Errorf("Error() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestNetworkFailedErrorWrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNetworkFailed("publish", cause)

	if want := "network failed: publish: dial tcp: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestNetworkFailedErrorWithoutCause(t *testing.T) {
	err := NewNetworkFailed("publish", nil)
	if want := "network failed: publish"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
