package dberrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{CodeConnectionRefused, ConnectionRefused},
		{CodeAccessDenied, AccessDenied},
		{CodeHostNotFound, HostNotFound},
		{CodeHostUnreachable, HostNotReachable},
		{CodeInvalid, InvalidConnection},
		{CodeTimeout, Timeout},
		{"", ConnectionError},
		{"ESOMETHINGELSE", ConnectionError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.code))
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, CodeConnectionRefused},
		{"dns", &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}, CodeHostNotFound},
		{"unreachable", fmt.Errorf("dial: %w", syscall.EHOSTUNREACH), CodeHostUnreachable},
		{"invalid", fmt.Errorf("socket: %w", syscall.EINVAL), CodeInvalid},
		{"deadline", fmt.Errorf("open: %w", context.DeadlineExceeded), CodeTimeout},
		{"attached", WithCode(errors.New("permission denied"), CodeAccessDenied), CodeAccessDenied},
		{"wrapped attached", fmt.Errorf("outer: %w", WithCode(errors.New("x"), CodeInvalid)), CodeInvalid},
		{"unknown", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	raw := fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)

	err := Wrap("connect", raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ConnectionRefused)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED, "original failure must stay attached")

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ConnectionRefused, kind)

	unknown := Wrap("connect", errors.New("something odd"))
	assert.ErrorIs(t, unknown, ConnectionError)
	assert.NotErrorIs(t, unknown, ConnectionRefused)

	assert.Same(t, err, Wrap("again", err), "already translated errors pass through")
	assert.NoError(t, Wrap("connect", nil))
}

func TestErrorMessage(t *testing.T) {
	err := New(UnsupportedType, "sql for UUID", errors.New("no backend representation"))
	assert.Equal(t, "UnsupportedTypeError: sql for UUID: no backend representation", err.Error())
	assert.Equal(t, "ParseError", New(Parse, "", nil).Error())
	assert.True(t, HostNotReachable.IsConnection())
	assert.False(t, Serialization.IsConnection())
}
