package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// serverErr is an error reply as go-redis reports it.
type serverErr string

func (e serverErr) Error() string { return string(e) }
func (serverErr) RedisError()     {}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown index", serverErr("Unknown Index name"), domain.ErrIndexNotFound},
		{"no such index", serverErr("idx:all: no such index"), domain.ErrIndexNotFound},
		{"index exists", serverErr("Index already exists"), domain.ErrIndexExists},
		{"syntax", serverErr("Syntax error at offset 3 near b"), domain.ErrQueryRejected},
		{"unknown field", serverErr("Unknown field at offset 0 near nope"), domain.ErrQueryRejected},
		{"noauth", serverErr("NOAUTH Authentication required."), domain.ErrUnauthorized},
		{"wrongpass", serverErr("WRONGPASS invalid username-password pair"), domain.ErrUnauthorized},
		{"wrongtype", serverErr("WRONGTYPE Operation against a key holding the wrong kind of value"), domain.ErrNotFound},
		{"loading", serverErr("LOADING Redis is loading the dataset in memory"), domain.ErrConnectionLost},
		{"deadline", context.DeadlineExceeded, domain.ErrStoreTimeout},
		{"wrapped deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), domain.ErrStoreTimeout},
		{"net timeout", timeoutErr{}, domain.ErrStoreTimeout},
		{"nil reply", goredis.Nil, domain.ErrNotFound},
		{"closed", goredis.ErrClosed, domain.ErrConnectionLost},
		{"eof", io.EOF, domain.ErrConnectionLost},
		{"other", errors.New("dial tcp: connection refused"), domain.ErrConnectionLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError(nil))
}
