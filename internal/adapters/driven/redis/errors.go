package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// mapError wraps err with the domain sentinel it corresponds to.
// Unrecognised failures are treated as a lost connection.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	var srvErr goredis.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrStoreTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", domain.ErrStoreTimeout, err)
	case errors.Is(err, goredis.Nil):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.As(err, &srvErr):
		return fmt.Errorf("%w: %w", serverSentinel(srvErr.Error()), err)
	case errors.Is(err, goredis.ErrClosed), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", domain.ErrConnectionLost, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrConnectionLost, err)
	}
}

// serverSentinel classifies an error reply sent by the server.
func serverSentinel(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "unknown index name"),
		strings.Contains(lower, "no such index"):
		return domain.ErrIndexNotFound
	case strings.Contains(lower, "index already exists"):
		return domain.ErrIndexExists
	case strings.HasPrefix(lower, "noauth"),
		strings.HasPrefix(lower, "wrongpass"),
		strings.HasPrefix(lower, "noperm"):
		return domain.ErrUnauthorized
	case strings.HasPrefix(lower, "wrongtype"):
		return domain.ErrNotFound
	case strings.HasPrefix(lower, "loading"),
		strings.HasPrefix(lower, "busy"),
		strings.HasPrefix(lower, "tryagain"):
		return domain.ErrConnectionLost
	default:
		return domain.ErrQueryRejected
	}
}
