package k8sclient

import (
	"errors"
	"fmt"
	"net"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

var (
	ErrAPIServerUnavailable = errors.New("kubernetes API server unavailable")
	ErrUnauthorized         = errors.New("not authorized against the kubernetes API server")
)

// MatchError tags err with the matching sentinel error. The original error stays in the chain.
func MatchError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case apierrors.IsUnauthorized(err), apierrors.IsForbidden(err):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case apierrors.IsServiceUnavailable(err), apierrors.IsTimeout(err), apierrors.IsServerTimeout(err):
		return fmt.Errorf("%w: %w", ErrAPIServerUnavailable, err)
	case errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrAPIServerUnavailable, err)
	case strings.Contains(err.Error(), "connection refused"), strings.Contains(err.Error(), "no such host"):
		return fmt.Errorf("%w: %w", ErrAPIServerUnavailable, err)
	default:
		return err
	}
}
