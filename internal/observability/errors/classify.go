// Package errors names errors with a small fixed vocabulary for metric tags.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"os"

	apperrors "github.com/joinify/joinify-go/internal/errors"
)

// Classify returns the metric class of err: the AppError code when there is
// one, else a coarse transport class, else "other". nil yields "".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	var (
		netErr net.Error
		dnsErr *net.DNSError
	)
	switch {
	case goerrors.Is(err, context.DeadlineExceeded), goerrors.Is(err, os.ErrDeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.As(err, &dnsErr):
		return "dns"
	case goerrors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case goerrors.As(err, &netErr):
		return "transport"
	default:
		return "other"
	}
}
