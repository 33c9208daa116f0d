package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/joinify/joinify-go/internal/errors"
	"github.com/joinify/joinify-go/internal/observability/notify"
)

// User-facing error messages.
const (
	MsgSessionExpired   = "Session expired. Please login again."
	MsgForbidden        = "You do not have permission to perform this action."
	MsgNotFound         = "The requested resource was not found."
	MsgConflict         = "This action conflicts with existing data."
	MsgServerError      = "Server error. Please try again later."
	MsgUnexpectedError  = "An unexpected error occurred."
	SessionRedirectWait = 2 * time.Second
)

// Notice is the user-visible outcome of handling an error.
type Notice struct {
	Level   notify.Level
	Message string
	// Redirect is set when the user must be sent elsewhere after RedirectAfter.
	Redirect      string
	RedirectAfter time.Duration
	LoggedOut     bool
}

// ErrorHandlerOptions groups dependencies for ErrorHandler.
type ErrorHandlerOptions struct {
	Sessions *SessionManager
	Sink     notify.Sink
	Logger   *slog.Logger
}

// ErrorHandler turns API errors into notices. A 401-class error ends the session.
type ErrorHandler struct {
	sessions *SessionManager
	sink     notify.Sink
	logger   *slog.Logger
}

// NewErrorHandler constructs an ErrorHandler. Sessions and Sink are optional.
func NewErrorHandler(opts ErrorHandlerOptions) *ErrorHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{sessions: opts.Sessions, sink: opts.Sink, logger: logger}
}

// Handle classifies err, performs the forced logout when required, sends
// the notice to the sink and returns it.
func (h *ErrorHandler) Handle(ctx context.Context, err error) Notice {
	if err == nil {
		return Notice{}
	}
	h.logger.ErrorContext(ctx, "api error", "error", err, "code", string(apperrors.GetCode(err)))

	n := Classify(err)
	if n.Redirect != "" && h.sessions != nil {
		if logoutErr := h.sessions.Logout(ctx); logoutErr != nil {
			h.logger.WarnContext(ctx, "forced logout failed", "error", logoutErr)
		} else {
			n.LoggedOut = true
		}
	}
	notify.Send(ctx, h.sink, notify.Notification{Level: n.Level, Message: n.Message})
	return n
}

// Classify maps err to a notice without side effects. 401 and 5xx statuses
// always get the generic notice. Other errors keep the server's message
// unless it names a status, as the "HTTP <status>: <text>" fallback does.
func Classify(err error) Notice {
	msg := strings.TrimSpace(apperrors.Message(err))

	switch code := apperrors.GetCode(err); {
	case code == apperrors.ErrCodeUnauthorized:
		return sessionExpired()
	case code == apperrors.ErrCodeInternal && apperrors.GetStatus(err) >= 500:
		return errorNotice(MsgServerError)
	case msg == "":
		if generic, ok := statusMessages[code]; ok {
			return errorNotice(generic)
		}
		return errorNotice(MsgUnexpectedError)
	}

	switch {
	case containsAny(msg, "401", "Unauthorized"):
		return sessionExpired()
	case containsAny(msg, "403", "Forbidden"):
		return errorNotice(MsgForbidden)
	case containsAny(msg, "404", "Not Found"):
		return errorNotice(MsgNotFound)
	case containsAny(msg, "409", "Conflict"):
		return errorNotice(MsgConflict)
	case containsAny(msg, "500", "Internal Server Error"):
		return errorNotice(MsgServerError)
	default:
		return errorNotice(msg)
	}
}

var statusMessages = map[apperrors.ErrorCode]string{
	apperrors.ErrCodeForbidden: MsgForbidden,
	apperrors.ErrCodeNotFound:  MsgNotFound,
	apperrors.ErrCodeConflict:  MsgConflict,
}

func sessionExpired() Notice {
	return Notice{
		Level:         notify.LevelWarning,
		Message:       MsgSessionExpired,
		Redirect:      DestinationIndex,
		RedirectAfter: SessionRedirectWait,
	}
}

func errorNotice(msg string) Notice {
	return Notice{Level: notify.LevelError, Message: msg}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
