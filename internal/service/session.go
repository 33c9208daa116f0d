package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
	apperrors "github.com/joinify/joinify-go/internal/errors"
)

// Default failure messages when the backend gives none.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	API    SessionAPI
	Tokens *TokenStore
	// Extractors overrides the token-claim role precedence. Defaults to
	// auth.DefaultRoleExtractors.
	Extractors []auth.ClaimExtractor
	Logger     *slog.Logger
}

// SessionManager owns the client's authentication state: the persisted
// token and the cached identity. It is safe for concurrent use.
type SessionManager struct {
	api        SessionAPI
	tokens     *TokenStore
	extractors []auth.ClaimExtractor
	logger     *slog.Logger

	mu   sync.RWMutex
	user *auth.User
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if opts.API == nil {
		return nil, errors.New("session api is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token store is required")
	}
	extractors := opts.Extractors
	if len(extractors) == 0 {
		extractors = auth.DefaultRoleExtractors
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		api:        opts.API,
		tokens:     opts.Tokens,
		extractors: extractors,
		logger:     logger.With("component", "session"),
	}, nil
}

// Login exchanges credentials for a token. On success the token is
// persisted and the returned identity cached. Without a token the session
// is left untouched and an auth error carrying the server message is returned.
func (m *SessionManager) Login(ctx context.Context, creds auth.Credentials) (*auth.User, error) {
	resp, err := m.api.Login(ctx, creds)
	if err != nil {
		return nil, authFailure(err, MsgLoginFailed)
	}
	if resp.Token == "" {
		return nil, authFailure(errors.New(resp.Message), MsgLoginFailed)
	}

	if err := m.tokens.SetToken(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	user := &auth.User{
		Username: resp.Username,
		Email:    resp.Email,
		Role:     auth.Role(resp.Role),
	}
	m.setUser(user)
	m.logger.InfoContext(ctx, "logged in", "username", user.Username, "role", user.Role.String())

	out := *user
	return &out, nil
}

// Register creates an account. It does not log the user in.
func (m *SessionManager) Register(ctx context.Context, reg auth.Registration) (model.RegisterResponse, error) {
	resp, err := m.api.Register(ctx, reg)
	if err != nil {
		return resp, authFailure(err, MsgRegistrationFailed)
	}
	if !resp.Success {
		return resp, authFailure(errors.New(resp.Message), MsgRegistrationFailed)
	}
	return resp, nil
}

// CheckAuthStatus re-validates a stored token against the profile endpoint.
// It reports false without error when no token is held. A rejected token
// is cleared along with the cached identity.
func (m *SessionManager) CheckAuthStatus(ctx context.Context) (bool, error) {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	profile, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "token validation failed", "error", err)
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			return false, errors.Join(apperrors.Wrap(err, apperrors.ErrCodeAuth, "session validation failed"), logoutErr)
		}
		return false, apperrors.Wrap(err, apperrors.ErrCodeAuth, "session validation failed")
	}

	m.setUser(&auth.User{
		Username: profile.Username,
		Email:    profile.Email,
		Role:     auth.Role(profile.Role),
	})
	return true, nil
}

// Logout clears the cached identity and the stored token.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.setUser(nil)
	if err := m.tokens.RemoveToken(ctx); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "logged out")
	return nil
}

// CurrentRole resolves the user's role: the cached identity wins, then the
// token claims are tried in extractor order. Undecodable tokens yield
// auth.RoleNone.
func (m *SessionManager) CurrentRole(ctx context.Context) auth.Role {
	if u := m.CurrentUser(); u != nil && u.Role != auth.RoleNone {
		return u.Role
	}
	token := m.Token(ctx)
	if token == "" {
		return auth.RoleNone
	}
	return auth.RoleFromToken(token, m.extractors)
}

// IsLoggedIn reports whether a token is held.
func (m *SessionManager) IsLoggedIn(ctx context.Context) bool {
	return m.Token(ctx) != ""
}

// State reports LoggedIn when a token is held.
func (m *SessionManager) State(ctx context.Context) auth.SessionState {
	if m.IsLoggedIn(ctx) {
		return auth.LoggedIn
	}
	return auth.LoggedOut
}

// Session returns a snapshot of the current session.
func (m *SessionManager) Session(ctx context.Context) auth.Session {
	token := m.Token(ctx)
	state := auth.LoggedOut
	if token != "" {
		state = auth.LoggedIn
	}
	return auth.Session{Token: token, User: m.CurrentUser(), State: state}
}

// CurrentUser returns a copy of the cached identity, or nil.
func (m *SessionManager) CurrentUser() *auth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the stored token. Storage failures are logged and treated
// as no token.
func (m *SessionManager) Token(ctx context.Context) string {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "token lookup failed", "error", err)
		return ""
	}
	return token
}

// Tokens exposes the underlying token store.
func (m *SessionManager) Tokens() *TokenStore {
	return m.tokens
}

func (m *SessionManager) setUser(u *auth.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
}

// authFailure converts a failed login or registration into an auth error
// carrying the server message. Transport failures pass through unchanged.
func authFailure(err error, fallback string) error {
	if apperrors.IsNetwork(err) || apperrors.IsTimeout(err) || apperrors.IsCanceled(err) {
		return err
	}
	msg := apperrors.Message(err)
	if msg == "" {
		msg = fallback
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeAuth,
		Message: msg,
		Status:  apperrors.GetStatus(err),
	}
}
