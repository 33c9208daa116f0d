package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joinify/joinify-go/internal/apiclient"
	mockauth "github.com/joinify/joinify-go/internal/mocks/auth"
	"github.com/joinify/joinify-go/internal/observability/notify"
	"github.com/joinify/joinify-go/internal/ports"
	"github.com/joinify/joinify-go/internal/testutil"
)

// fixture wires a real API client against a fake backend.
type fixture struct {
	backend  *testutil.Backend
	client   *apiclient.Client
	store    *mockauth.MemoryStore
	tokens   *TokenStore
	sessions *SessionManager
	notices  *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	store := mockauth.NewMemoryStore()
	tokens, err := NewTokenStore(store)
	require.NoError(t, err)

	client, err := apiclient.NewClient(apiclient.Config{
		BaseURL: b.BaseURL(),
		Tokens:  tokens,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	sessions, err := NewSessionManager(SessionManagerOptions{API: client, Tokens: tokens})
	require.NoError(t, err)

	return &fixture{
		backend:  b,
		client:   client,
		store:    store,
		tokens:   tokens,
		sessions: sessions,
		notices:  &notify.Recorder{},
	}
}

// loginAs stores a token carrying role without touching the backend.
func (f *fixture) loginAs(t *testing.T, role string) {
	t.Helper()
	require.NoError(t, f.store.Set(t.Context(), ports.TokenKey, testutil.Token(map[string]any{"role": role})))
}

var fixedNow = testutil.FixedTimeFunc(testutil.TestTime())
