package apiclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joinify/joinify-go/internal/observability/notify"
	"github.com/joinify/joinify-go/internal/testutil"
)

func TestStartProbeSuccess(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/users/stats", http.StatusOK, map[string]int{"total": 0, "organizers": 0, "attendees": 0})
	c, _ := newTestClient(t, b, nil)
	rec := &notify.Recorder{}

	select {
	case err := <-c.StartProbe(context.Background(), rec):
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("probe did not finish")
	}
	assert.Empty(t, rec.All())
	assert.Equal(t, 1, b.Count(http.MethodGet, "/users/stats"))
}

func TestStartProbeFailureWarns(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Text(http.MethodGet, "/users/stats", http.StatusInternalServerError, "down")
	c, _ := newTestClient(t, b, nil)
	rec := &notify.Recorder{}

	done := c.StartProbe(context.Background(), rec)
	err, ok := <-done
	require.True(t, ok)
	require.Error(t, err)

	all := rec.All()
	require.Len(t, all, 1)
	assert.Equal(t, notify.LevelWarning, all[0].Level)
	assert.Equal(t, ProbeWarning, all[0].Message)

	_, open := <-done
	assert.False(t, open)
}

func TestStartProbeDoesNotBlockWithoutReader(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/users/stats", http.StatusOK, map[string]int{})
	c, _ := newTestClient(t, b, nil)

	_ = c.StartProbe(context.Background(), nil)
	assert.Eventually(t, func() bool {
		return b.Count(http.MethodGet, "/users/stats") == 1
	}, 5*time.Second, 10*time.Millisecond)
}
