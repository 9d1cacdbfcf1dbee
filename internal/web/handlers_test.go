package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SeanReardon/let-food-into-civic/internal/domain"
	"github.com/SeanReardon/let-food-into-civic/internal/snooze"
	"github.com/SeanReardon/let-food-into-civic/internal/store"
)

// fakeCoordinator implements Dispatcher without real sends.
type fakeCoordinator struct {
	state      domain.SnoozeState
	dispatched chan struct{}
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{
		state:      domain.NewSnoozeState(),
		dispatched: make(chan struct{}, 8),
	}
}

func (f *fakeCoordinator) Dispatch(context.Context) []snooze.Result {
	f.dispatched <- struct{}{}
	return nil
}

func (f *fakeCoordinator) Toggle(id domain.RecipientID, snoozed bool) (domain.SnoozeState, error) {
	f.state.Set(id, snoozed)
	return f.state.Clone(), nil
}

func (f *fakeCoordinator) State() domain.SnoozeState { return f.state.Clone() }

type fakeReplier struct{ replies []string }

func (f *fakeReplier) Reply(_ context.Context, to, text string) error {
	f.replies = append(f.replies, to+": "+text)
	return nil
}

type fixture struct {
	engine  *gin.Engine
	coord   *fakeCoordinator
	replier *fakeReplier
	repo    store.Repo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "gate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	reg, err := domain.NewRegistry([]string{"+14693059242", "+12149090499"})
	require.NoError(t, err)

	coord := newFakeCoordinator()
	replier := &fakeReplier{}
	cfg := Config{
		UnlockDigit:   "5",
		Iterations:    6,
		PauseSeconds:  0.5,
		DTMFAudioURL:  "https://example.com/dtmf5.wav",
		OwnNumber:     "+15550000000",
		APIConfigured: true,
	}

	engine, err := New(zap.NewNop(), cfg, coord, reg, repo, replier)
	require.NoError(t, err)
	return &fixture{engine: engine, coord: coord, replier: replier, repo: repo}
}

func doRequest(f *fixture, req *http.Request, remoteAddr string) *httptest.ResponseRecorder {
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestVoiceWebhook(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"From": {"+15551234567"}, "CallSid": {"abc123"}}
	req := httptest.NewRequest(http.MethodPost, "/webhook/voice",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := doRequest(f, req, "203.0.113.9:4000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<Play>https://example.com/dtmf5.wav</Play>")
	assert.Contains(t, w.Body.String(), "<Hangup/>")

	// A dispatch cycle was triggered.
	select {
	case <-f.coord.dispatched:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch was not triggered")
	}

	// The unlock event was recorded.
	events, err := f.repo.RecentUnlocks(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "+15551234567", events[0].Caller)
}

func TestSnoozeToggleJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/snooze",
		strings.NewReader(`{"recipient": "linda", "snoozed": true}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(f, req, "192.168.1.20:5000")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Linda   bool `json:"linda"`
		Sean    bool `json:"sean"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Linda)
	assert.False(t, resp.Sean)
}

func TestSnoozeToggleFormRedirects(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"recipient": {"sean"}, "snoozed": {"true"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/snooze",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := doRequest(f, req, "10.0.0.5:6000")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, f.coord.state.Snoozed(domain.RecipientSean))
}

func TestSnoozeToggleRemoteForbidden(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/snooze",
		strings.NewReader(`{"recipient": "linda", "snoozed": true}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(f, req, "203.0.113.9:4000")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSnoozeToggleInvalidRecipient(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/snooze",
		strings.NewReader(`{"recipient": "bob", "snoozed": true}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(f, req, "127.0.0.1:4000")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSMSWebhookStop(t *testing.T) {
	f := newFixture(t)

	body := `{"data": {"event_type": "message.received", "payload": {
		"direction": "inbound",
		"from": {"phone_number": "+12149090499"},
		"to": [{"phone_number": "+15550000000"}],
		"text": "stop"}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(f, req, "203.0.113.9:4000")
	assert.Equal(t, http.StatusOK, w.Code)

	status, err := f.repo.OptInStatus(context.Background(), "+12149090499")
	require.NoError(t, err)
	assert.Equal(t, store.StatusOptedOut, status)

	require.Len(t, f.replier.replies, 1)
	assert.Contains(t, f.replier.replies[0], "unsubscribed")
}

func TestSMSWebhookIgnoresOutbound(t *testing.T) {
	f := newFixture(t)

	body := `{"data": {"event_type": "message.finalized", "payload": {
		"direction": "outbound", "text": "x"}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/sms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(f, req, "203.0.113.9:4000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.replier.replies)
}

func TestIndexViewSwitch(t *testing.T) {
	f := newFixture(t)

	// Local caller sees the snooze dashboard.
	w := doRequest(f, httptest.NewRequest(http.MethodGet, "/", nil), "192.168.1.2:1000")
	assert.Contains(t, w.Body.String(), "Snooze Notifications")
	assert.Contains(t, w.Body.String(), "Linda")

	// Remote caller sees the public landing page.
	w = doRequest(f, httptest.NewRequest(http.MethodGet, "/", nil), "203.0.113.9:1000")
	assert.Contains(t, w.Body.String(), "Home Delivery Notification Service")

	// Remote caller cannot force the local view.
	w = doRequest(f, httptest.NewRequest(http.MethodGet, "/?view=local", nil), "203.0.113.9:1000")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Local caller can force the public view.
	w = doRequest(f, httptest.NewRequest(http.MethodGet, "/?view=public", nil), "127.0.0.1:1000")
	assert.Contains(t, w.Body.String(), "Home Delivery Notification Service")
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := doRequest(f, httptest.NewRequest(http.MethodGet, "/health", nil), "203.0.113.9:1000")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["notifications_configured"])
}

func TestTestSMS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/test-sms",
		strings.NewReader(`{"to": "+12149090499"}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(f, req, "127.0.0.1:1000")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.replier.replies, 1)
	assert.Contains(t, f.replier.replies[0], "+12149090499")
}
