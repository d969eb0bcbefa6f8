package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/contalibre/contalibre/testing"
)

type fakeEnqueuer struct {
	calls int
	err   error
}

func (f *fakeEnqueuer) EnqueueLedgerIntegrity(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "task-1", nil
}

func newTestRouter(enqueuer IntegrityEnqueuer) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(RouterParams{Logger: logger, Integrity: enqueuer})
}

func integrityRequest(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/ledger-integrity", nil)
	req.Header.Set("X-Company-Id", "7")
	req.Header.Set("X-User-Id", "42")
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	return req
}

func TestIntegrityScanRequiresPrivilegedRole(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := newTestRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, integrityRequest(""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, enqueuer.calls)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, integrityRequest("admin"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enqueuer.calls)
	assert.Contains(t, rec.Body.String(), "task-1")
}

func TestIntegrityScanReportsQueueFailure(t *testing.T) {
	enqueuer := &fakeEnqueuer{err: errors.New("redis down")}
	router := newTestRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, integrityRequest("admin"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIntegrityRouteAbsentWithoutQueue(t *testing.T) {
	router := newTestRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, integrityRequest("admin"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
