package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"shopmetrics/internal/shared/testutil"
)

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantLog    bool
	}{
		{
			name:       "passes through",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) },
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "panic becomes problem",
			handler:    func(w http.ResponseWriter, r *http.Request) { panic("boom") },
			wantStatus: http.StatusInternalServerError,
			wantLog:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			w := httptest.NewRecorder()

			RecoveryMiddleware(NewErrorHandler(logger, false))(tt.handler).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLog {
				assert.Equal(t, ContentTypeProblem, w.Header().Get("Content-Type"))
				testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
			} else {
				assert.Equal(t, 0, logs.Count())
			}
		})
	}
}

func TestRecoveryMiddlewareRepanicsAbort(t *testing.T) {
	h := RecoveryMiddleware(NewErrorHandler(nil, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
