package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

func do(t *testing.T, h http.Handler, userID int64, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func unreadCount(t *testing.T, h http.Handler, userID int64) int {
	t.Helper()
	rec := do(t, h, userID, http.MethodGet, "/unread-count")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data["unread_count"]
}

func TestHandlerInbox(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	h := NewHandler(svc).Routes()

	at := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	// bob gets notices 1 and 3, carol 2 and 4
	svc.MeetingScheduled(ctx, studyGroup, host, 7, at)
	svc.MeetingRescheduled(ctx, studyGroup, host, 7, at.Add(time.Hour))

	rec := do(t, h, bob, http.MethodGet, "/?per_page=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data []NotificationResponse `json:"data"`
		Meta response.Meta          `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Data[0].ID)
	assert.Equal(t, 2, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Equal(t, 2, unreadCount(t, h, bob))

	assert.Equal(t, http.StatusUnauthorized, do(t, h, 0, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, bob, http.MethodPost, "/abc/read").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, bob, http.MethodPost, "/2/read").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, bob, http.MethodPost, "/99/read").Code)

	require.Equal(t, http.StatusOK, do(t, h, bob, http.MethodPost, "/3/read").Code)
	rec = do(t, h, bob, http.MethodGet, "/?unread_only=true")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Data[0].ID)

	require.Equal(t, http.StatusOK, do(t, h, bob, http.MethodPost, "/read-all").Code)
	assert.Zero(t, unreadCount(t, h, bob))
	assert.Equal(t, 2, unreadCount(t, h, carol))
}
