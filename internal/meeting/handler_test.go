package meeting

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhive/studyhive/pkg/middleware"
)

func newTestRouter(t *testing.T) (http.Handler, *recorder) {
	t.Helper()
	svc, rec := newTestService()
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/groups/{groupId}", func(r chi.Router) {
		r.Mount("/meetings", h.GroupRoutes())
	})
	r.Mount("/meetings", h.Routes())
	return r, rec
}

func do(t *testing.T, h http.Handler, userID int64, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerMeetings(t *testing.T) {
	h, notices := newTestRouter(t)

	rec := do(t, h, host, http.MethodPost, "/groups/10/meetings", map[string]string{"scheduled_at": "2024-05-01T18:00:00+02:00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data MeetingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, studyGroup, created.Data.GroupID)
	assert.Equal(t, "2024-05-01T16:00:00Z", created.Data.ScheduledAt)

	tests := []struct {
		name   string
		userID int64
		method string
		path   string
		body   interface{}
		want   int
	}{
		{name: "member cannot schedule", userID: member, method: http.MethodPost, path: "/groups/10/meetings", body: map[string]string{"scheduled_at": "2024-05-02T18:00:00Z"}, want: http.StatusForbidden},
		{name: "time is required", userID: host, method: http.MethodPost, path: "/groups/10/meetings", body: map[string]string{}, want: http.StatusBadRequest},
		{name: "bad time", userID: host, method: http.MethodPost, path: "/groups/10/meetings", body: map[string]string{"scheduled_at": "soon"}, want: http.StatusBadRequest},
		{name: "bad group id", userID: host, method: http.MethodGet, path: "/groups/x/meetings", want: http.StatusBadRequest},
		{name: "anonymous", method: http.MethodGet, path: "/groups/10/meetings", want: http.StatusUnauthorized},
		{name: "outsider cannot list", userID: other, method: http.MethodGet, path: "/groups/10/meetings", want: http.StatusForbidden},
		{name: "member lists", userID: member, method: http.MethodGet, path: "/groups/10/meetings", want: http.StatusOK},
		{name: "member cannot reschedule", userID: member, method: http.MethodPut, path: "/meetings/1", body: map[string]string{"scheduled_at": "2024-05-03T18:00:00Z"}, want: http.StatusForbidden},
		{name: "host reschedules", userID: host, method: http.MethodPut, path: "/meetings/1", body: map[string]string{"scheduled_at": "2024-05-03T18:00:00Z"}, want: http.StatusOK},
		{name: "unknown meeting", userID: host, method: http.MethodDelete, path: "/meetings/99", want: http.StatusNotFound},
		{name: "host cancels", userID: host, method: http.MethodDelete, path: "/meetings/1", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.userID, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, []string{"scheduled", "rescheduled", "cancelled"}, notices.kinds())
}
