package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteRequest struct {
	Text string `json:"text" validate:"required"`
}

func TestDecodeLimit(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		limit    int64
		wantOK   bool
		wantCode int
		wantErr  string
	}{
		{name: "valid", body: `{"text":"hi"}`, limit: 64, wantOK: true},
		{name: "malformed", body: `{"text":`, limit: 64, wantCode: http.StatusBadRequest, wantErr: "BAD_REQUEST"},
		{name: "missing field", body: `{}`, limit: 64, wantCode: http.StatusBadRequest, wantErr: "VALIDATION"},
		{name: "over the limit", body: `{"text":"` + strings.Repeat("a", 100) + `"}`, limit: 64, wantCode: http.StatusRequestEntityTooLarge, wantErr: "PAYLOAD_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst noteRequest
			ok := DecodeLimit(rec, req, &dst, tt.limit)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "hi", dst.Text)
				return
			}
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantErr, body.Error.Code)
		})
	}
}

func TestDecodeCapsBodies(t *testing.T) {
	big := `{"text":"` + strings.Repeat("a", int(MaxBodyBytes)) + `"}`
	rec := httptest.NewRecorder()

	var dst noteRequest
	assert.False(t, Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)), &dst))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
