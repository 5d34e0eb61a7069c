package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studyhive/studyhive/pkg/validate"
)

// MaxBodyBytes caps request bodies read through Decode
const MaxBodyBytes int64 = 1 << 20

// Decode reads a JSON body of at most MaxBodyBytes into dst and validates
// it. On failure the error response is already written and false is
// returned.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return DecodeLimit(w, r, dst, MaxBodyBytes)
}

// DecodeLimit is Decode with a caller-chosen body limit, for endpoints that
// carry uploads.
func DecodeLimit(w http.ResponseWriter, r *http.Request, dst interface{}, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			PayloadTooLarge(w, "Request body is too large")
			return false
		}
		BadRequest(w, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		if fields := validate.Fields(err); fields != nil {
			ValidationError(w, fields)
			return false
		}
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}
