// Package blob stores binary payloads (group files, course images and
// resources) outside the database.
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/studyhive/studyhive/pkg/apperror"
)

// Object is a stored payload. Key identifies it for deletion; URL is
// where clients fetch it.
type Object struct {
	Key string
	URL string
}

// Store keeps binary objects
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (*Object, error)
	// Delete releases an object. Releasing a missing object succeeds.
	Delete(ctx context.Context, key string) error
}

// ErrInvalidPayload is returned for payloads that are not valid base64
var ErrInvalidPayload = apperror.New(apperror.KindValidation, "file data must be base64 encoded")

// storageFailure classifies backend errors for the HTTP layer
func storageFailure(err error) error {
	return apperror.Wrap(apperror.KindExternal, "file storage service failure", err)
}

// DecodePayload decodes a base64 payload, optionally given as a data URI
// ("data:image/png;base64,..."). The content type comes from the URI or is
// sniffed from the data.
func DecodePayload(payload string) ([]byte, string, error) {
	var contentType string
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, "", ErrInvalidPayload
		}
		meta := payload[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", ErrInvalidPayload
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		// some clients strip the padding
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimSpace(payload))
		if rawErr != nil {
			return nil, "", ErrInvalidPayload
		}
	}
	if len(data) == 0 {
		return nil, "", ErrInvalidPayload
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// IsStorageFailure reports whether err came from a storage backend
func IsStorageFailure(err error) bool {
	var appErr *apperror.Error
	return errors.As(err, &appErr) && appErr.Kind == apperror.KindExternal
}
