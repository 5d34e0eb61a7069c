package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore keeps objects in a Google Drive folder using a service account
type DriveStore struct {
	files    *drive.FilesService
	perms    *drive.PermissionsService
	folderID string
}

var _ Store = (*DriveStore)(nil)

// NewDriveStore authenticates with the service-account credentials file.
// An empty folderID stores objects in the account's root folder.
func NewDriveStore(ctx context.Context, credentialsFile, folderID string) (*DriveStore, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &DriveStore{files: svc.Files, perms: svc.Permissions, folderID: folderID}, nil
}

func (s *DriveStore) Put(ctx context.Context, name, contentType string, data []byte) (*Object, error) {
	meta := &drive.File{Name: name}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	f, err := s.files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, storageFailure(err)
	}

	// group members open the link without a Drive account
	_, err = s.perms.Create(f.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		s.files.Delete(f.Id).Context(ctx).Do()
		return nil, storageFailure(err)
	}

	return &Object{Key: f.Id, URL: f.WebViewLink}, nil
}

func (s *DriveStore) Delete(ctx context.Context, key string) error {
	err := s.files.Delete(key).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return storageFailure(err)
	}
	return nil
}
