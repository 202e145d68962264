// Package drive stores invoice PDFs in Google Drive, one folder per
// owner. Only the file-scope is requested; folders are created on demand
// and reused across runs.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"inboxledger/internal/logger"
)

const folderMimeType = "application/vnd.google-apps.folder"

// BlobStore uploads attachment bytes into named folders.
type BlobStore interface {
	// EnsureFolder returns the id of the named top-level folder,
	// creating it when absent.
	EnsureFolder(ctx context.Context, name string) (string, error)

	// Upload stores the bytes as a new file in the folder and returns
	// the file id.
	Upload(ctx context.Context, data []byte, filename, folderID string) (string, error)
}

// DriveStore implements BlobStore on the Google Drive API.
type DriveStore struct {
	svc       *drivev3.Service
	folderIDs map[string]string
	log       zerolog.Logger
}

// NewDriveStore creates a store with credentials from the environment
// (GOOGLE_CREDENTIALS JSON or GOOGLE_APPLICATION_CREDENTIALS path).
func NewDriveStore(ctx context.Context) (*DriveStore, error) {
	const op = "NewDriveStore"

	opts := []option.ClientOption{option.WithScopes(drivev3.DriveFileScope)}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create Drive service: %w", op, err)
	}
	return NewDriveStoreWithService(svc), nil
}

// NewDriveStoreWithService creates a store with an explicit service (for testing).
func NewDriveStoreWithService(svc *drivev3.Service) *DriveStore {
	return &DriveStore{
		svc:       svc,
		folderIDs: make(map[string]string),
		log:       logger.WithComponent("drive"),
	}
}

// EnsureFolder looks the folder up by name under the Drive root and
// creates it when missing. Results are cached per store.
func (d *DriveStore) EnsureFolder(ctx context.Context, name string) (string, error) {
	const op = "EnsureFolder"

	if id, ok := d.folderIDs[name]; ok {
		return id, nil
	}

	query := fmt.Sprintf("name='%s' and mimeType='%s' and 'root' in parents and trashed=false",
		strings.ReplaceAll(name, "'", `\'`), folderMimeType)
	list, err := d.svc.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to query folder %q: %w", op, name, err)
	}
	if len(list.Files) > 0 {
		d.folderIDs[name] = list.Files[0].Id
		d.log.Debug().Str("folder", name).Str("folder_id", list.Files[0].Id).Msg("Folder already exists")
		return list.Files[0].Id, nil
	}

	folder, err := d.svc.Files.Create(&drivev3.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to create folder %q: %w", op, name, err)
	}

	d.folderIDs[name] = folder.Id
	d.log.Info().Str("folder", name).Str("folder_id", folder.Id).Msg("Created folder")
	return folder.Id, nil
}

// Upload stores one PDF in the folder and returns its file id.
func (d *DriveStore) Upload(ctx context.Context, data []byte, filename, folderID string) (string, error) {
	const op = "Upload"

	file, err := d.svc.Files.Create(&drivev3.File{
		Name:    filename,
		Parents: []string{folderID},
	}).Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to upload %q: %w", op, filename, err)
	}

	d.log.Info().Str("filename", filename).Str("file_id", file.Id).
		Int("size", len(data)).Msg("Uploaded PDF")
	return file.Id, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\s\-.]`)

// SafeFilename prefixes the date and strips characters that upset
// downstream tooling: "bill #42.pdf" -> "20250531_bill_42.pdf".
func SafeFilename(filename string, now time.Time) string {
	safe := unsafeFilenameChars.ReplaceAllString(filename, "")
	safe = strings.Join(strings.Fields(safe), "_")
	return now.Format("20060102") + "_" + safe
}
