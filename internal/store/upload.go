package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/imagine/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// FileUploader writes into Dir; used when serving images locally.
type FileUploader struct {
	Dir string
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("writing", "file", params.Name, "dir", u.Dir)
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(u.Dir, params.Name), params.Data, 0o644)
}
