package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/google/uuid"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

// Archiver copies provider images, whose URLs expire, to an Uploader and
// rewrites each URL to point at the copy under BaseURL. An Archiver without an
// Uploader, or a nil one, leaves URLs untouched.
type Archiver struct {
	Client   *http.Client
	Uploader Uploader
	BaseURL  string
}

func (a *Archiver) Enabled() bool {
	return a != nil && a.Uploader != nil
}

// Archive returns urls with every successfully archived entry replaced. An
// image that cannot be archived keeps its provider URL.
func (a *Archiver) Archive(ctx context.Context, prompt string, urls []string) []string {
	if !a.Enabled() {
		return urls
	}

	logger := log.FromContextOrDiscard(ctx).WithGroup("archiver")
	out := slices.Clone(urls)

	var group errgroup.Group
	for i, src := range urls {
		i, src := i, src
		group.Go(func() error {
			archived, err := a.archive(ctx, prompt, src)
			if err != nil {
				logger.Warn("keeping provider url", "index", i, "error", err)
				return nil
			}
			out[i] = archived
			return nil
		})
	}
	_ = group.Wait()

	return out
}

func (a *Archiver) archive(ctx context.Context, prompt, src string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	name := uuid.NewString() + extension(contentType)
	err = a.Uploader.Upload(ctx, UploadParams{
		Name:        name,
		Data:        data,
		ContentType: contentType,
		// object metadata must be ASCII
		Metadata: map[string]string{"prompt": url.QueryEscape(prompt)},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(a.BaseURL, "/") + "/" + name, nil
}

func extension(contentType string) string {
	switch strings.TrimSpace(strings.Split(contentType, ";")[0]) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func NewArchiver(i *do.Injector) (*Archiver, error) {
	bucket := do.MustInvokeNamed[string](i, "archive_bucket")
	dir := do.MustInvokeNamed[string](i, "archive_dir")
	baseURL := do.MustInvokeNamed[string](i, "archive_base_url")

	var uploader Uploader
	switch {
	case bucket != "":
		if baseURL == "" {
			return nil, errors.New("ARCHIVE_BASE_URL is required with ARCHIVE_BUCKET")
		}
		uploader = &S3Uploader{Client: do.MustInvoke[*s3.Client](i), Bucket: bucket}
	case dir != "":
		uploader = &FileUploader{Dir: dir}
	default:
		return &Archiver{}, nil
	}

	return &Archiver{
		Client:   do.MustInvoke[*http.Client](i),
		Uploader: uploader,
		BaseURL:  baseURL,
	}, nil
}
