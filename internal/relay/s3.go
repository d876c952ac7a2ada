package relay

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"

	"github.com/google/uuid"
)

type objectStore interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, string, int64, error)
}

// S3 uploads every file as its own object and indexes the public URLs.
type S3 struct {
	uploader objectStore
	index    index
}

func NewS3(uploader objectStore, store database.Store) *S3 {
	return &S3{uploader: uploader, index: index{store}}
}

func (*S3) Name() string { return NameS3 }

// ObjectKey is <label>/<recordID>/<uuid>-<name>.
func ObjectKey(label, recordID, name string) string {
	return path.Join(label, recordID, uuid.NewString()+"-"+path.Base(name))
}

// Send uploads the files p has not recorded yet, then indexes them.
func (s *S3) Send(ctx context.Context, rec Record, label string, files []File, p *models.RelayProgress) error {
	for ; p.FilesSent < len(files); p.FilesSent++ {
		f := files[p.FilesSent]
		key := ObjectKey(label, rec.ID, f.Name)
		url, err := s.uploader.UploadFile(ctx, bytes.NewReader(f.Data), key, f.ContentType)
		if err != nil {
			return err
		}
		p.Items = append(p.Items, models.MediaPointer{
			ID:        key,
			URL:       url,
			FileName:  f.Name,
			FileType:  f.ContentType,
			Relay:     NameS3,
			CreatedAt: time.Now().UTC(),
		})
	}
	if len(p.Items) == 0 {
		return nil
	}
	if err := s.index.add(ctx, rec.ID, label, p.Items); err != nil {
		return err
	}
	p.Items = nil
	return nil
}

func (s *S3) Media(ctx context.Context, recordID string) ([]models.MediaPointer, error) {
	return s.index.list(ctx, recordID)
}

// Open reads the object back from the bucket. Thumbnails are not kept, so
// thumb is ignored.
func (s *S3) Open(ctx context.Context, recordID string, n int, _ bool) (Download, error) {
	item, err := s.index.item(ctx, recordID, n)
	if err != nil {
		return Download{}, err
	}
	body, ct, size, err := s.uploader.DownloadFile(ctx, item.ID)
	if err != nil {
		return Download{}, err
	}
	if ct == "" {
		ct = item.FileType
	}
	return Download{Body: body, ContentType: ct, Size: size}, nil
}
