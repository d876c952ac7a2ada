// Package relay delivers form attachments to an external service and keeps
// an index of where they ended up.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
)

const (
	NameNone     = "none"
	NameTelegram = "telegram"
	NameS3       = "s3"
)

var (
	ErrDisabled = errors.New("relay disabled")
	ErrNoMedia  = errors.New("attachment not found")
)

// File is one attachment held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsImage reports whether the file should be sent as a photo.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// Record is the stored record the attachments belong to.
type Record struct {
	ID         string
	Collection string
	Fields     map[string]string
}

// Caption renders the record as a short text block, fields sorted by key.
func (r Record) Caption(label string) string {
	keys := make([]string, 0, len(r.Fields))
	for k, v := range r.Fields {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", label, r.ID)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, r.Fields[k])
	}
	return b.String()
}

type Relay interface {
	// Send delivers files and records each finished step in p. Calling it
	// again with the same p resumes after those steps.
	Send(ctx context.Context, rec Record, label string, files []File, p *models.RelayProgress) error
	// Media lists what was delivered for a record, oldest first. Items
	// without a URL can only be read through Open.
	Media(ctx context.Context, recordID string) ([]models.MediaPointer, error)
	// Open streams the n-th indexed attachment of a record, or its
	// thumbnail.
	Open(ctx context.Context, recordID string, n int, thumb bool) (Download, error)
	Name() string
}

// Download is an attachment body read back from the relay. Size is -1 when
// unknown. The caller closes Body.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// index appends delivered items to relay_media/<recordID>.
type index struct {
	store database.Store
}

func (x index) add(ctx context.Context, recordID, label string, items []models.MediaPointer) error {
	var doc models.RelayMedia
	err := x.store.Get(ctx, models.CollectionRelayMedia, recordID, &doc)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	doc.RecordID = recordID
	doc.Label = label
	doc.Items = append(doc.Items, items...)
	doc.ID = ""
	if err := x.store.Set(ctx, models.CollectionRelayMedia, recordID, doc); err != nil {
		return fmt.Errorf("index media for %s: %w", recordID, err)
	}
	return nil
}

func (x index) list(ctx context.Context, recordID string) ([]models.MediaPointer, error) {
	var doc models.RelayMedia
	err := x.store.Get(ctx, models.CollectionRelayMedia, recordID, &doc)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func (x index) item(ctx context.Context, recordID string, n int) (models.MediaPointer, error) {
	items, err := x.list(ctx, recordID)
	if err != nil {
		return models.MediaPointer{}, err
	}
	if n < 0 || n >= len(items) {
		return models.MediaPointer{}, ErrNoMedia
	}
	return items[n], nil
}

// None is the relay used when no driver is configured.
type None struct {
	store database.Store
}

func NewNone(store database.Store) *None { return &None{store: store} }

func (*None) Name() string { return NameNone }

// Send accepts records without files and refuses the rest.
func (*None) Send(_ context.Context, _ Record, _ string, files []File, _ *models.RelayProgress) error {
	if len(files) > 0 {
		return ErrDisabled
	}
	return nil
}

// Media still reads the index so attachments delivered under an earlier
// driver stay visible.
func (n *None) Media(ctx context.Context, recordID string) ([]models.MediaPointer, error) {
	if n.store == nil {
		return nil, nil
	}
	return index{n.store}.list(ctx, recordID)
}

// Open has nothing to read from.
func (n *None) Open(ctx context.Context, recordID string, i int, _ bool) (Download, error) {
	if n.store == nil {
		return Download{}, ErrNoMedia
	}
	if _, err := (index{n.store}).item(ctx, recordID, i); err != nil {
		return Download{}, err
	}
	return Download{}, ErrDisabled
}
