package relay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Entries looked at per drain pass.
const outboxBatch = 50

// Tries per entry within one pass.
const triesPerPass = 3

type OutboxConfig struct {
	SpoolDir    string
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// Outbox keeps attachments whose first delivery failed and retries them in
// the background. The owning record is never touched.
type Outbox struct {
	store      database.Store
	relay      Relay
	cfg        OutboxConfig
	log        zerolog.Logger
	newBackOff func() backoff.BackOff
}

func NewOutbox(store database.Store, relay Relay, cfg OutboxConfig, log zerolog.Logger) *Outbox {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Outbox{
		store: store,
		relay: relay,
		cfg:   cfg,
		log:   log,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 10 * time.Second
			return b
		},
	}
}

// Enqueue spools files under SpoolDir/<entryID>/ and records the entry
// together with how far the first delivery got.
func (o *Outbox) Enqueue(ctx context.Context, rec Record, label string, files []File, progress models.RelayProgress, cause error) (string, error) {
	id := uuid.NewString()
	dir := filepath.Join(o.cfg.SpoolDir, id)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create spool dir: %w", err)
	}

	spooled := make([]models.SpooledFile, 0, len(files))
	for i, f := range files {
		p := filepath.Join(dir, strconv.Itoa(i)+"-"+filepath.Base(f.Name))
		if err := os.WriteFile(p, f.Data, 0o640); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("spool %s: %w", f.Name, err)
		}
		spooled = append(spooled, models.SpooledFile{Name: f.Name, ContentType: f.ContentType, Path: p, Size: int64(len(f.Data))})
	}

	now := time.Now().UTC()
	entry := models.OutboxEntry{
		RecordID:   rec.ID,
		Collection: rec.Collection,
		Label:      label,
		Fields:     rec.Fields,
		Files:      spooled,
		Progress:   progress,
		State:      models.OutboxPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cause != nil {
		entry.LastError = cause.Error()
	}
	if err := o.store.Set(ctx, models.CollectionRelayOutbox, id, entry); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("write outbox entry: %w", err)
	}
	return id, nil
}

// DrainResult counts what one pass did.
type DrainResult struct {
	Delivered int
	Failed    int
	Pending   int
}

// Drain makes one pass over pending entries.
func (o *Outbox) Drain(ctx context.Context) (DrainResult, error) {
	var res DrainResult
	if o.relay.Name() == NameNone {
		return res, nil
	}
	var entries []models.OutboxEntry
	q := database.Where("state", models.OutboxPending).Order("createdAt", false).Take(outboxBatch)
	if err := o.store.Find(ctx, models.CollectionRelayOutbox, q, &entries); err != nil {
		return res, fmt.Errorf("list outbox: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		switch o.deliver(ctx, &e) {
		case models.OutboxDelivered:
			res.Delivered++
		case models.OutboxFailed:
			res.Failed++
		default:
			res.Pending++
		}
	}
	return res, nil
}

func (o *Outbox) deliver(ctx context.Context, e *models.OutboxEntry) string {
	log := o.log.With().Str("entry", e.ID).Str("record", e.RecordID).Logger()

	files, err := loadSpool(e.Files)
	if err != nil {
		// Spool lost; nothing left to retry.
		e.LastError = err.Error()
		return o.finish(ctx, e, models.OutboxFailed, log)
	}

	rec := Record{ID: e.RecordID, Collection: e.Collection, Fields: e.Fields}
	tries := min(triesPerPass, o.cfg.MaxAttempts-e.Attempts)
	if tries < 1 {
		return o.finish(ctx, e, models.OutboxFailed, log)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		e.Attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
		err := o.relay.Send(attemptCtx, rec, e.Label, files, &e.Progress)
		if errors.Is(err, ErrDisabled) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(o.newBackOff()), backoff.WithMaxTries(uint(tries)))

	if err == nil {
		e.LastError = ""
		state := o.finish(ctx, e, models.OutboxDelivered, log)
		if len(e.Files) > 0 {
			if rmErr := os.RemoveAll(filepath.Dir(e.Files[0].Path)); rmErr != nil {
				log.Warn().Err(rmErr).Msg("remove spool")
			}
		}
		return state
	}

	e.LastError = err.Error()
	log.Warn().Err(err).Int("attempts", e.Attempts).Msg("outbox delivery failed")
	if e.Attempts >= o.cfg.MaxAttempts {
		return o.finish(ctx, e, models.OutboxFailed, log)
	}
	return o.finish(ctx, e, models.OutboxPending, log)
}

func (o *Outbox) finish(ctx context.Context, e *models.OutboxEntry, state string, log zerolog.Logger) string {
	e.State = state
	err := o.store.Update(ctx, models.CollectionRelayOutbox, e.ID, map[string]any{
		"state":     state,
		"attempts":  e.Attempts,
		"lastError": e.LastError,
		"progress":  e.Progress,
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("state", state).Msg("update outbox entry")
	}
	switch state {
	case models.OutboxDelivered:
		log.Info().Int("attempts", e.Attempts).Msg("outbox entry delivered")
	case models.OutboxFailed:
		log.Error().Str("lastError", e.LastError).Msg("outbox entry given up")
	}
	return state
}

func loadSpool(spooled []models.SpooledFile) ([]File, error) {
	files := make([]File, 0, len(spooled))
	for _, s := range spooled {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("read spool %s: %w", s.Name, err)
		}
		files = append(files, File{Name: s.Name, ContentType: s.ContentType, Data: data})
	}
	return files, nil
}

// Run drains on every interval until ctx is done.
func (o *Outbox) Run(ctx context.Context) error {
	o.log.Info().Dur("interval", o.cfg.Interval).Str("relay", o.relay.Name()).Msg("outbox worker started")
	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()
	for {
		res, err := o.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			o.log.Error().Err(err).Msg("outbox drain")
		} else if res.Delivered+res.Failed > 0 {
			o.log.Info().Int("delivered", res.Delivered).Int("failed", res.Failed).Int("pending", res.Pending).Msg("outbox drained")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
