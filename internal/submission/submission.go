// Package submission writes a form's record and then relays its
// attachments. The two steps are not atomic: a relay failure never removes
// the record, it parks the files in the outbox instead.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/internal/view"

	"github.com/rs/zerolog"
)

const (
	WarningRelay         = "Record saved, but photos could not be delivered yet. They will be retried."
	WarningRelayDisabled = "Record saved. Photo delivery is not set up, so the photos are being kept on the server for now."
	WarningSummary       = "Record saved, but the operator summary could not be updated."
)

var ErrNotReviewable = errors.New("records in this collection are not reviewed")

// Result of a submission. Warning is set when the record was stored but a
// follow-up step failed.
type Result struct {
	ID      string
	Warning string
}

// Success is the banner text for a stored record.
func Success(label string) string {
	return label + " submitted successfully."
}

// Enqueuer parks undelivered attachments.
type Enqueuer interface {
	Enqueue(ctx context.Context, rec relay.Record, label string, files []relay.File, progress models.RelayProgress, cause error) (string, error)
}

type Service struct {
	store   database.Store
	relay   relay.Relay
	outbox  Enqueuer
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(store database.Store, r relay.Relay, outbox Enqueuer, timeout time.Duration, log zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{store: store, relay: r, outbox: outbox, timeout: timeout, log: log, now: time.Now}
}

// Submit stores doc in collection, then relays files under label. A store
// failure is returned and nothing is relayed.
func (s *Service) Submit(ctx context.Context, collection string, doc any, files []relay.File, label string) (Result, error) {
	id, err := s.store.Create(ctx, collection, doc)
	if err != nil {
		return Result{}, fmt.Errorf("save %s: %w", collection, err)
	}
	res := Result{ID: id}
	log := s.log.With().Str("collection", collection).Str("record", id).Logger()
	log.Info().Int("files", len(files)).Msg("record stored")

	if len(files) == 0 {
		return res, nil
	}

	fields, err := view.FlattenRecord(doc)
	if err != nil {
		fields = map[string]string{}
	}
	rec := relay.Record{ID: id, Collection: collection, Fields: fields}

	var progress models.RelayProgress
	relayCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.relay.Send(relayCtx, rec, label, files, &progress)
	cancel()
	if err == nil {
		return res, nil
	}

	if errors.Is(err, relay.ErrDisabled) {
		log.Warn().Int("files", len(files)).Msg("no relay configured, keeping attachments")
		res.Warning = WarningRelayDisabled
	} else {
		log.Error().Err(err).Str("relay", s.relay.Name()).Int("sent", progress.FilesSent).Msg("relay attachments")
		res.Warning = WarningRelay
	}
	if s.outbox == nil {
		return res, nil
	}
	entryID, qerr := s.outbox.Enqueue(ctx, rec, label, files, progress, err)
	if qerr != nil {
		log.Error().Err(qerr).Msg("enqueue attachments")
		return res, nil
	}
	log.Info().Str("entry", entryID).Msg("attachments queued for retry")
	return res, nil
}

// SubmitDeviceChange stores the request and bumps the operator's summary.
// A summary failure is reported as a warning; the request stays stored.
func (s *Service) SubmitDeviceChange(ctx context.Context, change *models.DeviceIDChange) (Result, error) {
	res, err := s.Submit(ctx, models.CollectionDeviceIDChanges, change, nil, "device-change")
	if err != nil {
		return res, err
	}

	counters := map[string]int64{"totalRequests": 1}
	switch change.DeviceType {
	case models.DeviceTypePOS:
		counters["posRequests"] = 1
	case models.DeviceTypePhone:
		counters["phoneRequests"] = 1
	}
	set := map[string]any{"operator": change.Operator, "lastRequestAt": s.now().UTC()}
	if err := s.store.Increment(ctx, models.CollectionOperatorDeviceSummary, SummaryID(change.Operator), counters, set); err != nil {
		s.log.Error().Err(err).Str("operator", change.Operator).Msg("update operator summary")
		res.Warning = WarningSummary
	}
	return res, nil
}

// SummaryID is the operator_device_summary document id for operator.
func SummaryID(operator string) string {
	return database.SafeID(operator)
}

// Review sets the reviewer side of a request.
func (s *Service) Review(ctx context.Context, collection, id string, status models.Status, reviewer, remarks string) error {
	if !models.Reviewable(collection) {
		return ErrNotReviewable
	}
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	now := s.now().UTC()
	fields := map[string]any{
		"status":     string(status),
		"reviewedBy": reviewer,
		"reviewedAt": now,
		"updatedAt":  now,
	}
	if remarks != "" {
		fields["remarks"] = remarks
	}
	err := s.store.Update(ctx, collection, id, fields)
	if errors.Is(err, database.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("review %s/%s: %w", collection, id, err)
	}
	s.log.Info().Str("collection", collection).Str("record", id).Str("status", string(status)).Str("by", reviewer).Msg("record reviewed")
	return nil
}
