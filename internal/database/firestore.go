package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreStore struct {
	Client *firestore.Client
}

// NewFirestoreStore opens a client for projectID. An empty databaseID means
// the default database; an empty credentialsFile falls back to ADC.
func NewFirestoreStore(ctx context.Context, projectID, databaseID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{Client: client}, nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	ref, _, err := s.Client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, doc any) error {
	if _, err := s.Client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	_, err := s.Client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string, out any) error {
	snap, err := s.Client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := snap.DataTo(out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	setID(out, snap.Ref.ID)
	return nil
}

func (s *FirestoreStore) query(collection string, q Query) firestore.Query {
	fq := s.Client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

func (s *FirestoreStore) Find(ctx context.Context, collection string, q Query, out any) error {
	it := s.query(collection, q).Documents(ctx)
	defer it.Stop()

	var snaps []*firestore.DocumentSnapshot
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("query %s: %w", collection, err)
		}
		snaps = append(snaps, snap)
	}
	return fillSlice(out, len(snaps), func(i int, dst any) (string, error) {
		return snaps[i].Ref.ID, snaps[i].DataTo(dst)
	})
}

func (s *FirestoreStore) Increment(ctx context.Context, collection, id string, counters map[string]int64, set map[string]any) error {
	data := make(map[string]any, len(counters)+len(set))
	for k, n := range counters {
		data[k] = firestore.Increment(n)
	}
	for k, v := range set {
		data[k] = v
	}
	if _, err := s.Client.Collection(collection).Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("increment %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.Client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Watch is a snapshot listener on the query. The first snapshot arrives
// straight away, matching the behaviour the dashboards expect.
func (s *FirestoreStore) Watch(ctx context.Context, collection string, q Query) (<-chan Event, error) {
	it := s.query(collection, q).Snapshots(ctx)
	ch := make(chan Event, 1)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				// Cancellation ends the listener the same way a failure does.
				return
			}
			at := snap.ReadTime
			if at.IsZero() {
				at = time.Now()
			}
			select {
			case ch <- Event{Collection: collection, At: at}:
			default:
			}
		}
	}()
	return ch, nil
}

func (s *FirestoreStore) Close() error {
	return s.Client.Close()
}
