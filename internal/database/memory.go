package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps documents in process, encoded the same way the Mongo
// backend stores them. It backs local development and the test suites.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]map[string]bson.M
	watchers map[string]map[int]chan Event
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]bson.M),
		watchers: make(map[string]map[int]chan Event),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	m, id, err := toBSON(doc, "")
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.coll(collection)[id] = m
	s.mu.Unlock()
	s.notify(collection)
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc any) error {
	m, _, err := toBSON(doc, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.coll(collection)[id] = m
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	normalized, err := normalize(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	m, ok := s.coll(collection)[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range normalized {
		m[k] = v
	}
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out any) error {
	s.mu.RLock()
	m, ok := s.docs[collection][id]
	var raw []byte
	var err error
	if ok {
		raw, err = bson.Marshal(m)
	}
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	setID(out, id)
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, q Query, out any) error {
	filters := make([]Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return err
		}
		filters = append(filters, Filter{Field: f.Field, Value: v})
	}

	s.mu.RLock()
	var matched []bson.M
	for _, m := range s.docs[collection] {
		if matches(m, filters) {
			matched = append(matched, m)
		}
	}
	raws := make([][]byte, 0, len(matched))
	ids := make([]string, 0, len(matched))
	sortDocs(matched, q)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	for _, m := range matched {
		raw, err := bson.Marshal(m)
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		raws = append(raws, raw)
		id, _ := m["_id"].(string)
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	return fillSlice(out, len(raws), func(i int, dst any) (string, error) {
		return ids[i], bson.Unmarshal(raws[i], dst)
	})
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id string, counters map[string]int64, set map[string]any) error {
	normalized, err := normalize(set)
	if err != nil {
		return err
	}
	s.mu.Lock()
	docs := s.coll(collection)
	m, ok := docs[id]
	if !ok {
		m = bson.M{"_id": id}
		docs[id] = m
	}
	for k, n := range counters {
		m[k] = toInt64(m[k]) + n
	}
	for k, v := range normalized {
		m[k] = v
	}
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.coll(collection), id)
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, collection string, q Query) (<-chan Event, error) {
	ch := make(chan Event, 1)
	ch <- Event{Collection: collection, At: time.Now()}

	s.mu.Lock()
	if s.watchers[collection] == nil {
		s.watchers[collection] = make(map[int]chan Event)
	}
	key := s.nextID
	s.nextID++
	s.watchers[collection][key] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[collection], key)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *MemoryStore) Close() error { return nil }

// coll must be called with mu held.
func (s *MemoryStore) coll(name string) map[string]bson.M {
	c, ok := s.docs[name]
	if !ok {
		c = make(map[string]bson.M)
		s.docs[name] = c
	}
	return c
}

func (s *MemoryStore) notify(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers[collection] {
		select {
		case ch <- Event{Collection: collection, At: time.Now()}:
		default:
			// A pending event already tells the listener to re-read.
		}
	}
}

func normalize(fields map[string]any) (bson.M, error) {
	if len(fields) == 0 {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	m := bson.M{}
	return m, bson.Unmarshal(raw, &m)
}

func normalizeValue(v any) (any, error) {
	m, err := normalize(map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func matches(m bson.M, filters []Filter) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(m[f.Field], f.Value) {
			return false
		}
	}
	return true
}

func sortDocs(docs []bson.M, q Query) {
	if q.OrderBy == "" {
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i]["_id"].(string)
			b, _ := docs[j]["_id"].(string)
			return a < b
		})
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i][q.OrderBy], docs[j][q.OrderBy])
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case primitive.DateTime:
		bv, _ := b.(primitive.DateTime)
		return cmpOrdered(int64(av), int64(bv))
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case int32, int64:
		return cmpOrdered(toInt64(a), toInt64(b))
	case float64:
		bv, _ := b.(float64)
		return cmpOrdered(av, bv)
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	return 0
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
