package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. Watch needs a replica
// set because it rides on change streams.
type MongoStore struct {
	client *mongo.Client
	DB     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{client: client, DB: client.Database(dbName)}, nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	m, id, err := toBSON(doc, "")
	if err != nil {
		return "", err
	}
	if _, err := s.DB.Collection(collection).InsertOne(ctx, m); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc any) error {
	m, _, err := toBSON(doc, id)
	if err != nil {
		return err
	}
	_, err = s.DB.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := s.DB.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out any) error {
	err := s.DB.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, q Query, out any) error {
	filter := bson.M{}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.DB.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.Raw
	for cursor.Next(ctx) {
		raws = append(raws, append(bson.Raw(nil), cursor.Current...))
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	return fillSlice(out, len(raws), func(i int, dst any) (string, error) {
		id, _ := raws[i].Lookup("_id").StringValueOK()
		return id, bson.Unmarshal(raws[i], dst)
	})
}

func (s *MongoStore) Increment(ctx context.Context, collection, id string, counters map[string]int64, set map[string]any) error {
	update := bson.M{}
	if len(counters) > 0 {
		update["$inc"] = counters
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	_, err := s.DB.Collection(collection).UpdateByID(ctx, id, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("increment %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.DB.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Watch(ctx context.Context, collection string, q Query) (<-chan Event, error) {
	stream, err := s.DB.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}
	ch := make(chan Event, 1)
	ch <- Event{Collection: collection, At: time.Now()}
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			select {
			case ch <- Event{Collection: collection, At: time.Now()}:
			default:
			}
		}
	}()
	return ch, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
