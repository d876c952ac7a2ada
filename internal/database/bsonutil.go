package database

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// toBSON flattens doc into a bson.M carrying id as _id. A blank id gets a
// fresh uuid so every backend hands out string ids.
func toBSON(doc any, id string) (bson.M, string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	m["_id"] = id
	return m, id, nil
}
