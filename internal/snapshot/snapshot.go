// Package snapshot is a diagnostic export, not a recovery mechanism:
// spec.md's Non-goals explicitly exclude durability and crash recovery.
// It dumps a table's current rows to a zstd-compressed BSON document,
// useful for offline inspection or shipping a point-in-time copy
// somewhere else. Grounded on the teacher's pkg/storage/bson.go
// MarshalBson/UnmarshalBson pair, generalized from a single bson.D
// value to a slice of rows and wrapped with DataDog/zstd compression.
package snapshot

import (
	"github.com/DataDog/zstd"
	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Export serializes rows (one bson.D per row) to a zstd-compressed BSON
// array document.
func Export(rows []bson.D) ([]byte, error) {
	doc := bson.D{{Key: "rows", Value: rows}}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: marshal bson")
	}
	compressed, err := zstd.Compress(nil, raw)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: zstd compress")
	}
	return compressed, nil
}

// Import reverses Export.
func Import(compressed []byte) ([]bson.D, error) {
	raw, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: zstd decompress")
	}
	var doc struct {
		Rows []bson.D `bson:"rows"`
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "snapshot: unmarshal bson")
	}
	return doc.Rows, nil
}
