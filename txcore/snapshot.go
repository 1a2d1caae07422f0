package txcore

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tpcc-txcore/engine/internal/snapshot"
	"github.com/tpcc-txcore/engine/pkg/record"
)

// SnapshotItems dumps every row of Items to a zstd-compressed BSON
// document via internal/snapshot — a diagnostic point-in-time copy,
// never a durability or recovery path (spec.md's Non-goals).
func (db *Database) SnapshotItems() ([]byte, error) {
	var rows []bson.D
	db.Items.RangeIter(record.ItemKey{}, nil, func(_ record.ItemKey, v record.Item) bool {
		rows = append(rows, bson.D{
			{Key: "iid", Value: int64(v.IID)},
			{Key: "imid", Value: int64(v.IMID)},
			{Key: "price", Value: v.Price.String()},
			{Key: "name", Value: v.Name},
			{Key: "data", Value: v.Data},
		})
		return true
	})
	return snapshot.Export(rows)
}

// RestoreItems reverses SnapshotItems, inserting every row back into
// Items and reporting how many rows were applied. Rows whose key
// already exists are skipped rather than overwritten: restoring a
// snapshot is additive, not a truncate-and-reload.
func (db *Database) RestoreItems(compressed []byte) (int, error) {
	rows, err := snapshot.Import(compressed)
	if err != nil {
		return 0, errors.Wrap(err, "txcore: restore items")
	}
	applied := 0
	for _, row := range rows {
		item, err := itemFromBSON(row)
		if err != nil {
			return applied, err
		}
		if db.Items.Insert(item.Key(), item) {
			applied++
		}
	}
	return applied, nil
}

func itemFromBSON(row bson.D) (record.Item, error) {
	var item record.Item
	for _, e := range row {
		switch e.Key {
		case "iid":
			v, ok := e.Value.(int64)
			if !ok {
				return item, errors.Newf("txcore: snapshot row field %q has type %T, want int64", e.Key, e.Value)
			}
			item.IID = uint32(v)
		case "imid":
			v, ok := e.Value.(int64)
			if !ok {
				return item, errors.Newf("txcore: snapshot row field %q has type %T, want int64", e.Key, e.Value)
			}
			item.IMID = uint32(v)
		case "price":
			s, ok := e.Value.(string)
			if !ok {
				return item, errors.Newf("txcore: snapshot row field %q has type %T, want string", e.Key, e.Value)
			}
			price, err := decimal.NewFromString(s)
			if err != nil {
				return item, errors.Wrap(err, "txcore: snapshot row field \"price\"")
			}
			item.Price = price
		case "name":
			item.Name, _ = e.Value.(string)
		case "data":
			item.Data, _ = e.Value.(string)
		}
	}
	return item, nil
}
