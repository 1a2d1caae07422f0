package txcore

import (
	"testing"

	stderrors "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/tpcc-txcore/engine/config"
	txerrors "github.com/tpcc-txcore/engine/pkg/errors"
	"github.com/tpcc-txcore/engine/pkg/record"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	cfg := config.Config{NumWarehouses: 1, NumThreads: 1, Mode: config.LockModeSerial}
	return Reset(cfg)
}

func newTestTx(t *testing.T, db *Database) *Transaction {
	t.Helper()
	cm := NewConcurrencyManager(db.Config())
	tx, res := New(db, cm, "test-worker", nil)
	if res != Success {
		t.Fatalf("failed to open transaction: %v", res)
	}
	return tx
}

// Scenario 1: insert-then-get round-trip.
func TestScenario_InsertThenGetRoundTrip(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	payload, res := tx.PrepareWarehouseForInsert(record.WarehouseKey{WID: 1})
	if res != Success {
		t.Fatalf("PrepareWarehouseForInsert: %v", res)
	}
	*payload = record.Warehouse{
		WID:  1,
		Tax:  decimal.NewFromFloat(0.1),
		YTD:  decimal.NewFromFloat(300000.0),
		Name: "W1",
		Address: record.Address{
			Street1: "s1", Street2: "s2", City: "city", State: "CA", Zip: "123456789",
		},
	}
	if !tx.Commit() {
		t.Fatal("expected commit to succeed")
	}

	tx2 := newTestTx(t, db)
	got, res := tx2.GetWarehouse(record.WarehouseKey{WID: 1})
	if res != Success {
		t.Fatalf("GetWarehouse: %v", res)
	}
	if got.Name != "W1" || !got.Tax.Equal(decimal.NewFromFloat(0.1)) {
		t.Fatalf("got %+v, want matching W1 record", got)
	}
	tx2.Abort()
}

// Scenario 2: double-insert fails.
func TestScenario_DoubleInsertFails(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	payload, res := tx.PrepareItemForInsert(record.ItemKey{IID: 42})
	if res != Success {
		t.Fatalf("PrepareItemForInsert: %v", res)
	}
	payload.Price = decimal.NewFromFloat(1.23)
	if !tx.Commit() {
		t.Fatal("expected commit to succeed")
	}

	tx2 := newTestTx(t, db)
	_, res = tx2.PrepareItemForInsert(record.ItemKey{IID: 42})
	if res != Fail {
		t.Fatalf("expected FAIL on double insert, got %v", res)
	}
	tx2.Abort()
}

// Scenario 3: update visible within transaction, not outside until commit.
func TestScenario_UpdateVisibleWithinTxOnly(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	p, _ := seed.PrepareDistrictForInsert(record.DistrictKey{WID: 1, DID: 1})
	*p = record.District{WID: 1, DID: 1, NextOID: 3001, Name: "D1"}
	seed.Commit()

	t1 := newTestTx(t, db)
	up, res := t1.PrepareDistrictForUpdate(record.DistrictKey{WID: 1, DID: 1})
	if res != Success {
		t.Fatalf("PrepareDistrictForUpdate: %v", res)
	}
	up.NextOID = 4000

	t2 := newTestTx(t, db)
	seen, res := t2.GetDistrict(record.DistrictKey{WID: 1, DID: 1})
	if res != Success {
		t.Fatalf("GetDistrict: %v", res)
	}
	if seen.NextOID != 3001 {
		t.Fatalf("t2 saw NextOID=%d before t1 commit, want 3001", seen.NextOID)
	}
	t2.Abort()

	if !t1.Commit() {
		t.Fatal("expected t1 commit to succeed")
	}

	t3 := newTestTx(t, db)
	final, _ := t3.GetDistrict(record.DistrictKey{WID: 1, DID: 1})
	if final.NextOID != 4000 {
		t.Fatalf("t3 saw NextOID=%d after commit, want 4000", final.NextOID)
	}
	t3.Abort()
}

// Scenario 4 + Abort purity property: abort restores prior state.
func TestScenario_AbortRestoresPriorState(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	p, _ := seed.PrepareDistrictForInsert(record.DistrictKey{WID: 1, DID: 1})
	*p = record.District{WID: 1, DID: 1, NextOID: 3001, Name: "D1"}
	seed.Commit()

	t1 := newTestTx(t, db)
	up, _ := t1.PrepareDistrictForUpdate(record.DistrictKey{WID: 1, DID: 1})
	up.NextOID = 9999
	t1.Abort()

	t2 := newTestTx(t, db)
	got, _ := t2.GetDistrict(record.DistrictKey{WID: 1, DID: 1})
	if got.NextOID != 3001 {
		t.Fatalf("NextOID = %d after abort, want 3001", got.NextOID)
	}
	t2.Abort()
}

// Scenario 5: secondary median selection.
func TestScenario_SecondaryMedianSelection(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	for cid, first := range map[uint32]string{1: "ANNA", 2: "BETTY", 3: "CECIL"} {
		p, res := seed.PrepareCustomerForInsert(record.CustomerKey{WID: 1, DID: 1, CID: cid})
		if res != Success {
			t.Fatalf("PrepareCustomerForInsert: %v", res)
		}
		*p = record.Customer{WID: 1, DID: 1, CID: cid, Last: "BARBAR", First: first}
	}
	if !seed.Commit() {
		t.Fatal("expected commit to succeed")
	}

	tx := newTestTx(t, db)
	median, res := tx.GetCustomerByLastName(1, 1, "BARBAR")
	if res != Success {
		t.Fatalf("GetCustomerByLastName: %v", res)
	}
	if median.First != "BETTY" {
		t.Fatalf("median.First = %q, want %q", median.First, "BETTY")
	}
	tx.Abort()
}

// Scenario 6: NewOrder smallest-key-in-district.
func TestScenario_NewOrderSmallestKeyInDistrict(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	for _, key := range []record.NewOrderKey{
		{WID: 1, DID: 1, OID: 2101},
		{WID: 1, DID: 1, OID: 2102},
		{WID: 1, DID: 2, OID: 2101},
	} {
		p, res := seed.PrepareNewOrderForInsert(key)
		if res != Success {
			t.Fatalf("PrepareNewOrderForInsert(%+v): %v", key, res)
		}
		*p = record.NewOrder{WID: key.WID, DID: key.DID, OID: key.OID}
	}
	if !seed.Commit() {
		t.Fatal("expected commit to succeed")
	}

	tx := newTestTx(t, db)
	hit, res := tx.GetNewOrderWithSmallestKeyNoLessThan(record.NewOrderKey{WID: 1, DID: 1, OID: 0})
	if res != Success {
		t.Fatalf("expected SUCCESS, got %v", res)
	}
	if hit.OID != 2101 {
		t.Fatalf("OID = %d, want 2101", hit.OID)
	}

	_, res = tx.GetNewOrderWithSmallestKeyNoLessThan(record.NewOrderKey{WID: 1, DID: 3, OID: 0})
	if res != Fail {
		t.Fatalf("expected FAIL for a district with no hit, got %v", res)
	}
	tx.Abort()
}

func TestRangeQueryVisitsAscendingOrder(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	for _, id := range []uint32{30, 10, 20} {
		p, _ := seed.PrepareItemForInsert(record.ItemKey{IID: id})
		p.Price = decimal.NewFromFloat(float64(id))
	}
	seed.Commit()

	tx := newTestTx(t, db)
	var seen []uint32
	res := tx.RangeQueryItem(record.ItemKey{IID: 0}, nil, func(i record.Item) {
		seen = append(seen, i.IID)
	})
	if res != Success {
		t.Fatalf("RangeQueryItem: %v", res)
	}
	want := []uint32{10, 20, 30}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
	tx.Abort()
}

func TestRangeUpdateOnlyMutatesStagedPayload(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	for _, id := range []uint32{1, 2, 3} {
		p, _ := seed.PrepareItemForInsert(record.ItemKey{IID: id})
		p.Price = decimal.NewFromInt(1)
	}
	seed.Commit()

	tx := newTestTx(t, db)
	res := tx.RangeUpdateItem(record.ItemKey{IID: 0}, nil, func(i *record.Item) {
		i.Price = i.Price.Add(decimal.NewFromInt(100))
	})
	if res != Success {
		t.Fatalf("RangeUpdateItem: %v", res)
	}

	other := newTestTx(t, db)
	unchanged, _ := other.GetItem(record.ItemKey{IID: 1})
	if !unchanged.Price.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("uncommitted range_update leaked into DB: price=%s", unchanged.Price)
	}
	other.Abort()

	if !tx.Commit() {
		t.Fatal("expected commit to succeed")
	}

	final := newTestTx(t, db)
	got, _ := final.GetItem(record.ItemKey{IID: 1})
	if !got.Price.Equal(decimal.NewFromInt(101)) {
		t.Fatalf("price = %s, want 101", got.Price)
	}
	final.Abort()
}

func TestHistoryAppendOnlyAndNeverFails(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	for i := 0; i < 3; i++ {
		tx.AppendHistory(record.History{CID: 1, WID: 1, DID: 1})
	}
	if !tx.Commit() {
		t.Fatal("expected commit to succeed")
	}

	if got := db.HistoryFor("test-worker").Len(); got != 3 {
		t.Fatalf("HistoryFor(test-worker).Len() = %d, want 3", got)
	}
}

func TestLastErrorReportsDomainFailCause(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	_, res := tx.GetItem(record.ItemKey{IID: 99})
	if res != Fail {
		t.Fatalf("GetItem: %v", res)
	}
	var notFound *txerrors.KeyNotFoundError
	if !stderrors.As(tx.LastError(), &notFound) {
		t.Fatalf("LastError() = %v, want *errors.KeyNotFoundError", tx.LastError())
	}
	tx.Abort()
}

func TestLastErrorClearsOnSuccessAfterFail(t *testing.T) {
	db := newTestDB(t)

	seed := newTestTx(t, db)
	p, _ := seed.PrepareItemForInsert(record.ItemKey{IID: 1})
	p.Price = decimal.NewFromFloat(1.0)
	seed.Commit()

	tx := newTestTx(t, db)
	if _, res := tx.GetItem(record.ItemKey{IID: 404}); res != Fail {
		t.Fatalf("expected FAIL on missing key, got %v", res)
	}
	if tx.LastError() == nil {
		t.Fatal("expected LastError() to report a cause after FAIL")
	}
	if _, res := tx.GetItem(record.ItemKey{IID: 1}); res != Success {
		t.Fatalf("expected SUCCESS on known key, got %v", res)
	}
	if tx.LastError() != nil {
		t.Fatalf("LastError() = %v, want nil after SUCCESS", tx.LastError())
	}
	tx.Abort()
}

func TestLastErrorReportsIntentConflictOnDoubleInsert(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	if _, res := tx.PrepareItemForInsert(record.ItemKey{IID: 1}); res != Success {
		t.Fatalf("first insert: %v", res)
	}
	if _, res := tx.PrepareItemForInsert(record.ItemKey{IID: 1}); res != Fail {
		t.Fatalf("expected FAIL on double insert, got %v", res)
	}
	var conflict *txerrors.IntentConflictError
	if !stderrors.As(tx.LastError(), &conflict) {
		t.Fatalf("LastError() = %v, want *errors.IntentConflictError", tx.LastError())
	}
	tx.Abort()
}

func TestLastErrorReportsEmptyRangeOnSecondaryLookup(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	if _, res := tx.GetCustomerByLastName(1, 1, "NOBODY"); res != Fail {
		t.Fatalf("expected FAIL, got %v", res)
	}
	var empty *txerrors.EmptyRangeError
	if !stderrors.As(tx.LastError(), &empty) {
		t.Fatalf("LastError() = %v, want *errors.EmptyRangeError", tx.LastError())
	}
	tx.Abort()
}

func TestLockReleaseOnCommitAndAbort(t *testing.T) {
	db := newTestDB(t)

	tx := newTestTx(t, db)
	tx.Commit()

	// A fresh transaction must be able to proceed: if locks leaked,
	// GlobalMutexManager's Begin would deadlock this single-threaded test.
	cfg := config.Config{NumWarehouses: 1, NumThreads: 2, Mode: config.LockModeGlobalMutex}
	db2 := Reset(cfg)
	t1 := newTestTx(t, db2)
	t1.Abort()
	t2 := newTestTx(t, db2)
	t2.Abort()
}
