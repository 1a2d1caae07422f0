package txcore

import (
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/tpcc-txcore/engine/internal/metrics"
	"github.com/tpcc-txcore/engine/internal/txlog"
	"github.com/tpcc-txcore/engine/pkg/cache"
	txerrors "github.com/tpcc-txcore/engine/pkg/errors"
	"github.com/tpcc-txcore/engine/pkg/record"
)

// Transaction is the top-level handle from spec.md §4.6: it opens a
// lifecycle (locks acquired on construction), routes reads through the
// write-set first and the Database second, and either drains its
// write-set into Database on Commit or discards it on Abort.
//
// A Transaction is owned by exactly one goroutine for its whole
// lifetime — spec.md §5's "each thread owns at most one active
// Transaction" — and must never be shared across goroutines.
type Transaction struct {
	ID      uuid.UUID
	db      *Database
	cm      ConcurrencyManager
	worker  string
	store   *cache.Store
	closed  bool
	lastErr error

	items      *writeSetTable[record.ItemKey, record.Item]
	warehouses *writeSetTable[record.WarehouseKey, record.Warehouse]
	stocks     *writeSetTable[record.StockKey, record.Stock]
	districts  *writeSetTable[record.DistrictKey, record.District]
	customers  *writeSetTable[record.CustomerKey, record.Customer]
	orders     *writeSetTable[record.OrderKey, record.Order]
	newOrders  *writeSetTable[record.NewOrderKey, record.NewOrder]
	orderLines *writeSetTable[record.OrderLineKey, record.OrderLine]

	historyBuf []record.History
}

// New constructs and opens a Transaction against db, using cm for
// isolation and worker to scope its HistoryLog and record allocator
// cache. store may be nil, in which case a fresh one is created; a
// caller driving many transactions from the same goroutine should
// instead keep one *cache.Store per goroutine and pass it every time,
// the idiomatic-Go stand-in for the original's thread_local allocator
// (spec.md §4.3, §9).
func New(db *Database, cm ConcurrencyManager, worker string, store *cache.Store) (*Transaction, Result) {
	if store == nil {
		store = cache.NewStoreWithBound(db.Config().RecordCacheBound)
	}
	id, err := uuid.NewV7()
	if err != nil {
		txlog.Fatal(errors.Wrap(err, "txcore: failed to generate transaction id"))
	}

	tx := &Transaction{
		ID:     id,
		db:     db,
		cm:     cm,
		worker: worker,
		store:  store,

		items:      newWriteSetTable[record.ItemKey, record.Item](cache.CacheFor[record.Item](store, record.KindItem.String())),
		warehouses: newWriteSetTable[record.WarehouseKey, record.Warehouse](cache.CacheFor[record.Warehouse](store, record.KindWarehouse.String())),
		stocks:     newWriteSetTable[record.StockKey, record.Stock](cache.CacheFor[record.Stock](store, record.KindStock.String())),
		districts:  newWriteSetTable[record.DistrictKey, record.District](cache.CacheFor[record.District](store, record.KindDistrict.String())),
		customers:  newWriteSetTable[record.CustomerKey, record.Customer](cache.CacheFor[record.Customer](store, record.KindCustomer.String())),
		orders:     newWriteSetTable[record.OrderKey, record.Order](cache.CacheFor[record.Order](store, record.KindOrder.String())),
		newOrders:  newWriteSetTable[record.NewOrderKey, record.NewOrder](cache.CacheFor[record.NewOrder](store, record.KindNewOrder.String())),
		orderLines: newWriteSetTable[record.OrderLineKey, record.OrderLine](cache.CacheFor[record.OrderLine](store, record.KindOrderLine.String())),
	}

	if !cm.Begin() {
		return nil, Abort
	}
	return tx, Success
}

// acquireRead is the sole caller of cm.AcquireRead: every denial is an
// ABORT, and the denial's cause is recorded as a LockDeniedError so
// LastError() can report it.
func (tx *Transaction) acquireRead(table record.Kind) bool {
	if tx.cm.AcquireRead(table) {
		tx.lastErr = nil
		return true
	}
	tx.lastErr = &txerrors.LockDeniedError{Table: table.String(), Mode: "shared"}
	return false
}

// acquireWrite is the write-lock counterpart of acquireRead.
func (tx *Transaction) acquireWrite(table record.Kind) bool {
	if tx.cm.AcquireWrite(table) {
		tx.lastErr = nil
		return true
	}
	tx.lastErr = &txerrors.LockDeniedError{Table: table.String(), Mode: "exclusive"}
	return false
}

// LastError returns the pkg/errors cause behind the most recently
// returned FAIL or ABORT, or nil after a SUCCESS. Result (spec.md
// §4.6) stays the primary contract every caller must check; LastError
// is a supplement for callers that want to type-switch on the reason
// rather than re-deriving one from the Result alone.
func (tx *Transaction) LastError() error { return tx.lastErr }

// ---- Item ----

func (tx *Transaction) GetItem(key record.ItemKey) (record.Item, Result) {
	if !tx.acquireRead(record.KindItem) {
		return record.Item{}, Abort
	}
	v, res, err := txGet(tx.items, tx.db.Items, record.KindItem.String(), key)
	tx.lastErr = err
	return v, res
}

func (tx *Transaction) PrepareItemForInsert(key record.ItemKey) (*record.Item, Result) {
	if !tx.acquireWrite(record.KindItem) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.items, tx.db.Items, record.KindItem.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareItemForUpdate(key record.ItemKey) (*record.Item, Result) {
	if !tx.acquireWrite(record.KindItem) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.items, tx.db.Items, record.KindItem.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteItem(key record.ItemKey) Result {
	if !tx.acquireWrite(record.KindItem) {
		return Abort
	}
	res, err := txDelete(tx.items, tx.db.Items, record.KindItem.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryItem(low record.ItemKey, up *record.ItemKey, f func(record.Item)) Result {
	if !tx.acquireRead(record.KindItem) {
		return Abort
	}
	return txRangeQuery(tx.db.Items, low, up, f)
}

func (tx *Transaction) RangeUpdateItem(low record.ItemKey, up *record.ItemKey, f func(*record.Item)) Result {
	if !tx.acquireWrite(record.KindItem) {
		return Abort
	}
	return txRangeUpdate(tx.items, tx.db.Items, low, up, f)
}

// ---- Warehouse ----

func (tx *Transaction) GetWarehouse(key record.WarehouseKey) (record.Warehouse, Result) {
	if !tx.acquireRead(record.KindWarehouse) {
		return record.Warehouse{}, Abort
	}
	v, res, err := txGet(tx.warehouses, tx.db.Warehouses, record.KindWarehouse.String(), key)
	tx.lastErr = err
	return v, res
}

func (tx *Transaction) PrepareWarehouseForInsert(key record.WarehouseKey) (*record.Warehouse, Result) {
	if !tx.acquireWrite(record.KindWarehouse) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.warehouses, tx.db.Warehouses, record.KindWarehouse.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareWarehouseForUpdate(key record.WarehouseKey) (*record.Warehouse, Result) {
	if !tx.acquireWrite(record.KindWarehouse) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.warehouses, tx.db.Warehouses, record.KindWarehouse.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteWarehouse(key record.WarehouseKey) Result {
	if !tx.acquireWrite(record.KindWarehouse) {
		return Abort
	}
	res, err := txDelete(tx.warehouses, tx.db.Warehouses, record.KindWarehouse.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryWarehouse(low record.WarehouseKey, up *record.WarehouseKey, f func(record.Warehouse)) Result {
	if !tx.acquireRead(record.KindWarehouse) {
		return Abort
	}
	return txRangeQuery(tx.db.Warehouses, low, up, f)
}

func (tx *Transaction) RangeUpdateWarehouse(low record.WarehouseKey, up *record.WarehouseKey, f func(*record.Warehouse)) Result {
	if !tx.acquireWrite(record.KindWarehouse) {
		return Abort
	}
	return txRangeUpdate(tx.warehouses, tx.db.Warehouses, low, up, f)
}

// ---- Stock ----

func (tx *Transaction) GetStock(key record.StockKey) (record.Stock, Result) {
	if !tx.acquireRead(record.KindStock) {
		return record.Stock{}, Abort
	}
	v, res, err := txGet(tx.stocks, tx.db.Stocks, record.KindStock.String(), key)
	tx.lastErr = err
	return v, res
}

func (tx *Transaction) PrepareStockForInsert(key record.StockKey) (*record.Stock, Result) {
	if !tx.acquireWrite(record.KindStock) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.stocks, tx.db.Stocks, record.KindStock.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareStockForUpdate(key record.StockKey) (*record.Stock, Result) {
	if !tx.acquireWrite(record.KindStock) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.stocks, tx.db.Stocks, record.KindStock.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteStock(key record.StockKey) Result {
	if !tx.acquireWrite(record.KindStock) {
		return Abort
	}
	res, err := txDelete(tx.stocks, tx.db.Stocks, record.KindStock.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryStock(low record.StockKey, up *record.StockKey, f func(record.Stock)) Result {
	if !tx.acquireRead(record.KindStock) {
		return Abort
	}
	return txRangeQuery(tx.db.Stocks, low, up, f)
}

func (tx *Transaction) RangeUpdateStock(low record.StockKey, up *record.StockKey, f func(*record.Stock)) Result {
	if !tx.acquireWrite(record.KindStock) {
		return Abort
	}
	return txRangeUpdate(tx.stocks, tx.db.Stocks, low, up, f)
}

// ---- District ----

func (tx *Transaction) GetDistrict(key record.DistrictKey) (record.District, Result) {
	if !tx.acquireRead(record.KindDistrict) {
		return record.District{}, Abort
	}
	v, res, err := txGet(tx.districts, tx.db.Districts, record.KindDistrict.String(), key)
	tx.lastErr = err
	return v, res
}

func (tx *Transaction) PrepareDistrictForInsert(key record.DistrictKey) (*record.District, Result) {
	if !tx.acquireWrite(record.KindDistrict) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.districts, tx.db.Districts, record.KindDistrict.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareDistrictForUpdate(key record.DistrictKey) (*record.District, Result) {
	if !tx.acquireWrite(record.KindDistrict) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.districts, tx.db.Districts, record.KindDistrict.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteDistrict(key record.DistrictKey) Result {
	if !tx.acquireWrite(record.KindDistrict) {
		return Abort
	}
	res, err := txDelete(tx.districts, tx.db.Districts, record.KindDistrict.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryDistrict(low record.DistrictKey, up *record.DistrictKey, f func(record.District)) Result {
	if !tx.acquireRead(record.KindDistrict) {
		return Abort
	}
	return txRangeQuery(tx.db.Districts, low, up, f)
}

func (tx *Transaction) RangeUpdateDistrict(low record.DistrictKey, up *record.DistrictKey, f func(*record.District)) Result {
	if !tx.acquireWrite(record.KindDistrict) {
		return Abort
	}
	return txRangeUpdate(tx.districts, tx.db.Districts, low, up, f)
}

// ---- Customer ----

func (tx *Transaction) GetCustomer(key record.CustomerKey) (record.Customer, Result) {
	if !tx.acquireRead(record.KindCustomer) {
		return record.Customer{}, Abort
	}
	v, res, err := txGet(tx.customers, tx.db.Customers, record.KindCustomer.String(), key)
	tx.lastErr = err
	return v, res
}

// PrepareCustomerForInsert stages a new Customer. The CustomerSecondary
// entry is derived and inserted only at commit time, alongside the
// primary, by Database.InsertCustomer — spec.md §4.2.
func (tx *Transaction) PrepareCustomerForInsert(key record.CustomerKey) (*record.Customer, Result) {
	if !tx.acquireWrite(record.KindCustomer) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.customers, tx.db.Customers, record.KindCustomer.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareCustomerForUpdate(key record.CustomerKey) (*record.Customer, Result) {
	if !tx.acquireWrite(record.KindCustomer) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.customers, tx.db.Customers, record.KindCustomer.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteCustomer(key record.CustomerKey) Result {
	if !tx.acquireWrite(record.KindCustomer) {
		return Abort
	}
	res, err := txDelete(tx.customers, tx.db.Customers, record.KindCustomer.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryCustomer(low record.CustomerKey, up *record.CustomerKey, f func(record.Customer)) Result {
	if !tx.acquireRead(record.KindCustomer) {
		return Abort
	}
	return txRangeQuery(tx.db.Customers, low, up, f)
}

func (tx *Transaction) RangeUpdateCustomer(low record.CustomerKey, up *record.CustomerKey, f func(*record.Customer)) Result {
	if !tx.acquireWrite(record.KindCustomer) {
		return Abort
	}
	return txRangeUpdate(tx.customers, tx.db.Customers, low, up, f)
}

// medianByFirstName implements spec.md §8's "Secondary median"
// property and §4.6's get_customer_by_last_name: sort ascending by
// c_first, return the (n+1)/2-th entry (1-indexed).
func medianByFirstName(matches []record.Customer) record.Customer {
	sort.Slice(matches, func(i, j int) bool { return matches[i].First < matches[j].First })
	idx := (len(matches)+1)/2 - 1
	return matches[idx]
}

// GetCustomerByLastName implements spec.md §4.6
// get_customer_by_last_name.
func (tx *Transaction) GetCustomerByLastName(wid uint16, did uint8, last string) (record.Customer, Result) {
	if !tx.acquireRead(record.KindCustomerSecondary) {
		return record.Customer{}, Abort
	}
	matches := tx.db.CustomersByLastName(wid, did, last)
	if len(matches) == 0 {
		tx.lastErr = &txerrors.EmptyRangeError{Table: record.KindCustomerSecondary.String(), Key: last}
		return record.Customer{}, Fail
	}
	tx.lastErr = nil
	return medianByFirstName(matches), Success
}

// GetCustomerByLastNameAndPrepareForUpdate resolves the same median
// customer as GetCustomerByLastName and stages it as an UPDATE,
// returning a mutable handle to the staged payload. The distilled
// spec.md prose omits this operation, but _examples's
// original_source/tx_engine/include/transaction.hpp exposes it
// alongside the by-value lookup, and payment/delivery-style
// transaction bodies need exactly this read-then-update shape, so it
// is carried forward here.
func (tx *Transaction) GetCustomerByLastNameAndPrepareForUpdate(wid uint16, did uint8, last string) (*record.Customer, Result) {
	if !tx.acquireWrite(record.KindCustomer) {
		return nil, Abort
	}
	matches := tx.db.CustomersByLastName(wid, did, last)
	if len(matches) == 0 {
		tx.lastErr = &txerrors.EmptyRangeError{Table: record.KindCustomerSecondary.String(), Key: last}
		return nil, Fail
	}
	median := medianByFirstName(matches)
	payload, res, err := txPrepareForUpdate(tx.customers, tx.db.Customers, record.KindCustomer.String(), median.Key())
	tx.lastErr = err
	return payload, res
}

// ---- Order ----

func (tx *Transaction) GetOrder(key record.OrderKey) (record.Order, Result) {
	if !tx.acquireRead(record.KindOrder) {
		return record.Order{}, Abort
	}
	v, res, err := txGet(tx.orders, tx.db.Orders, record.KindOrder.String(), key)
	tx.lastErr = err
	return v, res
}

// PrepareOrderForInsert stages a new Order; its OrderSecondary entry is
// derived and inserted only at commit time by Database.InsertOrder.
func (tx *Transaction) PrepareOrderForInsert(key record.OrderKey) (*record.Order, Result) {
	if !tx.acquireWrite(record.KindOrder) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.orders, tx.db.Orders, record.KindOrder.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareOrderForUpdate(key record.OrderKey) (*record.Order, Result) {
	if !tx.acquireWrite(record.KindOrder) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.orders, tx.db.Orders, record.KindOrder.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteOrder(key record.OrderKey) Result {
	if !tx.acquireWrite(record.KindOrder) {
		return Abort
	}
	res, err := txDelete(tx.orders, tx.db.Orders, record.KindOrder.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryOrder(low record.OrderKey, up *record.OrderKey, f func(record.Order)) Result {
	if !tx.acquireRead(record.KindOrder) {
		return Abort
	}
	return txRangeQuery(tx.db.Orders, low, up, f)
}

func (tx *Transaction) RangeUpdateOrder(low record.OrderKey, up *record.OrderKey, f func(*record.Order)) Result {
	if !tx.acquireWrite(record.KindOrder) {
		return Abort
	}
	return txRangeUpdate(tx.orders, tx.db.Orders, low, up, f)
}

// GetOrderByCustomerID implements spec.md §4.6 get_order_by_customer_id:
// among OrderSecondary entries equal to sec_key, the order with the
// maximal o_id.
func (tx *Transaction) GetOrderByCustomerID(wid uint16, did uint8, cid uint32) (record.Order, Result) {
	if !tx.acquireRead(record.KindOrderSecondary) {
		return record.Order{}, Abort
	}
	matches := tx.db.OrdersByCustomerID(wid, did, cid)
	if len(matches) == 0 {
		tx.lastErr = &txerrors.EmptyRangeError{
			Table: record.KindOrderSecondary.String(),
			Key:   fmt.Sprintf("%d,%d,%d", wid, did, cid),
		}
		return record.Order{}, Fail
	}
	tx.lastErr = nil
	best := matches[0]
	for _, o := range matches[1:] {
		if o.OID > best.OID {
			best = o
		}
	}
	return best, Success
}

// ---- NewOrder ----

func (tx *Transaction) GetNewOrder(key record.NewOrderKey) (record.NewOrder, Result) {
	if !tx.acquireRead(record.KindNewOrder) {
		return record.NewOrder{}, Abort
	}
	v, res, err := txGet(tx.newOrders, tx.db.NewOrders, record.KindNewOrder.String(), key)
	tx.lastErr = err
	return v, res
}

func (tx *Transaction) PrepareNewOrderForInsert(key record.NewOrderKey) (*record.NewOrder, Result) {
	if !tx.acquireWrite(record.KindNewOrder) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.newOrders, tx.db.NewOrders, record.KindNewOrder.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareNewOrderForUpdate(key record.NewOrderKey) (*record.NewOrder, Result) {
	if !tx.acquireWrite(record.KindNewOrder) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.newOrders, tx.db.NewOrders, record.KindNewOrder.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteNewOrder(key record.NewOrderKey) Result {
	if !tx.acquireWrite(record.KindNewOrder) {
		return Abort
	}
	res, err := txDelete(tx.newOrders, tx.db.NewOrders, record.KindNewOrder.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryNewOrder(low record.NewOrderKey, up *record.NewOrderKey, f func(record.NewOrder)) Result {
	if !tx.acquireRead(record.KindNewOrder) {
		return Abort
	}
	return txRangeQuery(tx.db.NewOrders, low, up, f)
}

func (tx *Transaction) RangeUpdateNewOrder(low record.NewOrderKey, up *record.NewOrderKey, f func(*record.NewOrder)) Result {
	if !tx.acquireWrite(record.KindNewOrder) {
		return Abort
	}
	return txRangeUpdate(tx.newOrders, tx.db.NewOrders, low, up, f)
}

// GetNewOrderWithSmallestKeyNoLessThan implements spec.md §4.6
// get_neworder_with_smallest_key_no_less_than: the hit must lie within
// low's (w_id, d_id), else FAIL even though a smaller-in-the-whole-tree
// key exists in a different district.
func (tx *Transaction) GetNewOrderWithSmallestKeyNoLessThan(low record.NewOrderKey) (record.NewOrder, Result) {
	if !tx.acquireRead(record.KindNewOrder) {
		return record.NewOrder{}, Abort
	}
	key, value, ok := tx.db.NewOrders.Ceiling(low)
	if !ok || key.WID != low.WID || key.DID != low.DID {
		tx.lastErr = &txerrors.KeyNotFoundError{Table: record.KindNewOrder.String(), Key: low.String()}
		return record.NewOrder{}, Fail
	}
	tx.lastErr = nil
	return value, Success
}

// ---- OrderLine ----

func (tx *Transaction) GetOrderLine(key record.OrderLineKey) (record.OrderLine, Result) {
	if !tx.acquireRead(record.KindOrderLine) {
		return record.OrderLine{}, Abort
	}
	v, res, err := txGet(tx.orderLines, tx.db.OrderLines, record.KindOrderLine.String(), key)
	tx.lastErr = err
	return v, res
}

func (tx *Transaction) PrepareOrderLineForInsert(key record.OrderLineKey) (*record.OrderLine, Result) {
	if !tx.acquireWrite(record.KindOrderLine) {
		return nil, Abort
	}
	payload, res, err := txPrepareForInsert(tx.orderLines, tx.db.OrderLines, record.KindOrderLine.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) PrepareOrderLineForUpdate(key record.OrderLineKey) (*record.OrderLine, Result) {
	if !tx.acquireWrite(record.KindOrderLine) {
		return nil, Abort
	}
	payload, res, err := txPrepareForUpdate(tx.orderLines, tx.db.OrderLines, record.KindOrderLine.String(), key)
	tx.lastErr = err
	return payload, res
}

func (tx *Transaction) DeleteOrderLine(key record.OrderLineKey) Result {
	if !tx.acquireWrite(record.KindOrderLine) {
		return Abort
	}
	res, err := txDelete(tx.orderLines, tx.db.OrderLines, record.KindOrderLine.String(), key)
	tx.lastErr = err
	return res
}

func (tx *Transaction) RangeQueryOrderLine(low record.OrderLineKey, up *record.OrderLineKey, f func(record.OrderLine)) Result {
	if !tx.acquireRead(record.KindOrderLine) {
		return Abort
	}
	return txRangeQuery(tx.db.OrderLines, low, up, f)
}

func (tx *Transaction) RangeUpdateOrderLine(low record.OrderLineKey, up *record.OrderLineKey, f func(*record.OrderLine)) Result {
	if !tx.acquireWrite(record.KindOrderLine) {
		return Abort
	}
	return txRangeUpdate(tx.orderLines, tx.db.OrderLines, low, up, f)
}

// ---- History ----

// AppendHistory stages a History insert. History has no key and no
// failure mode (spec.md §3, §4.2); the staged payload is applied to
// the calling worker's HistoryLog at Commit.
func (tx *Transaction) AppendHistory(rec record.History) {
	tx.historyBuf = append(tx.historyBuf, rec)
}

// ---- Commit / Abort ----

// Commit drains the write-set into Database in key order per table,
// per spec.md §4.4's apply-to-database, then releases locks. Nothing
// in this in-memory core can fail an already-staged apply (no
// allocation limits, no persistence layer to reject a write), so
// Commit always succeeds; the bool return is kept for fidelity with
// spec.md §4.6's `commit() -> bool` contract and to leave room for a
// future failure source without an API change.
func (tx *Transaction) Commit() bool {
	if tx.closed {
		txlog.Fatal(errors.New("txcore: Commit called on a closed Transaction"))
	}
	start := time.Now()
	defer tx.cm.End()
	tx.closed = true

	tx.items.applyToDatabase(func(intent Intent, key record.ItemKey, payload record.Item) {
		applyIntent(intent, key, payload, tx.db.Items.Insert, tx.db.Items.Replace, tx.db.Items.Delete)
	})
	tx.warehouses.applyToDatabase(func(intent Intent, key record.WarehouseKey, payload record.Warehouse) {
		applyIntent(intent, key, payload, tx.db.Warehouses.Insert, tx.db.Warehouses.Replace, tx.db.Warehouses.Delete)
	})
	tx.stocks.applyToDatabase(func(intent Intent, key record.StockKey, payload record.Stock) {
		applyIntent(intent, key, payload, tx.db.Stocks.Insert, tx.db.Stocks.Replace, tx.db.Stocks.Delete)
	})
	tx.districts.applyToDatabase(func(intent Intent, key record.DistrictKey, payload record.District) {
		applyIntent(intent, key, payload, tx.db.Districts.Insert, tx.db.Districts.Replace, tx.db.Districts.Delete)
	})
	tx.customers.applyToDatabase(func(intent Intent, key record.CustomerKey, payload record.Customer) {
		applyIntent(intent, key, payload, tx.db.InsertCustomer, tx.db.Customers.Replace, tx.db.Customers.Delete)
	})
	tx.orders.applyToDatabase(func(intent Intent, key record.OrderKey, payload record.Order) {
		applyIntent(intent, key, payload, tx.db.InsertOrder, tx.db.Orders.Replace, tx.db.Orders.Delete)
	})
	tx.newOrders.applyToDatabase(func(intent Intent, key record.NewOrderKey, payload record.NewOrder) {
		applyIntent(intent, key, payload, tx.db.NewOrders.Insert, tx.db.NewOrders.Replace, tx.db.NewOrders.Delete)
	})
	tx.orderLines.applyToDatabase(func(intent Intent, key record.OrderLineKey, payload record.OrderLine) {
		applyIntent(intent, key, payload, tx.db.OrderLines.Insert, tx.db.OrderLines.Replace, tx.db.OrderLines.Delete)
	})

	if len(tx.historyBuf) > 0 {
		log := tx.db.HistoryFor(tx.worker)
		for _, h := range tx.historyBuf {
			log.Append(h)
		}
	}

	tx.clearWriteSets()
	metrics.Commits.Inc()
	metrics.CommitLatency.Observe(time.Since(start).Seconds())
	return true
}

// Abort discards every staged mutation and releases locks — spec.md
// §4.6's abort(). After Abort, Database is byte-identical to its state
// before the transaction began (spec.md §8's "Abort purity").
func (tx *Transaction) Abort() {
	if tx.closed {
		return
	}
	defer tx.cm.End()
	tx.closed = true

	tx.clearWriteSets()
	metrics.Aborts.WithLabelValues("client").Inc()
}

func (tx *Transaction) clearWriteSets() {
	tx.items.clear()
	tx.warehouses.clear()
	tx.stocks.clear()
	tx.districts.clear()
	tx.customers.clear()
	tx.orders.clear()
	tx.newOrders.clear()
	tx.orderLines.clear()
	tx.historyBuf = nil
}
