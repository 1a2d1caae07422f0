// Package txcore implements the engine core: Database, WriteSet,
// ConcurrencyManager and Transaction from spec.md §4.
package txcore

import (
	"sync"

	"github.com/tpcc-txcore/engine/config"
	"github.com/tpcc-txcore/engine/pkg/record"
)

// Database owns all committed state: one Table per primary table and
// per secondary index, plus the per-worker HistoryLogs. It is the only
// component that mutates committed rows, and it does so exclusively
// through the commit path (WriteSet.applyToDatabase) — spec.md §4.2.
type Database struct {
	Items      *Table[record.ItemKey, record.Item]
	Warehouses *Table[record.WarehouseKey, record.Warehouse]
	Stocks     *Table[record.StockKey, record.Stock]
	Districts  *Table[record.DistrictKey, record.District]
	Customers  *Table[record.CustomerKey, record.Customer]
	Orders     *Table[record.OrderKey, record.Order]
	NewOrders  *Table[record.NewOrderKey, record.NewOrder]
	OrderLines *Table[record.OrderLineKey, record.OrderLine]

	// customerSecondary and orderSecondary map a secondary key to the
	// primary key to resolve — spec.md §9's safer back-reference design
	// over the original's raw pointers.
	customerSecondary *Table[record.CustomerSecondaryKey, record.CustomerKey]
	orderSecondary    *Table[record.OrderSecondaryKey, record.OrderKey]

	histMu      sync.Mutex
	histories   map[string]*HistoryLog

	cfg config.Config
}

// New constructs an empty Database sized for cfg.
func New(cfg config.Config) *Database {
	return &Database{
		Items:      newTable[record.ItemKey, record.Item](true, record.KindItem),
		Warehouses: newTable[record.WarehouseKey, record.Warehouse](true, record.KindWarehouse),
		Stocks:     newTable[record.StockKey, record.Stock](true, record.KindStock),
		Districts:  newTable[record.DistrictKey, record.District](true, record.KindDistrict),
		Customers:  newTable[record.CustomerKey, record.Customer](true, record.KindCustomer),
		Orders:     newTable[record.OrderKey, record.Order](true, record.KindOrder),
		NewOrders:  newTable[record.NewOrderKey, record.NewOrder](true, record.KindNewOrder),
		OrderLines: newTable[record.OrderLineKey, record.OrderLine](true, record.KindOrderLine),

		customerSecondary: newTable[record.CustomerSecondaryKey, record.CustomerKey](true, record.KindCustomerSecondary),
		orderSecondary:    newTable[record.OrderSecondaryKey, record.OrderKey](true, record.KindOrderSecondary),

		histories: make(map[string]*HistoryLog),
		cfg:       cfg,
	}
}

var (
	instanceMu sync.Mutex
	instance   *Database
)

// GetDB returns the process-wide Database singleton, constructing it
// with config.DefaultConfig on first use — spec.md §6's
// `get_db() -> &Database` contract and §9's "initialise on first use".
func GetDB() *Database {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = New(config.DefaultConfig())
	}
	return instance
}

// Reset replaces the singleton with a fresh Database sized for cfg.
// This is the "reset hook for test isolation" spec.md §9 asks for; Go
// has no way to un-sync.Once a singleton, so Reset simply swaps the
// pointer under instanceMu instead.
func Reset(cfg config.Config) *Database {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = New(cfg)
	return instance
}

// Config reports the configuration the database was built with.
func (db *Database) Config() config.Config { return db.cfg }

// InsertCustomer inserts a customer and its derived CustomerSecondary
// entry atomically with respect to Database's own state — spec.md
// §4.2's "additionally inserts the secondary entry derived from the
// record".
func (db *Database) InsertCustomer(key record.CustomerKey, value record.Customer) bool {
	if !db.Customers.Insert(key, value) {
		return false
	}
	db.customerSecondary.Insert(value.SecondaryKey(), key)
	return true
}

// InsertOrder inserts an order and its derived OrderSecondary entry.
func (db *Database) InsertOrder(key record.OrderKey, value record.Order) bool {
	if !db.Orders.Insert(key, value) {
		return false
	}
	db.orderSecondary.Insert(value.SecondaryKey(), key)
	return true
}

// CustomersByLastName resolves every Customer sharing (wid, did, last)
// via the CustomerSecondary prefix range, in the secondary index's
// iteration order — spec.md §4.2's "iterates all CustomerSecondary
// entries equal to sec_key".
func (db *Database) CustomersByLastName(wid uint16, did uint8, last string) []record.Customer {
	low, up := record.LastNamePrefixRange(wid, did, last)
	var out []record.Customer
	db.customerSecondary.RangeIter(low, &up, func(_ record.CustomerSecondaryKey, pk record.CustomerKey) bool {
		if c, ok := db.Customers.Get(pk); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

// OrdersByCustomerID resolves every Order sharing (wid, did, cid) via
// the OrderSecondary prefix range.
func (db *Database) OrdersByCustomerID(wid uint16, did uint8, cid uint32) []record.Order {
	low, up := record.CustomerIDPrefixRange(wid, did, cid)
	var out []record.Order
	db.orderSecondary.RangeIter(low, &up, func(_ record.OrderSecondaryKey, pk record.OrderKey) bool {
		if o, ok := db.Orders.Get(pk); ok {
			out = append(out, o)
		}
		return true
	})
	return out
}

// HistoryFor returns (creating if necessary) the append-only history
// log belonging to worker. Each worker keeps its own log; nothing here
// merges logs across workers, per spec.md §9.
func (db *Database) HistoryFor(worker string) *HistoryLog {
	db.histMu.Lock()
	defer db.histMu.Unlock()
	h, ok := db.histories[worker]
	if !ok {
		h = &HistoryLog{}
		db.histories[worker] = h
	}
	return h
}
