package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field widths from table_layout.hpp, carried per SPEC_FULL.md.
const (
	MaxWarehouseName = 10
	MaxDistrictName  = 10
	MaxFirst         = 16
	MaxMiddle        = 2
	MaxLast          = 16
	PhoneLen         = 16
	CreditLen        = 2
	MaxCustomerData  = 500
	MaxHistoryData   = 24
	MaxDistInfo      = 24
	MaxItemName      = 24
	MaxItemData      = 50
	MaxStockData     = 50
)

// Item is the static product catalog. Primary key: (i_id).
type Item struct {
	IID   uint32
	IMID  uint32
	Price decimal.Decimal
	Name  string
	Data  string
}

func (r *Item) Key() ItemKey { return ItemKey{IID: r.IID} }

func (r *Item) Validate() error {
	if err := checkFixed("i_name", MaxItemName, r.Name); err != nil {
		return err
	}
	return checkFixed("i_data", MaxItemData, r.Data)
}

func (r *Item) DeepCopyFrom(other *Item) { *r = *other }

// Warehouse. Primary key: (w_id).
type Warehouse struct {
	WID     uint16
	Tax     decimal.Decimal
	YTD     decimal.Decimal
	Name    string
	Address Address
}

func (r *Warehouse) Key() WarehouseKey { return WarehouseKey{WID: r.WID} }

func (r *Warehouse) Validate() error {
	if err := checkFixed("w_name", MaxWarehouseName, r.Name); err != nil {
		return err
	}
	return r.Address.Validate()
}

func (r *Warehouse) DeepCopyFrom(other *Warehouse) { *r = *other }

// Stock: warehouse-partitioned inventory. Primary key: (s_w_id, s_i_id).
type Stock struct {
	WID        uint16
	IID        uint32
	Quantity   int16
	YTD        uint32
	OrderCnt   uint16
	RemoteCnt  uint16
	Dist       [10]string // s_dist_01 .. s_dist_10
	Data       string
}

func (r *Stock) Key() StockKey { return StockKey{WID: r.WID, IID: r.IID} }

func (r *Stock) Validate() error {
	for _, d := range r.Dist {
		if err := checkFixed("s_dist", MaxDistInfo, d); err != nil {
			return err
		}
	}
	return checkFixed("s_data", MaxStockData, r.Data)
}

func (r *Stock) DeepCopyFrom(other *Stock) { *r = *other }

// District. Primary key: (d_w_id, d_id).
type District struct {
	WID      uint16
	DID      uint8
	NextOID  uint32
	Tax      decimal.Decimal
	YTD      decimal.Decimal
	Name     string
	Address  Address
}

func (r *District) Key() DistrictKey { return DistrictKey{WID: r.WID, DID: r.DID} }

func (r *District) Validate() error {
	if err := checkFixed("d_name", MaxDistrictName, r.Name); err != nil {
		return err
	}
	return r.Address.Validate()
}

func (r *District) DeepCopyFrom(other *District) { *r = *other }

// Customer. Primary key: (c_w_id, c_d_id, c_id).
type Customer struct {
	WID          uint16
	DID          uint8
	CID          uint32
	PaymentCnt   uint16
	DeliveryCnt  uint16
	Since        time.Time
	CreditLim    decimal.Decimal
	Discount     decimal.Decimal
	Balance      decimal.Decimal
	YTDPayment   decimal.Decimal
	First        string
	Middle       string
	Last         string
	Phone        string
	Credit       string // "GC" good, "BC" bad
	Data         string
	Address      Address
}

func (r *Customer) Key() CustomerKey { return CustomerKey{WID: r.WID, DID: r.DID, CID: r.CID} }

func (r *Customer) SecondaryKey() CustomerSecondaryKey {
	return CustomerSecondaryKey{WID: r.WID, DID: r.DID, Last: r.Last, CID: r.CID}
}

func (r *Customer) Validate() error {
	if err := checkFixed("c_first", MaxFirst, r.First); err != nil {
		return err
	}
	if err := checkFixed("c_middle", MaxMiddle, r.Middle); err != nil {
		return err
	}
	if err := checkFixed("c_last", MaxLast, r.Last); err != nil {
		return err
	}
	if err := checkFixed("c_phone", PhoneLen, r.Phone); err != nil {
		return err
	}
	if err := checkFixed("c_credit", CreditLen, r.Credit); err != nil {
		return err
	}
	if err := checkFixed("c_data", MaxCustomerData, r.Data); err != nil {
		return err
	}
	return r.Address.Validate()
}

func (r *Customer) DeepCopyFrom(other *Customer) { *r = *other }

// History has no primary key; append-only. Grounded on
// table_layout.hpp's History struct (h_c_id, h_c_d_id, h_c_w_id, h_d_id,
// h_w_id, h_date, h_amount, h_data).
type History struct {
	CID     uint32
	CDID    uint8
	CWID    uint16
	DID     uint8
	WID     uint16
	Date    time.Time
	Amount  decimal.Decimal
	Data    string
}

func (r *History) Validate() error {
	return checkFixed("h_data", MaxHistoryData, r.Data)
}

func (r *History) DeepCopyFrom(other *History) { *r = *other }

// Order. Primary key: (o_w_id, o_d_id, o_id).
type Order struct {
	OID        uint32
	DID        uint8
	WID        uint16
	CID        uint32
	CarrierID  uint8 // 0 means "not yet delivered" (the original's null)
	OLCnt      uint8
	AllLocal   uint8
	EntryD     time.Time
}

func (r *Order) Key() OrderKey { return OrderKey{WID: r.WID, DID: r.DID, OID: r.OID} }

func (r *Order) SecondaryKey() OrderSecondaryKey {
	return OrderSecondaryKey{WID: r.WID, DID: r.DID, CID: r.CID, OID: r.OID}
}

func (r *Order) DeepCopyFrom(other *Order) { *r = *other }

// NewOrder. Primary key: (no_w_id, no_d_id, no_o_id).
type NewOrder struct {
	OID uint32
	DID uint8
	WID uint16
}

func (r *NewOrder) Key() NewOrderKey { return NewOrderKey{WID: r.WID, DID: r.DID, OID: r.OID} }

func (r *NewOrder) DeepCopyFrom(other *NewOrder) { *r = *other }

// OrderLine. Primary key: (ol_w_id, ol_d_id, ol_o_id, ol_number).
type OrderLine struct {
	OID         uint32
	DID         uint8
	WID         uint16
	Number      uint8
	IID         uint32
	SupplyWID   uint16
	Quantity    uint8
	Amount      decimal.Decimal
	DistInfo    string
}

func (r *OrderLine) Key() OrderLineKey {
	return OrderLineKey{WID: r.WID, DID: r.DID, OID: r.OID, Number: r.Number}
}

func (r *OrderLine) Validate() error {
	return checkFixed("ol_dist_info", MaxDistInfo, r.DistInfo)
}

func (r *OrderLine) DeepCopyFrom(other *OrderLine) { *r = *other }
