package record

import (
	"fmt"

	"github.com/tpcc-txcore/engine/pkg/btree"
)

// Every Key type below implements btree.Comparable by comparing fields
// in the declared order from spec.md §3 ("total-ordered lexicographically
// by their declared field order").

type ItemKey struct {
	IID uint32
}

func (k ItemKey) Compare(other btree.Comparable) int {
	o := other.(ItemKey)
	return cmpUint32(k.IID, o.IID)
}

func (k ItemKey) String() string { return fmt.Sprintf("item(%d)", k.IID) }

type WarehouseKey struct {
	WID uint16
}

func (k WarehouseKey) Compare(other btree.Comparable) int {
	o := other.(WarehouseKey)
	return cmpUint16(k.WID, o.WID)
}

func (k WarehouseKey) String() string { return fmt.Sprintf("warehouse(%d)", k.WID) }

type StockKey struct {
	WID uint16
	IID uint32
}

func (k StockKey) Compare(other btree.Comparable) int {
	o := other.(StockKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	return cmpUint32(k.IID, o.IID)
}

func (k StockKey) String() string { return fmt.Sprintf("stock(%d,%d)", k.WID, k.IID) }

type DistrictKey struct {
	WID uint16
	DID uint8
}

func (k DistrictKey) Compare(other btree.Comparable) int {
	o := other.(DistrictKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	return cmpUint8(k.DID, o.DID)
}

func (k DistrictKey) String() string { return fmt.Sprintf("district(%d,%d)", k.WID, k.DID) }

type CustomerKey struct {
	WID uint16
	DID uint8
	CID uint32
}

func (k CustomerKey) Compare(other btree.Comparable) int {
	o := other.(CustomerKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	if c := cmpUint8(k.DID, o.DID); c != 0 {
		return c
	}
	return cmpUint32(k.CID, o.CID)
}

func (k CustomerKey) String() string {
	return fmt.Sprintf("customer(%d,%d,%d)", k.WID, k.DID, k.CID)
}

// CustomerSecondaryKey is (c_w_id, c_d_id, c_last) per spec.md §3, with a
// trailing CID so the same unique-keyed tree used for primary tables
// (see pkg/btree) can host a logically multi-valued index: every
// customer sharing a last name gets a distinct key, and the [low, up)
// pair from LastNamePrefixRange reproduces the original's
// std::multimap equal_range.
type CustomerSecondaryKey struct {
	WID  uint16
	DID  uint8
	Last string
	CID  uint32
}

func (k CustomerSecondaryKey) Compare(other btree.Comparable) int {
	o := other.(CustomerSecondaryKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	if c := cmpUint8(k.DID, o.DID); c != 0 {
		return c
	}
	if c := cmpString(k.Last, o.Last); c != 0 {
		return c
	}
	return cmpUint32(k.CID, o.CID)
}

func (k CustomerSecondaryKey) String() string {
	return fmt.Sprintf("customer_secondary(%d,%d,%s,%d)", k.WID, k.DID, k.Last, k.CID)
}

// LastNamePrefixRange returns the half-open [low, up) bound that selects
// every CustomerSecondaryKey sharing (wid, did, last). up bumps Last to
// its immediate string successor (Compare orders Last ahead of CID) so
// the bound is exact regardless of CID, rather than capping CID at a
// sentinel that a real c_id could reach.
func LastNamePrefixRange(wid uint16, did uint8, last string) (low, up CustomerSecondaryKey) {
	return CustomerSecondaryKey{WID: wid, DID: did, Last: last, CID: 0},
		CustomerSecondaryKey{WID: wid, DID: did, Last: last + "\x00", CID: 0}
}

type OrderKey struct {
	WID uint16
	DID uint8
	OID uint32
}

func (k OrderKey) Compare(other btree.Comparable) int {
	o := other.(OrderKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	if c := cmpUint8(k.DID, o.DID); c != 0 {
		return c
	}
	return cmpUint32(k.OID, o.OID)
}

func (k OrderKey) String() string { return fmt.Sprintf("order(%d,%d,%d)", k.WID, k.DID, k.OID) }

// OrderSecondaryKey is (o_w_id, o_d_id, o_c_id) with a trailing OID, the
// same "append the primary tiebreaker" trick as CustomerSecondaryKey.
type OrderSecondaryKey struct {
	WID uint16
	DID uint8
	CID uint32
	OID uint32
}

func (k OrderSecondaryKey) Compare(other btree.Comparable) int {
	o := other.(OrderSecondaryKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	if c := cmpUint8(k.DID, o.DID); c != 0 {
		return c
	}
	if c := cmpUint32(k.CID, o.CID); c != 0 {
		return c
	}
	return cmpUint32(k.OID, o.OID)
}

func (k OrderSecondaryKey) String() string {
	return fmt.Sprintf("order_secondary(%d,%d,%d,%d)", k.WID, k.DID, k.CID, k.OID)
}

// CustomerIDPrefixRange returns the half-open [low, up) bound that
// selects every OrderSecondaryKey sharing (wid, did, cid). up bumps cid
// by one (Compare orders CID ahead of OID) instead of capping OID at a
// sentinel, so an order whose o_id reaches that sentinel is still
// included. cid+1 overflows only if cid == math.MaxUint32, unreachable
// for TPC-C customer ids.
func CustomerIDPrefixRange(wid uint16, did uint8, cid uint32) (low, up OrderSecondaryKey) {
	return OrderSecondaryKey{WID: wid, DID: did, CID: cid, OID: 0},
		OrderSecondaryKey{WID: wid, DID: did, CID: cid + 1, OID: 0}
}

type NewOrderKey struct {
	WID uint16
	DID uint8
	OID uint32
}

func (k NewOrderKey) Compare(other btree.Comparable) int {
	o := other.(NewOrderKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	if c := cmpUint8(k.DID, o.DID); c != 0 {
		return c
	}
	return cmpUint32(k.OID, o.OID)
}

func (k NewOrderKey) String() string {
	return fmt.Sprintf("new_order(%d,%d,%d)", k.WID, k.DID, k.OID)
}

type OrderLineKey struct {
	WID    uint16
	DID    uint8
	OID    uint32
	Number uint8
}

func (k OrderLineKey) Compare(other btree.Comparable) int {
	o := other.(OrderLineKey)
	if c := cmpUint16(k.WID, o.WID); c != 0 {
		return c
	}
	if c := cmpUint8(k.DID, o.DID); c != 0 {
		return c
	}
	if c := cmpUint32(k.OID, o.OID); c != 0 {
		return c
	}
	return cmpUint8(k.Number, o.Number)
}

func (k OrderLineKey) String() string {
	return fmt.Sprintf("order_line(%d,%d,%d,%d)", k.WID, k.DID, k.OID, k.Number)
}

func cmpUint8(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint16(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
