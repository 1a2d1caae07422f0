package record

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestItemKeyDerivation(t *testing.T) {
	i := Item{IID: 42, Price: decimal.NewFromFloat(1.23), Name: "widget", Data: "data"}
	k := i.Key()
	if k.IID != 42 {
		t.Fatalf("Key().IID = %d, want 42", k.IID)
	}
}

func TestItemValidateRejectsOverlongName(t *testing.T) {
	i := Item{IID: 1, Name: "this name is definitely far too long for i_name"}
	if err := i.Validate(); err == nil {
		t.Fatal("expected error for overlong i_name")
	}
}

func TestItemValidateRejectsEmbeddedNUL(t *testing.T) {
	i := Item{IID: 1, Name: "bad\x00name"}
	if err := i.Validate(); err == nil {
		t.Fatal("expected error for embedded NUL")
	}
}

func TestWarehouseKeyAndValidate(t *testing.T) {
	w := Warehouse{
		WID:  1,
		Name: "Acme",
		Address: Address{
			Street1: "123 Main St", Street2: "", City: "Metropolis",
			State: "CA", Zip: "123456789",
		},
	}
	if w.Key() != (WarehouseKey{WID: 1}) {
		t.Fatalf("unexpected key: %+v", w.Key())
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestCustomerSecondaryKeyDerivation(t *testing.T) {
	c := Customer{WID: 1, DID: 2, CID: 99, Last: "BARBAR"}
	sk := c.SecondaryKey()
	want := CustomerSecondaryKey{WID: 1, DID: 2, Last: "BARBAR", CID: 99}
	if sk != want {
		t.Fatalf("SecondaryKey() = %+v, want %+v", sk, want)
	}
}

func TestOrderSecondaryKeyDerivation(t *testing.T) {
	o := Order{WID: 1, DID: 2, OID: 500, CID: 7}
	sk := o.SecondaryKey()
	want := OrderSecondaryKey{WID: 1, DID: 2, CID: 7, OID: 500}
	if sk != want {
		t.Fatalf("SecondaryKey() = %+v, want %+v", sk, want)
	}
}

func TestDeepCopyFromIsIndependent(t *testing.T) {
	src := Warehouse{WID: 1, Name: "Original", Tax: decimal.NewFromFloat(0.1)}
	var dst Warehouse
	dst.DeepCopyFrom(&src)
	src.Name = "Mutated"
	if dst.Name != "Original" {
		t.Fatalf("DeepCopyFrom aliased src: dst.Name = %q", dst.Name)
	}
}

func TestAddressValidateRejectsWrongStateLength(t *testing.T) {
	a := Address{Street1: "s1", Street2: "s2", City: "city", State: "California", Zip: "123456789"}
	if err := a.Validate(); err == nil {
		t.Fatal("expected error for state field exceeding 2 chars")
	}
}
