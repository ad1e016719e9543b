package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testProduct(id int, name string, price string) Product {
	return Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	var cart Cart
	p := testProduct(1, "Coffee Beans 1kg", "18.50")

	cart.Add(p)
	cart.Add(p)
	cart.Add(p)

	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", cart.Lines[0].Quantity)
	}
}

func TestCart_CapturesPriceAtAddTime(t *testing.T) {
	var cart Cart
	p := testProduct(1, "Milk 1L", "2.40")
	cart.Add(p)

	// A later catalog price change must not affect the open cart.
	p.Price = decimal.RequireFromString("3.10")
	cart.Add(p)

	if !cart.Lines[0].Price.Equal(decimal.RequireFromString("2.40")) {
		t.Errorf("expected captured price 2.40, got %s", cart.Lines[0].Price)
	}
	if !cart.Total().Equal(decimal.RequireFromString("4.80")) {
		t.Errorf("expected total 4.80, got %s", cart.Total())
	}
}

func TestCart_Total(t *testing.T) {
	var cart Cart
	cart.Add(testProduct(1, "A", "10.00"))
	cart.Add(testProduct(2, "B", "0.99"))
	cart.SetQuantity(2, 5)

	want := decimal.RequireFromString("14.95")
	if !cart.Total().Equal(want) {
		t.Errorf("expected total %s, got %s", want, cart.Total())
	}
}

func TestCart_SetQuantityZeroRemovesLine(t *testing.T) {
	var cart Cart
	cart.Add(testProduct(1, "A", "1.00"))
	cart.Add(testProduct(2, "B", "2.00"))

	cart.SetQuantity(1, 0)

	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line after removal, got %d", len(cart.Lines))
	}
	if cart.Lines[0].ProductID != 2 {
		t.Errorf("expected remaining line to be product 2, got %d", cart.Lines[0].ProductID)
	}
}

func TestCart_Remove(t *testing.T) {
	var cart Cart
	cart.Add(testProduct(1, "A", "1.00"))
	cart.Remove(1)

	if !cart.IsEmpty() {
		t.Error("expected empty cart after removing the only line")
	}
	if !cart.Total().Equal(decimal.Zero) {
		t.Errorf("expected zero total, got %s", cart.Total())
	}
}

func TestCart_RemoveUnknownProductIsNoop(t *testing.T) {
	var cart Cart
	cart.Add(testProduct(1, "A", "1.00"))
	cart.Remove(99)

	if len(cart.Lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(cart.Lines))
	}
}
