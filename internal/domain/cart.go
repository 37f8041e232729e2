package domain

import "time"

// CartLine is a (product, quantity) pair inside a cart. A persisted line
// always has quantity >= 1; dropping to zero removes the line instead.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart holds the line items of exactly one user. Version is the optimistic
// concurrency token: every write is conditional on the version it read.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AddOrIncrementLine bumps the product's line by one, appending a fresh
// quantity-1 line when the product is not in the cart yet. A product never
// occupies more than one line.
func AddOrIncrementLine(lines []CartLine, productID string) []CartLine {
	for i := range lines {
		if lines[i].ProductID == productID {
			out := append([]CartLine(nil), lines...)
			out[i].Quantity++
			return out
		}
	}
	out := append([]CartLine(nil), lines...)
	return append(out, CartLine{ProductID: productID, Quantity: 1})
}

// IncrementLine adds one to an existing line. The bool reports whether the
// product was present.
func IncrementLine(lines []CartLine, productID string) ([]CartLine, bool) {
	for i := range lines {
		if lines[i].ProductID == productID {
			out := append([]CartLine(nil), lines...)
			out[i].Quantity++
			return out, true
		}
	}
	return lines, false
}

// DecrementLine subtracts one from an existing line, removing it entirely
// when the quantity reaches zero.
func DecrementLine(lines []CartLine, productID string) ([]CartLine, bool) {
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if lines[i].Quantity <= 1 {
			out := make([]CartLine, 0, len(lines)-1)
			out = append(out, lines[:i]...)
			return append(out, lines[i+1:]...), true
		}
		out := append([]CartLine(nil), lines...)
		out[i].Quantity--
		return out, true
	}
	return lines, false
}

// RemoveLine drops the product's line regardless of quantity.
func RemoveLine(lines []CartLine, productID string) ([]CartLine, bool) {
	for i := range lines {
		if lines[i].ProductID == productID {
			out := make([]CartLine, 0, len(lines)-1)
			out = append(out, lines[:i]...)
			return append(out, lines[i+1:]...), true
		}
	}
	return lines, false
}
