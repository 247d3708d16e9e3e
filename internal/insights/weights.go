package insights

import "time"

// Step-function weights applied to each purchase event. Thresholds are
// inclusive and checked highest-first.

// TimeWeight favors recent purchases: 1.5 within a week, 1.2 within a
// month, 1.0 within three months, 0.7 beyond that.
func TimeWeight(purchasedAt, now time.Time) float64 {
	daysAgo := int(now.Sub(purchasedAt).Hours() / 24)
	switch {
	case daysAgo <= 7:
		return 1.5
	case daysAgo <= 30:
		return 1.2
	case daysAgo <= 90:
		return 1.0
	default:
		return 0.7
	}
}

// QuantityWeight rewards bulk purchases: 1.5 at four or more units, 1.2 at
// two or more.
func QuantityWeight(quantity int) float64 {
	switch {
	case quantity >= 4:
		return 1.5
	case quantity >= 2:
		return 1.2
	default:
		return 1.0
	}
}

// RepeatBonus scales a product's aggregate score by how often it was
// re-bought. Applied once per product, not per event.
func RepeatBonus(purchaseCount int) float64 {
	switch {
	case purchaseCount >= 6:
		return 2.0
	case purchaseCount >= 4:
		return 1.5
	case purchaseCount >= 2:
		return 1.3
	default:
		return 1.0
	}
}
