package sales

// PricedLine pairs a quantity with the unit price in effect at sale time.
type PricedLine struct {
	Amount    int
	UnitPrice float64
}

// TotalPrice derives a sale's total from its line items. Prices are the ones
// resolved at validation time, so later product price changes never alter a
// recorded total.
func TotalPrice(lines []PricedLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += float64(line.Amount) * line.UnitPrice
	}
	return total
}
