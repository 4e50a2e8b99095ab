package entities

// ItemName identifies a produced model in the production plan
type ItemName string

// LineID identifies a physical assembly line
type LineID string

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64

// Pallets returns the number of whole pallets q fills
func (q Quantity) Pallets(palletSize Quantity) int64 {
	if palletSize <= 0 {
		return 0
	}
	return int64(q / palletSize)
}

// FloorToPallet rounds q down to a multiple of palletSize
func (q Quantity) FloorToPallet(palletSize Quantity) Quantity {
	if palletSize <= 0 || q <= 0 {
		return 0
	}
	return (q / palletSize) * palletSize
}

// IsPalletMultiple reports whether q is an exact multiple of palletSize
func (q Quantity) IsPalletMultiple(palletSize Quantity) bool {
	if palletSize <= 0 {
		return false
	}
	return q%palletSize == 0
}

// MinQuantity returns the smallest of the given quantities
func MinQuantity(first Quantity, rest ...Quantity) Quantity {
	lowest := first
	for _, q := range rest {
		if q < lowest {
			lowest = q
		}
	}
	return lowest
}
