package values

// GasUsage is an amount of gas consumed or estimated for a transaction.
type GasUsage uint64

// Add returns a new GasUsage increased by the given padding.
func (g GasUsage) Add(extra uint64) GasUsage {
	return g + GasUsage(extra)
}

// GasPrice is the amount of wei offered per unit of gas.
type GasPrice uint64
