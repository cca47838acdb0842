package values

// Nonce is a per-account transaction counter. The chain never accepts a
// nonce lower than one it has already observed for that account.
type Nonce uint64

// Add returns a new Nonce offset by delta, used to derive the next free
// nonce given a count of transactions already in flight.
func (n Nonce) Add(delta uint32) Nonce {
	return n + Nonce(delta)
}

func (n Nonce) Uint64() uint64 {
	return uint64(n)
}
