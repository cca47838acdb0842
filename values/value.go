package values

import "math/big"

// maxWei is the largest value representable on-chain: 2^256 - 1.
var maxWei = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Value is an amount of the chain's native currency expressed in its
// smallest unit (wei). Arithmetic saturates at maxWei rather than
// overflowing, mirroring the protocol's uint256 ceiling.
type Value struct {
	amount *big.Int
}

// Wei builds a Value from an amount already expressed in wei.
func Wei(amount int64) Value {
	return Value{amount: big.NewInt(amount)}
}

// WeiFromBigInt builds a Value from an arbitrary-precision amount.
func WeiFromBigInt(amount *big.Int) Value {
	if amount == nil {
		return Value{amount: big.NewInt(0)}
	}
	return Value{amount: clamp(new(big.Int).Set(amount))}
}

func clamp(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(maxWei) > 0 {
		return new(big.Int).Set(maxWei)
	}
	return v
}

// BigInt returns the underlying amount. The returned pointer must not be mutated.
func (v Value) BigInt() *big.Int {
	if v.amount == nil {
		return big.NewInt(0)
	}
	return v.amount
}

// Add returns v+other, saturating at the protocol maximum.
func (v Value) Add(other Value) Value {
	return WeiFromBigInt(new(big.Int).Add(v.BigInt(), other.BigInt()))
}

// IsZero reports whether this is the additive identity wei(0).
func (v Value) IsZero() bool {
	return v.BigInt().Sign() == 0
}

func (v Value) String() string {
	return v.BigInt().String()
}
