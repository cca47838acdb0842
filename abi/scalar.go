package abi

import (
	"fmt"
	"math/big"
	"reflect"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fforbeck/eth-propeller-core/values"
)

// packSingle and unpackSingle delegate the actual word-level ABI encoding
// to go-ethereum's accounts/abi packer, wrapping a single argument the way
// abi.Arguments does for a whole call.
func packSingle(wireType string, value interface{}) ([]byte, error) {
	t, err := ethabi.NewType(wireType, wireType, nil)
	if err != nil {
		return nil, err
	}
	return ethabi.Arguments{{Type: t}}.Pack(value)
}

func unpackSingle(wireType string, data []byte) (interface{}, error) {
	t, err := ethabi.NewType(wireType, wireType, nil)
	if err != nil {
		return nil, err
	}
	unpacked, err := ethabi.Arguments{{Type: t}}.Unpack(data)
	if err != nil {
		return nil, err
	}
	if len(unpacked) != 1 {
		return nil, fmt.Errorf("abi: expected exactly one unpacked value, got %d", len(unpacked))
	}
	return unpacked[0], nil
}

var (
	bigIntType = reflect.TypeOf((*big.Int)(nil))
	int64Type  = reflect.TypeOf(int64(0))
	uint64Type = reflect.TypeOf(uint64(0))
	boolType   = reflect.TypeOf(false)
	addrType   = reflect.TypeOf(values.Address{})
	bytesType  = reflect.TypeOf([]byte(nil))
	stringType = reflect.TypeOf("")
)

// BigIntEncoder packs *big.Int host values as a 256-bit word, the
// canonical wire representation for every width in the number group.
type BigIntEncoder struct{}

func (BigIntEncoder) Accepts(value interface{}) bool { _, ok := value.(*big.Int); return ok }
func (BigIntEncoder) Encode(value interface{}) ([]byte, error) {
	return packSingle("uint256", value.(*big.Int))
}
func (BigIntEncoder) WireType() string { return "uint256" }

// FixedWidthIntEncoder accepts the native Go integer kinds so callers are
// not forced to allocate a *big.Int for small on-wire values.
type FixedWidthIntEncoder struct{}

func (FixedWidthIntEncoder) Accepts(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func (FixedWidthIntEncoder) Encode(value interface{}) ([]byte, error) {
	n, err := toBigInt(value)
	if err != nil {
		return nil, err
	}
	return packSingle("uint256", n)
}
func (FixedWidthIntEncoder) WireType() string { return "uint256" }

func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return big.NewInt(int64(v)), nil
	case uint16:
		return big.NewInt(int64(v)), nil
	case uint32:
		return big.NewInt(int64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("abi: %T is not an integer host value", value)
	}
}

// BigIntDecoder decodes into *big.Int.
type BigIntDecoder struct{}

func (BigIntDecoder) Accepts(hostType reflect.Type) bool { return hostType == bigIntType }
func (BigIntDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	return unpackSingle("uint256", data)
}
func (BigIntDecoder) WireType() string { return "uint256" }

// FixedWidthIntDecoder decodes into int64/uint64 for callers that don't
// want to deal with *big.Int.
type FixedWidthIntDecoder struct{}

func (FixedWidthIntDecoder) Accepts(hostType reflect.Type) bool {
	return hostType == int64Type || hostType == uint64Type
}
func (FixedWidthIntDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	raw, err := unpackSingle("uint256", data)
	if err != nil {
		return nil, err
	}
	n := raw.(*big.Int)
	if hostType == int64Type {
		return n.Int64(), nil
	}
	return n.Uint64(), nil
}
func (FixedWidthIntDecoder) WireType() string { return "uint256" }

// BoolEncoder / BoolDecoder handle the bool group.
type BoolEncoder struct{}

func (BoolEncoder) Accepts(value interface{}) bool { _, ok := value.(bool); return ok }
func (BoolEncoder) Encode(value interface{}) ([]byte, error) {
	return packSingle("bool", value.(bool))
}
func (BoolEncoder) WireType() string { return "bool" }

type BoolDecoder struct{}

func (BoolDecoder) Accepts(hostType reflect.Type) bool { return hostType == boolType }
func (BoolDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	return unpackSingle("bool", data)
}
func (BoolDecoder) WireType() string { return "bool" }

// AddressEncoder / AddressDecoder handle the address group.
type AddressEncoder struct{}

func (AddressEncoder) Accepts(value interface{}) bool { _, ok := value.(values.Address); return ok }
func (AddressEncoder) Encode(value interface{}) ([]byte, error) {
	return packSingle("address", common.Address(value.(values.Address)))
}
func (AddressEncoder) WireType() string { return "address" }

type AddressDecoder struct{}

func (AddressDecoder) Accepts(hostType reflect.Type) bool { return hostType == addrType }
func (AddressDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	raw, err := unpackSingle("address", data)
	if err != nil {
		return nil, err
	}
	return values.Address(raw.(common.Address)), nil
}
func (AddressDecoder) WireType() string { return "address" }

// FixedBytesEncoder / FixedBytesDecoder handle scalar fixed-size byte
// words (bytesN). They assume a 32-byte word; narrower widths are encoded
// with trailing zero padding, matching Solidity's right-padding for
// bytesN < 32.
type FixedBytesEncoder struct{}

func (FixedBytesEncoder) Accepts(value interface{}) bool { _, ok := value.([]byte); return ok }
func (FixedBytesEncoder) Encode(value interface{}) ([]byte, error) {
	var word [32]byte
	copy(word[:], value.([]byte))
	return packSingle("bytes32", word)
}
func (FixedBytesEncoder) WireType() string { return "bytes32" }

type FixedBytesDecoder struct{}

func (FixedBytesDecoder) Accepts(hostType reflect.Type) bool { return hostType == bytesType }
func (FixedBytesDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	raw, err := unpackSingle("bytes32", data)
	if err != nil {
		return nil, err
	}
	word := raw.([32]byte)
	return word[:], nil
}
func (FixedBytesDecoder) WireType() string { return "bytes32" }

// StringEncoder / StringDecoder handle the string group.
type StringEncoder struct{}

func (StringEncoder) Accepts(value interface{}) bool { _, ok := value.(string); return ok }
func (StringEncoder) Encode(value interface{}) ([]byte, error) {
	return packSingle("string", value.(string))
}
func (StringEncoder) WireType() string { return "string" }

type StringDecoder struct{}

func (StringDecoder) Accepts(hostType reflect.Type) bool { return hostType == stringType }
func (StringDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	return unpackSingle("string", data)
}
func (StringDecoder) WireType() string { return "string" }

