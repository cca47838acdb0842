// Package abi implements the converter registry that maps typed host
// values to and from the wire-level ABI encoding the contract runtime
// speaks. Scalar conversion is delegated to go-ethereum's accounts/abi
// packer so the registry only has to own type resolution, registration
// order and the array/bytes collection shapes layered on top of it.
package abi

import "reflect"

// Encoder turns a host value into its ABI wire encoding. Accepts reports
// whether this particular encoder knows how to handle the given host
// value; the registry tries the encoders for a type's group in
// registration order and keeps the first that accepts.
type Encoder interface {
	Accepts(value interface{}) bool
	Encode(value interface{}) ([]byte, error)
	// WireType names the go-ethereum ABI type this encoder packs onto the
	// wire (e.g. "uint256", "address"). Collection factories use it to
	// build the element type of an array.
	WireType() string
}

// Decoder turns wire-level ABI bytes into a host value of the requested
// Go type. Accepts reports whether this decoder produces values of
// hostType.
type Decoder interface {
	Accepts(hostType reflect.Type) bool
	Decode(data []byte, hostType reflect.Type) (interface{}, error)
	// WireType names the go-ethereum ABI type this decoder reads off the
	// wire, mirroring Encoder.WireType.
	WireType() string
}
