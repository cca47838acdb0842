package abi

import (
	"fmt"
	"reflect"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// arrayCollectionFactory is the default CollectionEncoderFactory: it builds a go-ethereum slice or array ABI
// type out of the element converters' wire type and packs/unpacks the
// whole value in one go-ethereum call, rather than looping element by
// element by hand.
type arrayCollectionFactory struct{}

// NewArrayCollectionFactory returns the default collection factory used
// for every array-shaped AbiParam (element type repeated isArray times).
func NewArrayCollectionFactory() arrayCollectionFactory { return arrayCollectionFactory{} }

func (arrayCollectionFactory) NewDynamic(elementEncoders []Encoder) (Encoder, error) {
	if len(elementEncoders) == 0 {
		return nil, fmt.Errorf("abi: no element encoder available to build array encoder")
	}
	return &sliceEncoder{elemWireType: elementEncoders[0].WireType()}, nil
}

func (arrayCollectionFactory) NewFixed(elementEncoders []Encoder, size int) (Encoder, error) {
	if len(elementEncoders) == 0 {
		return nil, fmt.Errorf("abi: no element encoder available to build array encoder")
	}
	return &arrayEncoder{elemWireType: elementEncoders[0].WireType(), size: size}, nil
}

// arrayDecoderFactory is the decoder-side counterpart of
// arrayCollectionFactory, registered separately since encoders and
// decoders sit in two independent ordered factory lists.
type arrayDecoderFactory struct{}

// NewArrayCollectionDecoderFactory returns the decoder-side view of the
// default array collection factory.
func NewArrayCollectionDecoderFactory() CollectionDecoderFactory { return arrayDecoderFactory{} }

func (arrayDecoderFactory) NewDynamic(elementDecoders []Decoder) (Decoder, error) {
	if len(elementDecoders) == 0 {
		return nil, fmt.Errorf("abi: no element decoder available to build array decoder")
	}
	return &sliceDecoder{elemWireType: elementDecoders[0].WireType()}, nil
}

func (arrayDecoderFactory) NewFixed(elementDecoders []Decoder, size int) (Decoder, error) {
	if len(elementDecoders) == 0 {
		return nil, fmt.Errorf("abi: no element decoder available to build array decoder")
	}
	return &arrayDecoder{elemWireType: elementDecoders[0].WireType(), size: size}, nil
}

type sliceEncoder struct{ elemWireType string }

func (e *sliceEncoder) Accepts(value interface{}) bool { return reflect.ValueOf(value).Kind() == reflect.Slice }
func (e *sliceEncoder) Encode(value interface{}) ([]byte, error) {
	t, err := ethabi.NewType(e.elemWireType+"[]", e.elemWireType+"[]", nil)
	if err != nil {
		return nil, err
	}
	return ethabi.Arguments{{Type: t}}.Pack(value)
}
func (e *sliceEncoder) WireType() string { return e.elemWireType + "[]" }

type arrayEncoder struct {
	elemWireType string
	size         int
}

func (e *arrayEncoder) Accepts(value interface{}) bool { return reflect.ValueOf(value).Kind() == reflect.Slice }
func (e *arrayEncoder) Encode(value interface{}) ([]byte, error) {
	wire := fmt.Sprintf("%s[%d]", e.elemWireType, e.size)
	t, err := ethabi.NewType(wire, wire, nil)
	if err != nil {
		return nil, err
	}
	return ethabi.Arguments{{Type: t}}.Pack(value)
}
func (e *arrayEncoder) WireType() string { return fmt.Sprintf("%s[%d]", e.elemWireType, e.size) }

type sliceDecoder struct{ elemWireType string }

func (d *sliceDecoder) Accepts(hostType reflect.Type) bool { return hostType.Kind() == reflect.Slice }
func (d *sliceDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	t, err := ethabi.NewType(d.elemWireType+"[]", d.elemWireType+"[]", nil)
	if err != nil {
		return nil, err
	}
	return unpackOne(t, data)
}
func (d *sliceDecoder) WireType() string { return d.elemWireType + "[]" }

type arrayDecoder struct {
	elemWireType string
	size         int
}

func (d *arrayDecoder) Accepts(hostType reflect.Type) bool { return hostType.Kind() == reflect.Slice }
func (d *arrayDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	wire := fmt.Sprintf("%s[%d]", d.elemWireType, d.size)
	t, err := ethabi.NewType(wire, wire, nil)
	if err != nil {
		return nil, err
	}
	return unpackOne(t, data)
}
func (d *arrayDecoder) WireType() string { return fmt.Sprintf("%s[%d]", d.elemWireType, d.size) }

func unpackOne(t ethabi.Type, data []byte) (interface{}, error) {
	unpacked, err := ethabi.Arguments{{Type: t}}.Unpack(data)
	if err != nil {
		return nil, err
	}
	if len(unpacked) != 1 {
		return nil, fmt.Errorf("abi: expected exactly one unpacked value, got %d", len(unpacked))
	}
	return unpacked[0], nil
}

// dynamicBytesFactory implements the open question in the design notes:
// a plain "bytes" parameter is a dynamic byte sequence on the wire and is
// routed through the same collection-decoder machinery as an array,
// regardless of AbiParam.IsArray. It ignores the element decoder list and
// decodes the whole value as go-ethereum's "bytes" type.
type dynamicBytesFactory struct{}

// NewDynamicBytesDecoderFactory returns the decoder factory used for
// plain dynamic "bytes" parameters.
func NewDynamicBytesDecoderFactory() CollectionDecoderFactory { return dynamicBytesFactory{} }

func (dynamicBytesFactory) NewDynamic(_ []Decoder) (Decoder, error) {
	return bytesDecoder{}, nil
}

func (dynamicBytesFactory) NewFixed(_ []Decoder, _ int) (Decoder, error) {
	return bytesDecoder{}, nil
}

type bytesDecoder struct{}

func (bytesDecoder) Accepts(hostType reflect.Type) bool { return hostType == bytesType }
func (bytesDecoder) Decode(data []byte, hostType reflect.Type) (interface{}, error) {
	return unpackSingle("bytes", data)
}
func (bytesDecoder) WireType() string { return "bytes" }
