package abi

import (
	"reflect"
	"sync"

	"github.com/fforbeck/eth-propeller-core/apierror"
	"github.com/fforbeck/eth-propeller-core/solidity"
)

// Registry is the converter registry described in the core: an ordered,
// append-only set of scalar encoders/decoders keyed by SolidityTypeGroup,
// plus two ordered lists of collection factories layered on top for
// array and dynamic-bytes parameters. Registration order matters:
// getEncoders/getDecoders return converters in the order they were
// added, and callers keep the first one that accepts their host value.
type Registry struct {
	mu sync.RWMutex

	encoders map[solidity.Group][]Encoder
	decoders map[solidity.Group][]Decoder

	listEncoders []CollectionEncoderFactory
	listDecoders []CollectionDecoderFactory

	voidTypes map[reflect.Type]struct{}
}

// NewRegistry builds an empty registry with no converters registered.
func NewRegistry() *Registry {
	return &Registry{
		encoders:  make(map[solidity.Group][]Encoder),
		decoders:  make(map[solidity.Group][]Decoder),
		voidTypes: make(map[reflect.Type]struct{}),
	}
}

// NewDefaultRegistry builds a registry pre-loaded with the scalar
// converters and the array/bytes collection factories every consumer of
// this core needs: big-integer and fixed-width number pairs, bool,
// address, fixed bytes, string, and the default slice/array factories.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.AddEncoder(solidity.GroupNumber, BigIntEncoder{})
	r.AddEncoder(solidity.GroupNumber, FixedWidthIntEncoder{})
	r.AddEncoder(solidity.GroupBool, BoolEncoder{})
	r.AddEncoder(solidity.GroupAddress, AddressEncoder{})
	r.AddEncoder(solidity.GroupBytes, FixedBytesEncoder{})
	r.AddEncoder(solidity.GroupString, StringEncoder{})

	r.AddDecoder(solidity.GroupNumber, BigIntDecoder{})
	r.AddDecoder(solidity.GroupNumber, FixedWidthIntDecoder{})
	r.AddDecoder(solidity.GroupBool, BoolDecoder{})
	r.AddDecoder(solidity.GroupAddress, AddressDecoder{})
	r.AddDecoder(solidity.GroupBytes, FixedBytesDecoder{})
	r.AddDecoder(solidity.GroupString, StringDecoder{})

	r.AddListEncoder(NewArrayCollectionFactory())
	// The raw-bytes factory is registered ahead of the generic array
	// factory so a plain "bytes" parameter (wrapped as a collection per
	// the decode-side bytes/array unification) resolves to a true
	// length-prefixed byte decoder rather than the generic slice decoder,
	// which would otherwise also accept a []byte host type.
	r.AddListDecoder(NewDynamicBytesDecoderFactory())
	r.AddListDecoder(NewArrayCollectionDecoderFactory())
	return r
}

// AddEncoder appends a scalar encoder to the ordered list for typeGroup.
func (r *Registry) AddEncoder(typeGroup solidity.Group, encoder Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[typeGroup] = append(r.encoders[typeGroup], encoder)
}

// AddDecoder appends a scalar decoder to the ordered list for typeGroup.
func (r *Registry) AddDecoder(typeGroup solidity.Group, decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[typeGroup] = append(r.decoders[typeGroup], decoder)
}

// AddListEncoder appends a collection-encoder factory, tried for every
// array-shaped AbiParam in registration order.
func (r *Registry) AddListEncoder(factory CollectionEncoderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listEncoders = append(r.listEncoders, factory)
}

// AddListDecoder mirrors AddListEncoder for the decode direction.
func (r *Registry) AddListDecoder(factory CollectionDecoderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listDecoders = append(r.listDecoders, factory)
}

// AddVoidClass marks hostType as "no return value": contract calls
// declared to return it skip decoding entirely.
func (r *Registry) AddVoidClass(hostType reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voidTypes[hostType] = struct{}{}
}

// IsVoidType reports whether hostType was registered via AddVoidClass.
func (r *Registry) IsVoidType(hostType reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.voidTypes[hostType]
	return ok
}

// GetEncoders resolves the ordered list of encoders usable for param. For
// scalar params it is the registered list for the type's group; for
// array params every registered collection-encoder factory is
// instantiated against that group's scalar encoders.
func (r *Registry) GetEncoders(param solidity.Param) ([]Encoder, error) {
	t, ok := solidity.Find(param.TypeName)
	if !ok {
		return nil, &apierror.UnknownAbiType{TypeName: param.TypeName}
	}

	group := solidity.GroupOf(t)

	r.mu.RLock()
	elementEncoders := append([]Encoder(nil), r.encoders[group]...)
	factories := append([]CollectionEncoderFactory(nil), r.listEncoders...)
	r.mu.RUnlock()

	if !param.IsArray {
		if len(elementEncoders) == 0 {
			return nil, &apierror.NoEncoderForType{TypeName: param.TypeName}
		}
		return elementEncoders, nil
	}

	if len(elementEncoders) == 0 {
		return nil, &apierror.NoEncoderForType{TypeName: param.TypeName}
	}

	result := make([]Encoder, 0, len(factories))
	for _, factory := range factories {
		var (
			enc Encoder
			err error
		)
		if param.IsDynamic {
			enc, err = factory.NewDynamic(elementEncoders)
		} else {
			enc, err = factory.NewFixed(elementEncoders, param.ArraySize)
		}
		if err != nil {
			return nil, &apierror.ConverterConstructionError{Cause: err}
		}
		result = append(result, enc)
	}
	return result, nil
}

// GetDecoders resolves the ordered list of decoders usable for param,
// mirroring GetEncoders. A plain "bytes" parameter is always routed
// through the dynamic collection-decoder factories, matching the wire
// representation of a length-prefixed byte sequence regardless of
// whether IsArray was set. The raw-bytes decoder factory is only
// instantiated for "bytes" parameters; every other collection factory is
// instantiated for every collection-shaped parameter.
func (r *Registry) GetDecoders(param solidity.Param) ([]Decoder, error) {
	t, ok := solidity.Find(param.TypeName)
	if !ok {
		return nil, &apierror.UnknownAbiType{TypeName: param.TypeName}
	}

	group := solidity.GroupOf(t)
	treatAsCollection := param.IsArray || t == solidity.TypeBytes

	r.mu.RLock()
	elementDecoders := append([]Decoder(nil), r.decoders[group]...)
	factories := append([]CollectionDecoderFactory(nil), r.listDecoders...)
	r.mu.RUnlock()

	if !treatAsCollection {
		if len(elementDecoders) == 0 {
			return nil, &apierror.NoDecoderForType{TypeName: param.TypeName}
		}
		return elementDecoders, nil
	}

	isDynamic := param.IsDynamic || t == solidity.TypeBytes

	result := make([]Decoder, 0, len(factories))
	for _, factory := range factories {
		if _, bytesOnly := factory.(dynamicBytesFactory); bytesOnly && t != solidity.TypeBytes {
			continue
		}
		var (
			dec Decoder
			err error
		)
		if isDynamic {
			dec, err = factory.NewDynamic(elementDecoders)
		} else {
			dec, err = factory.NewFixed(elementDecoders, param.ArraySize)
		}
		if err != nil {
			return nil, &apierror.ConverterConstructionError{Cause: err}
		}
		result = append(result, dec)
	}
	return result, nil
}
