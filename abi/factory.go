package abi

// CollectionEncoderFactory builds an Encoder for an array ABI parameter
// out of the scalar encoders registered for the element type. The two
// methods mirror the ABI's two length-encoding strategies: NewDynamic for
// variable-length arrays, NewFixed for arrays of a statically known size. This replaces the reflective
// two-constructor lookup the factories historically relied on with an
// explicit interface per shape.
type CollectionEncoderFactory interface {
	NewDynamic(elementEncoders []Encoder) (Encoder, error)
	NewFixed(elementEncoders []Encoder, size int) (Encoder, error)
}

// CollectionDecoderFactory mirrors CollectionEncoderFactory for the decode
// direction; the registry also routes plain "bytes" parameters through
// NewDynamic.
type CollectionDecoderFactory interface {
	NewDynamic(elementDecoders []Decoder) (Decoder, error)
	NewFixed(elementDecoders []Decoder, size int) (Decoder, error)
}
