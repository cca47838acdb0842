// Package apierror defines the typed error values surfaced through
// synchronous calls and future completions across the core.
package apierror

import "fmt"

// UnknownAbiType is returned when an AbiParam names a type the registry has
// never heard of.
type UnknownAbiType struct {
	TypeName string
}

func (e *UnknownAbiType) Error() string {
	return fmt.Sprintf("unknown abi type %q", e.TypeName)
}

// NoEncoderForType is returned when a SolidityTypeGroup has no scalar
// encoders registered against it.
type NoEncoderForType struct {
	TypeName string
}

func (e *NoEncoderForType) Error() string {
	return fmt.Sprintf("no encoder found for solidity type %q", e.TypeName)
}

// NoDecoderForType mirrors NoEncoderForType for the decode direction.
type NoDecoderForType struct {
	TypeName string
}

func (e *NoDecoderForType) Error() string {
	return fmt.Sprintf("no decoder found for solidity type %q", e.TypeName)
}

// ConverterConstructionError wraps a failure instantiating a collection
// encoder or decoder factory.
type ConverterConstructionError struct {
	Cause error
}

func (e *ConverterConstructionError) Error() string {
	return fmt.Sprintf("error while preparing list converter: %v", e.Cause)
}

func (e *ConverterConstructionError) Unwrap() error { return e.Cause }

// NoConstructorMatch is raised when supplied constructor arguments match no
// known constructor signature on the contract being published.
type NoConstructorMatch struct {
	ArgTypes []string
}

func (e *NoConstructorMatch) Error() string {
	return fmt.Sprintf("no constructor found with params (%v)", e.ArgTypes)
}

// BackpressureExceeded is returned when the submission queue is full.
type BackpressureExceeded struct{}

func (e *BackpressureExceeded) Error() string {
	return "submission queue is full"
}

// BackendError wraps any failure reported by the node backend.
type BackendError struct {
	Cause error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: %v", e.Cause)
}

func (e *BackendError) Unwrap() error { return e.Cause }

// TransactionDropped is the confirmation outcome when the backend reports a
// transaction removed from the mempool without inclusion.
type TransactionDropped struct {
	Reason string
}

func (e *TransactionDropped) Error() string {
	return fmt.Sprintf("the transaction has been dropped: %s", e.Reason)
}

// TransactionReverted is the confirmation outcome when a receipt arrives
// marked unsuccessful.
type TransactionReverted struct {
	Hash  fmt.Stringer
	Error_ string
}

func (e *TransactionReverted) Error() string {
	return fmt.Sprintf("transaction %s reverted: %s", e.Hash, e.Error_)
}

// InclusionTimeout is the confirmation outcome when no receipt has arrived
// within the configured block wait limit.
type InclusionTimeout struct {
	Blocks uint64
}

func (e *InclusionTimeout) Error() string {
	return fmt.Sprintf("the transaction has not been included in the last %d blocks", e.Blocks)
}

// ReceiptMissing is raised when a terminal state is reached without ever
// observing a receipt.
type ReceiptMissing struct{}

func (e *ReceiptMissing) Error() string {
	return "no transaction receipt found"
}

// ReceiptNotFound is raised by the historical event-lookup path when the
// referenced transaction has no receipt at all.
type ReceiptNotFound struct {
	Hash fmt.Stringer
}

func (e *ReceiptNotFound) Error() string {
	return fmt.Sprintf("no transaction receipt found for %s", e.Hash)
}
