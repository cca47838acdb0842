// Package solidity classifies ABI type names into the primitive types and
// coarser groups the converter registry keys its encoder/decoder lists by.
package solidity

import (
	"regexp"
	"strings"
)

// Type is a primitive Solidity ABI type, independent of its bit width.
type Type int

const (
	TypeUnknown Type = iota
	TypeUint
	TypeInt
	TypeBool
	TypeAddress
	TypeBytes
	TypeBytesN
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeUint:
		return "uint"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeAddress:
		return "address"
	case TypeBytes:
		return "bytes"
	case TypeBytesN:
		return "bytesN"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Group is the coarser key the converter registry organises its scalar
// encoder/decoder lists by. All integer widths share one group, and both
// fixed and dynamic byte types share another.
type Group int

const (
	GroupUnknown Group = iota
	GroupNumber
	GroupBool
	GroupAddress
	GroupBytes
	GroupString
)

var bytesNPattern = regexp.MustCompile(`^bytes([1-9]|[12][0-9]|3[0-2])$`)

// Find resolves a raw ABI type name (e.g. "uint256", "bytes32", "address")
// to its primitive Type. The second return value is false if the name does
// not match any known Solidity primitive.
func Find(typeName string) (Type, bool) {
	switch {
	case typeName == "":
		return TypeUnknown, false
	case strings.HasPrefix(typeName, "uint"):
		return TypeUint, true
	case strings.HasPrefix(typeName, "int"):
		return TypeInt, true
	case typeName == "bool":
		return TypeBool, true
	case typeName == "address":
		return TypeAddress, true
	case typeName == "bytes":
		return TypeBytes, true
	case bytesNPattern.MatchString(typeName):
		return TypeBytesN, true
	case typeName == "string":
		return TypeString, true
	default:
		return TypeUnknown, false
	}
}

// GroupOf returns the converter-registry group a primitive type belongs to.
func GroupOf(t Type) Group {
	switch t {
	case TypeUint, TypeInt:
		return GroupNumber
	case TypeBool:
		return GroupBool
	case TypeAddress:
		return GroupAddress
	case TypeBytes, TypeBytesN:
		return GroupBytes
	case TypeString:
		return GroupString
	default:
		return GroupUnknown
	}
}

// BytesNSize returns the declared width of a bytesN type, e.g. 32 for
// "bytes32". ok is false for any other type name.
func BytesNSize(typeName string) (size int, ok bool) {
	m := bytesNPattern.FindStringSubmatch(typeName)
	if m == nil {
		return 0, false
	}
	size = 0
	for _, c := range m[1] {
		size = size*10 + int(c-'0')
	}
	return size, true
}
