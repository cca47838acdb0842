package solidity

// Param describes one ABI function/event argument slot: its wire type name
// plus the array shape the converter registry needs to pick a collection
// factory. IsDynamic && IsArray means a variable-length array; !IsDynamic &&
// IsArray means a fixed-length array of ArraySize.
type Param struct {
	TypeName  string
	IsArray   bool
	IsDynamic bool
	ArraySize int
}

// Scalar builds a Param for a non-array argument of the given wire type.
func Scalar(typeName string) Param {
	return Param{TypeName: typeName}
}

// DynamicArray builds a Param for a variable-length array of typeName.
func DynamicArray(typeName string) Param {
	return Param{TypeName: typeName, IsArray: true, IsDynamic: true}
}

// FixedArray builds a Param for a fixed-length array of typeName.
func FixedArray(typeName string, size int) Param {
	return Param{TypeName: typeName, IsArray: true, ArraySize: size}
}
