// Package typeinfo builds structural type descriptors for slot payloads
// and derives the stable 64-bit hashes used for slot ids and handshake
// type negotiation.
//
// The build-time code generator that would normally emit these
// descriptors from a struct declaration is an external collaborator
// (spec §1) and out of scope here: callers construct a Descriptor by
// hand (or generate one) and pass it to registry.Register*.
package typeinfo

// Kind identifies the shape of a Descriptor node.
type Kind uint8

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
	KindString
	KindEmpty
	KindOption
	KindTuple
	KindFixedArray
	KindSlice
	KindMap
	KindStruct
	KindEnum
)

// EnumVariant names one discriminant of a named enum.
type EnumVariant struct {
	Name          string `msgpack:"name"`
	Discriminant  int64  `msgpack:"discriminant"`
}

// StructField names one ordered field of a named struct.
type StructField struct {
	Name string      `msgpack:"name"`
	Type *Descriptor `msgpack:"type"`
}

// Descriptor is a structural description of a slot's wire type. Two
// slots with equal Descriptors (by Hash) are considered the same type
// during handshake negotiation.
type Descriptor struct {
	Kind     Kind           `msgpack:"kind"`
	Name     string         `msgpack:"name,omitempty"`     // Struct / Enum
	Elem     *Descriptor    `msgpack:"elem,omitempty"`     // Option / Slice / FixedArray
	Len      uint32         `msgpack:"len,omitempty"`      // FixedArray
	Key      *Descriptor    `msgpack:"key,omitempty"`      // Map
	Value    *Descriptor    `msgpack:"value,omitempty"`    // Map
	Fields   []StructField  `msgpack:"fields,omitempty"`   // Struct, declaration order
	Variants []EnumVariant  `msgpack:"variants,omitempty"` // Enum
	Items    []*Descriptor  `msgpack:"items,omitempty"`    // Tuple, positional order
}

func prim(k Kind) *Descriptor { return &Descriptor{Kind: k} }

func U8() *Descriptor     { return prim(KindU8) }
func U16() *Descriptor    { return prim(KindU16) }
func U32() *Descriptor    { return prim(KindU32) }
func U64() *Descriptor    { return prim(KindU64) }
func I8() *Descriptor     { return prim(KindI8) }
func I16() *Descriptor    { return prim(KindI16) }
func I32() *Descriptor    { return prim(KindI32) }
func I64() *Descriptor    { return prim(KindI64) }
func F32() *Descriptor    { return prim(KindF32) }
func F64() *Descriptor    { return prim(KindF64) }
func Bool() *Descriptor   { return prim(KindBool) }
func String() *Descriptor { return prim(KindString) }
func Empty() *Descriptor  { return prim(KindEmpty) }

// OptionOf describes an optional value of the given element type.
func OptionOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindOption, Elem: elem}
}

// FixedArray describes a fixed-length array of n elements.
func FixedArray(n uint32, elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindFixedArray, Len: n, Elem: elem}
}

// SliceOf describes a dynamically sized sequence.
func SliceOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindSlice, Elem: elem}
}

// MapOf describes a mapping from key to value type.
func MapOf(key, value *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindMap, Key: key, Value: value}
}

// TupleOf describes a fixed heterogeneous tuple.
func TupleOf(items ...*Descriptor) *Descriptor {
	return &Descriptor{Kind: KindTuple, Items: items}
}

// Struct describes a named struct with ordered fields.
func Struct(name string, fields ...StructField) *Descriptor {
	return &Descriptor{Kind: KindStruct, Name: name, Fields: fields}
}

// Enum describes a named enum with discriminant variants.
func Enum(name string, variants ...EnumVariant) *Descriptor {
	return &Descriptor{Kind: KindEnum, Name: name, Variants: variants}
}

// Field is a convenience constructor for StructField.
func Field(name string, t *Descriptor) StructField {
	return StructField{Name: name, Type: t}
}

// Variant is a convenience constructor for EnumVariant.
func Variant(name string, discriminant int64) EnumVariant {
	return EnumVariant{Name: name, Discriminant: discriminant}
}
