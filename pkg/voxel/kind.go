// Package voxel defines the image grid data model shared by the resampling
// engine: integer extents, spacing/origin/direction geometry, and the typed
// scalar buffer that backs a grid.
package voxel

import "fmt"

// Kind identifies the numeric type of a voxel component.
type Kind int

const (
	Int8 Kind = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Size returns the size in bytes of one scalar of this kind.
func (k Kind) Size() int {
	switch k {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		panic(fmt.Sprintf("voxel: unknown kind %d", int(k)))
	}
}

// IsFloat reports whether the kind is a floating-point type.
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// Range returns the representable [min,max] for integer kinds, as float64.
// It panics if called on a floating-point kind.
func (k Kind) Range() (min, max float64) {
	switch k {
	case Int8:
		return -128, 127
	case Uint8:
		return 0, 255
	case Int16:
		return -32768, 32767
	case Uint16:
		return 0, 65535
	case Int32:
		return -2147483648, 2147483647
	case Uint32:
		return 0, 4294967295
	default:
		panic(fmt.Sprintf("voxel: Range called on non-integer kind %s", k))
	}
}

// Valid reports whether k is one of the eight supported scalar kinds.
func (k Kind) Valid() bool {
	return k >= Int8 && k <= Float64
}
