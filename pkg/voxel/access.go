package voxel

import (
	"encoding/binary"
	"math"
)

// ReadComponent reads the component-th scalar (0-based) of the voxel whose
// byte buffer starts at voxelOff, as a float64, according to kind.
func ReadComponent(data []byte, voxelOff, component int, kind Kind) float64 {
	off := voxelOff + component*kind.Size()
	switch kind {
	case Int8:
		return float64(int8(data[off]))
	case Uint8:
		return float64(data[off])
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(data[off:])))
	case Uint16:
		return float64(binary.LittleEndian.Uint16(data[off:]))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(data[off:])))
	case Uint32:
		return float64(binary.LittleEndian.Uint32(data[off:]))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
	default:
		panic("voxel: ReadComponent on unknown kind")
	}
}

// WriteComponent writes v as the component-th scalar of the voxel whose
// byte buffer starts at voxelOff, according to kind. v must already be
// rounded/clamped to kind's representable range by the caller; this
// function only truncates to the integer storage width.
func WriteComponent(data []byte, voxelOff, component int, kind Kind, v float64) {
	off := voxelOff + component*kind.Size()
	switch kind {
	case Int8:
		data[off] = byte(int8(v))
	case Uint8:
		data[off] = byte(uint8(v))
	case Int16:
		binary.LittleEndian.PutUint16(data[off:], uint16(int16(v)))
	case Uint16:
		binary.LittleEndian.PutUint16(data[off:], uint16(v))
	case Int32:
		binary.LittleEndian.PutUint32(data[off:], uint32(int32(v)))
	case Uint32:
		binary.LittleEndian.PutUint32(data[off:], uint32(v))
	case Float32:
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(float32(v)))
	case Float64:
		binary.LittleEndian.PutUint64(data[off:], math.Float64bits(v))
	default:
		panic("voxel: WriteComponent on unknown kind")
	}
}
