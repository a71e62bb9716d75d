// Package endian provides the byte order used by package archives and the
// tag check that tells a little-endian package from a byte-swapped one.
//
// Packages are always stored little-endian by the targets this module
// supports. A package cooked for a big-endian console carries the same tag with
// its bytes reversed; Classify lets the loader report that case separately from
// a file that is not a package at all.
package endian

import (
	"encoding/binary"
	"math/bits"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order is the result of comparing a tag against its expected value.
type Order uint8

const (
	// Unknown means the tag matches neither byte order.
	Unknown Order = iota
	// Little means the tag matches as stored little-endian.
	Little
	// Swapped means the tag matches only after reversing its bytes.
	Swapped
)

func (o Order) String() string {
	switch o {
	case Little:
		return "little-endian"
	case Swapped:
		return "byte-swapped"
	default:
		return "unknown"
	}
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// Swap32 reverses the byte order of v.
func Swap32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

// Classify compares a tag decoded little-endian with the expected value.
func Classify(tag, want uint32) Order {
	switch tag {
	case want:
		return Little
	case Swap32(want):
		return Swapped
	default:
		return Unknown
	}
}
