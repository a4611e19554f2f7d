package model

import (
	"encoding/binary"
	"math"
)

// VertexStride is the size in bytes of one interleaved Vertex as produced by Vertex.Marshal.
// Layout (all float32, little-endian, no padding):
//
//	offset  0: position  (12 bytes)
//	offset 12: color     (16 bytes)
//	offset 28: texcoord  (8 bytes)
//	offset 36: normal    (12 bytes)
//	offset 48: tangent   (12 bytes)
//	offset 60: bitangent (12 bytes)
const VertexStride = 72

// Byte offsets of each attribute within an interleaved vertex.
const (
	VertexOffsetPosition  = 0
	VertexOffsetColor     = 12
	VertexOffsetTexCoord  = 28
	VertexOffsetNormal    = 36
	VertexOffsetTangent   = 48
	VertexOffsetBitangent = 60
)

// Marshal serializes the vertex into dst using the VertexStride layout.
// Encoding is explicitly little-endian so the output is identical on every host.
//
// Parameters:
//   - dst: destination buffer, at least VertexStride bytes long
func (v *Vertex) Marshal(dst []byte) {
	_ = dst[VertexStride-1]
	putFloats(dst[VertexOffsetPosition:], v.Position[:])
	putFloats(dst[VertexOffsetColor:], v.Color[:])
	putFloats(dst[VertexOffsetTexCoord:], v.TexCoord[:])
	putFloats(dst[VertexOffsetNormal:], v.Normal[:])
	putFloats(dst[VertexOffsetTangent:], v.Tangent[:])
	putFloats(dst[VertexOffsetBitangent:], v.Bitangent[:])
}

func putFloats(dst []byte, values []float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}
