// Package geometry implements the packed geometry buffer shared by every
// rendering stage: index data and vertex floats for all meshes live in one
// linear arena, and fixed-layout mesh records describe where each mesh's
// data starts. All cross-stage references are integer offsets, never
// pointers.
package geometry

import (
	"encoding/binary"

	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// MeshFlags is the per-mesh flag byte.
type MeshFlags uint8

const (
	// FlagIndexU32 selects 32-bit indices; unset means 16-bit.
	FlagIndexU32 MeshFlags = 1 << 0
	// FlagJointsWeights marks meshes with skinning data appended to each
	// vertex, widening the stride from 12 to 14 floats.
	FlagJointsWeights MeshFlags = 1 << 1
)

// IndexU32 reports whether the mesh uses 32-bit indices.
func (f MeshFlags) IndexU32() bool {
	return f&FlagIndexU32 != 0
}

// VertexStride returns the vertex stride in floats implied by the flags.
func (f MeshFlags) VertexStride() uint32 {
	if f&FlagJointsWeights != 0 {
		return 14
	}
	return 12
}

// Vertex is the decoded form of one packed vertex. Within the stride the
// float layout is position +0..2, normal +3..5, texcoord +6..7 and tangent
// +8..11; the tangent slot is present even for meshes without tangent data
// so the stride stays fixed.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord [2]float32
	Tangent  [4]float32
}

// Mesh is the fixed-layout mesh record. Offsets are absolute positions in
// the shared geometry buffer: IndexOffset in index units of the mesh's index
// width, VertexOffset in floats.
type Mesh struct {
	IndexCount   uint32
	IndexOffset  uint32
	VertexOffset uint32
	Material     uint8
	Flags        MeshFlags
	VertexStride uint8 // in floats
}

// MeshSize is the encoded size of a Mesh record in bytes (one pad byte).
const MeshSize = 16

// Encode appends the record's 16-byte wire form to dst.
func (m Mesh) Encode(dst []byte) []byte {
	var buf [MeshSize]byte
	binary.LittleEndian.PutUint32(buf[0:], m.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:], m.IndexOffset)
	binary.LittleEndian.PutUint32(buf[8:], m.VertexOffset)
	buf[12] = m.Material
	buf[13] = uint8(m.Flags)
	buf[14] = m.VertexStride
	return append(dst, buf[:]...)
}

// DecodeMesh reads a 16-byte mesh record.
func DecodeMesh(src []byte) Mesh {
	return Mesh{
		IndexCount:   binary.LittleEndian.Uint32(src[0:]),
		IndexOffset:  binary.LittleEndian.Uint32(src[4:]),
		VertexOffset: binary.LittleEndian.Uint32(src[8:]),
		Material:     src[12],
		Flags:        MeshFlags(src[13]),
		VertexStride: src[14],
	}
}
