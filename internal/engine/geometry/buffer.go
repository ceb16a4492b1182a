package geometry

import (
	"encoding/binary"
	gomath "math"

	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// Buffer is the packed geometry arena. Each mesh contributes its index data
// (16- or 32-bit, chosen by vertex count) followed by its vertex floats,
// 4-byte aligned. Stages view the same bytes as a 16-bit index stream, a
// 32-bit index stream or a float stream depending on the offset they were
// handed; out-of-range offsets are the caller's bug, mirroring the
// no-runtime-checks contract of the device-side code.
type Buffer struct {
	data []byte
}

// MeshData describes one mesh to be packed into the buffer.
type MeshData struct {
	Indices      []uint32
	VertexData   []float32
	VertexStride uint32 // in floats
	Material     uint8
	Skinned      bool
	IndexU32     bool // use 32-bit indices even when counts fit in 16 bits
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// AppendMesh packs the mesh and returns its record plus the vertex count
// (which the record itself does not carry; pipelines receive it separately).
func (b *Buffer) AppendMesh(data MeshData) (Mesh, uint32) {
	vertexCount := uint32(len(data.VertexData)) / data.VertexStride
	indexU32 := data.IndexU32 || vertexCount > gomath.MaxUint16

	flags := MeshFlags(0)
	if indexU32 {
		flags |= FlagIndexU32
	}
	if data.Skinned {
		flags |= FlagJointsWeights
	}

	base := uint32(len(b.data))
	indexShift := uint32(1)
	if indexU32 {
		indexShift = 2
	}

	mesh := Mesh{
		IndexCount:   uint32(len(data.Indices)),
		IndexOffset:  base >> indexShift,
		Material:     data.Material,
		Flags:        flags,
		VertexStride: uint8(data.VertexStride),
	}

	if indexU32 {
		for _, idx := range data.Indices {
			b.data = binary.LittleEndian.AppendUint32(b.data, idx)
		}
	} else {
		for _, idx := range data.Indices {
			b.data = binary.LittleEndian.AppendUint16(b.data, uint16(idx))
		}
	}

	// Vertex floats start 4-byte aligned.
	for len(b.data)%4 != 0 {
		b.data = append(b.data, 0)
	}
	mesh.VertexOffset = uint32(len(b.data)) / 4

	for _, f := range data.VertexData {
		b.data = binary.LittleEndian.AppendUint32(b.data, gomath.Float32bits(f))
	}

	return mesh, vertexCount
}

// Float reads the buffer's float view at the given float index.
func (b *Buffer) Float(i uint32) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b.data[i*4:]))
}

// Vec3 reads three consecutive floats starting at the given float index.
func (b *Buffer) Vec3(i uint32) math.Vec3 {
	return math.Vec3{X: b.Float(i), Y: b.Float(i + 1), Z: b.Float(i + 2)}
}

func (b *Buffer) indexU16(i uint32) uint32 {
	return uint32(binary.LittleEndian.Uint16(b.data[i*2:]))
}

func (b *Buffer) indexU32(i uint32) uint32 {
	return binary.LittleEndian.Uint32(b.data[i*4:])
}

// TriangleIndices reads the three vertex indices of the given primitive,
// selecting the 16- or 32-bit index view by the mesh's flag bit.
func (b *Buffer) TriangleIndices(mesh Mesh, primitive uint32) (uint32, uint32, uint32) {
	base := 3*primitive + mesh.IndexOffset
	if mesh.Flags.IndexU32() {
		return b.indexU32(base), b.indexU32(base + 1), b.indexU32(base + 2)
	}
	return b.indexU16(base), b.indexU16(base + 1), b.indexU16(base + 2)
}

// ReadVertex decodes the vertex at the given index within the mesh.
func (b *Buffer) ReadVertex(mesh Mesh, vertexIndex uint32) Vertex {
	base := vertexIndex*uint32(mesh.VertexStride) + mesh.VertexOffset
	return Vertex{
		Position: b.Vec3(base),
		Normal:   b.Vec3(base + 3),
		TexCoord: [2]float32{b.Float(base + 6), b.Float(base + 7)},
		Tangent: [4]float32{
			b.Float(base + 8), b.Float(base + 9),
			b.Float(base + 10), b.Float(base + 11),
		},
	}
}

// Position reads only the position of a vertex, given the raw float offset
// and stride the bounding-volume pipeline receives as push constants.
func (b *Buffer) Position(vertexOffset, vertexStride, vertexIndex uint32) math.Vec3 {
	return b.Vec3(vertexIndex*vertexStride + vertexOffset)
}
