package geometry

import "testing"

// quadVertices returns 4 vertices with recognizable field values at the
// standard 12-float stride.
func quadVertices() []float32 {
	var data []float32
	for i := 0; i < 4; i++ {
		f := float32(i)
		data = append(data,
			f, f+0.25, f+0.5, // position
			0, 1, 0, // normal
			f/4, 1-f/4, // texcoord
			1, 0, 0, 1, // tangent
		)
	}
	return data
}

func TestAppendMeshDecodeU16(t *testing.T) {
	var buf Buffer
	mesh, vertexCount := buf.AppendMesh(MeshData{
		Indices:      []uint32{0, 1, 2, 2, 3, 0},
		VertexData:   quadVertices(),
		VertexStride: 12,
		Material:     3,
	})

	if vertexCount != 4 {
		t.Fatalf("vertexCount = %d, want 4", vertexCount)
	}
	if mesh.Flags.IndexU32() {
		t.Fatalf("small mesh should use 16-bit indices")
	}
	if mesh.IndexCount != 6 {
		t.Errorf("IndexCount = %d, want 6", mesh.IndexCount)
	}
	if mesh.Material != 3 {
		t.Errorf("Material = %d, want 3", mesh.Material)
	}
	if mesh.VertexStride != 12 {
		t.Errorf("VertexStride = %d, want 12", mesh.VertexStride)
	}

	i0, i1, i2 := buf.TriangleIndices(mesh, 0)
	if i0 != 0 || i1 != 1 || i2 != 2 {
		t.Errorf("triangle 0 = (%d,%d,%d), want (0,1,2)", i0, i1, i2)
	}
	i0, i1, i2 = buf.TriangleIndices(mesh, 1)
	if i0 != 2 || i1 != 3 || i2 != 0 {
		t.Errorf("triangle 1 = (%d,%d,%d), want (2,3,0)", i0, i1, i2)
	}

	v := buf.ReadVertex(mesh, 2)
	if v.Position.X != 2 || v.Position.Y != 2.25 || v.Position.Z != 2.5 {
		t.Errorf("vertex 2 position = %+v", v.Position)
	}
	if v.Normal.Y != 1 {
		t.Errorf("vertex 2 normal = %+v", v.Normal)
	}
	if v.TexCoord != [2]float32{0.5, 0.5} {
		t.Errorf("vertex 2 texcoord = %v", v.TexCoord)
	}
	if v.Tangent != [4]float32{1, 0, 0, 1} {
		t.Errorf("vertex 2 tangent = %v", v.Tangent)
	}
}

func TestAppendMeshDecodeU32(t *testing.T) {
	var buf Buffer
	mesh, _ := buf.AppendMesh(MeshData{
		Indices:      []uint32{0, 1, 2},
		VertexData:   quadVertices(),
		VertexStride: 12,
		IndexU32:     true,
	})

	if !mesh.Flags.IndexU32() {
		t.Fatalf("expected 32-bit index flag")
	}

	i0, i1, i2 := buf.TriangleIndices(mesh, 0)
	if i0 != 0 || i1 != 1 || i2 != 2 {
		t.Errorf("triangle 0 = (%d,%d,%d), want (0,1,2)", i0, i1, i2)
	}

	v := buf.ReadVertex(mesh, 0)
	if v.Position.X != 0 || v.Position.Y != 0.25 {
		t.Errorf("vertex 0 position = %+v", v.Position)
	}
}

func TestAppendSecondMeshOffsets(t *testing.T) {
	var buf Buffer
	first, _ := buf.AppendMesh(MeshData{
		Indices:      []uint32{0, 1, 2},
		VertexData:   quadVertices(),
		VertexStride: 12,
	})
	second, _ := buf.AppendMesh(MeshData{
		Indices:      []uint32{2, 1, 0},
		VertexData:   quadVertices(),
		VertexStride: 12,
	})

	if second.IndexOffset == first.IndexOffset {
		t.Fatalf("second mesh must not alias the first mesh's indices")
	}
	if second.VertexOffset <= first.VertexOffset {
		t.Fatalf("second mesh vertex offset %d not after first %d",
			second.VertexOffset, first.VertexOffset)
	}

	// Offsets are absolute: decoding the second mesh still works.
	i0, i1, i2 := buf.TriangleIndices(second, 0)
	if i0 != 2 || i1 != 1 || i2 != 0 {
		t.Errorf("second mesh triangle = (%d,%d,%d), want (2,1,0)", i0, i1, i2)
	}
	v := buf.ReadVertex(second, 1)
	if v.Position.X != 1 {
		t.Errorf("second mesh vertex 1 position = %+v", v.Position)
	}
}

func TestPositionView(t *testing.T) {
	var buf Buffer
	mesh, _ := buf.AppendMesh(MeshData{
		Indices:      []uint32{0, 1, 2},
		VertexData:   quadVertices(),
		VertexStride: 12,
	})

	for i := uint32(0); i < 4; i++ {
		want := buf.ReadVertex(mesh, i).Position
		got := buf.Position(mesh.VertexOffset, uint32(mesh.VertexStride), i)
		if got != want {
			t.Errorf("Position(%d) = %+v, want %+v", i, got, want)
		}
	}
}

func TestMeshRecordRoundTrip(t *testing.T) {
	m := Mesh{
		IndexCount:   900,
		IndexOffset:  1234,
		VertexOffset: 5678,
		Material:     7,
		Flags:        FlagIndexU32 | FlagJointsWeights,
		VertexStride: 14,
	}

	encoded := m.Encode(nil)
	if len(encoded) != MeshSize {
		t.Fatalf("encoded size = %d, want %d", len(encoded), MeshSize)
	}
	if got := DecodeMesh(encoded); got != m {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}

func TestVertexStrideFromFlags(t *testing.T) {
	if got := MeshFlags(0).VertexStride(); got != 12 {
		t.Errorf("unskinned stride = %d, want 12", got)
	}
	if got := FlagJointsWeights.VertexStride(); got != 14 {
		t.Errorf("skinned stride = %d, want 14", got)
	}
}
