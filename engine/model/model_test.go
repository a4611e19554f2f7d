package model

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestVertexStrideMatchesStruct(t *testing.T) {
	assert.Equal(t, uintptr(VertexStride), unsafe.Sizeof(Vertex{}))
}

func TestVertexMarshalLayout(t *testing.T) {
	v := Vertex{
		Position:  mgl32.Vec3{1, 2, 3},
		Color:     mgl32.Vec4{0.1, 0.2, 0.3, 0.4},
		TexCoord:  mgl32.Vec2{0.5, 0.75},
		Normal:    mgl32.Vec3{0, 1, 0},
		Tangent:   mgl32.Vec3{1, 0, 0},
		Bitangent: mgl32.Vec3{0, 0, -1},
	}
	buf := make([]byte, VertexStride)
	v.Marshal(buf)

	assert.Equal(t, float32(3), readFloat(buf, VertexOffsetPosition+8))
	assert.Equal(t, float32(0.4), readFloat(buf, VertexOffsetColor+12))
	assert.Equal(t, float32(0.75), readFloat(buf, VertexOffsetTexCoord+4))
	assert.Equal(t, float32(1), readFloat(buf, VertexOffsetNormal+4))
	assert.Equal(t, float32(1), readFloat(buf, VertexOffsetTangent))
	assert.Equal(t, float32(-1), readFloat(buf, VertexOffsetBitangent+8))
}

func TestFlattenRebasesIndices(t *testing.T) {
	s := &Scene{
		Meshes: []Mesh{
			{
				Vertices: make([]Vertex, 3),
				Indices:  []uint32{0, 1, 2},
				Material: 0,
				Topology: TopologyTriangles,
			},
			{
				Vertices: make([]Vertex, 4),
				Indices:  []uint32{0, 1, 2, 2, 3, 0},
				Material: NoMaterial,
				Topology: TopologyTriangles,
			},
		},
	}
	s.Meshes[1].Vertices[0].Position = mgl32.Vec3{7, 8, 9}

	flat := s.Flatten()

	assert.Len(t, flat.Vertices, 7*VertexStride)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 5, 6, 3}, flat.Indices)
	require.Len(t, flat.Draws, 2)
	assert.Equal(t, DrawRange{Mesh: 1, FirstIndex: 3, IndexCount: 6, BaseVertex: 3, Material: NoMaterial, Topology: TopologyTriangles}, flat.Draws[1])
	assert.Equal(t, float32(7), readFloat(flat.Vertices, 3*VertexStride))
	assert.Equal(t, 7, s.VertexCount())
	assert.Equal(t, 9, s.IndexCount())
}

func TestMaterialTextureLookup(t *testing.T) {
	m := Material{Textures: []TextureRef{
		{Index: 2, Type: TextureTypeAlbedo},
		{Index: 5, Type: TextureTypeMetallic},
		{Index: 5, Type: TextureTypeRoughness},
	}}

	idx, ok := m.Texture(TextureTypeRoughness)
	assert.True(t, ok)
	assert.Equal(t, 5, idx)

	_, ok = m.Texture(TextureTypeEmissive)
	assert.False(t, ok)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Mask", AlphaModeMask.String())
	assert.Equal(t, "AmbientOcclusion", TextureTypeAmbientOcclusion.String())
	assert.Equal(t, "TriangleFan", TopologyTriangleFan.String())
	assert.Equal(t, "Topology(42)", Topology(42).String())
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextureDecodeFromData(t *testing.T) {
	tex := &Texture{Name: "checker", Data: encodePNG(t)}

	staged, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staged.Width)
	assert.Equal(t, uint32(1), staged.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, staged.Pixels)
}

func TestTextureDecodeFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t), 0o644))

	staged, err := (&Texture{Path: path}).Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staged.Width)
}

func TestTextureDecodeErrors(t *testing.T) {
	var nilTex *Texture
	_, err := nilTex.Decode()
	assert.Error(t, err)

	_, err = (&Texture{}).Decode()
	assert.Error(t, err)

	_, err = (&Texture{Data: []byte("not an image")}).Decode()
	assert.Error(t, err)
}
