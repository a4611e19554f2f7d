package loader

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalDoc() obj {
	return obj{"asset": obj{"version": "2.0"}}
}

func TestParseAppliesDefaults(t *testing.T) {
	doc := minimalDoc()
	doc["buffers"] = []any{obj{"uri": "a.bin", "byteLength": 64}}
	doc["bufferViews"] = []any{obj{"buffer": 0, "byteLength": 12}}
	doc["accessors"] = []any{obj{"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 1}}
	doc["meshes"] = []any{obj{"primitives": []any{obj{"attributes": obj{"POSITION": 0}}}}}
	doc["materials"] = []any{
		obj{"name": "bare"},
		obj{"pbrMetallicRoughness": obj{"metallicFactor": 0.25}, "normalTexture": obj{"index": 0}},
	}
	doc["textures"] = []any{obj{"source": 0, "sampler": 0}}
	doc["images"] = []any{obj{"uri": "a.png"}}
	doc["samplers"] = []any{obj{"magFilter": 9728}}
	doc["nodes"] = []any{obj{"mesh": 0}}
	doc["scenes"] = []any{obj{"nodes": []any{0}}}

	parsed, err := parseJSON(t, doc)
	require.NoError(t, err)

	assert.Equal(t, gltfPrimitiveModeTriangles, *parsed.Meshes[0].Primitives[0].Mode)
	assert.Equal(t, 0, *parsed.Accessors[0].ByteOffset)
	assert.Equal(t, 0, *parsed.BufferViews[0].ByteOffset)

	bare := parsed.Materials[0]
	assert.Nil(t, bare.PbrMetallicRoughness)
	assert.Equal(t, gltfAlphaModeOpaque, *bare.AlphaMode)
	assert.Equal(t, float32(0.5), *bare.AlphaCutoff)
	assert.False(t, *bare.DoubleSided)
	assert.Equal(t, [3]float32{0, 0, 0}, *bare.EmissiveFactor)

	pbr := parsed.Materials[1].PbrMetallicRoughness
	require.NotNil(t, pbr)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, *pbr.BaseColorFactor)
	assert.Equal(t, float32(0.25), *pbr.MetallicFactor)
	assert.Equal(t, float32(1), *pbr.RoughnessFactor)
	assert.Equal(t, float32(1), *parsed.Materials[1].NormalTexture.Scale)
	assert.Equal(t, 0, *parsed.Materials[1].NormalTexture.TexCoord)

	assert.Equal(t, gltfWrapRepeat, *parsed.Samplers[0].WrapS)
	assert.Equal(t, gltfWrapRepeat, *parsed.Samplers[0].WrapT)
	assert.Equal(t, gltfFilterNearest, *parsed.Samplers[0].MagFilter)
	assert.Nil(t, parsed.Samplers[0].MinFilter)

	node := parsed.Nodes[0]
	assert.Equal(t, common.IdentityMatrix(), *node.Matrix)
	assert.Equal(t, [3]float32{0, 0, 0}, *node.Translation)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, *node.Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, *node.Scale)
}

func TestParseDefaultsDoNotShareStorage(t *testing.T) {
	doc := minimalDoc()
	doc["nodes"] = []any{obj{}, obj{}}

	parsed, err := parseJSON(t, doc)
	require.NoError(t, err)

	parsed.Nodes[0].Scale[0] = 5
	assert.Equal(t, float32(1), parsed.Nodes[1].Scale[0])
	assert.Equal(t, float32(1), gltfDefaults.NodeScale[0])
}

func TestParseRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name  string
		patch func(obj)
	}{
		{"componentType", func(d obj) {
			d["accessors"] = []any{obj{"componentType": 5124, "type": "SCALAR", "count": 1}}
		}},
		{"accessor type", func(d obj) {
			d["accessors"] = []any{obj{"componentType": 5126, "type": "VEC5", "count": 1}}
		}},
		{"primitive mode", func(d obj) {
			d["meshes"] = []any{obj{"primitives": []any{obj{"attributes": obj{}, "mode": 7}}}}
		}},
		{"alphaMode", func(d obj) {
			d["materials"] = []any{obj{"alphaMode": "CUTOUT"}}
		}},
		{"wrap", func(d obj) {
			d["samplers"] = []any{obj{"wrapS": 12345}}
		}},
		{"filter", func(d obj) {
			d["samplers"] = []any{obj{"minFilter": 9730}}
		}},
		{"target", func(d obj) {
			d["buffers"] = []any{obj{"uri": "a.bin", "byteLength": 4}}
			d["bufferViews"] = []any{obj{"buffer": 0, "byteLength": 4, "target": 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalDoc()
			tt.patch(doc)
			_, err := parseJSON(t, doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestParseRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		doc  obj
	}{
		{"asset", obj{}},
		{"asset.version", obj{"asset": obj{"generator": "x"}}},
		{"accessor count", obj{
			"asset":     obj{"version": "2.0"},
			"accessors": []any{obj{"componentType": 5126, "type": "VEC3"}},
		}},
		{"accessor componentType", obj{
			"asset":     obj{"version": "2.0"},
			"accessors": []any{obj{"type": "VEC3", "count": 1}},
		}},
		{"accessor type", obj{
			"asset":     obj{"version": "2.0"},
			"accessors": []any{obj{"componentType": 5126, "count": 1}},
		}},
		{"bufferView buffer", obj{
			"asset":       obj{"version": "2.0"},
			"buffers":     []any{obj{"uri": "a.bin", "byteLength": 4}},
			"bufferViews": []any{obj{"byteLength": 4}},
		}},
		{"buffer byteLength", obj{
			"asset":   obj{"version": "2.0"},
			"buffers": []any{obj{"uri": "a.bin"}},
		}},
		{"primitive attributes", obj{
			"asset":  obj{"version": "2.0"},
			"meshes": []any{obj{"primitives": []any{obj{}}}},
		}},
		{"texture info index", obj{
			"asset":     obj{"version": "2.0"},
			"materials": []any{obj{"emissiveTexture": obj{"texCoord": 0}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseJSON(t, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestParseUnresolvedReferences(t *testing.T) {
	base := func() obj {
		d := minimalDoc()
		d["buffers"] = []any{obj{"uri": "a.bin", "byteLength": 16}}
		d["bufferViews"] = []any{obj{"buffer": 0, "byteLength": 12}}
		d["accessors"] = []any{obj{"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 1}}
		return d
	}

	tests := []struct {
		name   string
		entity string
		patch  func(obj)
	}{
		{"accessor bufferView", "accessor", func(d obj) {
			d["accessors"] = []any{obj{"bufferView": 1, "componentType": 5126, "type": "VEC3", "count": 1}}
		}},
		{"bufferView buffer", "bufferView", func(d obj) {
			d["bufferViews"] = []any{obj{"buffer": 3, "byteLength": 12}}
		}},
		{"primitive attribute", "mesh", func(d obj) {
			d["meshes"] = []any{obj{"primitives": []any{obj{"attributes": obj{"POSITION": 4}}}}}
		}},
		{"primitive material", "mesh", func(d obj) {
			d["meshes"] = []any{obj{"primitives": []any{obj{"attributes": obj{"POSITION": 0}, "material": 0}}}}
		}},
		{"material texture", "material", func(d obj) {
			d["materials"] = []any{obj{"pbrMetallicRoughness": obj{"baseColorTexture": obj{"index": 2}}}}
		}},
		{"texture source", "texture", func(d obj) {
			d["textures"] = []any{obj{"source": 0}}
		}},
		{"texture sampler", "texture", func(d obj) {
			d["images"] = []any{obj{"uri": "a.png"}}
			d["textures"] = []any{obj{"source": 0, "sampler": 1}}
		}},
		{"node mesh", "node", func(d obj) {
			d["nodes"] = []any{obj{"mesh": 0}}
		}},
		{"node child", "node", func(d obj) {
			d["nodes"] = []any{obj{"children": []any{5}}}
		}},
		{"scene node", "scene", func(d obj) {
			d["scenes"] = []any{obj{"nodes": []any{0}}}
		}},
		{"default scene", "scene", func(d obj) {
			d["scene"] = 1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.patch(doc)
			_, err := parseJSON(t, doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnresolvedReference)

			var ie *ImportError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.entity, ie.Entity)
		})
	}
}

func TestParseRejectsBadRanges(t *testing.T) {
	t.Run("view past buffer", func(t *testing.T) {
		doc := minimalDoc()
		doc["buffers"] = []any{obj{"uri": "a.bin", "byteLength": 8}}
		doc["bufferViews"] = []any{obj{"buffer": 0, "byteOffset": 4, "byteLength": 8}}
		_, err := parseJSON(t, doc)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	for _, tt := range []struct {
		name           string
		offset, length int
	}{
		{name: "view offset overflows", offset: math.MaxInt64, length: 1},
		{name: "view length overflows", offset: 4, length: math.MaxInt64},
		{name: "view offset past buffer", offset: 9, length: 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalDoc()
			doc["buffers"] = []any{obj{"uri": "a.bin", "byteLength": 8}}
			doc["bufferViews"] = []any{obj{"buffer": 0, "byteOffset": tt.offset, "byteLength": tt.length}}
			_, err := parseJSON(t, doc)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}

	t.Run("stride", func(t *testing.T) {
		doc := minimalDoc()
		doc["buffers"] = []any{obj{"uri": "a.bin", "byteLength": 8}}
		doc["bufferViews"] = []any{obj{"buffer": 0, "byteLength": 8, "byteStride": 6}}
		_, err := parseJSON(t, doc)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("zero count", func(t *testing.T) {
		doc := minimalDoc()
		doc["accessors"] = []any{obj{"componentType": 5126, "type": "VEC3", "count": 0}}
		_, err := parseJSON(t, doc)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("empty primitives", func(t *testing.T) {
		doc := minimalDoc()
		doc["meshes"] = []any{obj{"primitives": []any{}}}
		_, err := parseJSON(t, doc)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})
}

func TestParseVersionAndExtensions(t *testing.T) {
	_, err := parseJSON(t, obj{"asset": obj{"version": "1.0"}})
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	_, err = parseJSON(t, obj{"asset": obj{"version": "2.0", "minVersion": "2.1"}})
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	_, err = parseJSON(t, obj{"asset": obj{"version": "2.1"}})
	assert.NoError(t, err)

	_, err = parseJSON(t, obj{
		"asset":              obj{"version": "2.0"},
		"extensionsUsed":     []any{"KHR_draco_mesh_compression"},
		"extensionsRequired": []any{"KHR_draco_mesh_compression"},
	})
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	_, err = parseJSON(t, obj{
		"asset":          obj{"version": "2.0"},
		"extensionsUsed": []any{"KHR_materials_unlit"},
	})
	assert.NoError(t, err)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile("broken.gltf", []byte(`{"asset": {"version": "2.0"`))

	err := newGLTFParser().Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	var ie *ImportError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, path, ie.Path)

	err = newGLTFParser().Parse(f.writeFile("empty.gltf", []byte("  \n")))
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestParseRejectsGLB(t *testing.T) {
	f := newFixture(t)

	err := newGLTFParser().Parse(f.writeFile("model.glb", []byte("anything")))
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:], gltfGLBMagic)
	binary.LittleEndian.PutUint32(header[4:], 2)
	binary.LittleEndian.PutUint32(header[8:], 12)
	err = newGLTFParser().Parse(f.writeFile("disguised.gltf", header))
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestParseMissingDocument(t *testing.T) {
	f := newFixture(t)
	path := f.dir + "/nope.gltf"

	err := newGLTFParser().Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIoFailure)
	assert.Contains(t, err.Error(), path)
}

func TestParserRecordsBaseDir(t *testing.T) {
	f := newFixture(t)
	path := f.write("scene")

	p := newGLTFParser()
	require.NoError(t, p.Parse(path))
	assert.Equal(t, f.dir, p.BaseDir())
	assert.Equal(t, path, p.Path())
	assert.Equal(t, "fixture", p.Document().Asset.Generator)
}
