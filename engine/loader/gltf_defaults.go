package loader

import "github.com/Carmen-Shannon/oxy-gltf/common"

// gltfDefaults holds the documented default of every optional glTF field the loader consumes.
// applyDefaults is the only place these values are written into a document.
var gltfDefaults = struct {
	ByteOffset      int
	PrimitiveMode   gltfPrimitiveMode
	BaseColorFactor [4]float32
	MetallicFactor  float32
	RoughnessFactor float32
	EmissiveFactor  [3]float32
	AlphaMode       gltfAlphaMode
	AlphaCutoff     float32
	DoubleSided     bool
	TexCoord        int
	NormalScale     float32
	OcclusionFactor float32
	Wrap            gltfWrap
	NodeMatrix      [16]float32
	NodeTranslation [3]float32
	NodeRotation    [4]float32
	NodeScale       [3]float32
}{
	ByteOffset:      0,
	PrimitiveMode:   gltfPrimitiveModeTriangles,
	BaseColorFactor: [4]float32{1, 1, 1, 1},
	MetallicFactor:  1,
	RoughnessFactor: 1,
	EmissiveFactor:  [3]float32{0, 0, 0},
	AlphaMode:       gltfAlphaModeOpaque,
	AlphaCutoff:     0.5,
	DoubleSided:     false,
	TexCoord:        0,
	NormalScale:     1,
	OcclusionFactor: 1,
	Wrap:            gltfWrapRepeat,
	NodeMatrix:      common.IdentityMatrix(),
	NodeTranslation: [3]float32{0, 0, 0},
	NodeRotation:    [4]float32{0, 0, 0, 1},
	NodeScale:       [3]float32{1, 1, 1},
}

// defaultPtr returns a pointer to a copy of v.
func defaultPtr[T any](v T) *T {
	return &v
}

// fillDefault points *p at a copy of def when the field was absent.
func fillDefault[T any](p **T, def T) {
	if *p == nil {
		*p = defaultPtr(def)
	}
}

// applyDefaults fills every absent optional field of doc with its value from gltfDefaults.
// Required fields are left untouched so that validateDocument can still report them.
// After this pass the resolver can dereference every defaulted pointer without a nil check.
//
// Parameters:
//   - doc: the freshly decoded document
func applyDefaults(doc *gltfDocument) {
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		fillDefault(&n.Matrix, gltfDefaults.NodeMatrix)
		fillDefault(&n.Translation, gltfDefaults.NodeTranslation)
		fillDefault(&n.Rotation, gltfDefaults.NodeRotation)
		fillDefault(&n.Scale, gltfDefaults.NodeScale)
	}

	for i := range doc.Meshes {
		for j := range doc.Meshes[i].Primitives {
			fillDefault(&doc.Meshes[i].Primitives[j].Mode, gltfDefaults.PrimitiveMode)
		}
	}

	for i := range doc.Accessors {
		fillDefault(&doc.Accessors[i].ByteOffset, gltfDefaults.ByteOffset)
	}

	for i := range doc.BufferViews {
		fillDefault(&doc.BufferViews[i].ByteOffset, gltfDefaults.ByteOffset)
	}

	for i := range doc.Materials {
		m := &doc.Materials[i]
		if pbr := m.PbrMetallicRoughness; pbr != nil {
			fillDefault(&pbr.BaseColorFactor, gltfDefaults.BaseColorFactor)
			fillDefault(&pbr.MetallicFactor, gltfDefaults.MetallicFactor)
			fillDefault(&pbr.RoughnessFactor, gltfDefaults.RoughnessFactor)
			applyTextureInfoDefaults(pbr.BaseColorTexture)
			applyTextureInfoDefaults(pbr.MetallicRoughnessTexture)
		}
		if m.NormalTexture != nil {
			applyTextureInfoDefaults(&m.NormalTexture.gltfTextureInfo)
			fillDefault(&m.NormalTexture.Scale, gltfDefaults.NormalScale)
		}
		if m.OcclusionTexture != nil {
			applyTextureInfoDefaults(&m.OcclusionTexture.gltfTextureInfo)
			fillDefault(&m.OcclusionTexture.Strength, gltfDefaults.OcclusionFactor)
		}
		applyTextureInfoDefaults(m.EmissiveTexture)
		fillDefault(&m.EmissiveFactor, gltfDefaults.EmissiveFactor)
		fillDefault(&m.AlphaMode, gltfDefaults.AlphaMode)
		fillDefault(&m.AlphaCutoff, gltfDefaults.AlphaCutoff)
		fillDefault(&m.DoubleSided, gltfDefaults.DoubleSided)
	}

	for i := range doc.Samplers {
		fillDefault(&doc.Samplers[i].WrapS, gltfDefaults.Wrap)
		fillDefault(&doc.Samplers[i].WrapT, gltfDefaults.Wrap)
	}
}

func applyTextureInfoDefaults(info *gltfTextureInfo) {
	if info == nil {
		return
	}
	fillDefault(&info.TexCoord, gltfDefaults.TexCoord)
}
