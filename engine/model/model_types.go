package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"

	"github.com/go-gl/mathgl/mgl32"
)

// NoMaterial is the Mesh.Material value for meshes whose primitives reference no material.
const NoMaterial = -1

// --- Enumerations ---

// AlphaMode describes how the alpha channel of a material's albedo is interpreted.
type AlphaMode int

const (
	// AlphaModeOpaque ignores alpha; the surface is fully opaque.
	AlphaModeOpaque AlphaMode = iota
	// AlphaModeMask renders the surface fully opaque or fully transparent based on Material.AlphaCutoff.
	AlphaModeMask
	// AlphaModeBlend blends the surface with the background using its alpha.
	AlphaModeBlend
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaModeOpaque:
		return "Opaque"
	case AlphaModeMask:
		return "Mask"
	case AlphaModeBlend:
		return "Blend"
	default:
		return fmt.Sprintf("AlphaMode(%d)", int(m))
	}
}

// TextureType tags the role a texture plays in a Material.
type TextureType int

const (
	TextureTypeAlbedo TextureType = iota
	TextureTypeNormal
	TextureTypeMetallic
	TextureTypeRoughness
	TextureTypeAmbientOcclusion
	TextureTypeEmissive
)

func (t TextureType) String() string {
	switch t {
	case TextureTypeAlbedo:
		return "Albedo"
	case TextureTypeNormal:
		return "Normal"
	case TextureTypeMetallic:
		return "Metallic"
	case TextureTypeRoughness:
		return "Roughness"
	case TextureTypeAmbientOcclusion:
		return "AmbientOcclusion"
	case TextureTypeEmissive:
		return "Emissive"
	default:
		return fmt.Sprintf("TextureType(%d)", int(t))
	}
}

// Topology is the primitive assembly mode of a mesh. Values match the glTF primitive mode codes.
type Topology int

const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyLineLoop
	TopologyLineStrip
	TopologyTriangles
	TopologyTriangleStrip
	TopologyTriangleFan
)

func (t Topology) String() string {
	switch t {
	case TopologyPoints:
		return "Points"
	case TopologyLines:
		return "Lines"
	case TopologyLineLoop:
		return "LineLoop"
	case TopologyLineStrip:
		return "LineStrip"
	case TopologyTriangles:
		return "Triangles"
	case TopologyTriangleStrip:
		return "TriangleStrip"
	case TopologyTriangleFan:
		return "TriangleFan"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// --- Resolved Scene ---

// Scene is the resolved, renderer-agnostic result of an import.
// It is owned by the caller; the importer keeps no reference to it.
type Scene struct {
	// Name is the default scene's name. Without a default scene it is the first named scene.
	// Otherwise it is the source file name without its extension, or "unnamed_scene".
	Name string

	// Meshes holds one entry per glTF mesh, in document order.
	Meshes []Mesh

	// Materials holds one entry per glTF material, in document order.
	Materials []Material

	// Textures holds one entry per glTF texture, in document order.
	Textures []Texture
}

// Vertex is the fixed-layout vertex record shared by every mesh.
// Attributes a primitive does not provide keep their zero value.
type Vertex struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec4
	TexCoord  mgl32.Vec2
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Mesh is a single drawable mesh: all primitives of a glTF mesh concatenated into one
// vertex array and one index array.
type Mesh struct {
	// Name is the glTF mesh name, or "mesh_<index>" when unnamed.
	Name string

	// Vertices are the vertices of every primitive, in primitive order.
	Vertices []Vertex

	// Indices index into Vertices. Each primitive's indices are rebased onto its first vertex.
	Indices []uint32

	// Material indexes Scene.Materials, or is NoMaterial.
	Material int

	// Topology is the primitive assembly mode shared by every primitive of the mesh.
	Topology Topology

	// BoundsMin is the minimum corner of the axis-aligned bounding box of all positions.
	BoundsMin mgl32.Vec3

	// BoundsMax is the maximum corner of the axis-aligned bounding box of all positions.
	BoundsMax mgl32.Vec3
}

// TextureRef binds a texture index (into Scene.Textures) to the role it plays in a material.
type TextureRef struct {
	Index int
	Type  TextureType
}

// Material is a flattened PBR metallic-roughness material.
type Material struct {
	// Name is the glTF material name.
	Name string

	// AlbedoColor is the base color factor (RGBA).
	AlbedoColor mgl32.Vec4

	// MetallicFactor (0.0 = dielectric, 1.0 = metal).
	MetallicFactor float32

	// RoughnessFactor (0.0 = smooth, 1.0 = rough).
	RoughnessFactor float32

	// EmissiveFactor is the emissive color (RGB).
	EmissiveFactor mgl32.Vec3

	AlphaMode AlphaMode

	// AlphaCutoff is the alpha threshold used when AlphaMode is AlphaModeMask.
	AlphaCutoff float32

	DoubleSided bool

	// Textures lists every texture this material samples, tagged by role.
	// The metallic-roughness texture appears twice, once as Metallic and once as Roughness.
	Textures []TextureRef
}

// Texture returns the index of the first texture tagged with the given type.
//
// Parameters:
//   - t: the texture role to look up
//
// Returns:
//   - int: the texture index into Scene.Textures
//   - bool: false if the material has no texture with that role
func (m *Material) Texture(t TextureType) (int, bool) {
	for _, ref := range m.Textures {
		if ref.Type == t {
			return ref.Index, true
		}
	}
	return 0, false
}

// Texture is a resolved texture: the image location on disk, its bytes, and its sampler.
type Texture struct {
	// Name is the glTF texture name, falling back to the image name.
	Name string

	// Path is the image file path, resolved against the glTF document directory.
	Path string

	// Data holds the raw (still encoded) image bytes. Nil when image data loading is disabled.
	Data []byte

	// MimeType is the declared or sniffed image MIME type (e.g., "image/png").
	MimeType string

	// SamplerData holds the GPU sampler parameters derived from the glTF sampler.
	SamplerData *common.SamplerStagingData
}
