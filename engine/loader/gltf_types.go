// gltf_types.go contains glTF 2.0 spec data structures for JSON deserialization.
// These types map directly to the glTF 2.0 JSON schema and are internal to the loader package.
// Optional fields are pointers so that absence can be told apart from a zero value; applyDefaults
// fills every optional field that has a documented default.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

import (
	"fmt"

	"github.com/goccy/go-json"
)

// --- glTF Root Structure ---

// gltfDocument represents the root of a glTF JSON document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-gltf
type gltfDocument struct {
	// Asset contains metadata about the glTF asset (required).
	Asset *gltfAsset `json:"asset"`

	// Scene is the index of the default scene.
	Scene *int `json:"scene,omitempty"`

	// Scenes is an array of scenes.
	Scenes []gltfScene `json:"scenes,omitempty"`

	// Nodes is an array of nodes (transform hierarchy).
	Nodes []gltfNode `json:"nodes,omitempty"`

	// Meshes is an array of meshes.
	Meshes []gltfMesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors []gltfAccessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers []gltfBuffer `json:"buffers,omitempty"`

	// Materials is an array of materials.
	Materials []gltfMaterial `json:"materials,omitempty"`

	// Textures is an array of textures.
	Textures []gltfTexture `json:"textures,omitempty"`

	// Images is an array of images.
	Images []gltfImage `json:"images,omitempty"`

	// Samplers define texture sampling parameters.
	Samplers []gltfSampler `json:"samplers,omitempty"`

	// ExtensionsUsed lists extensions used by this asset.
	ExtensionsUsed []string `json:"extensionsUsed,omitempty"`

	// ExtensionsRequired lists extensions required to load this asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// --- Asset Metadata ---

// gltfAsset contains metadata about the glTF asset.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-asset
type gltfAsset struct {
	// Version is the glTF version (required, must be "2.x").
	Version string `json:"version"`

	// MinVersion is the minimum glTF version required.
	MinVersion string `json:"minVersion,omitempty"`

	// Generator is the tool that generated this asset.
	Generator string `json:"generator,omitempty"`

	// Copyright information.
	Copyright string `json:"copyright,omitempty"`
}

// --- Scene Graph ---

// gltfScene is a set of visual objects to render.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-scene
type gltfScene struct {
	// Name is an optional name for this scene.
	Name string `json:"name,omitempty"`

	// Nodes are the indices of root nodes in this scene.
	Nodes []int `json:"nodes,omitempty"`
}

// gltfNode is a node in the node hierarchy.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-node
type gltfNode struct {
	// Name is an optional name for this node.
	Name string `json:"name,omitempty"`

	// Camera is the index of the camera referenced by this node.
	Camera *int `json:"camera,omitempty"`

	// Children are indices of child nodes.
	Children []int `json:"children,omitempty"`

	// Mesh is the index of the mesh in this node.
	Mesh *int `json:"mesh,omitempty"`

	// Skin is the index of the skin for this node.
	Skin *int `json:"skin,omitempty"`

	// Matrix is a 4x4 transformation matrix (column-major). Defaults to identity.
	Matrix *[16]float32 `json:"matrix,omitempty"`

	// Translation is the node's translation (x, y, z). Defaults to zero.
	Translation *[3]float32 `json:"translation,omitempty"`

	// Rotation is the node's rotation as a quaternion (x, y, z, w). Defaults to (0, 0, 0, 1).
	Rotation *[4]float32 `json:"rotation,omitempty"`

	// Scale is the node's scale (x, y, z). Defaults to one.
	Scale *[3]float32 `json:"scale,omitempty"`

	// Weights are morph target weights.
	Weights []float32 `json:"weights,omitempty"`
}

// --- Mesh Data ---

// gltfMesh is a set of primitives to be rendered.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh
type gltfMesh struct {
	// Name is an optional name for this mesh.
	Name string `json:"name,omitempty"`

	// Primitives defines the geometry to render (required, at least one).
	Primitives []gltfPrimitive `json:"primitives"`

	// Weights are default morph target weights.
	Weights []float32 `json:"weights,omitempty"`
}

// gltfPrimitive defines geometry for rendering.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type gltfPrimitive struct {
	// Attributes is a map of attribute semantic to accessor index (required).
	// Standard attributes: POSITION, NORMAL, TANGENT, TEXCOORD_n, COLOR_n, JOINTS_n, WEIGHTS_n
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index for the index buffer.
	Indices *int `json:"indices,omitempty"`

	// Material is the material index.
	Material *int `json:"material,omitempty"`

	// Mode is the primitive topology. Defaults to TRIANGLES.
	Mode *gltfPrimitiveMode `json:"mode,omitempty"`

	// Targets are morph targets for this primitive. Parsed, never applied.
	Targets []map[string]int `json:"targets,omitempty"`
}

// gltfPrimitiveMode is the topology code of a primitive.
type gltfPrimitiveMode int

// PrimitiveMode constants
const (
	gltfPrimitiveModePoints        gltfPrimitiveMode = 0
	gltfPrimitiveModeLines         gltfPrimitiveMode = 1
	gltfPrimitiveModeLineLoop      gltfPrimitiveMode = 2
	gltfPrimitiveModeLineStrip     gltfPrimitiveMode = 3
	gltfPrimitiveModeTriangles     gltfPrimitiveMode = 4
	gltfPrimitiveModeTriangleStrip gltfPrimitiveMode = 5
	gltfPrimitiveModeTriangleFan   gltfPrimitiveMode = 6
)

func (m *gltfPrimitiveMode) UnmarshalJSON(b []byte) error {
	var x int
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	if x < int(gltfPrimitiveModePoints) || x > int(gltfPrimitiveModeTriangleFan) {
		return fmt.Errorf("unknown primitive mode %d", x)
	}
	*m = gltfPrimitiveMode(x)
	return nil
}

// --- Buffer Data ---

// gltfAccessor defines how to interpret buffer data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type gltfAccessor struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// BufferView is the index of the bufferView. When absent the accessor is zero-filled.
	BufferView *int `json:"bufferView,omitempty"`

	// ByteOffset is the offset within the bufferView. Defaults to 0.
	ByteOffset *int `json:"byteOffset,omitempty"`

	// ComponentType is the data type of components (required).
	ComponentType gltfComponentType `json:"componentType"`

	// Normalized indicates if integer data should be normalized.
	Normalized bool `json:"normalized,omitempty"`

	// Count is the number of elements (required).
	Count *int `json:"count"`

	// Type is the element type (required).
	Type gltfAccessorType `json:"type"`

	// Max is the maximum value of each component.
	Max []float32 `json:"max,omitempty"`

	// Min is the minimum value of each component.
	Min []float32 `json:"min,omitempty"`

	// Sparse defines sparse storage of accessor values. Parsed, never applied.
	Sparse *gltfAccessorSparse `json:"sparse,omitempty"`
}

// gltfComponentType is the numeric component type code of an accessor.
// The zero value means the field was absent from the document.
type gltfComponentType int

// ComponentType constants
const (
	gltfComponentTypeByte          gltfComponentType = 5120
	gltfComponentTypeUnsignedByte  gltfComponentType = 5121
	gltfComponentTypeShort         gltfComponentType = 5122
	gltfComponentTypeUnsignedShort gltfComponentType = 5123
	gltfComponentTypeUnsignedInt   gltfComponentType = 5125
	gltfComponentTypeFloat         gltfComponentType = 5126
)

func (t *gltfComponentType) UnmarshalJSON(b []byte) error {
	var x int
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	switch gltfComponentType(x) {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte,
		gltfComponentTypeShort, gltfComponentTypeUnsignedShort,
		gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		*t = gltfComponentType(x)
		return nil
	default:
		return fmt.Errorf("unknown componentType %d", x)
	}
}

func (t gltfComponentType) String() string {
	switch t {
	case gltfComponentTypeByte:
		return "BYTE"
	case gltfComponentTypeUnsignedByte:
		return "UNSIGNED_BYTE"
	case gltfComponentTypeShort:
		return "SHORT"
	case gltfComponentTypeUnsignedShort:
		return "UNSIGNED_SHORT"
	case gltfComponentTypeUnsignedInt:
		return "UNSIGNED_INT"
	case gltfComponentTypeFloat:
		return "FLOAT"
	default:
		return fmt.Sprint(int(t))
	}
}

// gltfAccessorType is the element shape of an accessor.
// The zero value means the field was absent from the document.
type gltfAccessorType int

// AccessorType constants
const (
	gltfAccessorTypeScalar gltfAccessorType = iota + 1
	gltfAccessorTypeVec2
	gltfAccessorTypeVec3
	gltfAccessorTypeVec4
	gltfAccessorTypeMat2
	gltfAccessorTypeMat3
	gltfAccessorTypeMat4
)

var gltfAccessorTypeNames = map[string]gltfAccessorType{
	"SCALAR": gltfAccessorTypeScalar,
	"VEC2":   gltfAccessorTypeVec2,
	"VEC3":   gltfAccessorTypeVec3,
	"VEC4":   gltfAccessorTypeVec4,
	"MAT2":   gltfAccessorTypeMat2,
	"MAT3":   gltfAccessorTypeMat3,
	"MAT4":   gltfAccessorTypeMat4,
}

func (a *gltfAccessorType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, ok := gltfAccessorTypeNames[s]
	if !ok {
		return fmt.Errorf("unknown accessor type %q", s)
	}
	*a = t
	return nil
}

func (a gltfAccessorType) String() string {
	for name, t := range gltfAccessorTypeNames {
		if t == a {
			return name
		}
	}
	return fmt.Sprint(int(a))
}

// gltfAccessorSparse defines sparse storage.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor-sparse
//
// NOTE: sparse accessors are parsed but their substitution is not supported; the accessor
// decoder rejects any accessor that carries one.
type gltfAccessorSparse struct {
	// Count is the number of sparse entries.
	Count int `json:"count"`

	// Indices locates the indices of the substituted elements.
	Indices gltfAccessorSparseIndices `json:"indices"`

	// Values locates the substituted element values.
	Values gltfAccessorSparseValues `json:"values"`
}

// gltfAccessorSparseIndices locates the element indices of a sparse accessor.
type gltfAccessorSparseIndices struct {
	BufferView    int               `json:"bufferView"`
	ByteOffset    int               `json:"byteOffset,omitempty"`
	ComponentType gltfComponentType `json:"componentType"`
}

// gltfAccessorSparseValues locates the substituted values of a sparse accessor.
type gltfAccessorSparseValues struct {
	BufferView int `json:"bufferView"`
	ByteOffset int `json:"byteOffset,omitempty"`
}

// gltfBufferView represents a subset of a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type gltfBufferView struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Buffer is the index of the buffer (required).
	Buffer *int `json:"buffer"`

	// ByteOffset is the offset into the buffer. Defaults to 0.
	ByteOffset *int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the bufferView (required).
	ByteLength *int `json:"byteLength"`

	// ByteStride is the stride for interleaved data (optional, 4..252).
	ByteStride *int `json:"byteStride,omitempty"`

	// Target is the intended GPU buffer type.
	Target *gltfBufferTarget `json:"target,omitempty"`
}

// gltfBufferTarget is the intended GPU buffer binding of a bufferView.
type gltfBufferTarget int

// BufferTarget constants
const (
	gltfTargetArrayBuffer        gltfBufferTarget = 34962
	gltfTargetElementArrayBuffer gltfBufferTarget = 34963
)

func (t *gltfBufferTarget) UnmarshalJSON(b []byte) error {
	var x int
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	switch gltfBufferTarget(x) {
	case gltfTargetArrayBuffer, gltfTargetElementArrayBuffer:
		*t = gltfBufferTarget(x)
		return nil
	default:
		return fmt.Errorf("unknown bufferView target %d", x)
	}
}

// gltfBuffer represents binary data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-buffer
type gltfBuffer struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the URI of the buffer data, relative to the document.
	URI string `json:"uri,omitempty"`

	// ByteLength is the length of the buffer (required).
	ByteLength *int `json:"byteLength"`

	// Data holds the loaded binary data (not part of JSON, populated by the buffer loader).
	Data []byte `json:"-"`
}

// --- Materials and Textures ---

// gltfMaterial defines the material appearance of a primitive.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type gltfMaterial struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// PbrMetallicRoughness is the PBR metallic-roughness model.
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`

	// NormalTexture is the normal map.
	NormalTexture *gltfNormalTextureInfo `json:"normalTexture,omitempty"`

	// OcclusionTexture is the occlusion map.
	OcclusionTexture *gltfOcclusionTextureInfo `json:"occlusionTexture,omitempty"`

	// EmissiveTexture is the emissive map.
	EmissiveTexture *gltfTextureInfo `json:"emissiveTexture,omitempty"`

	// EmissiveFactor is the emissive color (RGB). Defaults to black.
	EmissiveFactor *[3]float32 `json:"emissiveFactor,omitempty"`

	// AlphaMode is the alpha rendering mode. Defaults to OPAQUE.
	AlphaMode *gltfAlphaMode `json:"alphaMode,omitempty"`

	// AlphaCutoff is the alpha cutoff for MASK mode. Defaults to 0.5.
	AlphaCutoff *float32 `json:"alphaCutoff,omitempty"`

	// DoubleSided indicates if the material is double-sided. Defaults to false.
	DoubleSided *bool `json:"doubleSided,omitempty"`
}

// gltfAlphaMode is the alpha rendering mode of a material.
type gltfAlphaMode int

// AlphaMode constants
const (
	gltfAlphaModeOpaque gltfAlphaMode = iota
	gltfAlphaModeMask
	gltfAlphaModeBlend
)

func (m *gltfAlphaMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "OPAQUE":
		*m = gltfAlphaModeOpaque
	case "MASK":
		*m = gltfAlphaModeMask
	case "BLEND":
		*m = gltfAlphaModeBlend
	default:
		return fmt.Errorf("unknown alphaMode %q", s)
	}
	return nil
}

// gltfPbrMetallicRoughness is the metallic-roughness material model.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-pbrmetallicroughness
type gltfPbrMetallicRoughness struct {
	// BaseColorFactor is the base color (RGBA). Defaults to white.
	BaseColorFactor *[4]float32 `json:"baseColorFactor,omitempty"`

	// BaseColorTexture is the base color texture.
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`

	// MetallicFactor is the metalness (0.0 = dielectric, 1.0 = metal). Defaults to 1.
	MetallicFactor *float32 `json:"metallicFactor,omitempty"`

	// RoughnessFactor is the roughness (0.0 = smooth, 1.0 = rough). Defaults to 1.
	RoughnessFactor *float32 `json:"roughnessFactor,omitempty"`

	// MetallicRoughnessTexture contains metallic (B) and roughness (G) channels.
	MetallicRoughnessTexture *gltfTextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// gltfTextureInfo references a texture.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-textureinfo
type gltfTextureInfo struct {
	// Index is the texture index (required).
	Index *int `json:"index"`

	// TexCoord is the UV set to use. Defaults to 0.
	TexCoord *int `json:"texCoord,omitempty"`
}

// gltfNormalTextureInfo references a normal map.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-normaltextureinfo
type gltfNormalTextureInfo struct {
	gltfTextureInfo

	// Scale is the normal scale factor. Defaults to 1.
	Scale *float32 `json:"scale,omitempty"`
}

// gltfOcclusionTextureInfo references an occlusion map.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-occlusiontextureinfo
type gltfOcclusionTextureInfo struct {
	gltfTextureInfo

	// Strength is the occlusion strength. Defaults to 1.
	Strength *float32 `json:"strength,omitempty"`
}

// gltfTexture combines an image and a sampler.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-texture
type gltfTexture struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Sampler is the sampler index.
	Sampler *int `json:"sampler,omitempty"`

	// Source is the image index.
	Source *int `json:"source,omitempty"`
}

// gltfImage is a texture image source.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-image
type gltfImage struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the image URI (external file, or a data: URI which is not supported).
	URI string `json:"uri,omitempty"`

	// MimeType is the MIME type of the image.
	MimeType string `json:"mimeType,omitempty"`

	// BufferView is the index of the bufferView containing the image (not supported).
	BufferView *int `json:"bufferView,omitempty"`
}

// gltfSampler defines texture sampling parameters.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
type gltfSampler struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// MagFilter is the magnification filter (NEAREST or LINEAR).
	MagFilter *gltfFilter `json:"magFilter,omitempty"`

	// MinFilter is the minification filter.
	MinFilter *gltfFilter `json:"minFilter,omitempty"`

	// WrapS is the U wrapping mode. Defaults to REPEAT.
	WrapS *gltfWrap `json:"wrapS,omitempty"`

	// WrapT is the V wrapping mode. Defaults to REPEAT.
	WrapT *gltfWrap `json:"wrapT,omitempty"`
}

// gltfFilter is a sampler filter code.
type gltfFilter int

// Sampler filter constants
const (
	gltfFilterNearest              gltfFilter = 9728
	gltfFilterLinear               gltfFilter = 9729
	gltfFilterNearestMipmapNearest gltfFilter = 9984
	gltfFilterLinearMipmapNearest  gltfFilter = 9985
	gltfFilterNearestMipmapLinear  gltfFilter = 9986
	gltfFilterLinearMipmapLinear   gltfFilter = 9987
)

func (f *gltfFilter) UnmarshalJSON(b []byte) error {
	var x int
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	switch gltfFilter(x) {
	case gltfFilterNearest, gltfFilterLinear,
		gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest,
		gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
		*f = gltfFilter(x)
		return nil
	default:
		return fmt.Errorf("unknown sampler filter %d", x)
	}
}

// gltfWrap is a sampler wrap mode code.
type gltfWrap int

// Sampler wrap constants
const (
	gltfWrapClampToEdge    gltfWrap = 33071
	gltfWrapMirroredRepeat gltfWrap = 33648
	gltfWrapRepeat         gltfWrap = 10497
)

func (w *gltfWrap) UnmarshalJSON(b []byte) error {
	var x int
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	switch gltfWrap(x) {
	case gltfWrapClampToEdge, gltfWrapMirroredRepeat, gltfWrapRepeat:
		*w = gltfWrap(x)
		return nil
	default:
		return fmt.Errorf("unknown sampler wrap mode %d", x)
	}
}

// --- GLB Binary Format ---

// gltfGLBMagic is "glTF" in little-endian ASCII, the first four bytes of a binary container.
// Binary containers are detected only so they can be rejected.
const gltfGLBMagic = 0x46546C67
