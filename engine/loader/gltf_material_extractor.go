package loader

import (
	"cmp"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	doc           *gltfDocument
	baseDir       string
	loadImageData bool
	logger        *zap.Logger
}

// gltfMaterialExtractor defines the interface for extracting material and texture data from a
// parsed glTF document. Materials are flattened to model.Material with role-tagged texture indices;
// textures are resolved to image files on disk.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index.
	//
	// Parameters:
	//   - materialIndex: the index of the material to extract
	//
	// Returns:
	//   - model.Material: the flattened material
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (model.Material, error)

	// ExtractAllMaterials extracts all materials from the document, in document order.
	//
	// Returns:
	//   - []model.Material: all materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]model.Material, error)

	// ExtractTexture resolves a single texture by index.
	// The texture must name a source image that lives in an external file.
	//
	// Parameters:
	//   - textureIndex: the index of the texture to resolve
	//
	// Returns:
	//   - model.Texture: the resolved texture
	//   - error: error if the texture cannot be resolved or its image cannot be read
	ExtractTexture(textureIndex int) (model.Texture, error)

	// ExtractAllTextures resolves all textures from the document, in document order.
	//
	// Returns:
	//   - []model.Texture: all textures
	//   - error: error if any texture cannot be resolved
	ExtractAllTextures() ([]model.Texture, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - doc: the validated document
//   - baseDir: the directory image URIs resolve against
//   - loadImageData: whether to read image bytes into model.Texture.Data
//   - logger: the logger for texture resolution
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(doc *gltfDocument, baseDir string, loadImageData bool, logger *zap.Logger) gltfMaterialExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gltfMaterialExtractorImpl{
		doc:           doc,
		baseDir:       baseDir,
		loadImageData: loadImageData,
		logger:        logger,
	}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (model.Material, error) {
	if !inBounds(materialIndex, len(e.doc.Materials)) {
		return model.Material{}, unresolved("material", materialIndex, "material out of range (%d materials)", len(e.doc.Materials))
	}
	mat := &e.doc.Materials[materialIndex]

	result := model.Material{
		Name:            mat.Name,
		AlbedoColor:     mgl32.Vec4(gltfDefaults.BaseColorFactor),
		MetallicFactor:  gltfDefaults.MetallicFactor,
		RoughnessFactor: gltfDefaults.RoughnessFactor,
		EmissiveFactor:  mgl32.Vec3(*mat.EmissiveFactor),
		AlphaMode:       gltfAlphaModeToModel(*mat.AlphaMode),
		AlphaCutoff:     *mat.AlphaCutoff,
		DoubleSided:     *mat.DoubleSided,
	}

	tag := func(info *gltfTextureInfo, types ...model.TextureType) {
		if info == nil {
			return
		}
		for _, t := range types {
			result.Textures = append(result.Textures, model.TextureRef{Index: *info.Index, Type: t})
		}
	}

	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		result.AlbedoColor = mgl32.Vec4(*pbr.BaseColorFactor)
		result.MetallicFactor = *pbr.MetallicFactor
		result.RoughnessFactor = *pbr.RoughnessFactor
		tag(pbr.BaseColorTexture, model.TextureTypeAlbedo)
		// One texture packs metallic (B) and roughness (G).
		tag(pbr.MetallicRoughnessTexture, model.TextureTypeMetallic, model.TextureTypeRoughness)
	}
	if mat.NormalTexture != nil {
		tag(&mat.NormalTexture.gltfTextureInfo, model.TextureTypeNormal)
	}
	if mat.OcclusionTexture != nil {
		tag(&mat.OcclusionTexture.gltfTextureInfo, model.TextureTypeAmbientOcclusion)
	}
	tag(mat.EmissiveTexture, model.TextureTypeEmissive)

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]model.Material, error) {
	materials := make([]model.Material, 0, len(e.doc.Materials))
	for i := range e.doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, err
		}
		materials = append(materials, mat)
	}
	return materials, nil
}

func (e *gltfMaterialExtractorImpl) ExtractTexture(textureIndex int) (model.Texture, error) {
	if !inBounds(textureIndex, len(e.doc.Textures)) {
		return model.Texture{}, unresolved("texture", textureIndex, "texture out of range (%d textures)", len(e.doc.Textures))
	}
	tex := &e.doc.Textures[textureIndex]

	if tex.Source == nil {
		return model.Texture{}, unsupported("texture", textureIndex, "texture has no source image")
	}
	img := &e.doc.Images[*tex.Source]

	if img.URI == "" {
		return model.Texture{}, unsupported("texture", textureIndex, "image %d is embedded in a bufferView, not an external file", *tex.Source)
	}
	path, err := resolveURI(img.URI, e.baseDir)
	if err != nil {
		return model.Texture{}, newError(uriErrorKind(img.URI), "texture", textureIndex, "image %d: %w", *tex.Source, err)
	}

	samplerData := common.DefaultSamplerStagingData()
	if tex.Sampler != nil {
		samplerData = gltfSamplerToStagingData(&e.doc.Samplers[*tex.Sampler])
	}

	result := model.Texture{
		Name:        cmp.Or(tex.Name, img.Name),
		Path:        path,
		SamplerData: &samplerData,
	}

	if e.loadImageData {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Texture{}, &ImportError{Kind: KindIoFailure, Path: path, Entity: "texture", Index: textureIndex, Err: err}
		}
		result.Data = data
	}
	result.MimeType = cmp.Or(img.MimeType, sniffMimeType(result.Data, path))

	e.logger.Debug("resolved texture",
		zap.Int("texture", textureIndex),
		zap.String("path", path),
		zap.String("mime", result.MimeType),
		zap.Int("bytes", len(result.Data)),
	)
	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllTextures() ([]model.Texture, error) {
	textures := make([]model.Texture, 0, len(e.doc.Textures))
	for i := range e.doc.Textures {
		tex, err := e.ExtractTexture(i)
		if err != nil {
			return nil, err
		}
		textures = append(textures, tex)
	}
	return textures, nil
}

// sniffMimeType guesses an image MIME type from its content, falling back to the file extension.
//
// Parameters:
//   - data: the image bytes, possibly nil
//   - path: the image path
//
// Returns:
//   - string: the MIME type, or "" if it cannot be determined
func sniffMimeType(data []byte, path string) string {
	if len(data) > 0 {
		if kind, err := filetype.Match(data); err == nil && kind.MIME.Value != "" {
			return kind.MIME.Value
		}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return ""
	}
	return filetype.GetType(ext).MIME.Value
}

// gltfAlphaModeToModel maps a glTF alpha mode onto the resolved enum.
func gltfAlphaModeToModel(m gltfAlphaMode) model.AlphaMode {
	switch m {
	case gltfAlphaModeMask:
		return model.AlphaModeMask
	case gltfAlphaModeBlend:
		return model.AlphaModeBlend
	default:
		return model.AlphaModeOpaque
	}
}

// gltfSamplerToStagingData converts a glTF sampler to the SamplerStagingData renderers use to create
// a GPU sampler. glTF minification filters carry both the min filter and the mipmap filter.
//
// Parameters:
//   - s: the glTF sampler, with wrap defaults applied
//
// Returns:
//   - common.SamplerStagingData: the sampler configuration
func gltfSamplerToStagingData(s *gltfSampler) common.SamplerStagingData {
	result := common.DefaultSamplerStagingData()

	if s.MagFilter != nil {
		switch *s.MagFilter {
		case gltfFilterNearest:
			result.MagFilter = wgpu.FilterModeNearest
		case gltfFilterLinear:
			result.MagFilter = wgpu.FilterModeLinear
		}
	}

	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
			result.MinFilter = wgpu.FilterModeNearest
		case gltfFilterLinear, gltfFilterLinearMipmapNearest, gltfFilterLinearMipmapLinear:
			result.MinFilter = wgpu.FilterModeLinear
		}
		switch *s.MinFilter {
		case gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest:
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		case gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
			result.MipmapFilter = wgpu.MipmapFilterModeLinear
		case gltfFilterNearest, gltfFilterLinear:
			// No mipmapping requested: sample only the base level.
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
			result.LodMaxClamp = 0
		}
	}

	if s.WrapS != nil {
		result.AddressModeU = gltfWrapToAddressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		result.AddressModeV = gltfWrapToAddressMode(*s.WrapT)
	}

	return result
}

// gltfWrapToAddressMode converts a glTF wrap mode to a WebGPU address mode.
func gltfWrapToAddressMode(wrap gltfWrap) wgpu.AddressMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltfWrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
