package loader

import (
	"sort"
	"strings"
)

// validateDocument checks every required field and every cross reference of a decoded document.
// It runs after applyDefaults, so later stages may assume all indices are in bounds and every
// required pointer field is non-nil.
//
// Parameters:
//   - doc: the decoded document
//
// Returns:
//   - error: an *ImportError describing the first violation, or nil
func validateDocument(doc *gltfDocument) error {
	checks := []func(*gltfDocument) error{
		validateAsset,
		validateBuffers,
		validateBufferViews,
		validateAccessors,
		validateMeshes,
		validateMaterials,
		validateTextures,
		validateImages,
		validateNodes,
		validateScenes,
	}
	for _, check := range checks {
		if err := check(doc); err != nil {
			return err
		}
	}
	return nil
}

// inBounds reports whether idx addresses an element of an array of length n.
func inBounds(idx, n int) bool {
	return idx >= 0 && idx < n
}

func validateAsset(doc *gltfDocument) error {
	if doc.Asset == nil {
		return malformed("", 0, "missing required property asset")
	}
	if doc.Asset.Version == "" {
		return malformed("", 0, "missing required property asset.version")
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return unsupported("", 0, "glTF version %q, only 2.x is supported", doc.Asset.Version)
	}
	if v := doc.Asset.MinVersion; v != "" && v != "2.0" {
		return unsupported("", 0, "asset.minVersion %q is newer than 2.0", v)
	}
	if len(doc.ExtensionsRequired) > 0 {
		return unsupported("", 0, "required extensions %s", strings.Join(doc.ExtensionsRequired, ", "))
	}
	return nil
}

func validateBuffers(doc *gltfDocument) error {
	for i, buf := range doc.Buffers {
		if buf.ByteLength == nil {
			return malformed("buffer", i, "missing required property byteLength")
		}
		if *buf.ByteLength < 1 {
			return malformed("buffer", i, "byteLength %d must be at least 1", *buf.ByteLength)
		}
	}
	return nil
}

func validateBufferViews(doc *gltfDocument) error {
	for i, bv := range doc.BufferViews {
		if bv.Buffer == nil {
			return malformed("bufferView", i, "missing required property buffer")
		}
		if bv.ByteLength == nil {
			return malformed("bufferView", i, "missing required property byteLength")
		}
		if !inBounds(*bv.Buffer, len(doc.Buffers)) {
			return unresolved("bufferView", i, "buffer %d out of range (%d buffers)", *bv.Buffer, len(doc.Buffers))
		}
		if *bv.ByteLength < 1 || *bv.ByteOffset < 0 {
			return malformed("bufferView", i, "invalid byte range offset=%d length=%d", *bv.ByteOffset, *bv.ByteLength)
		}
		if s := bv.ByteStride; s != nil && (*s < 4 || *s > 252 || *s%4 != 0) {
			return malformed("bufferView", i, "byteStride %d must be a multiple of 4 in [4, 252]", *s)
		}
		if size := *doc.Buffers[*bv.Buffer].ByteLength; *bv.ByteOffset > size || *bv.ByteLength > size-*bv.ByteOffset {
			return malformed("bufferView", i, "byte range offset=%d length=%d exceeds buffer %d length %d",
				*bv.ByteOffset, *bv.ByteLength, *bv.Buffer, size)
		}
	}
	return nil
}

func validateAccessors(doc *gltfDocument) error {
	for i, acc := range doc.Accessors {
		if acc.ComponentType == 0 {
			return malformed("accessor", i, "missing required property componentType")
		}
		if acc.Type == 0 {
			return malformed("accessor", i, "missing required property type")
		}
		if acc.Count == nil {
			return malformed("accessor", i, "missing required property count")
		}
		if *acc.Count < 1 {
			return malformed("accessor", i, "count %d must be at least 1", *acc.Count)
		}
		if *acc.ByteOffset < 0 {
			return malformed("accessor", i, "negative byteOffset %d", *acc.ByteOffset)
		}
		if acc.BufferView != nil && !inBounds(*acc.BufferView, len(doc.BufferViews)) {
			return unresolved("accessor", i, "bufferView %d out of range (%d bufferViews)", *acc.BufferView, len(doc.BufferViews))
		}
		if sp := acc.Sparse; sp != nil {
			for _, bv := range []int{sp.Indices.BufferView, sp.Values.BufferView} {
				if !inBounds(bv, len(doc.BufferViews)) {
					return unresolved("accessor", i, "sparse bufferView %d out of range (%d bufferViews)", bv, len(doc.BufferViews))
				}
			}
		}
	}
	return nil
}

func validateMeshes(doc *gltfDocument) error {
	for i, mesh := range doc.Meshes {
		if len(mesh.Primitives) == 0 {
			return malformed("mesh", i, "mesh has no primitives")
		}
		for j, prim := range mesh.Primitives {
			if prim.Attributes == nil {
				return malformed("mesh", i, "primitive %d: missing required property attributes", j)
			}
			// Sorted so the reported attribute is stable across runs.
			semantics := make([]string, 0, len(prim.Attributes))
			for semantic := range prim.Attributes {
				semantics = append(semantics, semantic)
			}
			sort.Strings(semantics)
			for _, semantic := range semantics {
				if acc := prim.Attributes[semantic]; !inBounds(acc, len(doc.Accessors)) {
					return unresolved("mesh", i, "primitive %d: attribute %s accessor %d out of range (%d accessors)", j, semantic, acc, len(doc.Accessors))
				}
			}
			if prim.Indices != nil && !inBounds(*prim.Indices, len(doc.Accessors)) {
				return unresolved("mesh", i, "primitive %d: indices accessor %d out of range (%d accessors)", j, *prim.Indices, len(doc.Accessors))
			}
			if prim.Material != nil && !inBounds(*prim.Material, len(doc.Materials)) {
				return unresolved("mesh", i, "primitive %d: material %d out of range (%d materials)", j, *prim.Material, len(doc.Materials))
			}
		}
	}
	return nil
}

func validateMaterials(doc *gltfDocument) error {
	for i, m := range doc.Materials {
		infos := map[string]*gltfTextureInfo{
			"emissiveTexture": m.EmissiveTexture,
		}
		if pbr := m.PbrMetallicRoughness; pbr != nil {
			infos["baseColorTexture"] = pbr.BaseColorTexture
			infos["metallicRoughnessTexture"] = pbr.MetallicRoughnessTexture
		}
		if m.NormalTexture != nil {
			infos["normalTexture"] = &m.NormalTexture.gltfTextureInfo
		}
		if m.OcclusionTexture != nil {
			infos["occlusionTexture"] = &m.OcclusionTexture.gltfTextureInfo
		}

		names := make([]string, 0, len(infos))
		for name := range infos {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			info := infos[name]
			if info == nil {
				continue
			}
			if info.Index == nil {
				return malformed("material", i, "%s: missing required property index", name)
			}
			if !inBounds(*info.Index, len(doc.Textures)) {
				return unresolved("material", i, "%s: texture %d out of range (%d textures)", name, *info.Index, len(doc.Textures))
			}
		}
	}
	return nil
}

func validateTextures(doc *gltfDocument) error {
	for i, tex := range doc.Textures {
		if tex.Sampler != nil && !inBounds(*tex.Sampler, len(doc.Samplers)) {
			return unresolved("texture", i, "sampler %d out of range (%d samplers)", *tex.Sampler, len(doc.Samplers))
		}
		if tex.Source != nil && !inBounds(*tex.Source, len(doc.Images)) {
			return unresolved("texture", i, "source %d out of range (%d images)", *tex.Source, len(doc.Images))
		}
	}
	return nil
}

func validateImages(doc *gltfDocument) error {
	for i, img := range doc.Images {
		if img.BufferView != nil && !inBounds(*img.BufferView, len(doc.BufferViews)) {
			return unresolved("image", i, "bufferView %d out of range (%d bufferViews)", *img.BufferView, len(doc.BufferViews))
		}
	}
	return nil
}

func validateNodes(doc *gltfDocument) error {
	for i, n := range doc.Nodes {
		if n.Mesh != nil && !inBounds(*n.Mesh, len(doc.Meshes)) {
			return unresolved("node", i, "mesh %d out of range (%d meshes)", *n.Mesh, len(doc.Meshes))
		}
		for _, child := range n.Children {
			if !inBounds(child, len(doc.Nodes)) {
				return unresolved("node", i, "child %d out of range (%d nodes)", child, len(doc.Nodes))
			}
			if child == i {
				return malformed("node", i, "node lists itself as a child")
			}
		}
	}
	return nil
}

func validateScenes(doc *gltfDocument) error {
	if doc.Scene != nil && !inBounds(*doc.Scene, len(doc.Scenes)) {
		return unresolved("scene", *doc.Scene, "default scene out of range (%d scenes)", len(doc.Scenes))
	}
	for i, s := range doc.Scenes {
		for _, root := range s.Nodes {
			if !inBounds(root, len(doc.Nodes)) {
				return unresolved("scene", i, "node %d out of range (%d nodes)", root, len(doc.Nodes))
			}
		}
	}
	return nil
}
