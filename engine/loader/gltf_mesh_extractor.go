package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// vertexAttribute identifies which Vertex field a glTF attribute semantic fills.
type vertexAttribute int

const (
	attributeIgnored vertexAttribute = iota
	attributePosition
	attributeNormal
	attributeTangent
	attributeTexCoord
	attributeColor
)

// classifyAttribute maps a semantic to the Vertex field it fills.
// The lowercase root token before the first underscore selects the field; texture coordinates and
// colors only use set 0. Every other semantic is ignored.
//
// Parameters:
//   - semantic: the attribute name as written in the document (e.g., "TEXCOORD_0")
//
// Returns:
//   - vertexAttribute: the target field, or attributeIgnored
func classifyAttribute(semantic string) vertexAttribute {
	root, set, _ := strings.Cut(strings.ToLower(semantic), "_")
	switch root {
	case "position":
		return attributePosition
	case "normal":
		return attributeNormal
	case "tangent":
		return attributeTangent
	case "texcoord":
		if set == "0" {
			return attributeTexCoord
		}
	case "color":
		if set == "0" {
			return attributeColor
		}
	}
	return attributeIgnored
}

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	doc              *gltfDocument
	decoder          gltfAccessorDecoder
	logger           *zap.Logger
	generateNormals  bool
	generateTangents bool
}

// gltfMeshExtractor defines the interface for extracting mesh data from a parsed glTF document.
// It converts glTF primitives into model.Mesh values, one per glTF mesh.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	// All primitives are concatenated into one vertex array and one index array.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - model.Mesh: the assembled mesh
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (model.Mesh, error)

	// ExtractAllMeshes extracts all meshes from the document, in document order.
	//
	// Returns:
	//   - []model.Mesh: all meshes
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - doc: the validated document with loaded buffers
//   - decoder: the accessor decoder over doc
//   - logger: the logger for ignored attributes
//   - generateNormals: whether to compute smooth normals for triangle primitives without NORMAL
//   - generateTangents: whether to compute tangents for triangle primitives without TANGENT
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(doc *gltfDocument, decoder gltfAccessorDecoder, logger *zap.Logger, generateNormals, generateTangents bool) gltfMeshExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gltfMeshExtractorImpl{
		doc:              doc,
		decoder:          decoder,
		logger:           logger,
		generateNormals:  generateNormals,
		generateTangents: generateTangents,
	}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.Mesh, error) {
	meshes := make([]model.Mesh, 0, len(e.doc.Meshes))
	for i := range e.doc.Meshes {
		mesh, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (model.Mesh, error) {
	if !inBounds(meshIndex, len(e.doc.Meshes)) {
		return model.Mesh{}, unresolved("mesh", meshIndex, "mesh out of range (%d meshes)", len(e.doc.Meshes))
	}
	src := &e.doc.Meshes[meshIndex]

	mesh := model.Mesh{
		Name:     src.Name,
		Material: model.NoMaterial,
	}
	if mesh.Name == "" {
		mesh.Name = fmt.Sprintf("mesh_%d", meshIndex)
	}

	for primIdx := range src.Primitives {
		prim := &src.Primitives[primIdx]

		if prim.Material != nil {
			if mesh.Material == model.NoMaterial {
				mesh.Material = *prim.Material
			} else if mesh.Material != *prim.Material {
				return model.Mesh{}, unsupported("mesh", meshIndex,
					"primitive %d uses material %d, earlier primitives use material %d", primIdx, *prim.Material, mesh.Material)
			}
		}

		topology := model.Topology(*prim.Mode)
		if primIdx == 0 {
			mesh.Topology = topology
		} else if topology != mesh.Topology {
			return model.Mesh{}, unsupported("mesh", meshIndex,
				"primitive %d topology %s differs from %s", primIdx, topology, mesh.Topology)
		} else if !isListTopology(topology) {
			// Concatenated strips, fans and loops would join into extra primitives.
			return model.Mesh{}, unsupported("mesh", meshIndex,
				"primitive %d: %s cannot be merged across primitives", primIdx, topology)
		}

		vertices, indices, err := e.extractPrimitive(meshIndex, primIdx, prim)
		if err != nil {
			return model.Mesh{}, err
		}

		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, vertices...)
		for _, idx := range indices {
			mesh.Indices = append(mesh.Indices, idx+base)
		}
	}

	mesh.BoundsMin, mesh.BoundsMax = gltfCalculateBoundingBox(mesh.Vertices)

	e.logger.Debug("extracted mesh",
		zap.Int("mesh", meshIndex),
		zap.String("name", mesh.Name),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("indices", len(mesh.Indices)),
	)
	return mesh, nil
}

// isListTopology reports whether every primitive of t stands alone in the index list.
func isListTopology(t model.Topology) bool {
	switch t {
	case model.TopologyPoints, model.TopologyLines, model.TopologyTriangles:
		return true
	default:
		return false
	}
}

// primitiveAttribute is a recognized attribute of one primitive.
type primitiveAttribute struct {
	semantic string
	kind     vertexAttribute
	accessor int
}

// extractPrimitive decodes one primitive into its own vertex array and primitive-local indices.
// The vertex count is the largest count among recognized attributes; the vertex array is allocated
// once and each attribute fills its field, so attributes with fewer elements leave zero values.
func (e *gltfMeshExtractorImpl) extractPrimitive(meshIndex, primIdx int, prim *gltfPrimitive) ([]model.Vertex, []uint32, error) {
	semantics := make([]string, 0, len(prim.Attributes))
	for semantic := range prim.Attributes {
		semantics = append(semantics, semantic)
	}
	sort.Strings(semantics)

	var attrs []primitiveAttribute
	vertexCount := 0
	for _, semantic := range semantics {
		kind := classifyAttribute(semantic)
		if kind == attributeIgnored {
			e.logger.Debug("ignoring vertex attribute",
				zap.Int("mesh", meshIndex),
				zap.Int("primitive", primIdx),
				zap.String("semantic", semantic),
				zap.String("accessor", describeAccessor(e.doc, prim.Attributes[semantic])),
			)
			continue
		}
		acc := prim.Attributes[semantic]
		count, err := e.decoder.Count(acc)
		if err != nil {
			return nil, nil, withPrimitive(err, meshIndex, primIdx, semantic)
		}
		attrs = append(attrs, primitiveAttribute{semantic: semantic, kind: kind, accessor: acc})
		vertexCount = max(vertexCount, count)
	}

	vertices := make([]model.Vertex, vertexCount)
	var tangentW []float32
	hasNormals, hasTexCoords := false, false

	for _, attr := range attrs {
		if err := e.fillAttribute(vertices, attr, &tangentW); err != nil {
			return nil, nil, withPrimitive(err, meshIndex, primIdx, attr.semantic)
		}
		switch attr.kind {
		case attributeNormal:
			hasNormals = true
		case attributeTexCoord:
			hasTexCoords = true
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		var err error
		indices, err = e.decoder.ReadIndices(*prim.Indices)
		if err != nil {
			return nil, nil, withPrimitive(err, meshIndex, primIdx, "indices")
		}
		for pos, idx := range indices {
			if int64(idx) >= int64(vertexCount) {
				return nil, nil, malformed("mesh", meshIndex,
					"primitive %d: index %d at position %d exceeds vertex count %d", primIdx, idx, pos, vertexCount)
			}
		}
	} else {
		// Generate sequential indices if none provided
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	triangles := *prim.Mode == gltfPrimitiveModeTriangles
	if e.generateNormals && !hasNormals && triangles {
		generateNormals(vertices, indices)
	}
	if tangentW != nil {
		// Runs after every attribute so that the result does not depend on attribute order.
		for i := range vertices {
			vertices[i].Bitangent = vertices[i].Normal.Cross(vertices[i].Tangent).Mul(tangentW[i])
		}
	} else if e.generateTangents && hasTexCoords && triangles {
		generateTangents(vertices, indices)
	}

	return vertices, indices, nil
}

// fillAttribute decodes one attribute accessor and writes it into its Vertex field.
// TANGENT handedness is stored into *tangentW for the bitangent pass.
func (e *gltfMeshExtractorImpl) fillAttribute(vertices []model.Vertex, attr primitiveAttribute, tangentW *[]float32) error {
	switch attr.kind {
	case attributePosition, attributeNormal:
		values, err := e.decoder.ReadVec3(attr.accessor)
		if err != nil {
			return err
		}
		for i, v := range values {
			if attr.kind == attributePosition {
				vertices[i].Position = v
			} else {
				vertices[i].Normal = v
			}
		}
	case attributeTangent:
		values, err := e.decoder.ReadVec4(attr.accessor)
		if err != nil {
			return err
		}
		*tangentW = make([]float32, len(vertices))
		for i, v := range values {
			vertices[i].Tangent = v.Vec3()
			(*tangentW)[i] = v.W()
		}
	case attributeTexCoord:
		values, err := e.decoder.ReadVec2(attr.accessor)
		if err != nil {
			return err
		}
		for i, v := range values {
			vertices[i].TexCoord = v
		}
	case attributeColor:
		values, err := e.decoder.ReadColors(attr.accessor)
		if err != nil {
			return err
		}
		for i, v := range values {
			vertices[i].Color = v
		}
	}
	return nil
}

// withPrimitive prefixes an accessor error with the primitive and attribute it was read for.
func withPrimitive(err error, meshIndex, primIdx int, what string) error {
	if ie, ok := err.(*ImportError); ok {
		return &ImportError{
			Kind:   ie.Kind,
			Entity: ie.Entity,
			Index:  ie.Index,
			Err:    fmt.Errorf("mesh %d primitive %d %s: %w", meshIndex, primIdx, what, ie.Err),
		}
	}
	return fmt.Errorf("mesh %d primitive %d %s: %w", meshIndex, primIdx, what, err)
}

// gltfCalculateBoundingBox computes the axis-aligned bounding box of vertex positions.
func gltfCalculateBoundingBox(vertices []model.Vertex) (mgl32.Vec3, mgl32.Vec3) {
	if len(vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}

	bmin := mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	bmax := mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}

	for _, v := range vertices {
		for j := 0; j < 3; j++ {
			bmin[j] = math32.Min(bmin[j], v.Position[j])
			bmax[j] = math32.Max(bmax[j], v.Position[j])
		}
	}

	return bmin, bmax
}

// generateNormals computes smooth vertex normals from triangle-list geometry. For each triangle
// the face normal is the cross product of its two edges, accumulated (area-weighted) onto every
// vertex of that triangle, then normalized.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer
func generateNormals(vertices []model.Vertex, indices []uint32) {
	n := len(vertices)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0 := vertices[i0].Position
		faceNormal := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))

		for _, idx := range []uint32{i0, i1, i2} {
			accum[idx] = accum[idx].Add(faceNormal)
		}
	}

	for i := range n {
		if accum[i].Len() < 1e-6 {
			// Degenerate: default to up vector
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
			continue
		}
		vertices[i].Normal = accum[i].Normalize()
	}
}

// generateTangents computes per-vertex tangents and bitangents from triangle-list topology using
// per-triangle UV gradients, accumulated per vertex and orthonormalized against the vertex normal.
//
// Parameters:
//   - vertices: the vertex slice to write tangent data into
//   - indices: the triangle index buffer
func generateTangents(vertices []model.Vertex, indices []uint32) {
	n := len(vertices)
	tan := make([]mgl32.Vec3, n)
	btan := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0 := vertices[i0].Position
		edge1 := vertices[i1].Position.Sub(p0)
		edge2 := vertices[i2].Position.Sub(p0)

		uv0 := vertices[i0].TexCoord
		duv1 := vertices[i1].TexCoord.Sub(uv0)
		duv2 := vertices[i2].TexCoord.Sub(uv0)

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			continue
		}
		invDet := 1 / det

		t := edge1.Mul(duv2[1]).Sub(edge2.Mul(duv1[1])).Mul(invDet)
		b := edge2.Mul(duv1[0]).Sub(edge1.Mul(duv2[0])).Mul(invDet)

		for _, idx := range []uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	for i := range n {
		normal := vertices[i].Normal

		// Gram-Schmidt: T' = normalize(T - N * dot(N, T))
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			vertices[i].Tangent = mgl32.Vec3{1, 0, 0}
			vertices[i].Bitangent = normal.Cross(vertices[i].Tangent)
			continue
		}
		ortho = ortho.Normalize()

		// Handedness: sign of dot(cross(N, T), B).
		bitangent := normal.Cross(ortho)
		if bitangent.Dot(btan[i]) < 0 {
			bitangent = bitangent.Mul(-1)
		}

		vertices[i].Tangent = ortho
		vertices[i].Bitangent = bitangent
	}
}
