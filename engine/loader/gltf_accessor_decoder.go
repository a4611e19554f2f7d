package loader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfComponentSize maps each component type to its width in bytes.
var gltfComponentSize = map[gltfComponentType]int{
	gltfComponentTypeByte:          1,
	gltfComponentTypeUnsignedByte:  1,
	gltfComponentTypeShort:         2,
	gltfComponentTypeUnsignedShort: 2,
	gltfComponentTypeUnsignedInt:   4,
	gltfComponentTypeFloat:         4,
}

// gltfAccessorShape maps each accessor type to its column and row counts.
// Vectors and scalars are a single column.
var gltfAccessorShape = map[gltfAccessorType][2]int{
	gltfAccessorTypeScalar: {1, 1},
	gltfAccessorTypeVec2:   {1, 2},
	gltfAccessorTypeVec3:   {1, 3},
	gltfAccessorTypeVec4:   {1, 4},
	gltfAccessorTypeMat2:   {2, 2},
	gltfAccessorTypeMat3:   {3, 3},
	gltfAccessorTypeMat4:   {4, 4},
}

// accessorLayout is the byte layout of one accessor element.
type accessorLayout struct {
	// ComponentSize is the width of one component in bytes.
	ComponentSize int

	// Columns and Rows give the element shape; Columns is 1 for scalars and vectors.
	Columns, Rows int

	// ColumnStride is the distance between matrix columns. Matrix columns start on 4-byte boundaries.
	ColumnStride int

	// ElementSize is the packed size of one element, including column padding.
	ElementSize int
}

// Components returns the number of components in one element.
func (l accessorLayout) Components() int {
	return l.Columns * l.Rows
}

// elementLayout computes the byte layout of an element from its component type and accessor type.
//
// Parameters:
//   - ct: the component type
//   - at: the accessor type
//
// Returns:
//   - accessorLayout: the element layout
//   - bool: false if either code is unknown
func elementLayout(ct gltfComponentType, at gltfAccessorType) (accessorLayout, bool) {
	size, ok := gltfComponentSize[ct]
	if !ok {
		return accessorLayout{}, false
	}
	shape, ok := gltfAccessorShape[at]
	if !ok {
		return accessorLayout{}, false
	}

	columns, rows := shape[0], shape[1]
	columnStride := rows * size
	if columns > 1 {
		columnStride = align4(columnStride)
	}
	return accessorLayout{
		ComponentSize: size,
		Columns:       columns,
		Rows:          rows,
		ColumnStride:  columnStride,
		ElementSize:   columns * columnStride,
	}, true
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// accessorView is a bounds-checked window over the elements of one accessor.
// A view with nil data reads as all zeros.
type accessorView struct {
	index         int
	layout        accessorLayout
	componentType gltfComponentType
	accessorType  gltfAccessorType
	normalized    bool
	count         int
	stride        int
	data          []byte
}

// offset returns the byte offset of component c of element i.
func (v *accessorView) offset(i, c int) int {
	col, row := c/v.layout.Rows, c%v.layout.Rows
	return i*v.stride + col*v.layout.ColumnStride + row*v.layout.ComponentSize
}

// Float reads component c of element i as a float32, applying normalization to integer components.
func (v *accessorView) Float(i, c int) float32 {
	if v.data == nil {
		return 0
	}
	o := v.offset(i, c)
	switch v.componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(v.data[o:]))
	case gltfComponentTypeByte:
		x := float32(int8(v.data[o]))
		if v.normalized {
			return math32.Max(x/127, -1)
		}
		return x
	case gltfComponentTypeUnsignedByte:
		x := float32(v.data[o])
		if v.normalized {
			return x / 255
		}
		return x
	case gltfComponentTypeShort:
		x := float32(int16(binary.LittleEndian.Uint16(v.data[o:])))
		if v.normalized {
			return math32.Max(x/32767, -1)
		}
		return x
	case gltfComponentTypeUnsignedShort:
		x := float32(binary.LittleEndian.Uint16(v.data[o:]))
		if v.normalized {
			return x / 65535
		}
		return x
	case gltfComponentTypeUnsignedInt:
		x := binary.LittleEndian.Uint32(v.data[o:])
		if v.normalized {
			return float32(float64(x) / math.MaxUint32)
		}
		return float32(x)
	default:
		return 0
	}
}

// Uint reads component c of element i as an unsigned integer. Only meaningful for unsigned component types.
func (v *accessorView) Uint(i, c int) uint32 {
	if v.data == nil {
		return 0
	}
	o := v.offset(i, c)
	switch v.componentType {
	case gltfComponentTypeUnsignedByte:
		return uint32(v.data[o])
	case gltfComponentTypeUnsignedShort:
		return uint32(binary.LittleEndian.Uint16(v.data[o:]))
	case gltfComponentTypeUnsignedInt:
		return binary.LittleEndian.Uint32(v.data[o:])
	default:
		return 0
	}
}

// gltfAccessorDecoderImpl is the implementation of the gltfAccessorDecoder interface.
type gltfAccessorDecoderImpl struct {
	doc *gltfDocument
}

// gltfAccessorDecoder turns accessors into typed element sequences.
// Every read returns exactly count elements or an *ImportError; it never reads outside the
// accessor's bufferView.
// This is internal to the loader package.
type gltfAccessorDecoder interface {
	// ReadFloats reads any accessor as count elements of components(type) float32 values each.
	// Matrix elements are returned in column-major order without padding.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - [][]float32: the element values
	//   - error: error if the accessor cannot be decoded
	ReadFloats(accessorIndex int) ([][]float32, error)

	// ReadVec2 reads a VEC2 accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []mgl32.Vec2: the vec2 data
	//   - error: error if the accessor is not VEC2 or cannot be decoded
	ReadVec2(accessorIndex int) ([]mgl32.Vec2, error)

	// ReadVec3 reads a VEC3 accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []mgl32.Vec3: the vec3 data
	//   - error: error if the accessor is not VEC3 or cannot be decoded
	ReadVec3(accessorIndex int) ([]mgl32.Vec3, error)

	// ReadVec4 reads a VEC4 accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []mgl32.Vec4: the vec4 data
	//   - error: error if the accessor is not VEC4 or cannot be decoded
	ReadVec4(accessorIndex int) ([]mgl32.Vec4, error)

	// ReadColors reads a VEC3 or VEC4 color accessor as RGBA.
	// Integer colors are always normalized; VEC3 colors get an alpha of 1.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []mgl32.Vec4: the RGBA data
	//   - error: error if the accessor is not a color accessor or cannot be decoded
	ReadColors(accessorIndex int) ([]mgl32.Vec4, error)

	// ReadIndices reads a SCALAR index accessor.
	// Handles UNSIGNED_BYTE, UNSIGNED_SHORT, and UNSIGNED_INT component types.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data (converted to uint32)
	//   - error: error if the accessor is not an index accessor or cannot be decoded
	ReadIndices(accessorIndex int) ([]uint32, error)

	// Count returns the element count of an accessor after checking that its elements fit its bufferView.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - int: the element count
	//   - error: error if the accessor cannot be decoded
	Count(accessorIndex int) (int, error)
}

var _ gltfAccessorDecoder = &gltfAccessorDecoderImpl{}

// newGLTFAccessorDecoder creates an accessor decoder over a document whose buffers are loaded.
//
// Parameters:
//   - doc: the validated document with buffer data
//
// Returns:
//   - gltfAccessorDecoder: the decoder
func newGLTFAccessorDecoder(doc *gltfDocument) gltfAccessorDecoder {
	return &gltfAccessorDecoderImpl{doc: doc}
}

func (d *gltfAccessorDecoderImpl) Count(accessorIndex int) (int, error) {
	v, err := d.view(accessorIndex)
	if err != nil {
		return 0, err
	}
	return v.count, nil
}

// maxZeroFilledCount caps the element count of accessors without a bufferView. No buffer bounds
// their count, and they are materialized as zeros.
const maxZeroFilledCount = 1 << 20

// elementsFit reports whether count elements of elemSize bytes, stride bytes apart and starting at
// offset, lie within size bytes. Every intermediate value stays within [0, size].
func elementsFit(offset, count, stride, elemSize, size int) bool {
	if offset < 0 || count < 1 || stride < elemSize || elemSize < 1 {
		return false
	}
	if offset > size-elemSize {
		return false
	}
	return count-1 <= (size-offset-elemSize)/stride
}

// view resolves accessor → bufferView → buffer and checks that every element fits the view.
func (d *gltfAccessorDecoderImpl) view(accessorIndex int) (*accessorView, error) {
	if !inBounds(accessorIndex, len(d.doc.Accessors)) {
		return nil, unresolved("accessor", accessorIndex, "accessor out of range (%d accessors)", len(d.doc.Accessors))
	}
	acc := &d.doc.Accessors[accessorIndex]

	if acc.Sparse != nil {
		return nil, unsupported("accessor", accessorIndex, "sparse accessors are not supported")
	}

	layout, ok := elementLayout(acc.ComponentType, acc.Type)
	if !ok {
		return nil, malformed("accessor", accessorIndex, "unknown layout componentType=%s type=%s", acc.ComponentType, acc.Type)
	}

	v := &accessorView{
		index:         accessorIndex,
		layout:        layout,
		componentType: acc.ComponentType,
		accessorType:  acc.Type,
		normalized:    acc.Normalized,
		count:         *acc.Count,
		stride:        layout.ElementSize,
	}

	if acc.BufferView == nil {
		if v.count > maxZeroFilledCount {
			return nil, malformed("accessor", accessorIndex, "count %d without a bufferView exceeds the limit of %d",
				v.count, maxZeroFilledCount)
		}
		return v, nil
	}

	if !inBounds(*acc.BufferView, len(d.doc.BufferViews)) {
		return nil, unresolved("accessor", accessorIndex, "bufferView %d out of range (%d bufferViews)", *acc.BufferView, len(d.doc.BufferViews))
	}
	bv := &d.doc.BufferViews[*acc.BufferView]
	if !inBounds(*bv.Buffer, len(d.doc.Buffers)) {
		return nil, unresolved("bufferView", *acc.BufferView, "buffer %d out of range (%d buffers)", *bv.Buffer, len(d.doc.Buffers))
	}
	buf := &d.doc.Buffers[*bv.Buffer]

	start, length := *bv.ByteOffset, *bv.ByteLength
	if start < 0 || length < 0 || start > len(buf.Data) || length > len(buf.Data)-start {
		return nil, malformed("bufferView", *acc.BufferView, "byte range offset=%d length=%d exceeds loaded buffer %d of %d bytes",
			start, length, *bv.Buffer, len(buf.Data))
	}
	viewData := buf.Data[start : start+length]

	if bv.ByteStride != nil {
		if *bv.ByteStride < layout.ElementSize {
			return nil, malformed("accessor", accessorIndex, "byteStride %d is smaller than element size %d", *bv.ByteStride, layout.ElementSize)
		}
		v.stride = *bv.ByteStride
	}

	if !elementsFit(*acc.ByteOffset, v.count, v.stride, layout.ElementSize, len(viewData)) {
		return nil, malformed("accessor", accessorIndex, "%d elements of %d bytes with stride %d from offset %d do not fit bufferView %d of %d bytes",
			v.count, layout.ElementSize, v.stride, *acc.ByteOffset, *acc.BufferView, len(viewData))
	}
	v.data = viewData[*acc.ByteOffset:]

	return v, nil
}

// typedView resolves a view and checks its accessor type.
func (d *gltfAccessorDecoderImpl) typedView(accessorIndex int, want gltfAccessorType) (*accessorView, error) {
	v, err := d.view(accessorIndex)
	if err != nil {
		return nil, err
	}
	if v.accessorType != want {
		return nil, malformed("accessor", accessorIndex, "expected %s, got %s", want, v.accessorType)
	}
	return v, nil
}

func (d *gltfAccessorDecoderImpl) ReadFloats(accessorIndex int) ([][]float32, error) {
	v, err := d.view(accessorIndex)
	if err != nil {
		return nil, err
	}

	n := v.layout.Components()
	flat := make([]float32, v.count*n)
	result := make([][]float32, v.count)
	for i := range result {
		result[i] = flat[i*n : (i+1)*n : (i+1)*n]
		for c := 0; c < n; c++ {
			result[i][c] = v.Float(i, c)
		}
	}
	return result, nil
}

func (d *gltfAccessorDecoderImpl) ReadVec2(accessorIndex int) ([]mgl32.Vec2, error) {
	v, err := d.typedView(accessorIndex, gltfAccessorTypeVec2)
	if err != nil {
		return nil, err
	}

	result := make([]mgl32.Vec2, v.count)
	for i := range result {
		result[i] = mgl32.Vec2{v.Float(i, 0), v.Float(i, 1)}
	}
	return result, nil
}

func (d *gltfAccessorDecoderImpl) ReadVec3(accessorIndex int) ([]mgl32.Vec3, error) {
	v, err := d.typedView(accessorIndex, gltfAccessorTypeVec3)
	if err != nil {
		return nil, err
	}

	result := make([]mgl32.Vec3, v.count)
	for i := range result {
		result[i] = mgl32.Vec3{v.Float(i, 0), v.Float(i, 1), v.Float(i, 2)}
	}
	return result, nil
}

func (d *gltfAccessorDecoderImpl) ReadVec4(accessorIndex int) ([]mgl32.Vec4, error) {
	v, err := d.typedView(accessorIndex, gltfAccessorTypeVec4)
	if err != nil {
		return nil, err
	}

	result := make([]mgl32.Vec4, v.count)
	for i := range result {
		result[i] = mgl32.Vec4{v.Float(i, 0), v.Float(i, 1), v.Float(i, 2), v.Float(i, 3)}
	}
	return result, nil
}

func (d *gltfAccessorDecoderImpl) ReadColors(accessorIndex int) ([]mgl32.Vec4, error) {
	v, err := d.view(accessorIndex)
	if err != nil {
		return nil, err
	}
	if v.accessorType != gltfAccessorTypeVec3 && v.accessorType != gltfAccessorTypeVec4 {
		return nil, malformed("accessor", accessorIndex, "color accessor must be VEC3 or VEC4, got %s", v.accessorType)
	}
	switch v.componentType {
	case gltfComponentTypeFloat:
	case gltfComponentTypeUnsignedByte, gltfComponentTypeUnsignedShort:
		v.normalized = true
	default:
		return nil, malformed("accessor", accessorIndex, "unsupported color componentType %s", v.componentType)
	}

	result := make([]mgl32.Vec4, v.count)
	for i := range result {
		result[i] = mgl32.Vec4{v.Float(i, 0), v.Float(i, 1), v.Float(i, 2), 1}
		if v.accessorType == gltfAccessorTypeVec4 {
			result[i][3] = v.Float(i, 3)
		}
	}
	return result, nil
}

func (d *gltfAccessorDecoderImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	v, err := d.typedView(accessorIndex, gltfAccessorTypeScalar)
	if err != nil {
		return nil, err
	}

	switch v.componentType {
	case gltfComponentTypeUnsignedByte, gltfComponentTypeUnsignedShort, gltfComponentTypeUnsignedInt:
	default:
		return nil, malformed("accessor", accessorIndex, "unsupported index componentType %s", v.componentType)
	}

	result := make([]uint32, v.count)
	for i := range result {
		result[i] = v.Uint(i, 0)
	}
	return result, nil
}

// describeAccessor is a short human-readable summary of an accessor used in debug logs.
func describeAccessor(doc *gltfDocument, accessorIndex int) string {
	if !inBounds(accessorIndex, len(doc.Accessors)) {
		return fmt.Sprintf("accessor %d (out of range)", accessorIndex)
	}
	acc := &doc.Accessors[accessorIndex]
	return fmt.Sprintf("accessor %d %s/%s x%d", accessorIndex, acc.Type, acc.ComponentType, *acc.Count)
}
