package loader

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// obj is a JSON object literal in fixture documents.
type obj = map[string]any

// gltfFixture builds a .gltf document and its single .bin buffer inside a temp directory.
type gltfFixture struct {
	t   *testing.T
	dir string
	bin []byte
	doc obj
}

func newFixture(t *testing.T) *gltfFixture {
	t.Helper()
	return &gltfFixture{
		t:   t,
		dir: t.TempDir(),
		doc: obj{"asset": obj{"version": "2.0", "generator": "fixture"}},
	}
}

func ptr[T any](v T) *T {
	return &v
}

// add appends value to the top-level array key and returns its index.
func (f *gltfFixture) add(key string, value any) int {
	arr, _ := f.doc[key].([]any)
	f.doc[key] = append(arr, value)
	return len(arr)
}

func (f *gltfFixture) align4() {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
}

// raw appends bytes to the buffer at a 4-byte aligned offset and returns that offset.
func (f *gltfFixture) raw(data ...byte) int {
	f.align4()
	off := len(f.bin)
	f.bin = append(f.bin, data...)
	return off
}

func floatBytes(vs ...float32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func ushortBytes(vs ...uint16) []byte {
	out := make([]byte, 0, 2*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// view adds a bufferView over buffer 0. A stride of 0 leaves byteStride unset.
func (f *gltfFixture) view(offset, length, stride int) int {
	v := obj{"buffer": 0, "byteOffset": offset, "byteLength": length}
	if stride > 0 {
		v["byteStride"] = stride
	}
	return f.add("bufferViews", v)
}

// accessor adds an accessor. A view of -1 leaves bufferView unset; extra fields are merged in.
func (f *gltfFixture) accessor(view int, componentType gltfComponentType, typ string, count int, extra obj) int {
	a := obj{"componentType": int(componentType), "type": typ, "count": count}
	if view >= 0 {
		a["bufferView"] = view
	}
	for k, v := range extra {
		a[k] = v
	}
	return f.add("accessors", a)
}

// floats adds a tightly packed FLOAT accessor of the given type.
func (f *gltfFixture) floats(typ string, values ...float32) int {
	shape := gltfAccessorShape[gltfAccessorTypeNames[typ]]
	n := shape[0] * shape[1]
	data := floatBytes(values...)
	off := f.raw(data...)
	return f.accessor(f.view(off, len(data), 0), gltfComponentTypeFloat, typ, len(values)/n, nil)
}

// indices adds an UNSIGNED_SHORT SCALAR index accessor.
func (f *gltfFixture) indices(values ...uint16) int {
	data := ushortBytes(values...)
	off := f.raw(data...)
	return f.accessor(f.view(off, len(data), 0), gltfComponentTypeUnsignedShort, "SCALAR", len(values), nil)
}

// mesh adds a mesh with the given primitives.
func (f *gltfFixture) mesh(name string, primitives ...obj) int {
	prims := make([]any, len(primitives))
	for i, p := range primitives {
		prims[i] = p
	}
	m := obj{"primitives": prims}
	if name != "" {
		m["name"] = name
	}
	return f.add("meshes", m)
}

// triangle adds the three positions of one triangle and its indices, returning a primitive.
func (f *gltfFixture) triangle() obj {
	pos := f.floats("VEC3", 0, 0, 0, 1, 0, 0, 0, 1, 0)
	idx := f.indices(0, 1, 2)
	return obj{"attributes": obj{"POSITION": pos}, "indices": idx}
}

// writeFile writes data to name inside the fixture directory and returns its path.
func (f *gltfFixture) writeFile(name string, data []byte) string {
	f.t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, data, 0o644))
	return path
}

// write writes name.bin (when any data was added) and name.gltf, returning the document path.
func (f *gltfFixture) write(name string) string {
	f.t.Helper()
	if len(f.bin) > 0 {
		if _, ok := f.doc["buffers"]; !ok {
			f.add("buffers", obj{"uri": name + ".bin", "byteLength": len(f.bin)})
		}
		f.writeFile(name+".bin", f.bin)
	}
	data, err := json.Marshal(f.doc)
	require.NoError(f.t, err)
	return f.writeFile(name+".gltf", data)
}

// importFixture writes the fixture and imports it with a fresh Loader.
func importFixture(t *testing.T, f *gltfFixture, options ...LoaderBuilderOption) (*model.Scene, error) {
	t.Helper()
	return NewLoader(BackendTypeGLTF, options...).Load(f.write("scene"))
}

// loadDocument writes the fixture, then parses it and loads its buffers.
func loadDocument(t *testing.T, f *gltfFixture) *gltfDocument {
	t.Helper()
	path := f.write("scene")
	parser := newGLTFParser()
	require.NoError(t, parser.Parse(path))
	require.NoError(t, newGLTFBufferLoader(false, 0, nil).LoadBuffers(parser.Document(), parser.BaseDir()))
	return parser.Document()
}

// parseJSON runs the parser over an in-memory document.
func parseJSON(t *testing.T, doc obj) (*gltfDocument, error) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	parser := newGLTFParser()
	if err := parser.ParseReader(bytes.NewReader(data), t.TempDir()); err != nil {
		return nil, err
	}
	return parser.Document(), nil
}
