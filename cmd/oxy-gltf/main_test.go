package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeScene writes a one-triangle scene with a 2x3 PNG texture and returns the .gltf path.
func writeScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var bin []byte
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		bin = binary.LittleEndian.AppendUint32(bin, math.Float32bits(v))
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		bin = binary.LittleEndian.AppendUint16(bin, i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), bin, 0o644))

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 3))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "albedo.png"), img.Bytes(), 0o644))

	doc := map[string]any{
		"asset":       map[string]any{"version": "2.0"},
		"scenes":      []any{map[string]any{"name": "demo"}},
		"buffers":     []any{map[string]any{"uri": "tri.bin", "byteLength": len(bin)}},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 36}, map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 3},
			map[string]any{"bufferView": 1, "componentType": 5123, "type": "SCALAR", "count": 3},
		},
		"meshes": []any{map[string]any{"name": "tri", "primitives": []any{
			map[string]any{"attributes": map[string]any{"POSITION": 0}, "indices": 1, "material": 0},
		}}},
		"materials": []any{map[string]any{"name": "paint", "pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}}}},
		"images":    []any{map[string]any{"uri": "albedo.png"}},
		"textures":  []any{map[string]any{"source": 0}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// isolate keeps config lookup away from the developer's own files.
func isolate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestRunJSON(t *testing.T) {
	isolate(t)
	path := writeScene(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-format", "json", "-decode", path}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var got []fileSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "demo", s.Scene)
	assert.Equal(t, 3, s.Vertices)
	assert.Equal(t, 3, s.Indices)
	require.Len(t, s.Meshes, 1)
	assert.Equal(t, "tri", s.Meshes[0].Name)
	assert.Equal(t, "Triangles", s.Meshes[0].Topology)
	assert.Equal(t, [3]float32{1, 1, 0}, s.Meshes[0].BoundsMax)
	require.Len(t, s.Materials, 1)
	assert.Equal(t, []string{"Albedo:0"}, s.Materials[0].Textures)
	require.Len(t, s.Textures, 1)
	assert.Equal(t, "image/png", s.Textures[0].MimeType)
	assert.Equal(t, uint32(2), s.Textures[0].Width)
	assert.Equal(t, uint32(3), s.Textures[0].Height)
	require.NotNil(t, s.Packed)
	assert.Equal(t, 3*model.VertexStride, s.Packed.VertexBytes)
	assert.Equal(t, 12, s.Packed.IndexBytes)
	assert.Equal(t, 1, s.Packed.Draws)
}

func TestRunYAMLWithFailure(t *testing.T) {
	isolate(t)
	good := writeScene(t)
	missing := filepath.Join(t.TempDir(), "missing.gltf")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-format", "yaml", "-sequential", good, missing}, &stdout, &stderr)
	assert.Equal(t, exitFailed, code)

	var got []fileSummary
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Error)
	assert.Equal(t, "demo", got[0].Scene)
	assert.Contains(t, got[1].Error, "io failure")
	assert.Contains(t, got[1].Error, missing)
}

func TestRunText(t *testing.T) {
	isolate(t)
	path := writeScene(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-images", path}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, `scene "demo"`)
	assert.Contains(t, out, "mesh tri")
	assert.Contains(t, out, "material paint")
	assert.Contains(t, out, "[Albedo:0]")
}

func TestRunUsage(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: oxy-gltf")

	stderr.Reset()
	assert.Equal(t, exitUsage, run([]string{"-format", "xml", "a.gltf"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Config error")

	assert.Equal(t, exitUsage, run([]string{"-bogus"}, &stdout, &stderr))
	assert.Equal(t, exitOK, run([]string{"-h"}, &stdout, &stderr))
}

func TestRunInitConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg", "oxy-gltf.yaml")

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"-init-config", path, "-workers", "6"}, &stdout, &stderr))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers: 6")
}
