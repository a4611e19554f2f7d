package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/internal/config"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// fileSummary describes one imported file. Error is set instead of the scene fields when the import failed.
type fileSummary struct {
	File      string            `json:"file" yaml:"file"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	Scene     string            `json:"scene,omitempty" yaml:"scene,omitempty"`
	Vertices  int               `json:"vertices" yaml:"vertices"`
	Indices   int               `json:"indices" yaml:"indices"`
	Packed    *packedSummary    `json:"packed,omitempty" yaml:"packed,omitempty"`
	Meshes    []meshSummary     `json:"meshes,omitempty" yaml:"meshes,omitempty"`
	Materials []materialSummary `json:"materials,omitempty" yaml:"materials,omitempty"`
	Textures  []textureSummary  `json:"textures,omitempty" yaml:"textures,omitempty"`
}

// packedSummary reports the sizes of the flattened GPU buffers.
type packedSummary struct {
	VertexBytes int `json:"vertexBytes" yaml:"vertex_bytes"`
	IndexBytes  int `json:"indexBytes" yaml:"index_bytes"`
	Draws       int `json:"draws" yaml:"draws"`
}

type meshSummary struct {
	Name      string     `json:"name" yaml:"name"`
	Topology  string     `json:"topology" yaml:"topology"`
	Vertices  int        `json:"vertices" yaml:"vertices"`
	Indices   int        `json:"indices" yaml:"indices"`
	Material  int        `json:"material" yaml:"material"`
	BoundsMin [3]float32 `json:"boundsMin" yaml:"bounds_min,flow"`
	BoundsMax [3]float32 `json:"boundsMax" yaml:"bounds_max,flow"`
}

type materialSummary struct {
	Name        string   `json:"name" yaml:"name"`
	AlphaMode   string   `json:"alphaMode" yaml:"alpha_mode"`
	DoubleSided bool     `json:"doubleSided" yaml:"double_sided"`
	Textures    []string `json:"textures,omitempty" yaml:"textures,omitempty,flow"`
}

type textureSummary struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Path     string `json:"path" yaml:"path"`
	MimeType string `json:"mimeType,omitempty" yaml:"mime_type,omitempty"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
	Width    uint32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height   uint32 `json:"height,omitempty" yaml:"height,omitempty"`
}

// summarize reduces a scene to its printable summary. With decode set, the meshes are packed and
// textures are decoded for their size; textures that fail to decode are reported without one.
func summarize(path string, scene *model.Scene, decode bool) fileSummary {
	s := fileSummary{
		File:     path,
		Scene:    scene.Name,
		Vertices: scene.VertexCount(),
		Indices:  scene.IndexCount(),
	}

	if decode {
		flat := scene.Flatten()
		s.Packed = &packedSummary{
			VertexBytes: len(flat.Vertices),
			IndexBytes:  len(flat.Indices) * 4,
			Draws:       len(flat.Draws),
		}
	}

	for _, m := range scene.Meshes {
		s.Meshes = append(s.Meshes, meshSummary{
			Name:      m.Name,
			Topology:  m.Topology.String(),
			Vertices:  len(m.Vertices),
			Indices:   len(m.Indices),
			Material:  m.Material,
			BoundsMin: m.BoundsMin,
			BoundsMax: m.BoundsMax,
		})
	}

	for _, m := range scene.Materials {
		ms := materialSummary{
			Name:        m.Name,
			AlphaMode:   m.AlphaMode.String(),
			DoubleSided: m.DoubleSided,
		}
		for _, ref := range m.Textures {
			ms.Textures = append(ms.Textures, fmt.Sprintf("%s:%d", ref.Type, ref.Index))
		}
		s.Materials = append(s.Materials, ms)
	}

	for i := range scene.Textures {
		tex := &scene.Textures[i]
		ts := textureSummary{
			Name:     tex.Name,
			Path:     tex.Path,
			MimeType: tex.MimeType,
			Bytes:    len(tex.Data),
		}
		if decode {
			if staged, err := tex.Decode(); err == nil {
				ts.Width, ts.Height = staged.Width, staged.Height
			}
		}
		s.Textures = append(s.Textures, ts)
	}

	return s
}

// writeSummaries prints summaries in the configured format.
func writeSummaries(w io.Writer, format string, summaries []fileSummary) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, summaries)
	}
}

func writeText(w io.Writer, summaries []fileSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range summaries {
		if s.Error != "" {
			fmt.Fprintf(tw, "%s\tFAILED\t%s\n", s.File, s.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\tscene %q\t%d meshes\t%d materials\t%d textures\t%d vertices\t%d indices\n",
			s.File, s.Scene, len(s.Meshes), len(s.Materials), len(s.Textures), s.Vertices, s.Indices)
		if s.Packed != nil {
			fmt.Fprintf(tw, "  packed\t%d vertex bytes\t%d index bytes\t%d draws\n",
				s.Packed.VertexBytes, s.Packed.IndexBytes, s.Packed.Draws)
		}
		for _, m := range s.Meshes {
			fmt.Fprintf(tw, "  mesh %s\t%s\t%d vertices\t%d indices\tmaterial %d\n",
				m.Name, m.Topology, m.Vertices, m.Indices, m.Material)
		}
		for _, m := range s.Materials {
			fmt.Fprintf(tw, "  material %s\t%s\t[%s]\n", m.Name, m.AlphaMode, strings.Join(m.Textures, " "))
		}
		for _, t := range s.Textures {
			size := ""
			if t.Width > 0 {
				size = fmt.Sprintf("%dx%d", t.Width, t.Height)
			}
			fmt.Fprintf(tw, "  texture %s\t%s\t%s\t%s\n", t.Name, t.Path, t.MimeType, size)
		}
	}
	return tw.Flush()
}
