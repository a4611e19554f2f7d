package loader

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"

	"go.uber.org/zap"
)

// gltfImportOptions configures one import. The zero value imports sequentially without image data.
type gltfImportOptions struct {
	concurrentBuffers bool
	workers           int
	loadImageData     bool
	generateNormals   bool
	generateTangents  bool
	profile           bool
	logger            *zap.Logger
}

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	opts    gltfImportOptions
	buffers gltfBufferLoader
}

// gltfImporter defines the interface for orchestrating a full glTF import.
// It runs the parser, the buffer loader and every extractor to produce a resolved model.Scene.
// Each call owns its document. Only the buffer loader's worker pool is shared between calls.
type gltfImporter interface {
	// Import loads a .gltf file and resolves it into a Scene.
	//
	// Parameters:
	//   - path: the file path to the glTF file
	//
	// Returns:
	//   - *model.Scene: the resolved scene
	//   - error: an *ImportError (or several combined) if import fails
	Import(path string) (*model.Scene, error)

	// ImportReader loads a glTF document from a reader and resolves it into a Scene.
	//
	// Parameters:
	//   - name: a name for the document, used for the scene name and in errors
	//   - r: the reader providing glTF JSON
	//   - baseDir: the directory buffer and image URIs resolve against
	//
	// Returns:
	//   - *model.Scene: the resolved scene
	//   - error: an *ImportError (or several combined) if import fails
	ImportReader(name string, r io.Reader, baseDir string) (*model.Scene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - opts: the import options
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(opts gltfImportOptions) gltfImporter {
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	return &gltfImporterImpl{
		opts:    opts,
		buffers: newGLTFBufferLoader(opts.concurrentBuffers, opts.workers, opts.logger.Named("buffers")),
	}
}

func (imp *gltfImporterImpl) Import(path string) (*model.Scene, error) {
	prof := imp.newProfiler()

	parser := newGLTFParser()
	done := prof.Stage("parse")
	err := parser.Parse(path)
	done()
	if err != nil {
		return nil, err
	}

	scene, err := imp.importFromParser(parser, path, prof)
	if err != nil {
		return nil, withPath(err, path)
	}
	return scene, nil
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, baseDir string) (*model.Scene, error) {
	prof := imp.newProfiler()

	parser := newGLTFParser()
	done := prof.Stage("parse")
	err := parser.ParseReader(r, baseDir)
	done()
	if err != nil {
		return nil, withPath(err, name)
	}

	scene, err := imp.importFromParser(parser, name, prof)
	if err != nil {
		return nil, withPath(err, name)
	}
	return scene, nil
}

// importFromParser performs a full import from a parser that has already loaded a document.
// Stages run in dependency order: buffers, meshes, materials, textures.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackName: the path or name used when the document names no scene
//   - prof: the stage profiler, or nil
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string, prof *profiler.Profiler) (*model.Scene, error) {
	doc := parser.Document()
	log := imp.opts.logger.With(zap.String("document", fallbackName))

	log.Debug("parsed document",
		zap.String("version", doc.Asset.Version),
		zap.String("generator", doc.Asset.Generator),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("materials", len(doc.Materials)),
		zap.Int("textures", len(doc.Textures)),
		zap.Int("buffers", len(doc.Buffers)),
	)

	done := prof.Stage("buffers")
	err := imp.buffers.LoadBuffers(doc, parser.BaseDir())
	done()
	if err != nil {
		return nil, err
	}

	decoder := newGLTFAccessorDecoder(doc)
	meshExtractor := newGLTFMeshExtractor(doc, decoder, log, imp.opts.generateNormals, imp.opts.generateTangents)
	materialExtractor := newGLTFMaterialExtractor(doc, parser.BaseDir(), imp.opts.loadImageData, log)

	done = prof.Stage("meshes")
	meshes, err := meshExtractor.ExtractAllMeshes()
	done()
	if err != nil {
		return nil, err
	}

	done = prof.Stage("materials")
	materials, err := materialExtractor.ExtractAllMaterials()
	done()
	if err != nil {
		return nil, err
	}

	done = prof.Stage("textures")
	textures, err := materialExtractor.ExtractAllTextures()
	done()
	if err != nil {
		return nil, err
	}

	scene := &model.Scene{
		Name:      gltfExtractModelName(doc, fallbackName),
		Meshes:    meshes,
		Materials: materials,
		Textures:  textures,
	}
	log.Debug("imported scene",
		zap.String("scene", scene.Name),
		zap.Int("vertices", scene.VertexCount()),
		zap.Int("indices", scene.IndexCount()),
	)
	if prof != nil {
		log.Info("import profile", prof.Fields()...)
	}
	return scene, nil
}

// newProfiler returns a stage profiler when profiling is enabled, otherwise nil.
func (imp *gltfImporterImpl) newProfiler() *profiler.Profiler {
	if !imp.opts.profile {
		return nil
	}
	return profiler.NewProfiler()
}

// --- Helper Functions ---

// gltfExtractModelName derives a scene name from the default scene, the first named scene,
// or the file name without extension.
func gltfExtractModelName(doc *gltfDocument, fallbackPath string) string {
	if doc.Scene != nil {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	} else {
		for _, s := range doc.Scenes {
			if s.Name != "" {
				return s.Name
			}
		}
	}

	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	return "unnamed_scene"
}
