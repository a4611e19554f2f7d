package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - opts: the import options every import through this backend uses
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF files
func newGLTFLoaderBackend(opts gltfImportOptions) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(opts),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*model.Scene, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, baseDir string) (*model.Scene, error) {
	return b.importer.ImportReader(name, r, baseDir)
}

// Extensions includes .glb so that binary containers reach the parser and fail as unsupported
// rather than as an unknown format.
func (b *gltfLoaderBackendImpl) Extensions() []string {
	return []string{".gltf", ".glb"}
}
