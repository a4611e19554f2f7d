package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// loaderBackend defines the generic interface for loading scenes from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full scene import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Scene: the resolved scene
	//   - error: error if loading fails
	Load(path string) (*model.Scene, error)

	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - name: a name for the stream, used in errors and as the fallback scene name
	//   - r: the reader providing the document
	//   - baseDir: the directory external resources resolve against
	//
	// Returns:
	//   - *model.Scene: the resolved scene
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, baseDir string) (*model.Scene, error)

	// Extensions returns the lowercase file extensions (with dot) this backend recognizes.
	//
	// Returns:
	//   - []string: the recognized extensions
	Extensions() []string
}
