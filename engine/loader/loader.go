package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"go.uber.org/zap"
)

// LoaderBackendType identifies the scene file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger *zap.Logger

	opts gltfImportOptions

	cacheEnabled bool
	sceneCache   map[string]*model.Scene

	backend loaderBackend
}

// Loader defines the public-facing interface for importing scenes.
// It abstracts the file format behind a generic backend and optionally keeps a cache of
// previously imported scenes.
//
// Imports are synchronous; a Loader may be used from several goroutines at once.
type Loader interface {
	// Load imports a scene file.
	// If caching is enabled and the scene is already cached (by file path), the cached scene is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - *model.Scene: the resolved scene, owned by the caller unless caching is enabled
	//   - error: error if loading fails; match its kind with errors.Is against the Err* sentinels
	Load(path string) (*model.Scene, error)

	// LoadReader imports a scene from a reader stream and caches it by the given name when
	// caching is enabled.
	//
	// Parameters:
	//   - name: the cache key and fallback scene name
	//   - r: the reader providing the document
	//   - baseDir: the directory buffer and image URIs resolve against
	//
	// Returns:
	//   - *model.Scene: the resolved scene
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, baseDir string) (*model.Scene, error)

	// Get retrieves a cached scene by name. Returns nil if not found or caching is disabled.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.Scene: the cached scene or nil
	Get(name string) *model.Scene

	// Scenes returns a copy of the scene cache.
	//
	// Returns:
	//   - map[string]*model.Scene: all cached scenes keyed by name
	Scenes() map[string]*model.Scene
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		logger:     zap.NewNop(),
		opts:       gltfImportOptions{loadImageData: true},
		sceneCache: make(map[string]*model.Scene),
	}

	for _, option := range options {
		option(l)
	}
	l.opts.logger = l.logger

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.opts)
	}
	return l
}

func (l *loader) Load(path string) (*model.Scene, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loading scene", zap.String("path", path))
	scene, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.store(path, scene)
	return scene, nil
}

func (l *loader) LoadReader(name string, r io.Reader, baseDir string) (*model.Scene, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, unsupported("", 0, "no loader backend configured")
	}

	scene, err := l.backend.LoadReader(name, r, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.store(name, scene)
	return scene, nil
}

func (l *loader) Get(name string) *model.Scene {
	if !l.cacheEnabled {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sceneCache[name]
}

func (l *loader) Scenes() map[string]*model.Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.Scene, len(l.sceneCache))
	for k, v := range l.sceneCache {
		result[k] = v
	}
	return result
}

// store caches a scene under key when caching is enabled.
func (l *loader) store(key string, scene *model.Scene) {
	if !l.cacheEnabled {
		return
	}
	l.mu.Lock()
	l.sceneCache[key] = scene
	l.mu.Unlock()
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l.backend != nil && slices.Contains(l.backend.Extensions(), ext) {
		return l.backend, nil
	}
	return nil, &ImportError{
		Kind: KindUnsupportedFeature,
		Path: path,
		Err:  fmt.Errorf("unsupported scene format: %q", ext),
	}
}
