package loader

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger used by the Loader and every import stage.
// Stage progress and ignored vertex attributes are logged at debug level.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrentBuffers is an option builder that loads a document's buffers in parallel,
// one worker pool task per buffer. The pool is started by NewLoader and reused by every load.
// Decoding still starts only after every buffer has loaded.
//
// Parameters:
//   - enabled: whether to load buffers concurrently
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithConcurrentBuffers(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.concurrentBuffers = enabled
	}
}

// WithWorkers is an option builder that sizes the worker pool used for concurrent buffer loading.
//
// Parameters:
//   - n: the number of workers; values below 1 mean one worker per CPU
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.workers = n
	}
}

// WithImageData is an option builder that controls whether image bytes are read into
// model.Texture.Data. Enabled by default; paths are resolved either way.
//
// Parameters:
//   - enabled: whether to read image files
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithImageData(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.loadImageData = enabled
	}
}

// WithGeneratedNormals is an option builder that computes smooth normals for triangle
// primitives that have no NORMAL attribute. Disabled by default, leaving such normals zero.
//
// Parameters:
//   - enabled: whether to generate normals
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithGeneratedNormals(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.generateNormals = enabled
	}
}

// WithGeneratedTangents is an option builder that computes tangents and bitangents for textured
// triangle primitives that have no TANGENT attribute. Disabled by default.
//
// Parameters:
//   - enabled: whether to generate tangents
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithGeneratedTangents(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.generateTangents = enabled
	}
}

// WithProfiling is an option builder that measures the duration and heap allocation of every import
// stage and logs them at info level as "import profile".
//
// Parameters:
//   - enabled: whether to profile imports
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithProfiling(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.profile = enabled
	}
}

// WithCache is an option builder that enables the scene cache. Cached scenes are shared
// between callers and must not be mutated.
//
// Parameters:
//   - enabled: whether to cache imported scenes
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithCache(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.cacheEnabled = enabled
	}
}

// WithScene is an option builder that pre-populates the scene cache with a scene.
// It enables the cache.
//
// Parameters:
//   - key: the cache key for the scene
//   - scene: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, scene *model.Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.cacheEnabled = true
		l.sceneCache[key] = scene
	}
}
