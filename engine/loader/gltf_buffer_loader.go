package loader

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// gltfBufferLoaderImpl is the implementation of the gltfBufferLoader interface.
type gltfBufferLoaderImpl struct {
	workers int
	logger  *zap.Logger

	// pool is created once and shared by every LoadBuffers call; nil when loading sequentially.
	pool worker.DynamicWorkerPool
}

// gltfBufferLoader loads the external binary buffers a document references.
// This is internal to the loader package.
type gltfBufferLoader interface {
	// LoadBuffers reads every buffer of doc into its Data field.
	// URIs are percent-decoded and resolved relative to baseDir. When concurrency is enabled and
	// the document has more than one buffer, each buffer is read by its own task on the loader's
	// worker pool; LoadBuffers returns only after every task has finished. It is safe to call
	// from several goroutines at once.
	//
	// Parameters:
	//   - doc: a validated document
	//   - baseDir: the directory that relative URIs resolve against
	//
	// Returns:
	//   - error: the combined errors of every buffer that failed, or nil
	LoadBuffers(doc *gltfDocument, baseDir string) error
}

var _ gltfBufferLoader = &gltfBufferLoaderImpl{}

// bufferQueueSize bounds the pool's task queue. Submitting past it blocks until a worker frees a slot.
const bufferQueueSize = 64

// newGLTFBufferLoader creates a buffer loader. A concurrent loader starts its worker pool here and
// keeps it for its whole lifetime, so repeated imports reuse the same goroutines.
//
// Parameters:
//   - concurrent: whether buffers may load in parallel
//   - workers: the number of pool workers; values below 1 mean one worker per CPU
//   - logger: the logger for load progress
//
// Returns:
//   - gltfBufferLoader: the buffer loader
func newGLTFBufferLoader(concurrent bool, workers int, logger *zap.Logger) gltfBufferLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	b := &gltfBufferLoaderImpl{
		workers: workers,
		logger:  logger,
	}
	if concurrent {
		b.pool = worker.NewDynamicWorkerPool(workers, bufferQueueSize, 1*time.Second)
	}
	return b
}

func (b *gltfBufferLoaderImpl) LoadBuffers(doc *gltfDocument, baseDir string) error {
	if len(doc.Buffers) == 0 {
		return nil
	}

	errs := make([]error, len(doc.Buffers))
	if b.pool != nil && len(doc.Buffers) > 1 {
		b.loadConcurrent(doc, baseDir, errs)
	} else {
		for i := range doc.Buffers {
			errs[i] = b.loadBuffer(doc, i, baseDir)
		}
	}

	return multierr.Combine(errs...)
}

// loadConcurrent submits one task per buffer to the shared pool and blocks until all of them finish.
// Each task writes only its own buffer's Data and its own errs slot.
func (b *gltfBufferLoaderImpl) loadConcurrent(doc *gltfDocument, baseDir string, errs []error) {
	b.logger.Debug("loading buffers concurrently",
		zap.String("baseDir", baseDir),
		zap.Int("buffers", len(doc.Buffers)),
		zap.Int("workers", b.workers),
	)

	// pool.Wait() also waits on tasks from other callers, so each call joins its own tasks.
	var wg sync.WaitGroup
	for i := range doc.Buffers {
		wg.Add(1)
		idx := i
		b.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				errs[idx] = b.loadBuffer(doc, idx, baseDir)
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()
}

// loadBuffer reads buffer i and checks it against its declared byteLength.
func (b *gltfBufferLoaderImpl) loadBuffer(doc *gltfDocument, i int, baseDir string) error {
	buf := &doc.Buffers[i]

	path, err := resolveURI(buf.URI, baseDir)
	if err != nil {
		return &ImportError{Kind: uriErrorKind(buf.URI), Entity: "buffer", Index: i, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &ImportError{Kind: KindIoFailure, Path: path, Entity: "buffer", Index: i, Err: err}
	}

	if len(data) < *buf.ByteLength {
		return &ImportError{
			Kind:   KindMalformedDocument,
			Path:   path,
			Entity: "buffer",
			Index:  i,
			Err:    fmt.Errorf("file holds %d bytes, byteLength declares %d", len(data), *buf.ByteLength),
		}
	}

	buf.Data = data[:*buf.ByteLength]
	b.logger.Debug("loaded buffer", zap.Int("buffer", i), zap.String("path", path), zap.Int("bytes", len(buf.Data)))
	return nil
}

// resolveURI maps a document-relative URI to a filesystem path under baseDir.
// Only relative references to external files are accepted: an empty URI, a data: URI or any other
// URI scheme fails.
//
// Parameters:
//   - uri: the URI as written in the document
//   - baseDir: the directory of the document
//
// Returns:
//   - string: the resolved filesystem path
//   - error: error if the URI cannot name an external file
func resolveURI(uri, baseDir string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("resource has no uri; embedded data is not supported")
	}
	if strings.HasPrefix(uri, "data:") {
		return "", fmt.Errorf("data: URIs are not supported")
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", uri, err)
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", fmt.Errorf("uri scheme %q is not supported", u.Scheme)
	}

	// url.Parse has already percent-decoded the path.
	decoded := u.Path
	if filepath.IsAbs(decoded) || u.Scheme == "file" {
		return filepath.FromSlash(decoded), nil
	}
	return filepath.Join(baseDir, filepath.FromSlash(decoded)), nil
}

// uriErrorKind classifies a URI that resolveURI rejected: one that does not parse is malformed,
// anything else names an unsupported way of locating data.
func uriErrorKind(uri string) ErrorKind {
	if _, err := url.Parse(uri); err != nil && !strings.HasPrefix(uri, "data:") {
		return KindMalformedDocument
	}
	return KindUnsupportedFeature
}
