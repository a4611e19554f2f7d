package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Common errors returned by the parser
var (
	errBinaryContainer = errors.New("binary glTF (.glb) containers are not supported")
	errEmptyDocument   = errors.New("document is empty")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	path     string
	baseDir  string
	document *gltfDocument
}

// gltfParser defines the interface for loading and parsing glTF JSON documents.
// It handles document I/O, JSON deserialization, defaulting and validation.
// Buffer loading and accessor decoding live in their own stages.
// This is internal to the loader package.
type gltfParser interface {
	// Parse loads and parses a .gltf file from the given path.
	// Binary .glb containers are detected by extension or magic and rejected.
	//
	// Parameters:
	//   - path: path to the glTF file
	//
	// Returns:
	//   - error: an *ImportError if reading, parsing or validation fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader.
	// Use this when loading from embedded resources or network streams.
	//
	// Parameters:
	//   - r: reader containing glTF JSON
	//   - baseDir: directory that relative buffer and image URIs resolve against
	//
	// Returns:
	//   - error: an *ImportError if reading, parsing or validation fails
	ParseReader(r io.Reader, baseDir string) error

	// Document returns the parsed glTF document.
	// Returns nil if Parse has not been called successfully.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// BaseDir returns the directory containing the loaded glTF file.
	// Used for resolving relative URIs to external resources.
	//
	// Returns:
	//   - string: the base directory path
	BaseDir() string

	// Path returns the path of the parsed document, or "" when parsed from a reader.
	//
	// Returns:
	//   - string: the document path
	Path() string
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Path() string {
	return p.path
}

func (p *gltfParserImpl) Parse(path string) error {
	p.path = path
	p.baseDir = filepath.Dir(path)

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return &ImportError{Kind: KindUnsupportedFeature, Path: path, Err: errBinaryContainer}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ioFailure(path, fmt.Errorf("failed to read document: %w", err))
	}

	return withPath(p.parseGLTF(data), path)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, baseDir string) error {
	p.baseDir = baseDir

	data, err := io.ReadAll(r)
	if err != nil {
		return ioFailure("", fmt.Errorf("failed to read data: %w", err))
	}

	return p.parseGLTF(data)
}

// parseGLTF decodes, defaults and validates a glTF JSON document.
func (p *gltfParserImpl) parseGLTF(data []byte) error {
	if isGLB(data) {
		return unsupported("", 0, "%w", errBinaryContainer)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return malformed("", 0, "%w", errEmptyDocument)
	}

	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return malformed("", 0, "failed to parse glTF JSON: %w", err)
	}

	applyDefaults(&doc)
	if err := validateDocument(&doc); err != nil {
		return err
	}

	p.document = &doc
	return nil
}

// isGLB reports whether data starts with the binary glTF magic.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic
}
