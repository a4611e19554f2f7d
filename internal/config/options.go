package config

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"

	"go.uber.org/zap"
)

// LoaderOptions maps the import settings onto loader options.
func (c *Config) LoaderOptions(log *zap.Logger) []loader.LoaderBuilderOption {
	return []loader.LoaderBuilderOption{
		loader.WithLogger(log),
		loader.WithConcurrentBuffers(c.Import.ConcurrentBuffers),
		loader.WithWorkers(c.Import.Workers),
		loader.WithImageData(c.Import.LoadImageData),
		loader.WithCache(c.Import.Cache),
		loader.WithGeneratedNormals(c.Import.GenerateNormals),
		loader.WithGeneratedTangents(c.Import.GenerateTangents),
		loader.WithProfiling(c.Import.Profile),
	}
}
