package config

import "flag"

// Flags holds command-line overrides. Zero values leave the loaded config untouched.
type Flags struct {
	Config     string
	InitConfig string
	Debug      bool
	LogFile    string
	Format     string
	Workers    int
	Sequential bool
	NoImages   bool
	Normals    bool
	Tangents   bool
	Profile    bool
}

// RegisterFlags defines the importer flags on fs and returns the struct they parse into.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.InitConfig, "init-config", "", "Write the effective config to this path and exit")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file (rotated)")
	fs.StringVar(&f.Format, "format", "", "Summary format: text, json or yaml")
	fs.IntVar(&f.Workers, "workers", 0, "Maximum concurrent buffer reads")
	fs.BoolVar(&f.Sequential, "sequential", false, "Load buffers one at a time")
	fs.BoolVar(&f.NoImages, "no-images", false, "Resolve texture paths without reading image files")
	fs.BoolVar(&f.Normals, "normals", false, "Generate normals for triangle meshes that lack them")
	fs.BoolVar(&f.Tangents, "tangents", false, "Generate tangents for textured triangle meshes that lack them")
	fs.BoolVar(&f.Profile, "profile", false, "Log per-stage import timings")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.Workers > 0 {
		cfg.Import.Workers = f.Workers
	}
	if f.Sequential {
		cfg.Import.ConcurrentBuffers = false
	}
	if f.NoImages {
		cfg.Import.LoadImageData = false
	}
	if f.Normals {
		cfg.Import.GenerateNormals = true
	}
	if f.Tangents {
		cfg.Import.GenerateTangents = true
	}
	if f.Profile {
		cfg.Import.Profile = true
	}
}
