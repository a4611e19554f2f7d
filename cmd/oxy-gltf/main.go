// Command oxy-gltf imports glTF 2.0 files and prints a summary of each resolved scene.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/internal/config"
	"github.com/Carmen-Shannon/oxy-gltf/internal/logger"

	"go.uber.org/zap"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // at least one file failed to import
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, so it can be driven from tests.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("oxy-gltf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: oxy-gltf [flags] file.gltf...\n\n")
		fs.PrintDefaults()
	}
	flags := config.RegisterFlags(fs)
	decode := fs.Bool("decode", false, "Pack meshes and decode textures to report buffer sizes and image dimensions")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return exitUsage
	}

	if flags.InitConfig != "" {
		if err := cfg.SaveTo(flags.InitConfig); err != nil {
			fmt.Fprintf(stderr, "Config error: %v\n", err)
			return exitFailed
		}
		fmt.Fprintf(stdout, "wrote %s\n", flags.InitConfig)
		return exitOK
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return exitFailed
	}
	defer logger.Sync()

	l := loader.NewLoader(loader.BackendTypeGLTF, cfg.LoaderOptions(logger.Named("loader"))...)

	summaries := make([]fileSummary, 0, fs.NArg())
	code := exitOK
	for _, path := range fs.Args() {
		scene, err := l.Load(path)
		if err != nil {
			logger.Error("import failed",
				zap.String("path", path),
				zap.Stringer("kind", loader.KindOf(err)),
				zap.Error(err),
			)
			summaries = append(summaries, fileSummary{File: path, Error: err.Error()})
			code = exitFailed
			continue
		}
		logger.Info("imported scene",
			zap.String("path", path),
			zap.String("scene", scene.Name),
			zap.Int("meshes", len(scene.Meshes)),
		)
		summaries = append(summaries, summarize(path, scene, *decode))
	}

	if err := writeSummaries(stdout, cfg.Output.Format, summaries); err != nil {
		fmt.Fprintf(stderr, "Output error: %v\n", err)
		return exitFailed
	}
	return code
}
