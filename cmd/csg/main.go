package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mini-csg/internal/config"
	"mini-csg/internal/export"
	"mini-csg/internal/meshing"
	"mini-csg/internal/profiling"
	"mini-csg/pkg/csg"
	"mini-csg/pkg/scene"

	"github.com/schollz/progressbar/v3"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: csg [-o out.stl] [-png out.png] [-axis z] [-size N] [-workers N] [-v] scene.yaml...\n")
	flag.PrintDefaults()
}

func main() {
	stlOut := flag.String("o", "", "write the result as binary STL (\"-\" for stdout)")
	pngOut := flag.String("png", "", "write an orthographic preview PNG")
	axis := flag.String("axis", "z", "preview view axis: x, y or z")
	size := flag.Int("size", config.GetPreviewSize(), "preview edge length in pixels")
	workers := flag.Int("workers", config.GetWorkers(), "scenes evaluated concurrently")
	verbose := flag.Bool("v", false, "log engine operations and timings")
	flag.Usage = usage
	flag.Parse()

	scenes := flag.Args()
	if len(scenes) == 0 {
		usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if *verbose {
		csg.SetLogger(logger.With("component", "csg"))
	}

	config.SetWorkers(*workers)
	config.SetPreviewSize(*size)

	if err := run(scenes, *stlOut, *pngOut, *axis); err != nil {
		slog.Error("csg failed", "err", err)
		os.Exit(1)
	}
}

// errStdoutMany rejects streaming several STL files into one stream.
var errStdoutMany = errors.New("-o - takes a single scene")

func run(scenes []string, stlOut, pngOut, axis string) error {
	if stlOut == "-" && len(scenes) > 1 {
		return errStdoutMany
	}
	start := time.Now()
	pool := meshing.NewWorkerPool(config.GetWorkers(), len(scenes))
	defer pool.Shutdown()

	// One loader per directory so that refs resolve next to the scene file
	// and shared documents are parsed once.
	loaders := make(map[string]*scene.Loader)
	results := make(chan meshing.BuildResult, len(scenes))
	for _, path := range scenes {
		dir := filepath.Dir(path)
		loader, ok := loaders[dir]
		if !ok {
			loader = scene.NewLoader(dir)
			loaders[dir] = loader
		}
		name := filepath.Base(path)
		pool.SubmitJobBlocking(meshing.BuildJob{
			Name:       path,
			Build:      func() (*csg.Solid, error) { return loader.Build(name) },
			ResultChan: results,
		})
	}

	// stdout may carry STL data
	bar := progressbar.NewOptions(len(scenes),
		progressbar.OptionSetDescription("evaluating"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	failed := 0
	for range scenes {
		r := <-results
		_ = bar.Add(1)
		if r.Error != nil {
			slog.Error("scene failed", "scene", r.Name, "err", r.Error)
			failed++
			continue
		}
		if err := writeOutputs(r, len(scenes) > 1, stlOut, pngOut, axis); err != nil {
			slog.Error("export failed", "scene", r.Name, "err", err)
			failed++
			continue
		}
		slog.Info("scene built",
			"scene", r.Name,
			"polygons", r.Solid.PolygonCount(),
			"triangles", meshing.TriangleCount(r.Vertices))
	}
	_ = bar.Close()

	slog.Debug("timings", "total", time.Since(start), "top", profiling.TopN(5))
	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed", failed, len(scenes))
	}
	return nil
}

func writeOutputs(r meshing.BuildResult, many bool, stlOut, pngOut, axis string) error {
	switch {
	case stlOut == "-":
		if err := export.WriteSTL(os.Stdout, r.Solid); err != nil {
			return err
		}
	case stlOut != "":
		if err := export.SaveSTL(outputPath(stlOut, r.Name, many), r.Solid); err != nil {
			return err
		}
	}
	if pngOut != "" {
		img, err := export.RenderPreview(r.Solid, config.GetPreviewSize(), axis)
		if err != nil {
			return err
		}
		if err := export.SavePNG(outputPath(pngOut, r.Name, many), img); err != nil {
			return err
		}
	}
	return nil
}

// outputPath returns out unchanged for a single scene. With several scenes
// the scene's base name is inserted before the extension.
func outputPath(out, sceneName string, many bool) string {
	if !many {
		return out
	}
	ext := filepath.Ext(out)
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	return strings.TrimSuffix(out, ext) + "-" + base + ext
}
