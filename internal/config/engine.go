package config

import (
	"runtime"
	"sync"
)

// EngineSettings holds batch evaluation configuration
type EngineSettings struct {
	mu          sync.RWMutex
	workers     int
	previewSize int
}

var globalEngineSettings = &EngineSettings{
	workers:     clampWorkers(runtime.NumCPU()),
	previewSize: 512,
}

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > 64 {
		return 64
	}
	return n
}

// GetWorkers returns the number of scenes evaluated concurrently
func GetWorkers() int {
	globalEngineSettings.mu.RLock()
	defer globalEngineSettings.mu.RUnlock()
	return globalEngineSettings.workers
}

// SetWorkers sets the number of evaluation workers
func SetWorkers(n int) {
	globalEngineSettings.mu.Lock()
	defer globalEngineSettings.mu.Unlock()
	globalEngineSettings.workers = clampWorkers(n)
}

// GetPreviewSize returns the edge length of preview images in pixels
func GetPreviewSize() int {
	globalEngineSettings.mu.RLock()
	defer globalEngineSettings.mu.RUnlock()
	return globalEngineSettings.previewSize
}

// SetPreviewSize sets the preview edge length
func SetPreviewSize(size int) {
	globalEngineSettings.mu.Lock()
	defer globalEngineSettings.mu.Unlock()

	// Clamp to reasonable values
	if size < 64 {
		size = 64
	}
	if size > 4096 {
		size = 4096
	}

	globalEngineSettings.previewSize = size
}
