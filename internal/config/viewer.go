package config

import "sync"

// ViewerSettings holds interactive viewer configuration
type ViewerSettings struct {
	mu        sync.RWMutex
	fov       float32 // degrees
	wireframe bool
	spin      bool
}

var globalViewerSettings = &ViewerSettings{
	fov:  60,
	spin: true,
}

// GetFOV returns the vertical field of view in degrees
func GetFOV() float32 {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.fov
}

// SetFOV sets the vertical field of view in degrees
func SetFOV(deg float32) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	if deg < 30 {
		deg = 30
	}
	if deg > 120 {
		deg = 120
	}
	globalViewerSettings.fov = deg
}

// GetWireframe returns whether polygons are drawn as outlines
func GetWireframe() bool {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.wireframe
}

// ToggleWireframe flips wireframe mode and returns the new value
func ToggleWireframe() bool {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	globalViewerSettings.wireframe = !globalViewerSettings.wireframe
	return globalViewerSettings.wireframe
}

// GetSpin returns whether the model rotates on its own
func GetSpin() bool {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.spin
}

// SetSpin enables or disables automatic rotation
func SetSpin(enabled bool) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	globalViewerSettings.spin = enabled
}
