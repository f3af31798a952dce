package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"mini-csg/internal/config"
	"mini-csg/internal/meshing"
	"mini-csg/internal/profiling"
	"mini-csg/pkg/csg"
	"mini-csg/pkg/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: csgview scene.yaml")
		os.Exit(2)
	}
	path := os.Args[1]

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "csgview - "+filepath.Base(path), nil, nil)
	if err != nil {
		panic(err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		panic(err)
	}

	program, err := newProgram(vertexSrc, fragmentSrc)
	if err != nil {
		panic(err)
	}
	defer gl.DeleteProgram(program)

	m := newModel()
	defer m.delete()

	cam := newOrbitCamera(windowWidth, windowHeight)
	setupCallbacks(window, cam)

	// Evaluate off the render thread; the window stays responsive while a
	// large scene is being built.
	pool := meshing.NewWorkerPool(1, 1)
	defer pool.Shutdown()
	results := make(chan meshing.BuildResult, 1)
	loader := scene.NewLoader(filepath.Dir(path))
	pool.SubmitJobBlocking(meshing.BuildJob{
		Name:       path,
		Build:      func() (*csg.Solid, error) { return loader.Build(filepath.Base(path)) },
		ResultChan: results,
	})

	mvpLoc := gl.GetUniformLocation(program, gl.Str("mvp\x00"))
	modelLoc := gl.GetUniformLocation(program, gl.Str("model\x00"))

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(0.95, 0.95, 0.94, 1.0)

	angle := float32(0)
	last := time.Now()
	for !window.ShouldClose() {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		select {
		case r := <-results:
			if r.Error != nil {
				slog.Error("scene failed", "scene", r.Name, "err", r.Error)
				window.SetShouldClose(true)
				break
			}
			m.upload(r.Vertices)
			cam.frame(r.Solid.Bounds())
			slog.Info("scene loaded",
				"scene", r.Name,
				"polygons", r.Solid.PolygonCount(),
				"triangles", meshing.TriangleCount(r.Vertices),
				"top", profiling.TopN(4))
		default:
		}

		if config.GetSpin() {
			angle += dt * 0.6
		}

		if config.GetWireframe() {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		} else {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		if m.count > 0 {
			model := cam.center().Mul4(mgl32.HomogRotate3DY(angle)).Mul4(cam.center().Inv())
			mvp := cam.projection().Mul4(cam.view()).Mul4(model)
			gl.UseProgram(program)
			gl.UniformMatrix4fv(mvpLoc, 1, false, &mvp[0])
			gl.UniformMatrix4fv(modelLoc, 1, false, &model[0])
			m.draw()
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}
}

func setupCallbacks(window *glfw.Window, cam *orbitCamera) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyF:
			config.ToggleWireframe()
		case glfw.KeySpace:
			config.SetSpin(!config.GetSpin())
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		config.SetFOV(config.GetFOV() - float32(yoff)*2)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		cam.resize(fbWidth, fbHeight)
	})
}
