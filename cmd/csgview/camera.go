package main

import (
	"mini-csg/internal/config"
	"mini-csg/pkg/csg"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// orbitCamera looks at the model's bounds from a fixed elevation.
type orbitCamera struct {
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	target   mgl32.Vec3
	distance float32
}

func newOrbitCamera(width, height int) *orbitCamera {
	return &orbitCamera{
		AspectRatio: float32(width) / float32(height),
		NearPlane:   0.1,
		FarPlane:    1000.0,
		distance:    5,
	}
}

func (c *orbitCamera) resize(width, height int) {
	if height == 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// frame moves the camera so that b fits the view at the current FOV.
func (c *orbitCamera) frame(b csg.Box) {
	if b.IsEmpty() {
		return
	}
	c.target = b.Center()
	radius := b.Size().Len() / 2
	half := mgl32.DegToRad(config.GetFOV()) / 2
	c.distance = radius/math32.Sin(half) + radius*0.1
	c.NearPlane = c.distance / 100
	c.FarPlane = c.distance * 10
}

func (c *orbitCamera) center() mgl32.Mat4 {
	return mgl32.Translate3D(c.target.X(), c.target.Y(), c.target.Z())
}

func (c *orbitCamera) projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(config.GetFOV()), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *orbitCamera) view() mgl32.Mat4 {
	dir := mgl32.Vec3{0.6, 0.5, 0.8}.Normalize()
	eye := c.target.Add(dir.Mul(c.distance))
	return mgl32.LookAtV(eye, c.target, mgl32.Vec3{0, 1, 0})
}
