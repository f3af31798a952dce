package export

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"sort"

	"mini-csg/internal/profiling"
	"mini-csg/pkg/csg"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	backgroundColor = color.RGBA{0xf4, 0xf4, 0xf0, 0xff}
	captionColor    = color.RGBA{0x30, 0x30, 0x30, 0xff}
	defaultBase     = color.RGBA{0x9a, 0xb4, 0xd0, 0xff}
)

// view is an orthographic camera looking along -toward.
type view struct {
	right, up, toward mgl32.Vec3
}

var views = map[string]view{
	"x": {right: mgl32.Vec3{0, 1, 0}, up: mgl32.Vec3{0, 0, 1}, toward: mgl32.Vec3{1, 0, 0}},
	"y": {right: mgl32.Vec3{-1, 0, 0}, up: mgl32.Vec3{0, 0, 1}, toward: mgl32.Vec3{0, 1, 0}},
	"z": {right: mgl32.Vec3{1, 0, 0}, up: mgl32.Vec3{0, 1, 0}, toward: mgl32.Vec3{0, 0, 1}},
}

// RenderPreview draws s as seen from the +axis side ("x", "y" or "z") into a
// size×size image. Faces are filled back to front with Lambert shading and a
// caption with the polygon count is added at the bottom.
func RenderPreview(s *csg.Solid, size int, axis string) (*image.RGBA, error) {
	defer profiling.Track("export.RenderPreview")()
	v, ok := views[axis]
	if !ok {
		return nil, fmt.Errorf("unknown preview axis %q", axis)
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid preview size %d", size)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	b := s.Bounds()
	if !b.IsEmpty() {
		paintFaces(img, s, v, size)
	}
	if err := drawCaption(img, fmt.Sprintf("%d polygons, view %s", s.PolygonCount(), axis)); err != nil {
		return nil, err
	}
	return img, nil
}

func paintFaces(img *image.RGBA, s *csg.Solid, v view, size int) {
	b := s.Bounds()
	c := b.Center()
	ext := b.Size()
	span := math32.Max(math32.Abs(ext.Dot(v.right)), math32.Abs(ext.Dot(v.up)))
	if span == 0 {
		span = 1
	}
	half := float32(size) / 2
	scale := 0.84 * float32(size) / span
	project := func(p mgl32.Vec3) (float32, float32) {
		d := p.Sub(c)
		return half + d.Dot(v.right)*scale, half - d.Dot(v.up)*scale
	}

	type face struct {
		p     *csg.Polygon
		depth float32
	}
	var faces []face
	for _, p := range s.Polygons() {
		if p.Plane.Normal.Dot(v.toward) <= 0 || len(p.Vertices) < 3 {
			continue
		}
		var depth float32
		for _, vert := range p.Vertices {
			depth += vert.Pos.Dot(v.toward)
		}
		faces = append(faces, face{p, depth / float32(len(p.Vertices))})
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].depth < faces[j].depth })

	light := v.toward.Add(v.up.Mul(0.5)).Add(v.right.Mul(0.3)).Normalize()
	r := vector.NewRasterizer(size, size)
	for _, f := range faces {
		r.Reset(size, size)
		for i, vert := range f.p.Vertices {
			x, y := project(vert.Pos)
			if i == 0 {
				r.MoveTo(x, y)
			} else {
				r.LineTo(x, y)
			}
		}
		r.ClosePath()
		shade := 0.25 + 0.75*math32.Max(0, f.p.Plane.Normal.Dot(light))
		r.Draw(img, img.Bounds(), image.NewUniform(shadeColor(baseColor(f.p.Shared), shade)), image.Point{})
	}
}

// baseColor picks a stable color per material.
func baseColor(s *csg.Shared) color.RGBA {
	if s == nil || s.Material == nil {
		return defaultBase
	}
	h := fnv.New32a()
	fmt.Fprint(h, s.Material)
	sum := h.Sum32()
	return color.RGBA{
		R: 0x60 + uint8(sum)%0x90,
		G: 0x60 + uint8(sum>>8)%0x90,
		B: 0x60 + uint8(sum>>16)%0x90,
		A: 0xff,
	}
}

func shadeColor(c color.RGBA, k float32) color.RGBA {
	return color.RGBA{
		R: uint8(float32(c.R) * k),
		G: uint8(float32(c.G) * k),
		B: uint8(float32(c.B) * k),
		A: c.A,
	}
}

func drawCaption(img *image.RGBA, text string) error {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	px := math32.Max(10, float32(img.Bounds().Dy())/40)
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(px), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(captionColor),
		Face: face,
		Dot:  fixed.P(int(px/2), img.Bounds().Dy()-int(px/2)),
	}
	d.DrawString(text)
	return nil
}

// SavePNG encodes img to the file at path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("could not encode png: %w", err)
	}
	return f.Close()
}
