// Command rslpreview is a diagnostic viewer: it compiles a surface shader,
// runs it once against a flat in-memory grid, and opens a window showing
// the resulting Ci values as a pixel grid. It exercises the consuming half
// of the pipeline (reading Ci/Oi back out of a shaded Grid) without
// building a full Reyes sampler.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"

	"rsl/pkg/rsl"
	"rsl/pkg/vm"
)

// fallbackSource keeps rslpreview runnable with no -in argument: a flat
// surface shader whose Ci ramps with u so the preview window shows a
// visible gradient rather than a solid color.
const fallbackSource = `
surface flatshade()
{
	Ci = Cs * (0.2 + 0.8 * u);
	Oi = Os;
}
`

type Game struct {
	grid   *vm.SimpleGrid
	shader *rsl.Shader
	scale  int
	img    *ebiten.Image
}

func (g *Game) Update() error { return nil }

func (g *Game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(g.grid.W*g.scale, g.grid.H*g.scale)
	}

	ciAddr := g.shader.FindSymbol("Ci").Address
	small := image.NewRGBA(image.Rect(0, 0, g.grid.W, g.grid.H))
	lanes := g.grid.W * g.grid.H
	ci := g.grid.Lookup(ciAddr.Offset(), 3*lanes)
	for y := 0; y < g.grid.H; y++ {
		for x := 0; x < g.grid.W; x++ {
			lane := y*g.grid.W + x
			small.SetRGBA(x, y, color.RGBA{
				R: clampByte(ci[0*lanes+lane]),
				G: clampByte(ci[1*lanes+lane]),
				B: clampByte(ci[2*lanes+lane]),
				A: 255,
			})
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, g.grid.W*g.scale, g.grid.H*g.scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), small, small.Bounds(), draw.Src, nil)
	g.img.WritePixels(scaled.Pix)
	screen.DrawImage(g.img, &ebiten.DrawImageOptions{})
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.grid.W * g.scale, g.grid.H * g.scale
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

func main() {
	inPath := flag.String("in", "", "surface shader source path (default: built-in sample)")
	width := flag.Int("width", 32, "grid width in points")
	height := flag.Int("height", 32, "grid height in points")
	scale := flag.Int("scale", 12, "pixels per grid point in the preview window")
	flag.Parse()

	source := fallbackSource
	name := "rslpreview-sample"
	if *inPath != "" {
		bytes, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}
		source = string(bytes)
		name = *inPath
	}

	shader, err := rsl.Compile(source, name, (*width)*(*height), rsl.StderrErrorPolicy{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed for %q\n", name)
		os.Exit(1)
	}

	grid := vm.NewSimpleGrid(*width, *height, shader.GridSize, shader.Strings)
	seedSurface(shader, grid)

	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	game := &Game{grid: grid, shader: shader, scale: *scale}
	ebiten.SetWindowSize(*width*(*scale), *height*(*scale))
	ebiten.SetWindowTitle("rslpreview: " + name)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// seedSurface fills in the per-point globals a real Reyes grid would
// already carry before a surface shader runs: u/v over [0,1], Cs/Os at
// full white/opaque, and a flat-facing P/N so lighting builtins have
// something sane to read.
func seedSurface(shader *rsl.Shader, grid *vm.SimpleGrid) {
	lanes := grid.W * grid.H
	set := func(name string, elements int, fill func(lane int) []float32) {
		sym := shader.FindSymbol(name)
		if sym == nil {
			return
		}
		slots := grid.Lookup(sym.Address.Offset(), elements*lanes)
		for lane := 0; lane < lanes; lane++ {
			vals := fill(lane)
			for c := 0; c < elements; c++ {
				slots[c*lanes+lane] = vals[c]
			}
		}
	}

	set("u", 1, func(lane int) []float32 { return []float32{float32(lane%grid.W) / float32(max1(grid.W-1))} })
	set("v", 1, func(lane int) []float32 { return []float32{float32(lane/grid.W) / float32(max1(grid.H-1))} })
	set("Cs", 3, func(lane int) []float32 { return []float32{1, 1, 1} })
	set("Os", 3, func(lane int) []float32 { return []float32{1, 1, 1} })
	set("P", 3, func(lane int) []float32 {
		return []float32{float32(lane%grid.W) / float32(max1(grid.W-1)), float32(lane/grid.W) / float32(max1(grid.H-1)), 0}
	})
	set("N", 3, func(lane int) []float32 { return []float32{0, 0, 1} })
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
