package vm_test

import (
	"math/rand"
	"testing"

	"rsl/pkg/rsl"
	"rsl/pkg/vm"
)

func compileShader(t *testing.T, source, name string, lanes int) *rsl.Shader {
	t.Helper()
	policy := &rsl.CollectingErrorPolicy{}
	shader, err := rsl.Compile(source, name, lanes, policy)
	if err != nil {
		t.Fatalf("compile %q failed: %v (errors: %v)", name, err, policy.Errors)
	}
	return shader
}

func ciAt(shader *rsl.Shader, grid *vm.SimpleGrid, lanes, lane int) [3]float32 {
	addr := shader.FindSymbol("Ci").Address
	vals := grid.Lookup(addr.Offset(), 3*lanes)
	return [3]float32{vals[0*lanes+lane], vals[1*lanes+lane], vals[2*lanes+lane]}
}

func TestRunConstantColorSurface(t *testing.T) {
	shader := compileShader(t, `
surface flat()
{
	Ci = (0.25, 0.5, 0.75);
	Oi = Os;
}
`, "flat", 4)

	grid := vm.NewSimpleGrid(2, 2, shader.GridSize, shader.Strings)
	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	for lane := 0; lane < 4; lane++ {
		got := ciAt(shader, grid, 4, lane)
		want := [3]float32{0.25, 0.5, 0.75}
		if got != want {
			t.Fatalf("lane %d: Ci = %v, want %v", lane, got, want)
		}
	}
}

func TestRunVaryingConditionalPerLane(t *testing.T) {
	const lanes = 4
	shader := compileShader(t, `
surface checker()
{
	if (u > 0.5) {
		Ci = (1, 1, 1);
	} else {
		Ci = (0, 0, 0);
	}
}
`, "checker", lanes)

	grid := vm.NewSimpleGrid(lanes, 1, shader.GridSize, shader.Strings)
	uAddr := shader.FindSymbol("u").Address
	uSlots := grid.Lookup(uAddr.Offset(), lanes)
	uSlots[0], uSlots[1], uSlots[2], uSlots[3] = 0.1, 0.9, 0.2, 0.8

	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	wantLit := []bool{false, true, false, true}
	for lane, lit := range wantLit {
		got := ciAt(shader, grid, lanes, lane)
		want := float32(0)
		if lit {
			want = 1
		}
		if got[0] != want {
			t.Fatalf("lane %d: Ci.r = %v, want %v (u=%v)", lane, got[0], want, uSlots[lane])
		}
	}
}

// TestRunImplicitAmbientLight covers an ambient light: a light shader body
// that assigns Cl/Ol without calling solar/illuminate gets an implicit
// ambient(Cl, Ol) call appended by Analyze, which the VM executes as an
// ordinary CALL and accumulates into Ci.
func TestRunImplicitAmbientLight(t *testing.T) {
	shader := compileShader(t, `
light ambientlight()
{
	Cl = (0.4, 0.4, 0.4);
	Ol = (1, 1, 1);
}
`, "ambientlight", 1)

	grid := vm.NewSimpleGrid(1, 1, shader.GridSize, shader.Strings)
	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	got := ciAt(shader, grid, 1, 0)
	want := [3]float32{0.4, 0.4, 0.4}
	if got != want {
		t.Fatalf("Ci = %v, want %v", got, want)
	}
}

func TestRunLoopWithBreak(t *testing.T) {
	shader := compileShader(t, `
surface loopy()
{
	float total = 0;
	float i = 0;
	while (i < 10) {
		if (i > 5) {
			break;
		}
		total = total + i;
		i = i + 1;
	}
	Ci = (total, total, total);
}
`, "loopy", 1)

	grid := vm.NewSimpleGrid(1, 1, shader.GridSize, shader.Strings)
	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	got := ciAt(shader, grid, 1, 0)
	want := float32(0 + 1 + 2 + 3 + 4 + 5)
	if got[0] != want {
		t.Fatalf("Ci.r = %v, want %v", got[0], want)
	}
}

// TestRunBlockLocalVariable covers a variable declared inside an if
// block's own scope: it must get a real TEMPORARY address distinct from
// the constant pool, not alias every other block-local onto offset 0.
func TestRunBlockLocalVariable(t *testing.T) {
	const lanes = 4
	shader := compileShader(t, `
surface blocklocal()
{
	if (u > 0.5) {
		float a = 2.0;
		Ci = (a, a, a);
	} else {
		Ci = (0, 0, 0);
	}
}
`, "blocklocal", lanes)

	grid := vm.NewSimpleGrid(lanes, 1, shader.GridSize, shader.Strings)
	uAddr := shader.FindSymbol("u").Address
	uSlots := grid.Lookup(uAddr.Offset(), lanes)
	for i := range uSlots {
		uSlots[i] = 0.9
	}

	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	for lane := 0; lane < lanes; lane++ {
		got := ciAt(shader, grid, lanes, lane)
		want := [3]float32{2, 2, 2}
		if got != want {
			t.Fatalf("lane %d: Ci = %v, want %v", lane, got, want)
		}
	}
}

// TestRunIlluminancePreservesPosition covers the illuminance loop: a body
// that reads the position argument inside the lit block must see the
// grid's actual P, not the per-lane lit/unlit flag the loop setup writes.
func TestRunIlluminancePreservesPosition(t *testing.T) {
	shader := compileShader(t, `
surface litpos()
{
	illuminance(P, (0, 0, -1), 3.14159) {
		Ci = P;
	}
}
`, "litpos", 1)

	grid := vm.NewSimpleGrid(1, 1, shader.GridSize, shader.Strings)
	grid.LightList = []vm.Light{{Category: vm.LightPoint, Position: [3]float32{0, 0, 5}}}

	pAddr := shader.FindSymbol("P").Address
	pSlots := grid.Lookup(pAddr.Offset(), 3)
	pSlots[0], pSlots[1], pSlots[2] = 2, 3, 4

	machine := vm.New(shader, grid, rand.New(rand.NewSource(1)))
	machine.Run(vm.EntryShade)

	got := ciAt(shader, grid, 1, 0)
	want := [3]float32{2, 3, 4}
	if got != want {
		t.Fatalf("Ci = %v, want %v (P clobbered by illuminance mask setup)", got, want)
	}
}

func TestRunDeterministicAcrossSameSeed(t *testing.T) {
	shader := compileShader(t, `
surface randomized()
{
	float f = random();
	Ci = (f, f, f);
}
`, "randomized", 1)

	run := func() [3]float32 {
		grid := vm.NewSimpleGrid(1, 1, shader.GridSize, shader.Strings)
		machine := vm.New(shader, grid, rand.New(rand.NewSource(42)))
		machine.Run(vm.EntryShade)
		return ciAt(shader, grid, 1, 0)
	}

	a, b := run(), run()
	if a != b {
		t.Fatalf("same seed produced different results: %v vs %v", a, b)
	}
}
