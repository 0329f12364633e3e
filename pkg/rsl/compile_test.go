package rsl

import (
	"fmt"
	"strings"
	"testing"
)

// compileOK compiles source and fails the test immediately if compilation
// does not succeed, returning the resulting Shader for further assertions.
func compileOK(t *testing.T, source, name string, lanesMax int) *Shader {
	t.Helper()
	policy := &CollectingErrorPolicy{}
	shader, err := Compile(source, name, lanesMax, policy)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v (errors: %v)", name, err, policy.Errors)
	}
	return shader
}

func TestCompileNullSurfaceShader(t *testing.T) {
	shader := compileOK(t, `
surface null_surface()
{
}
`, "null_surface", 1)

	if shader.ShaderKind != ShaderSurface {
		t.Fatalf("ShaderKind = %v, want ShaderSurface", shader.ShaderKind)
	}
	if shader.FindSymbol("Ci") == nil {
		t.Fatalf("expected implicit Ci global to be declared")
	}
}

func TestCompileImplicitAmbient(t *testing.T) {
	shader := compileOK(t, `
light constant_color()
{
	Cl = (1, 1, 1);
}
`, "constant_color", 1)

	if shader.FindSymbol("Ci") == nil {
		t.Fatalf("expected implicit Ci global to be declared")
	}
	call := fmt.Sprintf("%-14s %08x", OpCall, uint32(BuiltinAmbient))
	if !strings.Contains(Disassemble(shader.CodeBytes), call) {
		t.Fatalf("expected an implicit ambient(Cl, Ol) CALL in a light shader without solar/illuminate")
	}
}

func TestCompileVaryingConditionalOnGrid(t *testing.T) {
	const lanes = 8 * 8
	shader := compileOK(t, `
surface checker()
{
	if (u > 0.5) {
		Ci = (1, 1, 1);
	} else {
		Ci = (0, 0, 0);
	}
	Oi = Os;
}
`, "checker", lanes)

	if shader.LanesMax != lanes {
		t.Fatalf("LanesMax = %d, want %d", shader.LanesMax, lanes)
	}
	if len(shader.CodeBytes) == 0 {
		t.Fatalf("expected non-empty generated code")
	}
}

func TestCompileStoragePromotion(t *testing.T) {
	shader := compileOK(t, `
surface promote()
{
	float k = 2.0;
	float result = k * u;
	Ci = (result, result, result);
}
`, "promote", 4)

	if len(shader.CodeBytes) == 0 {
		t.Fatalf("expected generated code for a uniform-to-varying promotion")
	}
}

func TestCompileOverloadResolutionByReturnType(t *testing.T) {
	shader := compileOK(t, `
surface randomized()
{
	float f = random();
	color c = random();
	Ci = c * f;
}
`, "randomized", 4)

	if len(shader.CodeBytes) == 0 {
		t.Fatalf("expected generated code for overload-resolved random() calls")
	}
}

func TestCompileLoopWithBreak(t *testing.T) {
	shader := compileOK(t, `
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
`, "loopy", 4)

	if len(shader.CodeBytes) == 0 {
		t.Fatalf("expected generated code for loop-with-break shader")
	}
}

func TestCompileReportsUndefinedSymbol(t *testing.T) {
	policy := &CollectingErrorPolicy{}
	_, err := Compile(`
surface bad()
{
	Ci = nonexistent_variable;
}
`, "bad", 4, policy)
	if err == nil {
		t.Fatalf("expected compilation to fail for an undefined symbol")
	}
	if len(policy.Errors) == 0 {
		t.Fatalf("expected at least one reported error")
	}
}

func TestCompileLightShaderGlobals(t *testing.T) {
	shader := compileOK(t, `
light ambientlight()
{
	Cl = (1, 1, 1);
}
`, "ambientlight", 1)

	if shader.ShaderKind != ShaderLight {
		t.Fatalf("ShaderKind = %v, want ShaderLight", shader.ShaderKind)
	}
	if shader.FindSymbol("Cl") == nil {
		t.Fatalf("expected implicit Cl global on a light shader")
	}
}

// TestCompileLightShaderRejectsGlobalCombinedWithSolar covers the rule that a
// light shader cannot both assign Cl/Ol at global scope and call solar or
// illuminate: the two describe conflicting ways of contributing light.
func TestCompileLightShaderRejectsGlobalCombinedWithSolar(t *testing.T) {
	policy := &CollectingErrorPolicy{}
	_, err := Compile(`
light spotlight()
{
	Cl = (1, 1, 1);
	solar((0, 0, 1), 0);
}
`, "spotlight", 1, policy)
	if err == nil {
		t.Fatalf("expected compilation to fail for Cl assignment combined with solar")
	}
	if len(policy.Errors) == 0 {
		t.Fatalf("expected at least one reported error")
	}
}
