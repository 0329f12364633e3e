package vm

import (
	"math"

	"rsl/pkg/rsl"
)

// execLightStatement handles a light shader body's solar/illuminate
// statement: it records the shape of the light this invocation describes,
// then falls through to the body, whose code codegen emitted right after
// this instruction in the ordinary instruction stream.
func (vm *VM) execLightStatement(op rsl.Opcode) {
	switch op {
	case rsl.OpSolar:
		vm.activeLight = Light{Category: LightSolar, Axis: [3]float32{0, 0, 1}}
	case rsl.OpSolarAxisAngle:
		axisAddr := vm.nextAddr()
		angleAddr := vm.nextAddr()
		axis := vec3(vm.readLane(axisAddr, rsl.NewDispatchTag(rsl.TypeVector, rsl.StorageUniform), 0))
		angle := vm.readLane(angleAddr, rsl.NewDispatchTag(rsl.TypeFloat, rsl.StorageUniform), 0)[0]
		vm.activeLight = Light{Category: LightSolar, Axis: axis, Angle: angle}
	case rsl.OpIlluminate:
		posAddr := vm.nextAddr()
		pos := vec3(vm.readLane(posAddr, rsl.NewDispatchTag(rsl.TypePoint, rsl.StorageVarying), 0))
		vm.activeLight = Light{Category: LightPoint, Position: pos}
	case rsl.OpIlluminateAxisAngle:
		posAddr := vm.nextAddr()
		axisAddr := vm.nextAddr()
		angleAddr := vm.nextAddr()
		pos := vec3(vm.readLane(posAddr, rsl.NewDispatchTag(rsl.TypePoint, rsl.StorageVarying), 0))
		axis := vec3(vm.readLane(axisAddr, rsl.NewDispatchTag(rsl.TypeVector, rsl.StorageUniform), 0))
		angle := vm.readLane(angleAddr, rsl.NewDispatchTag(rsl.TypeFloat, rsl.StorageUniform), 0)[0]
		vm.activeLight = Light{Category: LightPoint, Position: pos, Axis: axis, Angle: angle}
	}
}

// execIlluminanceSetup runs once per light of an illuminance loop: it
// tests the current light against the cone described by axis/angle around
// pos, writes the 0/1 result into a dedicated mask-scratch temporary
// (GENERATE_MASK reads that back immediately afterward, per
// generateIlluminance), leaving pos untouched for the body to read. The
// first pass starts at light 0 and each later pass through the same
// statement advances to the next light; once the index is past the last
// light nothing is written and JUMP_ILLUMINANCE leaves the loop.
func (vm *VM) execIlluminanceSetup() {
	beginPC := vm.pc - 1
	if beginPC != vm.illuminancePC {
		vm.illuminancePC = beginPC
		vm.lightIndex = 0
	} else {
		vm.lightIndex++
	}

	posAddr := vm.nextAddr()
	axisAddr := vm.nextAddr()
	angleAddr := vm.nextAddr()
	litAddr := vm.nextAddr()

	lights := vm.Grid.Lights()
	vm.lights = lights

	pointTag := rsl.NewDispatchTag(rsl.TypePoint, rsl.StorageVarying)
	floatTagV := rsl.NewDispatchTag(rsl.TypeFloat, rsl.StorageVarying)
	vectorTagU := rsl.NewDispatchTag(rsl.TypeVector, rsl.StorageUniform)
	floatTagU := rsl.NewDispatchTag(rsl.TypeFloat, rsl.StorageUniform)

	if vm.lightIndex >= len(lights) {
		return
	}
	light := lights[vm.lightIndex]
	vm.activeLight = light

	coneAxis := vec3(vm.readLane(axisAddr, vectorTagU, 0))
	coneAngle := vm.readLane(angleAddr, floatTagU, 0)[0]

	for lane := 0; lane < vm.Lanes; lane++ {
		p := vec3(vm.readLane(posAddr, pointTag, lane))
		lit := lightIsVisible(light, p, coneAxis, coneAngle)
		vm.writeLane(litAddr, floatTagV, lane, []float32{flag(lit)})
	}
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// lightIsVisible reports whether a light illuminates point p within the
// cone described by axis/angle. Ambient lights never contribute to an
// illuminance loop (ambient() is applied directly, not per-light).
func lightIsVisible(light Light, p, axis [3]float32, angle float32) bool {
	if light.Category == LightAmbient {
		return false
	}
	dir := lightDirection(light, p)
	cos := dot3(normalize3(dir), normalize3(axis))
	return float32(math.Acos(float64(clamp(cos, -1, 1)))) <= angle
}

// lightDirection returns the direction from p toward light, not
// normalized (lightIsVisible normalizes it).
func lightDirection(light Light, p [3]float32) [3]float32 {
	switch light.Category {
	case LightSolar:
		return [3]float32{-light.Axis[0], -light.Axis[1], -light.Axis[2]}
	default:
		return sub3(light.Position, p)
	}
}

func dot3(a, b [3]float32) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
func normalize3(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(dot3(v, v))))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// execAmbient handles the vestigial AMBIENT opcode (reads Cl, Ol; the
// shader-level "ambient(Cl,Ol)" call used in practice goes through CALL
// with BuiltinAmbient instead, see call.go).
func (vm *VM) execAmbient(tags [3]rsl.DispatchTag) {
	vm.nextAddr()
	vm.nextAddr()
}
