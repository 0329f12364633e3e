package vm

import (
	"math"

	"rsl/pkg/rsl"
)

// execCall decodes a CALL instruction and dispatches to the built-in
// handler keyed by BuiltinKind — a capability enum rather than a symbol
// table index, so the VM never has to chase a function pointer the front
// end produced. Operand layout: builtin_kind, argc, result, then argc
// argument addresses, all sharing the one dispatch tag CALL carries
// (stdlib overloads pair argument storage with return storage, apart from
// the uniform string and matrix arguments of the transform built-ins).
func (vm *VM) execCall(tags [3]rsl.DispatchTag) {
	kind := rsl.BuiltinKind(vm.nextWord())
	argc := int(vm.nextWord())
	dst := vm.nextAddr()
	args := make([]rsl.Address, argc)
	for i := range args {
		args[i] = vm.nextAddr()
	}

	resultTag := tags[0]
	lanes := vm.lanesFor(resultTag)

	for lane := 0; lane < lanes; lane++ {
		if lanes > 1 && !vm.activeMask()[lane] {
			continue
		}
		vm.callOne(kind, resultTag, dst, args, lane)
	}
}

// argFloat/argVec3/argString read one CALL argument at the given index
// for one lane, using resultTag's storage (uniform/varying) to decide
// whether the argument is laned.
func (vm *VM) argFloat(args []rsl.Address, i int, storage rsl.ValueStorage, lane int) float32 {
	return vm.readLane(args[i], rsl.NewDispatchTag(rsl.TypeFloat, storage), lane)[0]
}

func (vm *VM) argVec3(args []rsl.Address, i int, t rsl.ValueType, storage rsl.ValueStorage, lane int) [3]float32 {
	return vec3(vm.readLane(args[i], rsl.NewDispatchTag(t, storage), lane))
}

func (vm *VM) argMatrix(args []rsl.Address, i int, storage rsl.ValueStorage, lane int) Matrix {
	return matrixFromSlice(vm.readLane(args[i], rsl.NewDispatchTag(rsl.TypeMatrix, storage), lane))
}

func (vm *VM) argString(args []rsl.Address, i int) string {
	return vm.readString(args[i])
}

func (vm *VM) setFloat(dst rsl.Address, tag rsl.DispatchTag, lane int, v float32) {
	vm.writeLane(dst, tag, lane, []float32{v})
}

func (vm *VM) setVec3(dst rsl.Address, t rsl.ValueType, storage rsl.ValueStorage, lane int, v [3]float32) {
	vm.writeLane(dst, rsl.NewDispatchTag(t, storage), lane, v[:])
}

// callOne executes one built-in for a single lane.
func (vm *VM) callOne(kind rsl.BuiltinKind, resultTag rsl.DispatchTag, dst rsl.Address, args []rsl.Address, lane int) {
	storage := rsl.StorageUniform
	if resultTag.IsVarying() {
		storage = rsl.StorageVarying
	}
	f64 := func(v float32) float64 { return float64(v) }

	switch kind {
	case rsl.BuiltinRadians:
		vm.setFloat(dst, resultTag, lane, vm.argFloat(args, 0, storage, lane)*math.Pi/180)
	case rsl.BuiltinDegrees:
		vm.setFloat(dst, resultTag, lane, vm.argFloat(args, 0, storage, lane)*180/math.Pi)
	case rsl.BuiltinSin:
		vm.setFloat(dst, resultTag, lane, float32(math.Sin(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinAsin:
		vm.setFloat(dst, resultTag, lane, float32(math.Asin(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinCos:
		vm.setFloat(dst, resultTag, lane, float32(math.Cos(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinAcos:
		vm.setFloat(dst, resultTag, lane, float32(math.Acos(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinTan:
		vm.setFloat(dst, resultTag, lane, float32(math.Tan(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinAtan1:
		vm.setFloat(dst, resultTag, lane, float32(math.Atan(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinAtan2:
		vm.setFloat(dst, resultTag, lane, float32(math.Atan2(f64(vm.argFloat(args, 0, storage, lane)), f64(vm.argFloat(args, 1, storage, lane)))))
	case rsl.BuiltinPow:
		vm.setFloat(dst, resultTag, lane, float32(math.Pow(f64(vm.argFloat(args, 0, storage, lane)), f64(vm.argFloat(args, 1, storage, lane)))))
	case rsl.BuiltinExp:
		vm.setFloat(dst, resultTag, lane, float32(math.Exp(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinSqrt:
		vm.setFloat(dst, resultTag, lane, float32(math.Sqrt(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinInverseSqrt:
		vm.setFloat(dst, resultTag, lane, float32(1/math.Sqrt(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinLog1:
		vm.setFloat(dst, resultTag, lane, float32(math.Log(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinLog2:
		base := f64(vm.argFloat(args, 1, storage, lane))
		vm.setFloat(dst, resultTag, lane, float32(math.Log(f64(vm.argFloat(args, 0, storage, lane)))/math.Log(base)))
	case rsl.BuiltinMod:
		a, b := vm.argFloat(args, 0, storage, lane), vm.argFloat(args, 1, storage, lane)
		vm.setFloat(dst, resultTag, lane, float32(math.Mod(f64(a), f64(b))))
	case rsl.BuiltinAbs:
		vm.setFloat(dst, resultTag, lane, float32(math.Abs(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinSign:
		v := vm.argFloat(args, 0, storage, lane)
		switch {
		case v > 0:
			vm.setFloat(dst, resultTag, lane, 1)
		case v < 0:
			vm.setFloat(dst, resultTag, lane, -1)
		default:
			vm.setFloat(dst, resultTag, lane, 0)
		}
	case rsl.BuiltinMin:
		vm.setFloat(dst, resultTag, lane, float32(math.Min(f64(vm.argFloat(args, 0, storage, lane)), f64(vm.argFloat(args, 1, storage, lane)))))
	case rsl.BuiltinMax:
		vm.setFloat(dst, resultTag, lane, float32(math.Max(f64(vm.argFloat(args, 0, storage, lane)), f64(vm.argFloat(args, 1, storage, lane)))))
	case rsl.BuiltinClamp:
		v := vm.argFloat(args, 0, storage, lane)
		lo := vm.argFloat(args, 1, storage, lane)
		hi := vm.argFloat(args, 2, storage, lane)
		vm.setFloat(dst, resultTag, lane, clamp(v, lo, hi))
	case rsl.BuiltinMix:
		vm.callMix(resultTag, dst, args, storage, lane)
	case rsl.BuiltinFloor:
		vm.setFloat(dst, resultTag, lane, float32(math.Floor(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinCeil:
		vm.setFloat(dst, resultTag, lane, float32(math.Ceil(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinRound:
		vm.setFloat(dst, resultTag, lane, float32(math.Round(f64(vm.argFloat(args, 0, storage, lane)))))
	case rsl.BuiltinStep:
		edge := vm.argFloat(args, 0, storage, lane)
		v := vm.argFloat(args, 1, storage, lane)
		if v < edge {
			vm.setFloat(dst, resultTag, lane, 0)
		} else {
			vm.setFloat(dst, resultTag, lane, 1)
		}
	case rsl.BuiltinSmoothstep:
		vm.setFloat(dst, resultTag, lane, smoothstep(
			vm.argFloat(args, 0, storage, lane), vm.argFloat(args, 1, storage, lane), vm.argFloat(args, 2, storage, lane)))
	case rsl.BuiltinDu, rsl.BuiltinDv:
		// Finite differences require a neighboring lane's value, which the
		// grid (not the VM) owns the layout to reach; without that, zero is
		// the only value consistent with "derivative of a constant field".
		vm.writeLane(dst, resultTag, lane, make([]float32, familyElements(resultTag.Family())))
	case rsl.BuiltinDeriv:
		// Same limitation as Du/Dv; a numerator-over-denominator isn't
		// resolvable without neighbor access, so the result is zero.
		vm.writeLane(dst, resultTag, lane, make([]float32, familyElements(resultTag.Family())))
	case rsl.BuiltinRandom:
		vm.callRandom(resultTag, dst, lane)
	case rsl.BuiltinXcomp, rsl.BuiltinYcomp, rsl.BuiltinZcomp:
		idx := map[rsl.BuiltinKind]int{rsl.BuiltinXcomp: 0, rsl.BuiltinYcomp: 1, rsl.BuiltinZcomp: 2}[kind]
		v := vm.readLane(args[0], rsl.NewDispatchTag(rsl.TypeVector, storage), lane)
		vm.setFloat(dst, resultTag, lane, v[idx])
	case rsl.BuiltinSetxcomp, rsl.BuiltinSetycomp, rsl.BuiltinSetzcomp:
		idx := map[rsl.BuiltinKind]int{rsl.BuiltinSetxcomp: 0, rsl.BuiltinSetycomp: 1, rsl.BuiltinSetzcomp: 2}[kind]
		tag := rsl.NewDispatchTag(rsl.TypeVector, storage)
		v := vm.readLane(args[0], tag, lane)
		v[idx] = vm.argFloat(args, 1, storage, lane)
		vm.writeLane(args[0], tag, lane, v)
	case rsl.BuiltinLength:
		v := vm.argVec3(args, 0, rsl.TypePoint, storage, lane)
		vm.setFloat(dst, resultTag, lane, float32(math.Sqrt(f64(dot3(v, v)))))
	case rsl.BuiltinNormalize:
		v := vm.argVec3(args, 0, rsl.TypeVector, storage, lane)
		out := normalize3(v)
		vm.setVec3(dst, rsl.TypeVector, storage, lane, out)
	case rsl.BuiltinDistance:
		a := vm.argVec3(args, 0, rsl.TypePoint, storage, lane)
		b := vm.argVec3(args, 1, rsl.TypePoint, storage, lane)
		d := sub3(a, b)
		vm.setFloat(dst, resultTag, lane, float32(math.Sqrt(f64(dot3(d, d)))))
	case rsl.BuiltinRotateVec:
		vm.callRotate(resultTag, dst, args, storage, lane)
	case rsl.BuiltinArea:
		// Requires the grid's neighboring-point derivative, unavailable
		// without neighbor access; report zero area rather than guessing.
		vm.setFloat(dst, resultTag, lane, 0)
	case rsl.BuiltinFaceforward:
		n := vm.argVec3(args, 0, rsl.TypeNormal, storage, lane)
		i := vm.argVec3(args, 1, rsl.TypeVector, storage, lane)
		if dot3(i, n) > 0 {
			n = [3]float32{-n[0], -n[1], -n[2]}
		}
		vm.setVec3(dst, rsl.TypeNormal, storage, lane, n)
	case rsl.BuiltinReflect:
		i := vm.argVec3(args, 0, rsl.TypeVector, storage, lane)
		n := vm.argVec3(args, 1, rsl.TypeNormal, storage, lane)
		vm.setVec3(dst, rsl.TypeVector, storage, lane, reflect3(i, n))
	case rsl.BuiltinRefract:
		i := vm.argVec3(args, 0, rsl.TypeVector, storage, lane)
		n := vm.argVec3(args, 1, rsl.TypeNormal, storage, lane)
		eta := vm.argFloat(args, 2, storage, lane)
		vm.setVec3(dst, rsl.TypeVector, storage, lane, refract3(i, n, eta))
	case rsl.BuiltinFresnel:
		i := vm.argVec3(args, 0, rsl.TypeVector, storage, lane)
		n := vm.argVec3(args, 1, rsl.TypeNormal, storage, lane)
		eta := vm.argFloat(args, 2, storage, lane)
		kr := schlick(i, n, eta)
		vm.setFloat(dst, resultTag, lane, kr)
	case rsl.BuiltinTransform, rsl.BuiltinVtransform, rsl.BuiltinNtransform:
		vm.callTransform(kind, resultTag, dst, args, storage, lane)
	case rsl.BuiltinComp:
		c := vm.argVec3(args, 0, rsl.TypeColor, storage, lane)
		idx := int(vm.argFloat(args, 1, storage, lane))
		if idx >= 0 && idx < 3 {
			vm.setFloat(dst, resultTag, lane, c[idx])
		}
	case rsl.BuiltinSetcomp:
		tag := rsl.NewDispatchTag(rsl.TypeColor, storage)
		c := vm.readLane(args[0], tag, lane)
		idx := int(vm.argFloat(args, 1, storage, lane))
		if idx >= 0 && idx < len(c) {
			c[idx] = vm.argFloat(args, 2, storage, lane)
			vm.writeLane(args[0], tag, lane, c)
		}
	case rsl.BuiltinCtransform:
		name := vm.argString(args, 0)
		c := vm.argVec3(args, 1, rsl.TypeColor, storage, lane)
		m := vm.Grid.CoordinateTransform(name)
		out := transformColor(m, c)
		vm.writeLane(dst, resultTag, lane, out)
	case rsl.BuiltinDeterminant:
		m := vm.argMatrix(args, 0, storage, lane)
		vm.setFloat(dst, resultTag, lane, determinant(m))
	case rsl.BuiltinTranslateMat:
		m := vm.argMatrix(args, 0, storage, lane)
		t := vm.argVec3(args, 1, rsl.TypeVector, storage, lane)
		out := translateMatrix(t).Multiply(m)
		vm.writeLane(dst, resultTag, lane, out[:])
	case rsl.BuiltinRotateMat:
		m := vm.argMatrix(args, 0, storage, lane)
		angle := vm.argFloat(args, 1, storage, lane)
		axis := vm.argVec3(args, 2, rsl.TypeVector, storage, lane)
		out := rotateMatrix(angle, axis).Multiply(m)
		vm.writeLane(dst, resultTag, lane, out[:])
	case rsl.BuiltinScaleMat:
		m := vm.argMatrix(args, 0, storage, lane)
		s := vm.argVec3(args, 1, rsl.TypeVector, storage, lane)
		out := scaleMatrix(s).Multiply(m)
		vm.writeLane(dst, resultTag, lane, out[:])
	case rsl.BuiltinAmbient:
		vm.callAmbient(args, storage, lane)
	case rsl.BuiltinDiffuse:
		n := vm.argVec3(args, 0, rsl.TypeNormal, storage, lane)
		vm.setVec3(dst, rsl.TypeColor, storage, lane, vm.diffuse(n))
	case rsl.BuiltinSpecular:
		n := vm.argVec3(args, 0, rsl.TypeNormal, storage, lane)
		v := vm.argVec3(args, 1, rsl.TypeVector, storage, lane)
		roughness := vm.argFloat(args, 2, storage, lane)
		vm.setVec3(dst, rsl.TypeColor, storage, lane, vm.specular(n, v, roughness))
	case rsl.BuiltinSpecularBRDF:
		l := vm.argVec3(args, 0, rsl.TypeVector, storage, lane)
		n := vm.argVec3(args, 1, rsl.TypeNormal, storage, lane)
		v := vm.argVec3(args, 2, rsl.TypeVector, storage, lane)
		roughness := vm.argFloat(args, 3, storage, lane)
		h := normalize3([3]float32{l[0] + v[0], l[1] + v[1], l[2] + v[2]})
		spec := float32(math.Pow(f64(clamp(dot3(n, h), 0, 1)), f64(1/max32(roughness, 1e-4))))
		vm.setVec3(dst, rsl.TypeColor, storage, lane, [3]float32{spec, spec, spec})
	case rsl.BuiltinPhong:
		n := vm.argVec3(args, 0, rsl.TypeNormal, storage, lane)
		v := vm.argVec3(args, 1, rsl.TypeVector, storage, lane)
		size := vm.argFloat(args, 2, storage, lane)
		vm.setVec3(dst, rsl.TypeColor, storage, lane, vm.phong(n, v, size))
	case rsl.BuiltinTrace:
		// No scene intersector is wired into Grid; trace() reports "no hit".
		vm.setFloat(dst, resultTag, lane, 0)
	}
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func smoothstep(edge0, edge1, x float32) float32 {
	if x < edge0 {
		return 0
	}
	if x >= edge1 {
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	return t * t * (3 - 2*t)
}

func reflect3(i, n [3]float32) [3]float32 {
	d := 2 * dot3(i, n)
	return [3]float32{i[0] - d*n[0], i[1] - d*n[1], i[2] - d*n[2]}
}

func refract3(i, n [3]float32, eta float32) [3]float32 {
	ni := dot3(n, i)
	k := 1 - eta*eta*(1-ni*ni)
	if k < 0 {
		return [3]float32{0, 0, 0}
	}
	s := float32(math.Sqrt(float64(k)))
	return [3]float32{
		eta*i[0] - (eta*ni+s)*n[0],
		eta*i[1] - (eta*ni+s)*n[1],
		eta*i[2] - (eta*ni+s)*n[2],
	}
}

func schlick(i, n [3]float32, eta float32) float32 {
	r0 := (1 - eta) / (1 + eta)
	r0 *= r0
	cosTheta := clamp(-dot3(i, n), 0, 1)
	return r0 + (1-r0)*float32(math.Pow(float64(1-cosTheta), 5))
}

func determinant(m Matrix) float32 {
	a, b, c, d := m[0], m[1], m[2], m[3]
	e, f, g, h := m[4], m[5], m[6], m[7]
	i, j, k, l := m[8], m[9], m[10], m[11]
	mm, n, o, p := m[12], m[13], m[14], m[15]
	return a*(f*(k*p-l*o)-g*(j*p-l*n)+h*(j*o-k*n)) -
		b*(e*(k*p-l*o)-g*(i*p-l*mm)+h*(i*o-k*mm)) +
		c*(e*(j*p-l*n)-f*(i*p-l*mm)+h*(i*n-j*mm)) -
		d*(e*(j*o-k*n)-f*(i*o-k*mm)+g*(i*n-j*mm))
}

func translateMatrix(t [3]float32) Matrix {
	m := IdentityMatrix
	m[3], m[7], m[11] = t[0], t[1], t[2]
	return m
}

func scaleMatrix(s [3]float32) Matrix {
	m := IdentityMatrix
	m[0], m[5], m[10] = s[0], s[1], s[2]
	return m
}

func rotateMatrix(angle float32, axis [3]float32) Matrix {
	u := normalize3(axis)
	s, c := math.Sincos(float64(angle))
	sf, cf := float32(s), float32(c)
	t := 1 - cf
	x, y, z := u[0], u[1], u[2]
	return Matrix{
		t*x*x + cf, t*x*y - z*sf, t*x*z + y*sf, 0,
		t*x*y + z*sf, t*y*y + cf, t*y*z - x*sf, 0,
		t*x*z - y*sf, t*y*z + x*sf, t*z*z + cf, 0,
		0, 0, 0, 1,
	}
}

func (vm *VM) callMix(resultTag rsl.DispatchTag, dst rsl.Address, args []rsl.Address, storage rsl.ValueStorage, lane int) {
	t := vm.argFloat(args, 2, storage, lane)
	if resultTag.Family() == 0 {
		a := vm.argFloat(args, 0, storage, lane)
		b := vm.argFloat(args, 1, storage, lane)
		vm.setFloat(dst, resultTag, lane, a+(b-a)*t)
		return
	}
	a := vm.readLane(args[0], resultTag, lane)
	b := vm.readLane(args[1], resultTag, lane)
	out := elementwise(a, b, func(x, y float32) float32 { return x + (y-x)*t })
	vm.writeLane(dst, resultTag, lane, out)
}

func (vm *VM) callRandom(resultTag rsl.DispatchTag, dst rsl.Address, lane int) {
	elements := familyElements(resultTag.Family())
	out := make([]float32, elements)
	for i := range out {
		out[i] = vm.RNG.Float32()
	}
	vm.writeLane(dst, resultTag, lane, out)
}

func (vm *VM) callRotate(resultTag rsl.DispatchTag, dst rsl.Address, args []rsl.Address, storage rsl.ValueStorage, lane int) {
	q := vm.argVec3(args, 0, rsl.TypePoint, storage, lane)
	angle := vm.argFloat(args, 1, storage, lane)
	p0 := vm.argVec3(args, 2, rsl.TypePoint, storage, lane)
	p1 := vm.argVec3(args, 3, rsl.TypePoint, storage, lane)
	axis := normalize3(sub3(p1, p0))
	rel := sub3(q, p0)
	m := rotateMatrix(angle, axis)
	rotated := m.TransformVector(rel)
	out := [3]float32{rotated[0] + p0[0], rotated[1] + p0[1], rotated[2] + p0[2]}
	vm.setVec3(dst, rsl.TypePoint, storage, lane, out)
}

func (vm *VM) callTransform(kind rsl.BuiltinKind, resultTag rsl.DispatchTag, dst rsl.Address, args []rsl.Address, storage rsl.ValueStorage, lane int) {
	var m Matrix
	var valueIdx int
	switch len(args) {
	case 2:
		if args[0].Segment() == rsl.SegmentString {
			m = vm.Grid.CoordinateTransform(vm.argString(args, 0))
		} else {
			m = vm.argMatrix(args, 0, rsl.StorageUniform, lane)
		}
		valueIdx = 1
	case 3:
		from := vm.Grid.CoordinateTransform(vm.argString(args, 0))
		to := vm.Grid.CoordinateTransform(vm.argString(args, 1))
		m = to.Multiply(from.Inverse())
		valueIdx = 2
	default:
		return
	}
	t := rsl.TypePoint
	if kind == rsl.BuiltinVtransform {
		t = rsl.TypeVector
	} else if kind == rsl.BuiltinNtransform {
		t = rsl.TypeNormal
	}
	v := vm.argVec3(args, valueIdx, t, storage, lane)
	var out [3]float32
	switch kind {
	case rsl.BuiltinTransform:
		out = m.TransformPoint(v)
	case rsl.BuiltinVtransform:
		out = m.TransformVector(v)
	case rsl.BuiltinNtransform:
		out = m.TransformNormal(v)
	}
	vm.setVec3(dst, t, storage, lane, out)
}

// callAmbient accumulates ambient() into Ci: Ci += Cl*Ol per lane. Oi
// stays caller-owned opacity (ambient does not attenuate it further).
// diffuse/specular/phong, by contrast, return their contribution.
func (vm *VM) callAmbient(args []rsl.Address, storage rsl.ValueStorage, lane int) {
	ci := vm.symbol("Ci")
	if ci == nil {
		return
	}
	cl := vm.argVec3(args, 0, rsl.TypeColor, storage, lane)
	ol := vm.argVec3(args, 1, rsl.TypeColor, storage, lane)
	tag := rsl.NewDispatchTag(rsl.TypeColor, ci.Storage)
	cur := vm.readLane(ci.Address, tag, lane)
	contribution := elementwise(cl[:], ol[:], func(a, b float32) float32 { return a * b })
	vm.writeLane(ci.Address, tag, lane, elementwise(cur, contribution, func(a, b float32) float32 { return a + b }))
}

// diffuse computes max(0, N.L) against the light the enclosing
// illuminance loop most recently set up (vm.activeLight): each call to
// diffuse/specular/phong runs once per light, inside the illuminance
// body, so there is exactly one light in scope per invocation rather than
// a list to sum over.
func (vm *VM) diffuse(n [3]float32) [3]float32 {
	l := vm.activeLight
	if l.Category == LightAmbient {
		return [3]float32{0, 0, 0}
	}
	weight := clamp(dot3(n, normalize3(vm.activeLightDirection())), 0, 1)
	return [3]float32{l.Color[0] * weight, l.Color[1] * weight, l.Color[2] * weight}
}

func (vm *VM) specular(n, v [3]float32, roughness float32) [3]float32 {
	l := vm.activeLight
	if l.Category == LightAmbient {
		return [3]float32{0, 0, 0}
	}
	ld := normalize3(vm.activeLightDirection())
	h := normalize3([3]float32{ld[0] + v[0], ld[1] + v[1], ld[2] + v[2]})
	weight := float32(math.Pow(float64(clamp(dot3(n, h), 0, 1)), float64(1/max32(roughness, 1e-4))))
	return [3]float32{l.Color[0] * weight, l.Color[1] * weight, l.Color[2] * weight}
}

func (vm *VM) phong(n, v [3]float32, size float32) [3]float32 {
	return vm.specular(n, v, 1/max32(size, 1e-4))
}

// activeLightDirection is the direction toward vm.activeLight, without a
// per-lane surface position (illuminate/solar already bake direction or
// position into the Light value at setup time for the uniform case; the
// per-lane point case uses the light's own recorded position as the
// coarser approximation).
func (vm *VM) activeLightDirection() [3]float32 {
	if vm.activeLight.Category == LightSolar {
		return [3]float32{-vm.activeLight.Axis[0], -vm.activeLight.Axis[1], -vm.activeLight.Axis[2]}
	}
	return vm.activeLight.Position
}
