package rsl

import "math"

// stdlibBuilder is the Go counterpart of reyes/AddSymbolHelper: a small
// chained builder that accumulates a []SymbolParameter onto the most
// recently added symbol before publishing it into a Scope. The C++ source
// overloads operator() to get "add symbol" / "add parameter" call syntax
// from one object; Go's lack of operator overloading makes that shape
// unidiomatic, so this builder exposes the same two operations as two
// named methods (fn/param) chained by returning the receiver, which reads
// the same way at the call site while staying ordinary Go.
type stdlibBuilder struct {
	scope *Scope
	sym   *Symbol
}

func newStdlibBuilder(scope *Scope) *stdlibBuilder {
	return &stdlibBuilder{scope: scope}
}

// fn adds a new built-in function symbol and makes it the current target
// for subsequent param calls.
func (b *stdlibBuilder) fn(identifier string, kind BuiltinKind, returnType ValueType, returnStorage ValueStorage) *stdlibBuilder {
	b.sym = b.scope.AddSymbol(identifier)
	b.sym.Type = returnType
	b.sym.Storage = returnStorage
	b.sym.Builtin = kind
	return b
}

// param appends one formal parameter to the symbol most recently created
// by fn.
func (b *stdlibBuilder) param(t ValueType, s ValueStorage) *stdlibBuilder {
	b.sym.Parameters = append(b.sym.Parameters, SymbolParameter{Type: t, Storage: s})
	return b
}

// constant adds a STORAGE_CONSTANT float symbol with a fixed compile-time
// value, e.g. PI.
func (b *stdlibBuilder) constant(identifier string, value float32) *stdlibBuilder {
	sym := b.scope.AddSymbol(identifier)
	sym.Type = TypeFloat
	sym.Storage = StorageConstant
	sym.Value = value
	b.sym = sym
	return b
}

// uniformAndVarying registers the same built-in twice, once with every
// declared parameter uniform and once with every declared parameter
// varying, matching the pattern reyes/AddSymbolHelper.cpp repeats for
// nearly every math intrinsic ("sin" uniform, "sin" varying, ...).
func (b *stdlibBuilder) uniformAndVarying(identifier string, kind BuiltinKind, returnType ValueType, argTypes ...ValueType) *stdlibBuilder {
	b.fn(identifier, kind, returnType, StorageUniform)
	for _, t := range argTypes {
		b.param(t, StorageUniform)
	}
	b.fn(identifier, kind, returnType, StorageVarying)
	for _, t := range argTypes {
		b.param(t, StorageVarying)
	}
	return b
}

// newRootScope builds the default root scope, pre-populated with the RSL
// standard library (grounded on reyes/AddSymbolHelper.cpp's
// add_default_symbols()).
func newRootScope() *Scope {
	root := newScope(nil)
	b := newStdlibBuilder(root)

	b.constant("PI", float32(math.Pi))

	// Trig, in uniform+varying overloads.
	b.uniformAndVarying("radians", BuiltinRadians, TypeFloat, TypeFloat)
	b.uniformAndVarying("degrees", BuiltinDegrees, TypeFloat, TypeFloat)
	b.uniformAndVarying("sin", BuiltinSin, TypeFloat, TypeFloat)
	b.uniformAndVarying("asin", BuiltinAsin, TypeFloat, TypeFloat)
	b.uniformAndVarying("cos", BuiltinCos, TypeFloat, TypeFloat)
	b.uniformAndVarying("acos", BuiltinAcos, TypeFloat, TypeFloat)
	b.uniformAndVarying("tan", BuiltinTan, TypeFloat, TypeFloat)
	b.uniformAndVarying("atan", BuiltinAtan1, TypeFloat, TypeFloat)
	b.uniformAndVarying("atan", BuiltinAtan2, TypeFloat, TypeFloat, TypeFloat)

	// Power / exponential / log family.
	b.uniformAndVarying("pow", BuiltinPow, TypeFloat, TypeFloat, TypeFloat)
	b.uniformAndVarying("exp", BuiltinExp, TypeFloat, TypeFloat)
	b.uniformAndVarying("sqrt", BuiltinSqrt, TypeFloat, TypeFloat)
	b.uniformAndVarying("inversesqrt", BuiltinInverseSqrt, TypeFloat, TypeFloat)
	b.uniformAndVarying("log", BuiltinLog1, TypeFloat, TypeFloat)
	b.uniformAndVarying("log", BuiltinLog2, TypeFloat, TypeFloat, TypeFloat)
	b.uniformAndVarying("mod", BuiltinMod, TypeFloat, TypeFloat, TypeFloat)
	b.uniformAndVarying("abs", BuiltinAbs, TypeFloat, TypeFloat)
	b.uniformAndVarying("sign", BuiltinSign, TypeFloat, TypeFloat)
	b.uniformAndVarying("min", BuiltinMin, TypeFloat, TypeFloat, TypeFloat)
	b.uniformAndVarying("max", BuiltinMax, TypeFloat, TypeFloat, TypeFloat)
	b.uniformAndVarying("clamp", BuiltinClamp, TypeFloat, TypeFloat, TypeFloat, TypeFloat)

	// Interpolation / rounding.
	for _, t := range []ValueType{TypeFloat, TypeColor, TypePoint, TypeVector, TypeNormal} {
		b.uniformAndVarying("mix", BuiltinMix, t, t, t, TypeFloat)
	}
	b.uniformAndVarying("floor", BuiltinFloor, TypeFloat, TypeFloat)
	b.uniformAndVarying("ceil", BuiltinCeil, TypeFloat, TypeFloat)
	b.uniformAndVarying("round", BuiltinRound, TypeFloat, TypeFloat)
	b.uniformAndVarying("step", BuiltinStep, TypeFloat, TypeFloat, TypeFloat)
	b.uniformAndVarying("smoothstep", BuiltinSmoothstep, TypeFloat, TypeFloat, TypeFloat, TypeFloat)

	// Derivatives: Du/Dv/Deriv get one handler per vec3-family type rather
	// than a single float helper with implicit widening. Varying-only:
	// derivatives of a uniform value are zero and not a useful intrinsic
	// to expose.
	for _, t := range []ValueType{TypeFloat, TypeColor, TypePoint, TypeVector, TypeNormal} {
		b.fn("Du", BuiltinDu, t, StorageVarying).param(t, StorageVarying)
		b.fn("Dv", BuiltinDv, t, StorageVarying).param(t, StorageVarying)
		b.fn("Deriv", BuiltinDeriv, t, StorageVarying).param(t, StorageVarying).param(TypeFloat, StorageVarying)
	}

	// random, overloaded on return type.
	b.fn("random", BuiltinRandom, TypeFloat, StorageVarying)
	b.fn("random", BuiltinRandom, TypeColor, StorageVarying)
	b.fn("random", BuiltinRandom, TypePoint, StorageVarying)

	// Geometric intrinsics.
	for _, t := range []ValueType{TypePoint, TypeVector, TypeNormal, TypeColor} {
		for _, st := range []ValueStorage{StorageUniform, StorageVarying} {
			b.fn("xcomp", BuiltinXcomp, TypeFloat, st).param(t, st)
			b.fn("ycomp", BuiltinYcomp, TypeFloat, st).param(t, st)
			b.fn("zcomp", BuiltinZcomp, TypeFloat, st).param(t, st)
			b.fn("setxcomp", BuiltinSetxcomp, TypeNull, st).param(t, st).param(TypeFloat, st)
			b.fn("setycomp", BuiltinSetycomp, TypeNull, st).param(t, st).param(TypeFloat, st)
			b.fn("setzcomp", BuiltinSetzcomp, TypeNull, st).param(t, st).param(TypeFloat, st)
		}
	}
	for _, t := range []ValueType{TypePoint, TypeVector, TypeNormal} {
		b.uniformAndVarying("length", BuiltinLength, TypeFloat, t)
		b.uniformAndVarying("normalize", BuiltinNormalize, t, t)
	}
	b.uniformAndVarying("distance", BuiltinDistance, TypeFloat, TypePoint, TypePoint)
	b.uniformAndVarying("rotate", BuiltinRotateVec, TypePoint, TypePoint, TypeFloat, TypePoint, TypePoint)
	b.fn("area", BuiltinArea, TypeFloat, StorageVarying).param(TypePoint, StorageVarying)
	b.uniformAndVarying("faceforward", BuiltinFaceforward, TypeNormal, TypeNormal, TypeVector)
	b.uniformAndVarying("reflect", BuiltinReflect, TypeVector, TypeVector, TypeNormal)
	b.fn("refract", BuiltinRefract, TypeVector, StorageVarying).
		param(TypeVector, StorageVarying).param(TypeNormal, StorageVarying).param(TypeFloat, StorageVarying)
	b.fn("fresnel", BuiltinFresnel, TypeNull, StorageVarying).
		param(TypeVector, StorageVarying).param(TypeNormal, StorageVarying).param(TypeFloat, StorageVarying)

	// Coordinate-space transforms, by named space or by matrix, with or
	// without an explicit from-space.
	for _, kind := range []struct {
		name string
		bk   BuiltinKind
		t    ValueType
	}{{"transform", BuiltinTransform, TypePoint}, {"vtransform", BuiltinVtransform, TypeVector}, {"ntransform", BuiltinNtransform, TypeNormal}} {
		b.fn(kind.name, kind.bk, kind.t, StorageVarying).param(TypeString, StorageUniform).param(kind.t, StorageVarying)
		b.fn(kind.name, kind.bk, kind.t, StorageVarying).param(TypeString, StorageUniform).param(TypeString, StorageUniform).param(kind.t, StorageVarying)
		b.fn(kind.name, kind.bk, kind.t, StorageVarying).param(TypeMatrix, StorageUniform).param(kind.t, StorageVarying)
	}

	// Color helpers.
	b.uniformAndVarying("comp", BuiltinComp, TypeFloat, TypeColor, TypeFloat)
	b.fn("setcomp", BuiltinSetcomp, TypeNull, StorageVarying).
		param(TypeColor, StorageVarying).param(TypeFloat, StorageVarying).param(TypeFloat, StorageVarying)
	b.fn("ctransform", BuiltinCtransform, TypeColor, StorageVarying).param(TypeString, StorageUniform).param(TypeColor, StorageVarying)

	// Matrix helpers.
	b.fn("determinant", BuiltinDeterminant, TypeFloat, StorageVarying).param(TypeMatrix, StorageVarying)
	b.fn("translate", BuiltinTranslateMat, TypeMatrix, StorageVarying).param(TypeMatrix, StorageVarying).param(TypeVector, StorageVarying)
	b.fn("rotate", BuiltinRotateMat, TypeMatrix, StorageVarying).
		param(TypeMatrix, StorageVarying).param(TypeFloat, StorageVarying).param(TypeVector, StorageVarying)
	b.fn("scale", BuiltinScaleMat, TypeMatrix, StorageVarying).param(TypeMatrix, StorageVarying).param(TypeVector, StorageVarying)

	// Lighting intrinsics.
	b.fn("ambient", BuiltinAmbient, TypeNull, StorageVarying).param(TypeColor, StorageVarying).param(TypeColor, StorageVarying)
	b.fn("diffuse", BuiltinDiffuse, TypeColor, StorageVarying).param(TypeNormal, StorageVarying)
	b.fn("specular", BuiltinSpecular, TypeColor, StorageVarying).
		param(TypeNormal, StorageVarying).param(TypeVector, StorageVarying).param(TypeFloat, StorageVarying)
	b.fn("specularbrdf", BuiltinSpecularBRDF, TypeColor, StorageVarying).
		param(TypeVector, StorageVarying).param(TypeNormal, StorageVarying).param(TypeVector, StorageVarying).param(TypeFloat, StorageVarying)
	b.fn("phong", BuiltinPhong, TypeColor, StorageVarying).
		param(TypeNormal, StorageVarying).param(TypeVector, StorageVarying).param(TypeFloat, StorageVarying)
	b.fn("trace", BuiltinTrace, TypeFloat, StorageVarying).param(TypePoint, StorageVarying).param(TypeVector, StorageVarying)

	return root
}
