package rsl

// SymbolParameter is the declared (type, storage) of one formal parameter,
// used both for overload resolution and for argument conversion/promotion.
type SymbolParameter struct {
	Type    ValueType
	Storage ValueStorage
}

// Matches reports whether an argument of the given type and storage may be
// passed for this parameter: point/vector/normal accept each other, float
// widens to any of the wider vec3/matrix types, and storage matches when
// the argument's storage is no more specific than the parameter's and is
// not null.
func (p SymbolParameter) Matches(argType ValueType, argStorage ValueStorage) bool {
	if argStorage == StorageNull {
		return false
	}
	typeOK := argType == p.Type ||
		(pointFamily(p.Type) && pointFamily(argType)) ||
		(argType == TypeFloat && p.Type != TypeString && p.Type != TypeInteger)
	if !typeOK {
		return false
	}
	return argStorage <= p.Storage
}

// BuiltinKind is a capability tag identifying which host-side handler a
// built-in function symbol dispatches to at CALL time. Per the Design
// Notes, the VM matches on this enum (plus the symbol's declared
// type/storage, which distinguishes the uniform and varying overloads of
// e.g. "sin") rather than on a bare function pointer, so the front end
// never holds executable code.
type BuiltinKind int

const (
	BuiltinNone BuiltinKind = iota
	BuiltinRadians
	BuiltinDegrees
	BuiltinSin
	BuiltinAsin
	BuiltinCos
	BuiltinAcos
	BuiltinTan
	BuiltinAtan1 // atan(y)
	BuiltinAtan2   // atan(y, x)
	BuiltinPow
	BuiltinExp
	BuiltinSqrt
	BuiltinInverseSqrt
	BuiltinLog1
	BuiltinLog2
	BuiltinMod
	BuiltinAbs
	BuiltinSign
	BuiltinMin
	BuiltinMax
	BuiltinClamp
	BuiltinMix
	BuiltinFloor
	BuiltinCeil
	BuiltinRound
	BuiltinStep
	BuiltinSmoothstep
	BuiltinDu
	BuiltinDv
	BuiltinDeriv
	BuiltinRandom
	BuiltinXcomp
	BuiltinYcomp
	BuiltinZcomp
	BuiltinSetxcomp
	BuiltinSetycomp
	BuiltinSetzcomp
	BuiltinLength
	BuiltinNormalize
	BuiltinDistance
	BuiltinRotateVec
	BuiltinArea
	BuiltinFaceforward
	BuiltinReflect
	BuiltinRefract
	BuiltinFresnel
	BuiltinTransform
	BuiltinVtransform
	BuiltinNtransform
	BuiltinComp
	BuiltinSetcomp
	BuiltinCtransform
	BuiltinDeterminant
	BuiltinTranslateMat
	BuiltinRotateMat
	BuiltinScaleMat
	BuiltinAmbient
	BuiltinDiffuse
	BuiltinSpecular
	BuiltinSpecularBRDF
	BuiltinPhong
	BuiltinTrace
)

// Symbol is a named entity recognized during compilation: a variable, a
// shader parameter, or a built-in function. A symbol is a function iff
// Builtin is non-zero; Parameters is then the ordered list used for
// overload matching.
type Symbol struct {
	Identifier string
	Type       ValueType
	Storage    ValueStorage
	Elements   int // array length; 1 for scalars
	Address    Address
	Value      float32 // compile-time value for STORAGE_CONSTANT scalar symbols (e.g. PI)

	Builtin    BuiltinKind
	Parameters []SymbolParameter

	// Index is the position of this symbol within the owning Scope's
	// ordered symbol list. CALL does not use it: its first operand is the
	// built-in's BuiltinKind.
	Index int
}

// IsFunction reports whether this symbol denotes a built-in function.
func (s *Symbol) IsFunction() bool {
	return s.Builtin != BuiltinNone
}

// SizeByTypeAndStorage returns the number of float32 slots this symbol
// occupies when entered into the GRID or TEMPORARY segment: lanes*elements
// for varying values, elements for uniform. GRID and TEMPORARY are live
// register files addressed by float-element index rather than by byte
// offset; only the CONSTANT segment's literal pool is byte-serialized.
func (s *Symbol) SizeByTypeAndStorage(lanes int) int {
	size := s.Type.Elements() * max(s.Elements, 1)
	if s.Storage == StorageVarying {
		return size * lanes
	}
	return size
}

// MatchesReturn reports whether this symbol may serve as the resolution for
// a call site expecting the given return type/storage. A null expected
// type matches anything; otherwise the types must be equal. Storage
// matches when the expectation is null, equal, or the expected type is
// null (a naked call used only for its side effects).
func (s *Symbol) MatchesReturn(expectedType ValueType, expectedStorage ValueStorage) bool {
	if expectedType != TypeNull && expectedType != s.Type {
		return false
	}
	if expectedStorage == StorageNull || expectedStorage == s.Storage || expectedType == TypeNull {
		return true
	}
	return false
}
