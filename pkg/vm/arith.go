package vm

import (
	"rsl/pkg/rsl"
)

// execBinary reads dst/lhs/rhs addresses, applies op component-wise per
// lane (DOT reduces to a scalar; CROSS and color/vec3 arithmetic stay
// vec3), and writes the result under the active mask.
func (vm *VM) execBinary(op rsl.Opcode, tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	lhsAddr := vm.nextAddr()
	rhsAddr := vm.nextAddr()

	resultTag, lhsTag, rhsTag := tags[0], tags[1], tags[2]

	vm.writeAllLanes(dst, resultTag, func(lane int) []float32 {
		lhs := vm.readLane(lhsAddr, lhsTag, lane)
		rhs := vm.readLane(rhsAddr, rhsTag, lane)
		return binaryOp(op, lhs, rhs, resultTag.Family(), rhsTag.Family())
	})
}

func binaryOp(op rsl.Opcode, lhs, rhs []float32, resultFamily, rhsFamily uint8) []float32 {
	switch op {
	case rsl.OpDot:
		var sum float32
		n := len(lhs)
		if len(rhs) < n {
			n = len(rhs)
		}
		for i := 0; i < n; i++ {
			sum += lhs[i] * rhs[i]
		}
		return []float32{sum}

	case rsl.OpCross:
		return []float32{
			lhs[1]*rhs[2] - lhs[2]*rhs[1],
			lhs[2]*rhs[0] - lhs[0]*rhs[2],
			lhs[0]*rhs[1] - lhs[1]*rhs[0],
		}

	case rsl.OpMultiply:
		return elementwise(lhs, rhs, func(a, b float32) float32 { return a * b })

	case rsl.OpDivide:
		if resultFamily == 15 && rhsFamily == 15 {
			m := matrixFromSlice(lhs).Multiply(matrixFromSlice(rhs).Inverse())
			return m[:]
		}
		return elementwise(lhs, rhs, func(a, b float32) float32 {
			if b == 0 {
				return 0
			}
			return a / b
		})

	case rsl.OpAdd:
		if resultFamily == 15 {
			return elementwise(lhs, rhs, func(a, b float32) float32 { return a + b })
		}
		return elementwise(lhs, rhs, func(a, b float32) float32 { return a + b })

	case rsl.OpSubtract:
		return elementwise(lhs, rhs, func(a, b float32) float32 { return a - b })

	case rsl.OpGreater:
		return boolResult(compareAll(lhs, rhs, func(a, b float32) bool { return a > b }))
	case rsl.OpGreaterEqual:
		return boolResult(compareAll(lhs, rhs, func(a, b float32) bool { return a >= b }))
	case rsl.OpLess:
		return boolResult(compareAll(lhs, rhs, func(a, b float32) bool { return a < b }))
	case rsl.OpLessEqual:
		return boolResult(compareAll(lhs, rhs, func(a, b float32) bool { return a <= b }))
	case rsl.OpEqual:
		return boolResult(compareAll(lhs, rhs, func(a, b float32) bool { return a == b }))
	case rsl.OpNotEqual:
		return boolResult(!compareAll(lhs, rhs, func(a, b float32) bool { return a == b }))
	case rsl.OpAnd:
		return boolResult(lhs[0] != 0 && rhs[0] != 0)
	case rsl.OpOr:
		return boolResult(lhs[0] != 0 || rhs[0] != 0)
	}
	return lhs
}

func elementwise(lhs, rhs []float32, f func(a, b float32) float32) []float32 {
	n := len(lhs)
	if len(rhs) > n {
		n = len(rhs)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		a := lhs[i%len(lhs)]
		b := rhs[i%len(rhs)]
		out[i] = f(a, b)
	}
	return out
}

func compareAll(lhs, rhs []float32, f func(a, b float32) bool) bool {
	n := len(lhs)
	if len(rhs) > n {
		n = len(rhs)
	}
	for i := 0; i < n; i++ {
		if !f(lhs[i%len(lhs)], rhs[i%len(rhs)]) {
			return false
		}
	}
	return true
}

func boolResult(b bool) []float32 {
	if b {
		return []float32{1}
	}
	return []float32{0}
}

func matrixFromSlice(v []float32) Matrix {
	var m Matrix
	copy(m[:], v)
	return m
}

func (vm *VM) execNegate(tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	src := vm.nextAddr()
	tag := tags[0]
	vm.writeAllLanes(dst, tag, func(lane int) []float32 {
		v := vm.readLane(src, tag, lane)
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = -x
		}
		return out
	})
}

// execConvert broadcasts a narrower value to a wider type: a float widens
// to every component of a vec3 or becomes the diagonal of a matrix.
// Integer and float share one scalar slot, so conversions between them,
// like other same-family conversions, pass the value through unchanged.
func (vm *VM) execConvert(tags [3]rsl.DispatchTag) {
	fromTag, toTag := tags[0], tags[1]
	dst := vm.nextAddr()
	src := vm.nextAddr()
	vm.writeAllLanes(dst, toTag, func(lane int) []float32 {
		v := vm.readLane(src, fromTag, lane)
		toElements := familyElements(toTag.Family())
		if len(v) == toElements {
			return v
		}
		out := make([]float32, toElements)
		if len(v) == 1 {
			if toElements == 16 {
				m := IdentityMatrix
				for i := 0; i < 4; i++ {
					m[i*4+i] = v[0]
				}
				return m[:]
			}
			for i := range out {
				out[i] = v[0]
			}
			return out
		}
		copy(out, v)
		return out
	})
}

// execPromote copies a uniform value to every lane of its varying
// counterpart; the reverse (varying to uniform) only ever runs on
// compile-time-constant subexpressions, so it is handled the same way,
// broadcasting from lane 0.
func (vm *VM) execPromote(tags [3]rsl.DispatchTag) {
	fromTag, toTag := tags[0], tags[1]
	dst := vm.nextAddr()
	src := vm.nextAddr()
	elements := familyElements(toTag.Family())
	srcLanes := vm.lanesFor(fromTag)
	srcFull := vm.readFloats(src, fromTag, elements, srcLanes)
	vm.writeAllLanes(dst, toTag, func(lane int) []float32 {
		out := make([]float32, elements)
		for c := 0; c < elements; c++ {
			s := lane
			if srcLanes == 1 {
				s = 0
			}
			out[c] = srcFull[c*srcLanes+s]
		}
		return out
	})
}
