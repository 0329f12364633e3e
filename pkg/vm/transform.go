package vm

import "rsl/pkg/rsl"

// execTransform applies a named coordinate-system change to a point,
// vector, normal, color, or matrix operand; the name operand is always
// read as a string (the matrix-valued transform() overload goes through
// CALL, see callTransform). Unknown coordinate system names fall
// back to the identity, per Grid.CoordinateTransform's contract.
func (vm *VM) execTransform(op rsl.Opcode, tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	nameAddr := vm.nextAddr()
	valueAddr := vm.nextAddr()

	resultTag := tags[0]
	name := vm.readString(nameAddr)
	m := vm.Grid.CoordinateTransform(name)

	vm.writeAllLanes(dst, resultTag, func(lane int) []float32 {
		v := vm.readLane(valueAddr, tags[2], lane)
		switch op {
		case rsl.OpTransformPoint:
			out := m.TransformPoint(vec3(v))
			return out[:]
		case rsl.OpTransformVector:
			out := m.TransformVector(vec3(v))
			return out[:]
		case rsl.OpTransformNormal:
			out := m.TransformNormal(vec3(v))
			return out[:]
		case rsl.OpTransformColor:
			return transformColor(m, vec3(v))
		case rsl.OpTransformMatrix:
			out := m.Multiply(matrixFromSlice(v))
			return out[:]
		}
		return v
	})
}

// transformColor applies the upper-left 3x3 of m as a colorspace matrix,
// ignoring translation (colors are not positions).
func transformColor(m Matrix, c [3]float32) []float32 {
	out := make([]float32, 3)
	for r := 0; r < 3; r++ {
		out[r] = m[r*4+0]*c[0] + m[r*4+1]*c[1] + m[r*4+2]*c[2]
	}
	return out
}
