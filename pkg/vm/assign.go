package vm

import "rsl/pkg/rsl"

// execAssign handles ASSIGN and the four compound-assign opcodes. Writes
// are masked: lanes the active mask has deselected are left bit-identical.
func (vm *VM) execAssign(op rsl.Opcode, tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	src := vm.nextAddr()
	tag := tags[0]

	vm.writeAllLanes(dst, tag, func(lane int) []float32 {
		rhs := vm.readLane(src, tag, lane)
		if op == rsl.OpAssign {
			return rhs
		}
		lhs := vm.readLane(dst, tag, lane)
		switch op {
		case rsl.OpAddAssign:
			return elementwise(lhs, rhs, func(a, b float32) float32 { return a + b })
		case rsl.OpSubtractAssign:
			return elementwise(lhs, rhs, func(a, b float32) float32 { return a - b })
		case rsl.OpMultiplyAssign:
			return elementwise(lhs, rhs, func(a, b float32) float32 { return a * b })
		case rsl.OpDivideAssign:
			return elementwise(lhs, rhs, func(a, b float32) float32 {
				if b == 0 {
					return 0
				}
				return a / b
			})
		}
		return rhs
	})
}

// execStringAssign copies a STRING-segment index from src to dst. String
// values are not laned: every shader string is uniform.
func (vm *VM) execStringAssign() {
	dst := vm.nextAddr()
	src := vm.nextAddr()
	vm.writeString(dst, vm.readString(src))
}
