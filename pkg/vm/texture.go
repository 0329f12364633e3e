package vm

import "rsl/pkg/rsl"

// execTexture handles FLOAT_TEXTURE and VEC3_TEXTURE: dst, name, u, v.
func (vm *VM) execTexture(op rsl.Opcode, tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	nameAddr := vm.nextAddr()
	uAddr := vm.nextAddr()
	vAddr := vm.nextAddr()

	resultTag := tags[0]
	name := vm.readString(nameAddr)

	vm.writeAllLanes(dst, resultTag, func(lane int) []float32 {
		u := vm.readLane(uAddr, rsl.NewDispatchTag(rsl.TypeFloat, rsl.StorageVarying), lane)[0]
		v := vm.readLane(vAddr, rsl.NewDispatchTag(rsl.TypeFloat, rsl.StorageVarying), lane)[0]
		if op == rsl.OpFloatTexture {
			return []float32{vm.Grid.FloatTexture(name, u, v)}
		}
		out := vm.Grid.Vec3Texture(name, u, v)
		return out[:]
	})
}

// execEnvironment handles FLOAT_ENVIRONMENT and VEC3_ENVIRONMENT: dst,
// name, direction.
func (vm *VM) execEnvironment(op rsl.Opcode, tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	nameAddr := vm.nextAddr()
	dirAddr := vm.nextAddr()

	resultTag := tags[0]
	name := vm.readString(nameAddr)

	vm.writeAllLanes(dst, resultTag, func(lane int) []float32 {
		dir := vec3(vm.readLane(dirAddr, rsl.NewDispatchTag(rsl.TypeVector, rsl.StorageVarying), lane))
		if op == rsl.OpFloatEnvironment {
			return []float32{vm.Grid.FloatEnvironment(name, dir)}
		}
		out := vm.Grid.Vec3Environment(name, dir)
		return out[:]
	})
}

// execShadow handles SHADOW: dst, name, position.
func (vm *VM) execShadow(tags [3]rsl.DispatchTag) {
	dst := vm.nextAddr()
	nameAddr := vm.nextAddr()
	posAddr := vm.nextAddr()

	resultTag := tags[0]
	name := vm.readString(nameAddr)

	vm.writeAllLanes(dst, resultTag, func(lane int) []float32 {
		pos := vec3(vm.readLane(posAddr, rsl.NewDispatchTag(rsl.TypePoint, rsl.StorageVarying), lane))
		return []float32{vm.Grid.Shadow(name, pos)}
	})
}
