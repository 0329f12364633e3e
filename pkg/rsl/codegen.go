package rsl

import (
	"encoding/binary"
	"math"
)

// jumpFixup is a patch site: the word-address of a jump's distance
// argument, to be overwritten once the jump target is known.
type jumpFixup struct {
	distanceAddr int
}

// loopFrame tracks an enclosing while/for/illuminance loop so that
// break[n]/continue[n] can walk outward to the n-th enclosing loop and
// register a fixup there.
type loopFrame struct {
	begin           int
	continuePC      int
	jumpsToBegin    []jumpFixup
	jumpsToContinue []jumpFixup
	jumpsToEnd      []jumpFixup
}

// CodeGenerator lowers an analyzed syntax tree into byte-code, following
// the three phases: constants, symbol address allocation, and code
// emission. Grounded on reyes/CodeGenerator.{hpp,cpp}: a Jump/Loop fixup
// model, a temporary-register stack, and instruction()/argument() word
// emission, adapted here to Address-typed operands instead of raw
// register indices.
type CodeGenerator struct {
	errs *stageErrors

	constBuf    []byte
	constOffset int
	strings     []string
	stringBase  int

	code CodeWriter

	tempOffset    int
	tempBase      int
	tempHighWater int
	lanesMax      int

	loops []*loopFrame
}

// GenResult is the output of code generation: everything shader.go needs
// to assemble a Shader.
type GenResult struct {
	ConstantBytes     []byte
	Strings           []string
	CodeBytes         []byte
	InitializeAddress int
	ShadeAddress      int
	Symbols           []*Symbol
	GridSize          int
	TemporarySize     int
	StringSize        int
}

// Generate runs all three code-generation phases over a shader's root
// node (already scoped and resolved by Analyze) and returns the compiled
// artifact. lanesMax bounds the grid's SIMD width and sizes every varying
// symbol's storage.
func Generate(root *SyntaxNode, lanesMax int, errs *stageErrors) *GenResult {
	g := &CodeGenerator{errs: errs, lanesMax: lanesMax}

	params := root.Children[0]
	body := root.Children[1]

	gridEnd := root.Scope.Enter(SegmentGrid, 0, lanesMax)
	stringEnd := root.Scope.EnterStrings(0)
	g.tempBase = gridEnd
	g.tempOffset = gridEnd
	g.tempHighWater = gridEnd
	g.stringBase = stringEnd

	g.generateConstants(params)
	g.generateConstants(body)

	var symbols []*Symbol
	for _, sym := range root.Scope.Symbols() {
		if !sym.Address.IsNull() {
			symbols = append(symbols, sym)
		}
	}

	initAddr := g.code.PC()
	g.generateParameterInitializers(params)
	g.code.Emit(OpHalt)

	shadeAddr := g.code.PC()
	g.generateStatementList(body)
	g.code.Emit(OpHalt)

	if g.errs.failed() {
		// Minimal valid program: two HALTs, so a caller that presses on
		// after a reported failure still has something safe to execute.
		g.code = CodeWriter{}
		initAddr = g.code.Emit(OpHalt)
		shadeAddr = g.code.Emit(OpHalt)
	}

	return &GenResult{
		ConstantBytes:     g.constBuf,
		Strings:           g.strings,
		CodeBytes:         g.code.Bytes(),
		InitializeAddress: initAddr,
		ShadeAddress:      shadeAddr,
		Symbols:           symbols,
		GridSize:          g.tempBase,
		TemporarySize:     g.tempHighWater - g.tempBase,
		StringSize:        stringEnd + len(g.strings),
	}
}

// enterScope allocates TEMPORARY-segment addresses for a block's own
// locals: if/while/for/solar/illuminate/illuminance each open a child
// scope during analysis (see resolveControlScope, resolveForStatement,
// resolveSolar, resolveIlluminate, resolveIlluminance) whose symbols
// otherwise never get entered into any segment and keep NullAddress.
// Returns the caller's tempOffset so leaveScope can restore it
// once the block's code has been generated.
func (g *CodeGenerator) enterScope(scope *Scope) int {
	base := g.tempOffset
	end := scope.Enter(SegmentTemporary, g.tempOffset, g.lanesMax)
	g.tempOffset = end
	if end > g.tempHighWater {
		g.tempHighWater = end
	}
	return base
}

func (g *CodeGenerator) leaveScope(scope *Scope, base int) {
	scope.Leave(base)
	g.tempOffset = base
}

// ---- Phase A: constants ----

func (g *CodeGenerator) generateConstants(node *SyntaxNode) {
	if node == nil {
		return
	}
	switch node.Kind {
	case NodeInteger, NodeReal:
		node.Address = g.appendFloatConstant(literalFloat(node.Lexeme))
		return
	case NodeString:
		node.Address = g.appendStringConstant(node.Lexeme)
		return
	case NodeIdentifier:
		if node.Symbol != nil && node.Symbol.Storage == StorageConstant && !node.Symbol.IsFunction() {
			if node.Symbol.Address.IsNull() {
				node.Symbol.Address = g.appendFloatConstant(node.Symbol.Value)
			}
		}
		return
	case NodeTriple, NodeSixteenTuple:
		if node.Storage == StorageConstant {
			values := make([]float32, len(node.Children))
			for i, c := range node.Children {
				g.generateConstants(c)
				values[i] = literalFloat(c.Lexeme)
			}
			node.Address = g.appendVectorConstant(values)
			return
		}
	}
	for _, c := range node.Children {
		g.generateConstants(c)
	}
}

func (g *CodeGenerator) appendFloatConstant(v float32) Address {
	addr := NewAddress(SegmentConstant, g.constOffset)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	g.constBuf = append(g.constBuf, b[:]...)
	g.constOffset += 4
	return addr
}

func (g *CodeGenerator) appendVectorConstant(values []float32) Address {
	addr := NewAddress(SegmentConstant, g.constOffset)
	for _, v := range values {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		g.constBuf = append(g.constBuf, b[:]...)
		g.constOffset += 4
	}
	return addr
}

// appendStringConstant records a string literal in the STRING segment,
// past the range already claimed by string-typed symbols (g.stringBase),
// and returns its address.
func (g *CodeGenerator) appendStringConstant(s string) Address {
	addr := NewAddress(SegmentString, g.stringBase+len(g.strings))
	g.strings = append(g.strings, s)
	return addr
}

// ---- Phase C: code ----

func (g *CodeGenerator) generateParameterInitializers(params *SyntaxNode) {
	for _, decl := range params.Children {
		if decl.Decl.Initializer != nil {
			base := g.tempOffset
			addr := g.lowerExpression(decl.Decl.Initializer)
			g.code.Emit(OpAssign, NewDispatchTag(decl.Decl.Type, decl.Decl.Storage))
			g.code.ArgumentAddress(decl.Symbol.Address)
			g.code.ArgumentAddress(addr)
			g.tempOffset = base
		}
	}
}

func (g *CodeGenerator) generateStatementList(list *SyntaxNode) {
	for _, stmt := range list.Children {
		base := g.tempOffset
		g.generateStatement(stmt)
		g.tempOffset = base
	}
}

func (g *CodeGenerator) generateStatement(node *SyntaxNode) {
	switch node.Kind {
	case NodeList:
		g.generateStatementList(node)
	case NodeIf:
		g.generateIf(node)
	case NodeIfElse:
		g.generateIfElse(node)
	case NodeWhile:
		g.generateWhile(node)
	case NodeFor:
		g.generateFor(node)
	case NodeBreak:
		g.generateBreakContinue(node, true)
	case NodeContinue:
		g.generateBreakContinue(node, false)
	case NodeSolar, NodeIlluminate:
		g.generateLightStatement(node)
	case NodeIlluminance:
		g.generateIlluminance(node)
	case NodeVariable:
		g.generateVariableStatement(node)
	default:
		// A bare expression statement (assignment or call).
		g.lowerExpression(node)
	}
}

func (g *CodeGenerator) generateVariableStatement(node *SyntaxNode) {
	if node.Decl.Initializer == nil {
		return
	}
	base := g.tempOffset
	addr := g.lowerExpression(node.Decl.Initializer)
	g.code.Emit(OpAssign, NewDispatchTag(node.Symbol.Type, node.Symbol.Storage))
	g.code.ArgumentAddress(node.Symbol.Address)
	g.code.ArgumentAddress(addr)
	g.tempOffset = base
}

func (g *CodeGenerator) generateIf(node *SyntaxNode) {
	base := g.enterScope(node.Scope)
	cond := g.lowerExpression(node.Children[0])
	g.code.Emit(OpGenerateMask, NewDispatchTag(TypeInteger, StorageVarying))
	g.code.ArgumentAddress(cond)
	g.generateStatement(node.Children[1])
	g.code.Emit(OpClearMask)
	g.leaveScope(node.Scope, base)
}

func (g *CodeGenerator) generateIfElse(node *SyntaxNode) {
	base := g.enterScope(node.Scope)
	cond := g.lowerExpression(node.Children[0])
	g.code.Emit(OpGenerateMask, NewDispatchTag(TypeInteger, StorageVarying))
	g.code.ArgumentAddress(cond)
	g.generateStatement(node.Children[1])
	g.code.Emit(OpInvertMask)
	g.generateStatement(node.Children[2])
	g.code.Emit(OpClearMask)
	g.leaveScope(node.Scope, base)
}

func (g *CodeGenerator) generateWhile(node *SyntaxNode) {
	base := g.enterScope(node.Scope)
	g.pushLoop(g.code.PC())
	g.markContinue()
	cond := g.lowerExpression(node.Children[0])
	g.code.Emit(OpGenerateMask, NewDispatchTag(TypeInteger, StorageVarying))
	g.code.ArgumentAddress(cond)
	g.code.Emit(OpJumpEmpty)
	emptyDist := g.code.Argument(0)
	g.currentLoop().jumpsToEnd = append(g.currentLoop().jumpsToEnd, jumpFixup{emptyDist})

	g.generateStatement(node.Children[1])
	g.code.Emit(OpClearMask)
	g.emitJumpTo(g.currentLoop().begin)
	g.popLoop()
	g.leaveScope(node.Scope, base)
}

func (g *CodeGenerator) generateFor(node *SyntaxNode) {
	base := g.enterScope(node.Scope)
	g.generateStatement(node.Children[0]) // init
	g.pushLoop(g.code.PC())

	cond := g.lowerExpression(node.Children[1])
	g.code.Emit(OpGenerateMask, NewDispatchTag(TypeInteger, StorageVarying))
	g.code.ArgumentAddress(cond)
	g.code.Emit(OpJumpEmpty)
	emptyDist := g.code.Argument(0)
	g.currentLoop().jumpsToEnd = append(g.currentLoop().jumpsToEnd, jumpFixup{emptyDist})

	g.generateStatement(node.Children[3]) // body
	g.markContinue()
	g.generateStatement(node.Children[2]) // step
	g.code.Emit(OpClearMask)
	g.emitJumpTo(g.currentLoop().begin)
	g.popLoop()
	g.leaveScope(node.Scope, base)
}

func (g *CodeGenerator) generateBreakContinue(node *SyntaxNode, isBreak bool) {
	level := node.Level
	if level < 1 {
		level = 1
	}
	idx := len(g.loops) - level
	if idx < 0 {
		g.errs.report(ErrorCodeGenerationError, node.Line, "break/continue level %d exceeds enclosing loop depth", level)
		return
	}
	loop := g.loops[idx]
	// Taken only when some lane is active under the enclosing masks (e.g.
	// the guarding if's condition); the jump then applies to every lane.
	g.code.Emit(OpJumpNotEmpty)
	dist := g.code.Argument(0)
	if isBreak {
		loop.jumpsToEnd = append(loop.jumpsToEnd, jumpFixup{dist})
	} else {
		loop.jumpsToContinue = append(loop.jumpsToContinue, jumpFixup{dist})
	}
}

func (g *CodeGenerator) generateLightStatement(node *SyntaxNode) {
	base := g.enterScope(node.Scope)
	defer g.leaveScope(node.Scope, base)
	switch node.Instruction {
	case OpSolar:
		g.code.Emit(OpSolar)
	case OpSolarAxisAngle:
		axis := g.lowerExpression(node.Children[0])
		angle := g.lowerExpression(node.Children[1])
		g.code.Emit(OpSolarAxisAngle)
		g.code.ArgumentAddress(axis)
		g.code.ArgumentAddress(angle)
	case OpIlluminate:
		pos := g.lowerExpression(node.Children[0])
		g.code.Emit(OpIlluminate)
		g.code.ArgumentAddress(pos)
	case OpIlluminateAxisAngle:
		pos := g.lowerExpression(node.Children[0])
		axis := g.lowerExpression(node.Children[1])
		angle := g.lowerExpression(node.Children[2])
		g.code.Emit(OpIlluminateAxisAngle)
		g.code.ArgumentAddress(pos)
		g.code.ArgumentAddress(axis)
		g.code.ArgumentAddress(angle)
	}
	g.generateStatement(node.Children[len(node.Children)-1])
}

// generateIlluminance lowers illuminance's light-iteration loop: each
// pass computes the masked direction/angle to the current light source
// using ILLUMINANCE_AXIS_ANGLE, which writes its per-lane lit/unlit flag
// into a dedicated scratch temporary rather than pos, masks the body to
// lit lanes, and jumps back for the next light, with JUMP_ILLUMINANCE
// seeding the end fixup (the VM interprets it as "no more lights" rather
// than an ordinary empty-mask test).
func (g *CodeGenerator) generateIlluminance(node *SyntaxNode) {
	base := g.enterScope(node.Scope)
	defer g.leaveScope(node.Scope, base)
	pos := g.lowerExpression(node.Children[0])
	axis := g.lowerExpression(node.Children[1])
	angle := g.lowerExpression(node.Children[2])
	lit := g.allocateTempSized(TypeFloat, StorageVarying)

	g.pushLoop(g.code.PC())
	g.code.Emit(OpIlluminanceAxisAngle)
	g.code.ArgumentAddress(pos)
	g.code.ArgumentAddress(axis)
	g.code.ArgumentAddress(angle)
	g.code.ArgumentAddress(lit)
	g.code.Emit(OpJumpIlluminance)
	dist := g.code.Argument(0)
	g.currentLoop().jumpsToEnd = append(g.currentLoop().jumpsToEnd, jumpFixup{dist})

	g.code.Emit(OpGenerateMask, NewDispatchTag(TypeInteger, StorageVarying))
	g.code.ArgumentAddress(lit)
	g.generateStatement(node.Children[len(node.Children)-1])
	g.code.Emit(OpClearMask)
	g.markContinue()
	g.emitJumpTo(g.currentLoop().begin)
	g.popLoop()
}

// ---- expression lowering ----

func (g *CodeGenerator) lowerExpression(node *SyntaxNode) Address {
	addr := g.lowerExpressionRaw(node)
	if node.OriginalType != TypeNull && node.OriginalType != node.Type {
		addr = g.emitConvert(addr, node.OriginalType, node.Type, node.Storage)
	}
	if node.OriginalStorage != StorageNull && node.OriginalStorage != node.Storage {
		addr = g.emitPromote(addr, node.Type, node.OriginalStorage, node.Storage)
	}
	return addr
}

func (g *CodeGenerator) emitConvert(src Address, from, to ValueType, storage ValueStorage) Address {
	dst := g.allocateTempSized(to, storage)
	g.code.Emit(OpConvert, NewDispatchTag(from, storage), NewDispatchTag(to, storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(src)
	return dst
}

func (g *CodeGenerator) emitPromote(src Address, t ValueType, from, to ValueStorage) Address {
	dst := g.allocateTempSized(t, to)
	g.code.Emit(OpPromote, NewDispatchTag(t, from), NewDispatchTag(t, to))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(src)
	return dst
}

func (g *CodeGenerator) allocateTempSized(t ValueType, storage ValueStorage) Address {
	addr := NewAddress(SegmentTemporary, g.tempOffset)
	lanes := 1
	if storage == StorageVarying {
		lanes = g.lanesMax
	}
	g.tempOffset += t.Elements() * lanes
	if g.tempOffset > g.tempHighWater {
		g.tempHighWater = g.tempOffset
	}
	return addr
}

func (g *CodeGenerator) lowerExpressionRaw(node *SyntaxNode) Address {
	switch node.Kind {
	case NodeInteger, NodeReal, NodeString:
		return node.Address
	case NodeIdentifier:
		if node.Symbol != nil {
			return node.Symbol.Address
		}
		return NullAddress
	case NodeTriple, NodeSixteenTuple:
		if node.Storage == StorageConstant {
			return node.Address
		}
		return g.lowerConstructor(node)
	case NodeDot, NodeCross, NodeMultiply, NodeAdd, NodeSubtract,
		NodeGreater, NodeGreaterEqual, NodeLess, NodeLessEqual, NodeEqual, NodeNotEqual, NodeAnd, NodeOr:
		return g.lowerBinary(node)
	case NodeDivide:
		return g.lowerBinary(node)
	case NodeNegate:
		return g.lowerNegate(node)
	case NodeTypecast:
		return g.lowerExpression(node.Children[0])
	case NodeTernary:
		return g.lowerTernary(node)
	case NodeAssign, NodeAddAssign, NodeSubtractAssign, NodeMultiplyAssign, NodeDivideAssign:
		return g.lowerAssign(node)
	case NodeCall:
		return g.lowerCall(node)
	case NodeTexture:
		return g.lowerTexture(node)
	case NodeEnvironment:
		return g.lowerEnvironment(node)
	case NodeShadow:
		return g.lowerShadow(node)
	default:
		return g.allocateTempSized(node.Type, node.Storage)
	}
}

// lowerConstructor assembles a triple or sixteentuple directly in the
// node's final type and storage (component i of a varying value starts
// i*lanesMax slots in), promoting non-varying components as it goes, and
// then clears the node's original type/storage so lowerExpression emits no
// further CONVERT/PROMOTE for it.
func (g *CodeGenerator) lowerConstructor(node *SyntaxNode) Address {
	dst := g.allocateTempSized(node.Type, node.Storage)
	stride := 1
	if node.Storage == StorageVarying {
		stride = g.lanesMax
	}
	for i, c := range node.Children {
		src := g.lowerExpression(c)
		if node.Storage == StorageVarying && c.Storage != StorageVarying {
			src = g.emitPromote(src, TypeFloat, c.Storage, StorageVarying)
		}
		component := NewAddress(dst.Segment(), dst.Offset()+i*stride)
		g.code.Emit(OpAssign, NewDispatchTag(TypeFloat, node.Storage))
		g.code.ArgumentAddress(component)
		g.code.ArgumentAddress(src)
	}
	node.OriginalType, node.OriginalStorage = TypeNull, StorageNull
	return dst
}

func (g *CodeGenerator) lowerBinary(node *SyntaxNode) Address {
	lhs := g.lowerExpression(node.Children[0])
	rhs := g.lowerExpression(node.Children[1])
	dst := g.allocateTempSized(node.Type, node.Storage)
	g.code.Emit(node.Instruction,
		NewDispatchTag(node.Type, node.Storage),
		NewDispatchTag(node.Children[0].Type, node.Children[0].Storage),
		NewDispatchTag(node.Children[1].Type, node.Children[1].Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(lhs)
	g.code.ArgumentAddress(rhs)
	return dst
}

func (g *CodeGenerator) lowerNegate(node *SyntaxNode) Address {
	operand := g.lowerExpression(node.Children[0])
	dst := g.allocateTempSized(node.Type, node.Storage)
	g.code.Emit(OpNegate, NewDispatchTag(node.Type, node.Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(operand)
	return dst
}

func (g *CodeGenerator) lowerTernary(node *SyntaxNode) Address {
	cond := g.lowerExpression(node.Children[0])
	dst := g.allocateTempSized(node.Type, node.Storage)

	g.code.Emit(OpGenerateMask, NewDispatchTag(TypeInteger, StorageVarying))
	g.code.ArgumentAddress(cond)
	thenVal := g.lowerExpression(node.Children[1])
	g.code.Emit(OpAssign, NewDispatchTag(node.Type, node.Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(thenVal)
	g.code.Emit(OpInvertMask)
	elseVal := g.lowerExpression(node.Children[2])
	g.code.Emit(OpAssign, NewDispatchTag(node.Type, node.Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(elseVal)
	g.code.Emit(OpClearMask)
	return dst
}

var assignInstrForKind = map[NodeKind]Opcode{
	NodeAssign:         OpAssign,
	NodeAddAssign:      OpAddAssign,
	NodeSubtractAssign: OpSubtractAssign,
	NodeMultiplyAssign: OpMultiplyAssign,
	NodeDivideAssign:   OpDivideAssign,
}

func (g *CodeGenerator) lowerAssign(node *SyntaxNode) Address {
	lhs := node.Children[0]
	rhsAddr := g.lowerExpression(node.Children[1])
	instr := assignInstrForKind[node.Kind]
	if lhs.Type == TypeString {
		instr = OpStringAssign
	}
	g.code.Emit(instr, NewDispatchTag(lhs.Symbol.Type, lhs.Symbol.Storage))
	g.code.ArgumentAddress(lhs.Symbol.Address)
	g.code.ArgumentAddress(rhsAddr)
	return lhs.Symbol.Address
}

func (g *CodeGenerator) lowerCall(node *SyntaxNode) Address {
	argAddrs := make([]Address, len(node.Children))
	for i, c := range node.Children {
		argAddrs[i] = g.lowerExpression(c)
	}
	dst := g.allocateTempSized(node.Type, node.Storage)
	g.code.Emit(OpCall, NewDispatchTag(node.Type, node.Storage))
	g.code.Argument(uint32(node.Symbol.Builtin))
	g.code.Argument(uint32(len(argAddrs)))
	g.code.ArgumentAddress(dst)
	for _, a := range argAddrs {
		g.code.ArgumentAddress(a)
	}
	return dst
}

func (g *CodeGenerator) lowerTexture(node *SyntaxNode) Address {
	name := g.lowerExpression(node.Children[0])
	dst := g.allocateTempSized(node.Type, node.Storage)
	op := OpFloatTexture
	if node.Type.IsVec3() {
		op = OpVec3Texture
	}
	u := g.lowerExpression(node.Children[1])
	v := g.lowerExpression(node.Children[2])
	g.code.Emit(op, NewDispatchTag(node.Type, node.Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(name)
	g.code.ArgumentAddress(u)
	g.code.ArgumentAddress(v)
	return dst
}

func (g *CodeGenerator) lowerEnvironment(node *SyntaxNode) Address {
	name := g.lowerExpression(node.Children[0])
	dir := g.lowerExpression(node.Children[1])
	dst := g.allocateTempSized(node.Type, node.Storage)
	op := OpFloatEnvironment
	if node.Type.IsVec3() {
		op = OpVec3Environment
	}
	g.code.Emit(op, NewDispatchTag(node.Type, node.Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(name)
	g.code.ArgumentAddress(dir)
	return dst
}

func (g *CodeGenerator) lowerShadow(node *SyntaxNode) Address {
	name := g.lowerExpression(node.Children[0])
	pos := g.lowerExpression(node.Children[1])
	dst := g.allocateTempSized(node.Type, node.Storage)
	g.code.Emit(OpShadow, NewDispatchTag(node.Type, node.Storage))
	g.code.ArgumentAddress(dst)
	g.code.ArgumentAddress(name)
	g.code.ArgumentAddress(pos)
	return dst
}

func literalFloat(lexeme string) float32 {
	var v float64
	var sign float64 = 1
	i := 0
	if i < len(lexeme) && lexeme[i] == '-' {
		sign = -1
		i++
	}
	for ; i < len(lexeme) && lexeme[i] >= '0' && lexeme[i] <= '9'; i++ {
		v = v*10 + float64(lexeme[i]-'0')
	}
	if i < len(lexeme) && lexeme[i] == '.' {
		i++
		frac := 0.1
		for ; i < len(lexeme) && lexeme[i] >= '0' && lexeme[i] <= '9'; i++ {
			v += float64(lexeme[i]-'0') * frac
			frac /= 10
		}
	}
	return float32(sign * v)
}

// ---- loop / jump helpers ----

func (g *CodeGenerator) pushLoop(begin int) {
	g.loops = append(g.loops, &loopFrame{begin: begin})
}

func (g *CodeGenerator) currentLoop() *loopFrame {
	return g.loops[len(g.loops)-1]
}

func (g *CodeGenerator) markContinue() {
	g.currentLoop().continuePC = g.code.PC()
}

func (g *CodeGenerator) emitJumpTo(target int) {
	g.code.Emit(OpJump)
	dist := g.code.Argument(0)
	g.code.PatchArgument(dist, uint32(target-(dist+1)))
}

func (g *CodeGenerator) popLoop() {
	loop := g.loops[len(g.loops)-1]
	g.loops = g.loops[:len(g.loops)-1]
	end := g.code.PC()
	for _, j := range loop.jumpsToEnd {
		g.code.PatchArgument(j.distanceAddr, uint32(end-(j.distanceAddr+1)))
	}
	for _, j := range loop.jumpsToContinue {
		g.code.PatchArgument(j.distanceAddr, uint32(loop.continuePC-(j.distanceAddr+1)))
	}
	for _, j := range loop.jumpsToBegin {
		g.code.PatchArgument(j.distanceAddr, uint32(loop.begin-(j.distanceAddr+1)))
	}
}
