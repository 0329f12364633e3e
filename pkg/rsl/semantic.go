package rsl

// opResultRow is one row of a permitted-operator table: for a given
// operator, which (lhs, rhs) type pairs are allowed and what (result
// type, instruction) they produce.
type opResultRow struct {
	lhs, rhs    ValueType
	result      ValueType
	instruction Opcode
}

// binaryOpTable maps each binary-operator node kind to its permitted rows.
// Grounded on reyes's OperationMetadata arrays (CodeGenerator.cpp /
// SemanticAnalyzer.cpp), narrowed to the vec3 families this front end
// exposes.
var binaryOpTable = map[NodeKind][]opResultRow{
	NodeDot: {
		{TypeColor, TypeColor, TypeFloat, OpDot},
		{TypePoint, TypePoint, TypeFloat, OpDot},
		{TypeVector, TypeVector, TypeFloat, OpDot},
		{TypeNormal, TypeNormal, TypeFloat, OpDot},
	},
	NodeCross: {
		{TypeVector, TypeVector, TypeVector, OpCross},
		{TypePoint, TypePoint, TypeVector, OpCross},
		{TypeNormal, TypeNormal, TypeVector, OpCross},
	},
	NodeMultiply: {
		{TypeFloat, TypeFloat, TypeFloat, OpMultiply},
		{TypeColor, TypeColor, TypeColor, OpMultiply},
		{TypeColor, TypeFloat, TypeColor, OpMultiply},
		{TypeFloat, TypeColor, TypeColor, OpMultiply},
		{TypePoint, TypePoint, TypePoint, OpMultiply},
		{TypeVector, TypeVector, TypeVector, OpMultiply},
		{TypeNormal, TypeNormal, TypeNormal, OpMultiply},
		{TypePoint, TypeFloat, TypePoint, OpMultiply},
		{TypeFloat, TypePoint, TypePoint, OpMultiply},
		{TypeVector, TypeFloat, TypeVector, OpMultiply},
		{TypeFloat, TypeVector, TypeVector, OpMultiply},
		{TypeNormal, TypeFloat, TypeNormal, OpMultiply},
		{TypeFloat, TypeNormal, TypeNormal, OpMultiply},
		{TypeMatrix, TypeMatrix, TypeMatrix, OpMultiply},
		{TypePoint, TypeMatrix, TypePoint, OpMultiply},
	},
	NodeDivide: {
		{TypeFloat, TypeFloat, TypeFloat, OpDivide},
		{TypeColor, TypeFloat, TypeColor, OpDivide},
		{TypePoint, TypeFloat, TypePoint, OpDivide},
		{TypeVector, TypeFloat, TypeVector, OpDivide},
		{TypeNormal, TypeFloat, TypeNormal, OpDivide},
		{TypeMatrix, TypeFloat, TypeMatrix, OpDivide},
		{TypeMatrix, TypeMatrix, TypeMatrix, OpDivide},
	},
	NodeAdd: {
		{TypeFloat, TypeFloat, TypeFloat, OpAdd},
		{TypeColor, TypeColor, TypeColor, OpAdd},
		{TypePoint, TypePoint, TypePoint, OpAdd},
		{TypeVector, TypeVector, TypeVector, OpAdd},
		{TypeNormal, TypeNormal, TypeNormal, OpAdd},
		{TypePoint, TypeVector, TypePoint, OpAdd},
		{TypeVector, TypePoint, TypePoint, OpAdd},
	},
	NodeSubtract: {
		{TypeFloat, TypeFloat, TypeFloat, OpSubtract},
		{TypeColor, TypeColor, TypeColor, OpSubtract},
		{TypePoint, TypePoint, TypeVector, OpSubtract},
		{TypePoint, TypeVector, TypePoint, OpSubtract},
		{TypeVector, TypeVector, TypeVector, OpSubtract},
		{TypeNormal, TypeNormal, TypeNormal, OpSubtract},
	},
}

var compareOpInstr = map[NodeKind]Opcode{
	NodeGreater: OpGreater, NodeGreaterEqual: OpGreaterEqual,
	NodeLess: OpLess, NodeLessEqual: OpLessEqual,
}
var equalityOpInstr = map[NodeKind]Opcode{NodeEqual: OpEqual, NodeNotEqual: OpNotEqual}
var booleanOpInstr = map[NodeKind]Opcode{NodeAnd: OpAnd, NodeOr: OpOr}

// Analyzer is the two-pass (expectation, then resolution) semantic
// analyzer that walks a parsed shader tree and annotates every node with
// its resolved type, storage, and instruction.
type Analyzer struct {
	root        *Scope
	errs        *stageErrors
	ambientLight bool
}

func newAnalyzer(root *Scope, errs *stageErrors) *Analyzer {
	return &Analyzer{root: root, errs: errs}
}

func (a *Analyzer) errorf(line int, format string, args ...any) {
	a.errs.report(ErrorSemanticError, line, format, args...)
}

// Analyze runs the expectation pass then the resolution pass over a shader
// root node, injecting implicit ambient(Cl, Ol) into light shaders whose
// body never calls solar/illuminate.
func Analyze(root *SyntaxNode, rootScope *Scope, errs *stageErrors) {
	a := newAnalyzer(rootScope, errs)
	shaderScope := newScope(rootScope)
	injectGlobals(shaderScope, root.ShaderKind)
	root.Scope = shaderScope

	params, body := root.Children[0], root.Children[1]

	if root.ShaderKind == ShaderLight {
		a.checkAmbientLight(body)
		if body.CountByKind(NodeSolar) == 0 && body.CountByKind(NodeIlluminate) == 0 {
			body.Children = append(body.Children, implicitAmbientCall(root.Line))
		}
	}

	a.expectStatementList(shaderScope, params)
	a.resolveStatementList(shaderScope, params)
	a.expectStatementList(shaderScope, body)
	a.resolveStatementList(shaderScope, body)
}

// injectGlobals declares the implicit per-shader-kind global variables
// (Cs/Os/P/N/Ci/Oi for surface, Cl/Ol/L/Ps for light, and so on) into the
// shader's own scope so ordinary identifier lookup finds them.
func injectGlobals(scope *Scope, kind ShaderKind) {
	declare := func(name string, t ValueType, storage ValueStorage) {
		sym := scope.AddSymbol(name)
		sym.Type = t
		sym.Storage = storage
	}
	// Surface-position geometry, visible to every shader kind.
	declare("P", TypePoint, StorageVarying)
	declare("N", TypeNormal, StorageVarying)
	declare("Ng", TypeNormal, StorageVarying)
	declare("I", TypeVector, StorageVarying)
	declare("u", TypeFloat, StorageVarying)
	declare("v", TypeFloat, StorageVarying)
	declare("du", TypeFloat, StorageUniform)
	declare("dv", TypeFloat, StorageUniform)
	declare("E", TypePoint, StorageVarying)

	switch kind {
	case ShaderSurface, ShaderLight, ShaderVolume:
		declare("Cs", TypeColor, StorageVarying)
		declare("Os", TypeColor, StorageVarying)
		declare("Ci", TypeColor, StorageVarying)
		declare("Oi", TypeColor, StorageVarying)
	}
	if kind == ShaderLight {
		declare("Cl", TypeColor, StorageVarying)
		declare("Ol", TypeColor, StorageVarying)
		declare("L", TypeVector, StorageVarying)
		declare("Ps", TypePoint, StorageVarying)
	}
	if kind == ShaderDisplacement {
		declare("Cs", TypeColor, StorageVarying)
		declare("Os", TypeColor, StorageVarying)
	}
}

func implicitAmbientCall(line int) *SyntaxNode {
	call := newNode(NodeCall, line)
	call.Lexeme = "ambient"
	cl := newNode(NodeIdentifier, line)
	cl.Lexeme = "Cl"
	ol := newNode(NodeIdentifier, line)
	ol.Lexeme = "Ol"
	call.addChild(cl)
	call.addChild(ol)
	return call
}

// checkAmbientLight enforces the ambient-light rule: if a light shader
// assigns Cl/Ol at global scope, neither solar nor illuminate may appear
// anywhere in the body.
func (a *Analyzer) checkAmbientLight(body *SyntaxNode) {
	assignsAmbient := false
	for _, stmt := range body.Children {
		if stmt.Kind == NodeAssign || stmt.Kind == NodeAddAssign || stmt.Kind == NodeSubtractAssign ||
			stmt.Kind == NodeMultiplyAssign || stmt.Kind == NodeDivideAssign {
			if len(stmt.Children) > 0 && stmt.Children[0].Kind == NodeIdentifier {
				name := stmt.Children[0].Lexeme
				if name == "Cl" || name == "Ol" {
					assignsAmbient = true
				}
			}
		}
	}
	if assignsAmbient && (body.CountByKind(NodeSolar) > 0 || body.CountByKind(NodeIlluminate) > 0) {
		a.errorf(body.Line, "a light shader that assigns Cl/Ol at global scope may not also use solar or illuminate")
	}
}

// ---- Expectation pass (pre-order) ----

func (a *Analyzer) expectStatementList(scope *Scope, list *SyntaxNode) {
	for _, stmt := range list.Children {
		a.expect(scope, stmt, TypeNull, StorageNull)
	}
}

func (a *Analyzer) expect(scope *Scope, node *SyntaxNode, expectedType ValueType, expectedStorage ValueStorage) {
	if node == nil {
		return
	}
	node.ExpectedType = expectedType
	node.ExpectedStorage = expectedStorage

	switch node.Kind {
	case NodeAssign, NodeAddAssign, NodeSubtractAssign, NodeMultiplyAssign, NodeDivideAssign:
		lhs := node.Children[0]
		a.expect(scope, lhs, TypeNull, StorageNull)
		sym := scope.FindSymbol(lhs.Lexeme)
		if sym != nil {
			a.expect(scope, node.Children[1], sym.Type, sym.Storage)
		} else {
			a.expect(scope, node.Children[1], TypeNull, StorageNull)
		}
	case NodeTypecast:
		for _, c := range node.Children {
			a.expect(scope, c, node.Type, expectedStorage)
		}
	case NodeDot, NodeCross, NodeMultiply, NodeDivide, NodeAdd, NodeSubtract,
		NodeGreater, NodeGreaterEqual, NodeLess, NodeLessEqual, NodeEqual, NodeNotEqual, NodeAnd, NodeOr:
		for _, c := range node.Children {
			a.expect(scope, c, TypeNull, expectedStorage)
		}
	case NodeNegate:
		a.expect(scope, node.Children[0], expectedType, expectedStorage)
	case NodeTernary:
		a.expect(scope, node.Children[0], TypeInteger, StorageNull)
		a.expect(scope, node.Children[1], TypeNull, expectedStorage)
		a.expect(scope, node.Children[2], TypeNull, expectedStorage)
	case NodeVariable:
		if node.Decl.Initializer != nil {
			a.expect(scope, node.Decl.Initializer, node.Decl.Type, node.Decl.Storage)
		}
	case NodeIf, NodeWhile:
		a.expect(scope, node.Children[0], TypeInteger, StorageVarying)
		a.expect(scope, node.Children[1], TypeNull, StorageNull)
	case NodeIfElse:
		a.expect(scope, node.Children[0], TypeInteger, StorageVarying)
		a.expect(scope, node.Children[1], TypeNull, StorageNull)
		a.expect(scope, node.Children[2], TypeNull, StorageNull)
	case NodeFor:
		a.expect(scope, node.Children[0], TypeNull, StorageNull)
		a.expect(scope, node.Children[1], TypeInteger, StorageVarying)
		a.expect(scope, node.Children[2], TypeNull, StorageNull)
		a.expect(scope, node.Children[3], TypeNull, StorageNull)
	case NodeList:
		for _, c := range node.Children {
			a.expect(scope, c, TypeNull, StorageNull)
		}
	case NodeCall:
		for _, c := range node.Children {
			a.expect(scope, c, TypeNull, StorageNull)
		}
	case NodeSolar, NodeIlluminate, NodeIlluminance:
		for _, c := range node.Children {
			a.expect(scope, c, TypeNull, StorageNull)
		}
	case NodeTexture, NodeEnvironment, NodeShadow:
		for _, c := range node.Children {
			a.expect(scope, c, TypeNull, StorageNull)
		}
	case NodeTriple:
		for _, c := range node.Children {
			a.expect(scope, c, TypeFloat, StorageNull)
		}
	case NodeSixteenTuple:
		for _, c := range node.Children {
			a.expect(scope, c, TypeFloat, StorageNull)
		}
	}
}

// ---- Resolution pass (post-order) ----

func (a *Analyzer) resolveStatementList(scope *Scope, list *SyntaxNode) {
	for _, stmt := range list.Children {
		a.resolve(scope, stmt)
	}
	list.Type, list.Storage = TypeNull, StorageNull
}

func (a *Analyzer) resolve(scope *Scope, node *SyntaxNode) {
	if node == nil {
		return
	}
	switch node.Kind {
	case NodeList:
		a.resolveStatementList(scope, node)
	case NodeIdentifier:
		a.resolveIdentifier(scope, node)
	case NodeInteger:
		node.Type, node.Storage = TypeFloat, StorageConstant
	case NodeReal:
		node.Type, node.Storage = TypeFloat, StorageConstant
	case NodeString:
		node.Type, node.Storage = TypeString, StorageConstant
	case NodeTriple:
		a.resolveChildren(scope, node)
		node.Type, node.Storage = TypeVector, a.maxChildStorage(node)
	case NodeSixteenTuple:
		a.resolveChildren(scope, node)
		node.Type, node.Storage = TypeMatrix, a.maxChildStorage(node)
	case NodeDot, NodeCross, NodeMultiply, NodeAdd, NodeSubtract:
		a.resolveBinary(scope, node)
	case NodeDivide:
		a.resolveDivide(scope, node)
	case NodeGreater, NodeGreaterEqual, NodeLess, NodeLessEqual:
		a.resolveCompare(scope, node)
	case NodeEqual, NodeNotEqual:
		a.resolveEquality(scope, node)
	case NodeAnd, NodeOr:
		a.resolveBooleanOp(scope, node)
	case NodeNegate:
		a.resolve(scope, node.Children[0])
		node.Type = node.Children[0].Type
		node.Storage = node.Children[0].Storage
	case NodeTypecast:
		a.resolveTypecast(scope, node)
	case NodeTernary:
		a.resolveTernary(scope, node)
	case NodeAssign, NodeAddAssign, NodeSubtractAssign, NodeMultiplyAssign, NodeDivideAssign:
		a.resolveAssign(scope, node)
	case NodeVariable:
		a.resolveVariableDecl(scope, node)
	case NodeCall:
		a.resolveCall(scope, node)
	case NodeTexture, NodeEnvironment:
		a.resolveChildren(scope, node)
		node.Type, node.Storage = TypeFloat, StorageVarying
	case NodeShadow:
		a.resolveChildren(scope, node)
		node.Type, node.Storage = TypeFloat, StorageVarying
	case NodeIf:
		a.resolveControlScope(scope, node, []int{0, 1})
	case NodeIfElse:
		a.resolveControlScope(scope, node, []int{0, 1, 2})
	case NodeWhile:
		a.resolveControlScope(scope, node, []int{0, 1})
	case NodeFor:
		a.resolveForStatement(scope, node)
	case NodeSolar:
		a.resolveSolar(scope, node)
	case NodeIlluminate:
		a.resolveIlluminate(scope, node)
	case NodeIlluminance:
		a.resolveIlluminance(scope, node)
	case NodeBreak, NodeContinue:
		// nothing to resolve; level was parsed directly from the literal
	}
}

func (a *Analyzer) resolveChildren(scope *Scope, node *SyntaxNode) {
	for _, c := range node.Children {
		a.resolve(scope, c)
	}
}

func (a *Analyzer) maxChildStorage(node *SyntaxNode) ValueStorage {
	st := StorageConstant
	for _, c := range node.Children {
		st = MaxStorage(st, c.Storage)
	}
	return st
}

func (a *Analyzer) resolveIdentifier(scope *Scope, node *SyntaxNode) {
	sym := scope.FindSymbol(node.Lexeme)
	if sym == nil {
		a.errorf(node.Line, "undefined symbol %q", node.Lexeme)
		node.Type, node.Storage = TypeFloat, StorageUniform
		return
	}
	node.Symbol = sym
	node.Type = sym.Type
	node.Storage = sym.Storage
}

func (a *Analyzer) resolveBinary(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	lhs, rhs := node.Children[0], node.Children[1]
	row := findOpRow(binaryOpTable[node.Kind], lhs.Type, rhs.Type)
	if row == nil {
		a.errorf(node.Line, "no matching overload for operator on %v and %v", lhs.Type, rhs.Type)
		node.Type, node.Storage = lhs.Type, MaxStorage(lhs.Storage, rhs.Storage)
		return
	}
	a.convertAndPromote(lhs, row.lhs, MaxStorage(lhs.Storage, rhs.Storage))
	a.convertAndPromote(rhs, row.rhs, MaxStorage(lhs.Storage, rhs.Storage))
	node.Type = row.result
	node.Storage = MaxStorage(lhs.Storage, rhs.Storage)
	node.Instruction = row.instruction
}

// resolveDivide handles divide's rule that both sides are independently
// storage-promoted to the other's storage.
func (a *Analyzer) resolveDivide(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	lhs, rhs := node.Children[0], node.Children[1]
	row := findOpRow(binaryOpTable[NodeDivide], lhs.Type, rhs.Type)
	if row == nil {
		a.errorf(node.Line, "no matching overload for / on %v and %v", lhs.Type, rhs.Type)
		node.Type, node.Storage = lhs.Type, MaxStorage(lhs.Storage, rhs.Storage)
		return
	}
	resultStorage := MaxStorage(lhs.Storage, rhs.Storage)
	a.convertAndPromote(lhs, row.lhs, resultStorage)
	a.convertAndPromote(rhs, row.rhs, resultStorage)
	node.Type = row.result
	node.Storage = resultStorage
	node.Instruction = OpDivide
}

func (a *Analyzer) resolveCompare(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	lhs, rhs := node.Children[0], node.Children[1]
	resultStorage := MaxStorage(lhs.Storage, rhs.Storage)
	a.convertAndPromote(lhs, TypeFloat, resultStorage)
	a.convertAndPromote(rhs, TypeFloat, resultStorage)
	node.Type = TypeInteger
	node.Storage = resultStorage
	node.Instruction = compareOpInstr[node.Kind]
}

func (a *Analyzer) resolveEquality(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	lhs, rhs := node.Children[0], node.Children[1]
	resultStorage := MaxStorage(lhs.Storage, rhs.Storage)
	a.convertAndPromote(rhs, lhs.Type, resultStorage)
	a.convertAndPromote(lhs, lhs.Type, resultStorage)
	node.Type = TypeInteger
	node.Storage = resultStorage
	node.Instruction = equalityOpInstr[node.Kind]
}

func (a *Analyzer) resolveBooleanOp(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	lhs, rhs := node.Children[0], node.Children[1]
	resultStorage := MaxStorage(lhs.Storage, rhs.Storage)
	node.Type = TypeInteger
	node.Storage = resultStorage
	node.Instruction = booleanOpInstr[node.Kind]
}

func (a *Analyzer) resolveTypecast(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	storage := StorageConstant
	for _, c := range node.Children {
		storage = MaxStorage(storage, c.Storage)
	}
	node.Storage = storage
	// node.Type was set by the parser from the declared cast type.
}

func (a *Analyzer) resolveTernary(scope *Scope, node *SyntaxNode) {
	a.resolve(scope, node.Children[0])
	a.resolve(scope, node.Children[1])
	a.resolve(scope, node.Children[2])
	then, els := node.Children[1], node.Children[2]
	row := findOpRow(binaryOpTable[NodeAdd], then.Type, els.Type)
	resultType := then.Type
	if row != nil {
		resultType = row.result
	}
	resultStorage := MaxStorage(MaxStorage(node.Children[0].Storage, then.Storage), els.Storage)
	a.convertAndPromote(then, resultType, resultStorage)
	a.convertAndPromote(els, resultType, resultStorage)
	node.Type = resultType
	node.Storage = resultStorage
}

func (a *Analyzer) resolveAssign(scope *Scope, node *SyntaxNode) {
	lhs := node.Children[0]
	rhs := node.Children[1]
	a.resolveIdentifier(scope, lhs)
	a.resolve(scope, rhs)
	if lhs.Symbol == nil {
		node.Type, node.Storage = rhs.Type, rhs.Storage
		return
	}
	if lhs.Symbol.Storage == StorageConstant {
		a.errorf(node.Line, "cannot assign to constant %q", lhs.Lexeme)
	}
	a.convertAndPromote(rhs, lhs.Symbol.Type, lhs.Symbol.Storage)
	node.Type = lhs.Symbol.Type
	node.Storage = lhs.Symbol.Storage
}

func (a *Analyzer) resolveVariableDecl(scope *Scope, node *SyntaxNode) {
	sym := scope.AddSymbol(node.Decl.Name)
	sym.Type = node.Decl.Type
	sym.Storage = node.Decl.Storage

	if node.Decl.Initializer != nil {
		a.resolve(scope, node.Decl.Initializer)
		if sym.Storage == StorageNull {
			// No declared storage: inherit from the initializer, but never
			// drop below uniform.
			sym.Storage = MaxStorage(StorageUniform, node.Decl.Initializer.Storage)
		}
		a.convertAndPromote(node.Decl.Initializer, sym.Type, sym.Storage)
	} else if sym.Storage == StorageNull {
		sym.Storage = StorageUniform
	}
	node.Symbol = sym
	node.Type, node.Storage = sym.Type, sym.Storage
}

func (a *Analyzer) resolveCall(scope *Scope, node *SyntaxNode) {
	a.resolveChildren(scope, node)
	args := make([]argTypeStorage, len(node.Children))
	for i, c := range node.Children {
		args[i] = argTypeStorage{Type: c.Type, Storage: c.Storage}
	}
	sym := scope.FindFunction(node.Lexeme, node.ExpectedType, node.ExpectedStorage, args)
	if sym == nil {
		a.errorf(node.Line, "no matching overload for call to %q", node.Lexeme)
		node.Type, node.Storage = TypeFloat, StorageVarying
		return
	}
	node.Symbol = sym
	for i, c := range node.Children {
		a.convertAndPromote(c, sym.Parameters[i].Type, sym.Parameters[i].Storage)
	}
	node.Type = sym.Type
	node.Storage = sym.Storage
}

// resolveControlScope resolves if/if-else/while by opening a child scope
// and promoting the controlling expression to varying.
func (a *Analyzer) resolveControlScope(scope *Scope, node *SyntaxNode, bodyIndexes []int) {
	child := newScope(scope)
	node.Scope = child
	a.resolve(child, node.Children[0])
	a.convertAndPromote(node.Children[0], TypeInteger, StorageVarying)
	for _, i := range bodyIndexes[1:] {
		a.resolve(child, node.Children[i])
	}
}

func (a *Analyzer) resolveForStatement(scope *Scope, node *SyntaxNode) {
	child := newScope(scope)
	node.Scope = child
	a.resolve(child, node.Children[0])
	a.resolve(child, node.Children[1])
	a.convertAndPromote(node.Children[1], TypeInteger, StorageVarying)
	a.resolve(child, node.Children[2])
	a.resolve(child, node.Children[3])
}

// resolveSolar/resolveIlluminate/resolveIlluminance open a scope and
// convert/promote their arguments: axis to a uniform vector, angle to a
// uniform float, and illuminate/illuminance's position to a varying point.
// No argument is rejected: a varying axis or angle stays varying, and a
// non-float angle is converted rather than reported as an error.
func (a *Analyzer) resolveSolar(scope *Scope, node *SyntaxNode) {
	child := newScope(scope)
	node.Scope = child
	nargs := len(node.Children) - 1 // last child is the body
	if nargs == 2 {
		axis, angle := node.Children[0], node.Children[1]
		a.resolve(child, axis)
		a.resolve(child, angle)
		a.convertAndPromote(axis, TypeVector, StorageUniform)
		a.convertAndPromote(angle, TypeFloat, StorageUniform)
		node.Instruction = OpSolarAxisAngle
	} else {
		node.Instruction = OpSolar
	}
	a.resolve(child, node.Children[len(node.Children)-1])
}

func (a *Analyzer) resolveIlluminate(scope *Scope, node *SyntaxNode) {
	child := newScope(scope)
	node.Scope = child
	nargs := len(node.Children) - 1
	pos := node.Children[0]
	a.resolve(child, pos)
	a.convertAndPromote(pos, TypePoint, StorageVarying)
	if nargs == 3 {
		axis, angle := node.Children[1], node.Children[2]
		a.resolve(child, axis)
		a.resolve(child, angle)
		a.convertAndPromote(axis, TypeVector, StorageUniform)
		a.convertAndPromote(angle, TypeFloat, StorageUniform)
		node.Instruction = OpIlluminateAxisAngle
	} else {
		node.Instruction = OpIlluminate
	}
	a.resolve(child, node.Children[len(node.Children)-1])
}

func (a *Analyzer) resolveIlluminance(scope *Scope, node *SyntaxNode) {
	child := newScope(scope)
	node.Scope = child
	nargs := len(node.Children) - 1
	if nargs < 3 {
		// illuminance with fewer than the axis/angle form's three
		// expression arguments is a semantic error rather than an
		// unconditional-illuminance code path.
		a.errorf(node.Line, "unconditional illuminance is not supported")
		a.resolve(child, node.Children[len(node.Children)-1])
		return
	}
	pos, axis, angle := node.Children[0], node.Children[1], node.Children[2]
	a.resolve(child, pos)
	a.convertAndPromote(pos, TypePoint, StorageVarying)
	a.resolve(child, axis)
	a.convertAndPromote(axis, TypeVector, StorageUniform)
	a.resolve(child, angle)
	a.convertAndPromote(angle, TypeFloat, StorageUniform)
	node.Instruction = OpIlluminanceAxisAngle
	a.resolve(child, node.Children[len(node.Children)-1])
}

// convertAndPromote annotates a node with OriginalType/OriginalStorage
// when its resolved (type, storage) differs from the target, so codegen
// knows to insert CONVERT/PROMOTE. Only float->wider conversions and
// uniform->varying promotions are legal widenings; this never narrows.
func (a *Analyzer) convertAndPromote(node *SyntaxNode, toType ValueType, toStorage ValueStorage) {
	if toType != TypeNull && node.Type != toType {
		node.OriginalType = node.Type
		node.Type = toType
	}
	if toStorage != StorageNull && node.Storage < toStorage {
		node.OriginalStorage = node.Storage
		node.Storage = toStorage
	}
}

func findOpRow(rows []opResultRow, lhs, rhs ValueType) *opResultRow {
	for i := range rows {
		if rows[i].lhs == lhs && rows[i].rhs == rhs {
			return &rows[i]
		}
	}
	return nil
}
