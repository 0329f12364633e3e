package rsl

// defaultLanesMax is the default SIMD grid width a shader is compiled for
// when the caller does not request a different size.
const defaultLanesMax = 256

// Shader is the compiled artifact produced by Compile: everything the
// virtual machine needs to run a shader's initialize and shade entry
// points against a grid.
type Shader struct {
	Name string

	Symbols []*Symbol

	ConstantBytes []byte
	Strings       []string
	CodeBytes     []byte

	InitializeAddress int
	ShadeAddress      int

	LanesMax      int
	ConstantSize  int
	GridSize      int
	TemporarySize int
	StringSize    int

	ShaderKind ShaderKind
}

// Compile lexes, parses, analyzes, and generates code for a single RSL
// shader source string, in that order, aborting at the first stage whose
// error count is nonzero. lanesMax controls the grid width used to size
// varying storage during code generation; callers that don't care pass 0
// to get defaultLanesMax.
func Compile(source, name string, lanesMax int, policy ErrorPolicy) (*Shader, error) {
	if lanesMax <= 0 {
		lanesMax = defaultLanesMax
	}
	errs := &stageErrors{policy: policy}

	tokens, err := Lex(source)
	if err != nil {
		errs.report(ErrorSyntaxError, 0, "%s", err)
		return nil, ErrCompileFailed
	}

	root, err := ParseShader(tokens, errs)
	if err != nil {
		errs.report(ErrorSyntaxError, 0, "%s", err)
	}
	if errs.failed() {
		return nil, ErrCompileFailed
	}

	rootScope := newRootScope()
	Analyze(root, rootScope, errs)
	if errs.failed() {
		errs.report(ErrorSemanticAnalysisFailed, 0, "semantic analysis failed for %q", name)
		return nil, ErrCompileFailed
	}

	result := Generate(root, lanesMax, errs)
	if errs.failed() {
		errs.report(ErrorCodeGenerationFailed, 0, "code generation failed for %q", name)
		return nil, ErrCompileFailed
	}

	return &Shader{
		Name:              name,
		Symbols:           result.Symbols,
		ConstantBytes:     result.ConstantBytes,
		Strings:           result.Strings,
		CodeBytes:         result.CodeBytes,
		InitializeAddress: result.InitializeAddress,
		ShadeAddress:      result.ShadeAddress,
		LanesMax:          lanesMax,
		ConstantSize:      len(result.ConstantBytes),
		GridSize:          result.GridSize,
		TemporarySize:     result.TemporarySize,
		StringSize:        result.StringSize,
		ShaderKind:        root.ShaderKind,
	}, nil
}

// FindSymbol returns the public symbol with the given identifier, or nil.
func (s *Shader) FindSymbol(identifier string) *Symbol {
	for _, sym := range s.Symbols {
		if sym.Identifier == identifier {
			return sym
		}
	}
	return nil
}
