// Command rslc compiles an RSL shader source file to byte-code and,
// optionally, runs it against a synthetic grid on the spec virtual machine.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"rsl/pkg/rsl"
	"rsl/pkg/vm"
)

func main() {
	inPath := flag.String("in", "", "input .sl shader source path")
	dump := flag.Bool("dump", false, "disassemble the generated code to stdout")
	run := flag.Bool("run", false, "execute the compiled shader against a synthetic grid")
	entry := flag.String("entry", "shade", "entry point to run: \"initialize\" or \"shade\"")
	width := flag.Int("width", 4, "grid width in points, when -run is given")
	height := flag.Int("height", 4, "grid height in points, when -run is given")
	lanesMax := flag.Int("lanes", 0, "SIMD grid width to compile for (0 uses the compiler default)")
	seed := flag.Int64("seed", 1, "seed for the random() builtin, when -run is given")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: rslc -in <file.sl> [-dump] [-run] [-entry shade|initialize]")
		flag.Usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	name := strings.TrimSuffix(filepath.Base(*inPath), filepath.Ext(*inPath))
	shader, err := rsl.Compile(string(source), name, *lanesMax, rsl.StderrErrorPolicy{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed for %q\n", *inPath)
		os.Exit(1)
	}

	fmt.Printf("compiled %q: kind=%v constants=%dB grid=%d temp=%d strings=%d lanes=%d\n",
		name, shader.ShaderKind, shader.ConstantSize, shader.GridSize, shader.TemporarySize, shader.StringSize, shader.LanesMax)

	if *dump {
		fmt.Println(rsl.Disassemble(shader.CodeBytes))
	}

	if !*run {
		return
	}

	entryPoint := vm.EntryShade
	if *entry == "initialize" {
		entryPoint = vm.EntryInitialize
	}

	grid := vm.NewSimpleGrid(*width, *height, shader.GridSize, shader.Strings)
	machine := vm.New(shader, grid, rand.New(rand.NewSource(*seed)))
	machine.Run(entryPoint)

	fmt.Printf("run complete: entry=%s points=%dx%d\n", *entry, *width, *height)
}
