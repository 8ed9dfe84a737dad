package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"littleduck/src/codegen"
	"littleduck/src/deps"
	"littleduck/src/frontend"
	"littleduck/src/ir"
	"littleduck/src/util"
	"littleduck/src/vm"
)

// moduleName strips a source path down to the bare identifier used in
// "import x;" statements, e.g. "lib/math.ld" -> "math".
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// run drives the full pipeline: lex/parse every module, resolve the import
// graph, analyze into quadruples, generate a VM-ready Program, and execute
// it. Behaviour is controlled by opt, the way the teacher's run(opt) is.
func run(opt util.Options, w *util.Writer) error {
	src, err := util.ReadSource(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	if opt.TokenStream {
		out, err := frontend.TokenStream(src)
		if err != nil {
			return fmt.Errorf("syntax error: %s", err)
		}
		w.WriteString(out)
		return nil
	}

	// Map every module name reachable from the CLI to the file it was read
	// from, so the deps.Loader can resolve "import x;" by name.
	paths := map[string]string{moduleName(opt.Src): opt.Src}
	for _, d := range opt.Dependencies {
		paths[moduleName(d)] = d
	}

	load := func(name string) (*ir.Node, error) {
		path, ok := paths[name]
		if !ok {
			return nil, fmt.Errorf("module %q was imported but not given on the command line", name)
		}
		text := src
		if path != opt.Src {
			text, err = util.ReadSource(path)
			if err != nil {
				return nil, fmt.Errorf("could not read module %q: %s", name, err)
			}
		}
		tree, err := frontend.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s: parse error: %s", path, err)
		}
		return tree, nil
	}

	mainName := moduleName(opt.Src)
	candidates := make([]string, 0, len(paths))
	for name := range paths {
		candidates = append(candidates, name)
	}
	order, graph, err := deps.Resolve(mainName, candidates, load)
	if err != nil {
		return fmt.Errorf("dependency error: %s", err)
	}

	a := ir.NewAnalyzer(nil)
	var mainQuads []ir.Quad
	for _, name := range order {
		module := graph.Module(name)
		if name == mainName {
			mainQuads, _, err = a.AnalyzeProgram(module)
			if err != nil {
				return fmt.Errorf("semantic error: %s", err)
			}
			continue
		}
		if err := a.AnalyzeDependency(module); err != nil {
			return fmt.Errorf("%s: semantic error: %s", name, err)
		}
	}
	if mainQuads == nil {
		// deps.Resolve always orders mainName last; this only triggers if it
		// somehow returned an empty order, which it never does.
		return fmt.Errorf("internal error: main module %q not analyzed", mainName)
	}

	pe := util.NewPerror(0)
	for _, warning := range a.CheckUnused() {
		pe.Append(fmt.Errorf("%s", warning))
	}
	// Stop returns only after the listener has buffered every appended
	// warning, so Errors below sees all of them.
	pe.Stop()
	for err := range pe.Errors() {
		w.Write("%s\n", err)
	}

	if opt.Verbose {
		w.Write("quadruples:\n")
		for i, q := range a.Quads() {
			w.Write("%4d  %s\n", i, q)
		}
	}

	program, err := codegen.Generate(a.Quads(), a.Global)
	if err != nil {
		return fmt.Errorf("code generation error: %s", err)
	}

	if opt.Write {
		if err := writeProgram(opt.Out, program); err != nil {
			return fmt.Errorf("could not persist generated program: %s", err)
		}
	}

	machine := vm.New(program)
	exitCode, stdout, err := machine.Run()
	w.WriteString(stdout)
	if err != nil {
		return fmt.Errorf("runtime error: %s", err)
	}

	w.Write("Program ended with exit code: %d\n", exitCode)
	if exitCode != 0 {
		return &exitError{code: int(exitCode)}
	}
	return nil
}

// exitError carries a LittleDuck program's own exit_code out to main so the
// process can mirror it, without printing it as a compiler "Error:".
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("program exited with code %d", e.code) }

// writeProgram persists a generated codegen.Program's directory, templates,
// constants and quadruples as text to dir (or to stdout if dir is empty).
func writeProgram(dir string, program *codegen.Program) error {
	var f *os.File
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		var err error
		f, err = os.Create(filepath.Join(dir, "program.ld.out"))
		if err != nil {
			return err
		}
		defer f.Close()
	}
	out := util.NewWriter(f)
	out.Write("functions:\n")
	for _, fn := range program.Functions {
		out.Write("  %+v\n", fn)
	}
	out.Write("templates:\n")
	for i, t := range program.Templates {
		out.Write("  %d: %+v\n", i, t)
	}
	out.Write("constants:\n")
	for i, c := range program.Constants {
		out.Write("  %d: %+v\n", i, c)
	}
	out.Write("quadruples:\n")
	for i, q := range program.Quads {
		out.Write("  %4d: %+v\n", i, q)
	}
	return out.Flush()
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("command line argument error: %s\n", err)
		os.Exit(1)
	}

	w := util.NewWriter(nil)
	err = run(opt, w)
	if ferr := w.Flush(); ferr != nil {
		fmt.Println(ferr)
	}

	if err != nil {
		if ee, ok := err.(*exitError); ok {
			os.Exit(ee.code)
		}
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}
