package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// cli.go is the command-line front end of spec.md §6's illustrative CLI:
//
//	ld <input_file> [--dependencies f1 f2 ...] [-o out_dir] [-w] [-d] [-v]
//
// Grounded on the teacher's src/util/args.go: a single hand-rolled pass over
// os.Args rather than a flag-parsing library, since nothing in this
// repository's dependency pack reaches for one -- see DESIGN.md.

// ParseArgs parses os.Args[1:] into an Options value.
func ParseArgs() (Options, error) {
	opt := Options{}
	args := os.Args[1:]

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "--dependencies":
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				opt.Dependencies = append(opt.Dependencies, args[i+1])
				i++
			}
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			if strings.HasPrefix(args[i+1], "-") {
				return opt, fmt.Errorf("expected output directory, got new flag %s", args[i+1])
			}
			opt.Out = args[i+1]
			opt.Write = true
			i++
		case "-w":
			opt.Write = true
		case "-d":
			opt.Trace = true
		case "-v":
			opt.Verbose = true
		case "-ts":
			opt.TokenStream = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			if opt.Src != "" {
				return opt, fmt.Errorf("unexpected positional argument: %s", args[i])
			}
			opt.Src = args[i]
		}
	}

	if opt.Src == "" {
		return opt, fmt.Errorf("no input file given")
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, ' ', 0)
	_, _ = fmt.Fprintln(w, "usage: ld <input_file> [--dependencies f1 f2 ...] [-o out_dir] [-w] [-d] [-v]")
	_, _ = fmt.Fprintln(w, "--dependencies\tPaths to dependency modules the input file imports.")
	_, _ = fmt.Fprintln(w, "-o\tDirectory to write the generated program to. Implies -w.")
	_, _ = fmt.Fprintln(w, "-w\tPersist the generated program (function directory, templates, constants, quadruples).")
	_, _ = fmt.Fprintln(w, "-d\tAccepted; no VM trace is printed.")
	_, _ = fmt.Fprintln(w, "-v\tPrint the symbolic quadruple list before code generation.")
	_, _ = fmt.Fprintln(w, "-ts\tOutput the lexer's token stream for the input file and exit.")
	_, _ = fmt.Fprintln(w, "-h, -help, --help\tPrint this message and exit.")
	_, _ = fmt.Fprintln(w, "--version\tPrint the application version and exit.")
	_ = w.Flush()
}
