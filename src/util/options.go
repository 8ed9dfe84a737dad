package util

// Options holds the compiler's configuration, populated from the command
// line by ParseArgs (see cli.go). It is
// threaded through every pipeline stage the way the teacher's Options struct
// is, so each stage can be called in isolation in tests.
type Options struct {
	Src          string   // Path to the main module's source file.
	Dependencies []string // Paths to dependency module source files.
	Out          string   // Directory the generated program is written to (as program.ld.out); stdout if empty.
	Verbose      bool     // Print the symbolic quadruple list before code generation; no other pipeline stage is printed.
	Trace        bool     // Set by -d; no pipeline stage reads it, so no VM trace is printed.
	TokenStream  bool     // Output the lexer's token stream for Src and exit.
	Write        bool     // Persist the generated program (function directory, templates, constants, quadruples) to Out.
}

const appVersion = "littleduck 1.0"
