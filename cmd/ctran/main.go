package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ctran-lang/ctran/pkg/cabs"
	"github.com/ctran-lang/ctran/pkg/lexer"
	"github.com/ctran-lang/ctran/pkg/parser"
	"github.com/ctran-lang/ctran/pkg/preproc"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug and mode flags
var (
	dTokens   bool
	dParse    bool
	checkTrip bool
	maxErrors int
)

// Preprocessor options
var (
	includePaths   []string
	defineFlags    []string
	undefineFlags  []string
	preprocessOnly bool // -E flag
	useExternalPP  bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept compiler-style single-dash flags like -dparse
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists flags that accept single-dash style
var debugFlagNames = []string{"dtokens", "dparse", "check"}

// normalizeFlags converts single-dash debug flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ctran [file]",
		Short: "ctran parses C source and renders it back from the syntax tree",
		Long: `ctran is the front end of a C source-to-source translator. It
lexes and parses a translation unit into a syntax tree, then renders
the tree back to C with minimal parenthesization. The rendered output
reparses to the same tree, which makes the tool usable as a C
normalizer and as a test bed for the parser itself.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			// Handle -E: preprocess only
			if preprocessOnly {
				return doPreprocessOnly(filename, out, errOut)
			}

			// Handle -dtokens: dump the token stream
			if dTokens {
				return doTokens(filename, out, errOut)
			}

			// Handle -dparse: parse and dump the AST to a .parsed.c file
			if dParse {
				return doParse(filename, out, errOut)
			}

			// Handle -check: verify the render/reparse round trip
			if checkTrip {
				return doCheck(filename, out, errOut)
			}

			// Default: parse and render to stdout
			program, err := parseFile(filename, errOut)
			if err != nil {
				return err
			}
			printer := cabs.NewPrinter(out)
			printer.PrintProgram(program)
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dTokens, "dtokens", false, "Dump the token stream")
	rootCmd.Flags().BoolVar(&dParse, "dparse", false, "Dump the AST after parsing")
	rootCmd.Flags().BoolVar(&checkTrip, "check", false, "Verify render/reparse round trip")
	rootCmd.Flags().IntVar(&maxErrors, "max-errors", 20, "Stop after this many parse errors")

	rootCmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "Add directory to include search path")
	rootCmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "Define macro (NAME or NAME=VALUE)")
	rootCmd.Flags().StringArrayVarP(&undefineFlags, "undefine", "U", nil, "Undefine macro")
	rootCmd.Flags().BoolVarP(&preprocessOnly, "preprocess", "E", false, "Preprocess only, output to stdout")
	rootCmd.Flags().BoolVar(&useExternalPP, "external-cpp", false, "Use external C preprocessor instead of internal")

	return rootCmd
}

// buildPreprocessorOptions creates preproc.Options from CLI flags
func buildPreprocessorOptions() *preproc.Options {
	opts := &preproc.Options{
		IncludePaths: includePaths,
		Defines:      make(map[string]string),
		Undefines:    undefineFlags,
		UseExternal:  useExternalPP,
	}
	for _, d := range defineFlags {
		if idx := strings.Index(d, "="); idx >= 0 {
			opts.Defines[d[:idx]] = d[idx+1:]
		} else {
			opts.Defines[d] = ""
		}
	}
	return opts
}

// readAndPreprocess reads a C file, running the preprocessor unless the
// extension says the file is already preprocessed.
func readAndPreprocess(filename string, errOut io.Writer) (string, error) {
	if preproc.NeedsPreprocessing(filename) {
		content, err := preproc.Preprocess(filename, buildPreprocessorOptions())
		if err != nil {
			fmt.Fprintf(errOut, "ctran: preprocessing error: %v\n", err)
			return "", err
		}
		return content, nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "ctran: error reading %s: %v\n", filename, err)
		return "", err
	}
	return string(content), nil
}

// doPreprocessOnly preprocesses and writes the result to stdout (-E)
func doPreprocessOnly(filename string, out, errOut io.Writer) error {
	content, err := preproc.Preprocess(filename, buildPreprocessorOptions())
	if err != nil {
		fmt.Fprintf(errOut, "ctran: preprocessing error: %v\n", err)
		return err
	}
	fmt.Fprint(out, content)
	return nil
}

// doTokens lexes the file and dumps one token per line (-dtokens)
func doTokens(filename string, out, errOut io.Writer) error {
	content, err := readAndPreprocess(filename, errOut)
	if err != nil {
		return err
	}
	tokens, err := lexer.New(content).Tokenize()
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", filename, err)
		return err
	}
	for _, tok := range tokens {
		if tok.Type == lexer.TokenEOF {
			break
		}
		fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
	}
	return nil
}

// parseFile preprocesses and parses a C file. Parse errors do not stop
// at the first failure: the parser resynchronizes at the next statement
// boundary and keeps going, so one run reports several errors.
func parseFile(filename string, errOut io.Writer) (*cabs.Program, error) {
	content, err := readAndPreprocess(filename, errOut)
	if err != nil {
		return nil, err
	}

	p := parser.New(lexer.New(content))
	prog := &cabs.Program{}
	errCount := 0
	for !p.AtEOF() {
		def, err := p.ParseDefinition()
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", filename, err)
			errCount++
			if errCount >= maxErrors {
				fmt.Fprintf(errOut, "ctran: too many errors, giving up\n")
				break
			}
			p.SkipToStatementBoundary()
			continue
		}
		prog.Definitions = append(prog.Definitions, def)
	}
	if errCount > 0 {
		return nil, fmt.Errorf("parsing failed with %d errors", errCount)
	}
	return prog, nil
}

// doParse parses the file and writes the rendered AST to a .parsed.c
// file as well as stdout (-dparse)
func doParse(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}

	outputFilename := parsedOutputFilename(filename)
	outFile, err := os.Create(outputFilename)
	if err != nil {
		fmt.Fprintf(errOut, "ctran: error creating %s: %v\n", outputFilename, err)
		return err
	}
	defer outFile.Close()

	printer := cabs.NewPrinter(outFile)
	printer.PrintProgram(program)

	printer = cabs.NewPrinter(out)
	printer.PrintProgram(program)
	return nil
}

// parsedOutputFilename maps input.c to input.parsed.c
func parsedOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".parsed.c"
	}
	return filename + ".parsed.c"
}

// doCheck renders the parsed program, reparses the rendering, and
// verifies the second rendering is identical (-check)
func doCheck(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}

	var first strings.Builder
	cabs.NewPrinter(&first).PrintProgram(program)

	reparsed, err := parser.New(lexer.New(first.String())).ParseProgram()
	if err != nil {
		fmt.Fprintf(errOut, "ctran: %s: rendered output failed to reparse: %v\n", filename, err)
		return err
	}

	var second strings.Builder
	cabs.NewPrinter(&second).PrintProgram(reparsed)

	if first.String() != second.String() {
		fmt.Fprintf(errOut, "ctran: %s: round trip not stable\n", filename)
		return fmt.Errorf("round trip mismatch for %s", filename)
	}
	fmt.Fprintf(out, "ctran: %s: round trip ok\n", filename)
	return nil
}
