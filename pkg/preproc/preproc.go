// Package preproc prepares C source for parsing. It implements a small
// internal preprocessor covering object-like macros, conditional
// inclusion, and quoted includes, with fallback to the system
// preprocessor (cc -E) for anything heavier.
package preproc

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options configures the preprocessing step
type Options struct {
	IncludePaths []string          // -I directories
	Defines      map[string]string // -D macros (empty value for a plain define)
	Undefines    []string          // -U macros
	UseExternal  bool              // force the system preprocessor
}

const maxIncludeDepth = 32

// Preprocess runs the preprocessor on a source file and returns the
// expanded source. The internal implementation is used unless
// UseExternal is set.
func Preprocess(filename string, opts *Options) (string, error) {
	if opts != nil && opts.UseExternal {
		return preprocessExternal(filename, opts)
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return preprocessInternal(string(content), filename, opts)
}

// PreprocessString preprocesses source held in memory; filename is used
// for error messages and relative includes.
func PreprocessString(source, filename string, opts *Options) (string, error) {
	if opts != nil && opts.UseExternal {
		tmp := filepath.Join(os.TempDir(), "ctran-"+filepath.Base(filename))
		if err := os.WriteFile(tmp, []byte(source), 0644); err != nil {
			return "", fmt.Errorf("creating temp file: %w", err)
		}
		defer os.Remove(tmp)
		return preprocessExternal(tmp, opts)
	}
	return preprocessInternal(source, filename, opts)
}

// NeedsPreprocessing reports whether the file may contain directives.
// Files ending in .i are already preprocessed by convention.
func NeedsPreprocessing(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) != ".i"
}

type state struct {
	macros map[string]string
	opts   *Options
}

func preprocessInternal(source, filename string, opts *Options) (string, error) {
	st := &state{macros: make(map[string]string), opts: opts}
	if opts != nil {
		for name, value := range opts.Defines {
			st.macros[name] = value
		}
		for _, name := range opts.Undefines {
			delete(st.macros, name)
		}
	}
	var out strings.Builder
	if err := st.processFile(source, filename, 0, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (st *state) processFile(source, filename string, depth int, out *strings.Builder) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("%s: includes nested too deeply", filename)
	}

	// Conditional stack: each entry is whether its branch is active and
	// whether any branch of the group has been taken yet.
	type cond struct {
		active bool
		taken  bool
	}
	var conds []cond
	active := func() bool {
		for _, c := range conds {
			if !c.active {
				return false
			}
		}
		return true
	}

	lines := splitLogicalLines(source)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				out.WriteString(st.expand(line))
				out.WriteByte('\n')
			}
			continue
		}

		directive, rest := splitDirective(trimmed[1:])
		switch directive {
		case "define":
			if !active() {
				continue
			}
			name, value := splitDirective(rest)
			if paren := strings.IndexByte(name, '('); paren >= 0 {
				// function-like macros are beyond this preprocessor
				return fmt.Errorf("%s:%d: function-like macro %s requires the external preprocessor", filename, i+1, name[:paren])
			}
			st.macros[name] = value
		case "undef":
			if active() {
				delete(st.macros, strings.TrimSpace(rest))
			}
		case "ifdef":
			_, defined := st.macros[strings.TrimSpace(rest)]
			on := active() && defined
			conds = append(conds, cond{active: on, taken: on})
		case "ifndef":
			_, defined := st.macros[strings.TrimSpace(rest)]
			on := active() && !defined
			conds = append(conds, cond{active: on, taken: on})
		case "if":
			on, err := st.evalCondition(strings.TrimSpace(rest))
			if err != nil {
				return fmt.Errorf("%s:%d: %w", filename, i+1, err)
			}
			on = on && active()
			conds = append(conds, cond{active: on, taken: on})
		case "elif":
			if len(conds) == 0 {
				return fmt.Errorf("%s:%d: #elif without #if", filename, i+1)
			}
			top := &conds[len(conds)-1]
			if top.taken {
				top.active = false
				continue
			}
			on, err := st.evalCondition(strings.TrimSpace(rest))
			if err != nil {
				return fmt.Errorf("%s:%d: %w", filename, i+1, err)
			}
			top.active = on
			top.taken = on
		case "else":
			if len(conds) == 0 {
				return fmt.Errorf("%s:%d: #else without #if", filename, i+1)
			}
			top := &conds[len(conds)-1]
			top.active = !top.taken
			top.taken = true
		case "endif":
			if len(conds) == 0 {
				return fmt.Errorf("%s:%d: #endif without #if", filename, i+1)
			}
			conds = conds[:len(conds)-1]
		case "include":
			if !active() {
				continue
			}
			if err := st.processInclude(strings.TrimSpace(rest), filename, depth, out); err != nil {
				return fmt.Errorf("%s:%d: %w", filename, i+1, err)
			}
		case "error":
			if active() {
				return fmt.Errorf("%s:%d: #error %s", filename, i+1, rest)
			}
		case "pragma", "line", "warning", "":
			// dropped
		default:
			if active() {
				return fmt.Errorf("%s:%d: unknown directive #%s", filename, i+1, directive)
			}
		}
	}

	if len(conds) > 0 {
		return fmt.Errorf("%s: unterminated #if", filename)
	}
	return nil
}

// processInclude inlines a quoted include. Angle-bracket includes are
// dropped: system headers declare more than this front end consumes,
// and the external preprocessor handles them when they matter.
func (st *state) processInclude(spec, fromFile string, depth int, out *strings.Builder) error {
	if strings.HasPrefix(spec, "<") {
		return nil
	}
	if !strings.HasPrefix(spec, "\"") || !strings.HasSuffix(spec, "\"") || len(spec) < 2 {
		return fmt.Errorf("malformed #include %s", spec)
	}
	name := spec[1 : len(spec)-1]

	candidates := []string{filepath.Join(filepath.Dir(fromFile), name)}
	if st.opts != nil {
		for _, dir := range st.opts.IncludePaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, path := range candidates {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return st.processFile(string(content), path, depth+1, out)
	}
	return fmt.Errorf("#include %s: file not found", spec)
}

// evalCondition evaluates the subset of #if expressions that appear in
// practice: integer literals, defined(NAME), !defined(NAME), and bare
// macro names.
func (st *state) evalCondition(expr string) (bool, error) {
	negate := false
	for strings.HasPrefix(expr, "!") {
		negate = !negate
		expr = strings.TrimSpace(expr[1:])
	}
	var val bool
	switch {
	case strings.HasPrefix(expr, "defined"):
		name := strings.TrimSpace(strings.TrimPrefix(expr, "defined"))
		name = strings.TrimSuffix(strings.TrimPrefix(name, "("), ")")
		_, val = st.macros[strings.TrimSpace(name)]
	case expr == "":
		return false, fmt.Errorf("empty #if condition")
	case expr[0] >= '0' && expr[0] <= '9':
		val = expr != "0"
	default:
		if v, ok := st.macros[expr]; ok {
			val = v != "0" && v != ""
		}
	}
	if negate {
		return !val, nil
	}
	return val, nil
}

// expand substitutes object-like macros in a source line, whole
// identifiers only. String and character literals are left alone.
func (st *state) expand(line string) string {
	if len(st.macros) == 0 {
		return line
	}
	var sb strings.Builder
	i := 0
	for i < len(line) {
		ch := line[i]
		switch {
		case ch == '"' || ch == '\'':
			j := i + 1
			for j < len(line) && line[j] != ch {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(line) {
				j++
			}
			sb.WriteString(line[i:j])
			i = j
		case isIdentStart(ch):
			j := i + 1
			for j < len(line) && isIdentPart(line[j]) {
				j++
			}
			word := line[i:j]
			if value, ok := st.macros[word]; ok {
				sb.WriteString(value)
			} else {
				sb.WriteString(word)
			}
			i = j
		default:
			sb.WriteByte(ch)
			i++
		}
	}
	return sb.String()
}

// splitLogicalLines splits source into lines, joining backslash
// continuations first.
func splitLogicalLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\\\n", "")
	return strings.Split(strings.TrimSuffix(source, "\n"), "\n")
}

// splitDirective splits "name rest of line" at the first whitespace run
func splitDirective(s string) (string, string) {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			return s[:i], strings.TrimSpace(s[i+1:])
		}
	}
	return s, ""
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// preprocessExternal shells out to the system preprocessor
func preprocessExternal(filename string, opts *Options) (string, error) {
	args := []string{"-E", "-P"}
	if opts != nil {
		for _, path := range opts.IncludePaths {
			args = append(args, "-I"+path)
		}
		for name, value := range opts.Defines {
			if value == "" {
				args = append(args, "-D"+name)
			} else {
				args = append(args, "-D"+name+"="+value)
			}
		}
		for _, name := range opts.Undefines {
			args = append(args, "-U"+name)
		}
	}
	args = append(args, filename)

	cppCmd := findPreprocessor()
	if cppCmd == "" {
		return "", fmt.Errorf("no C preprocessor found (tried: cc, gcc, clang)")
	}

	cmd := exec.Command(cppCmd, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = filepath.Dir(filename)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("preprocessing failed: %v\n%s", err, stderr.String())
	}
	return stdout.String(), nil
}

func findPreprocessor() string {
	for _, cmd := range []string{"cc", "gcc", "clang"} {
		if path, err := exec.LookPath(cmd); err == nil {
			return path
		}
	}
	return ""
}
