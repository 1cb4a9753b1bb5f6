// Package expand implements the recursive, escape- and brace-aware
// variable and function expander shared by preamble evaluation and code
// block execution: one pass over the string with position-based splicing,
// explicit error returns carrying the source location.
package expand

import (
	"context"
	"regexp"
	"strings"

	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
)

var (
	bareNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+`)
	curlyRe    = regexp.MustCompile(`^\{(?:([A-Za-z0-9_]+)\.)?([A-Za-z0-9_]+)\}`)
)

const supportedEscapable = "$\\"

// builtinFunctions are the only names permitted immediately before "(":
// the empty name denotes an inline shell call, "PLN" an artifact-path
// lookup.
var builtinFunctions = map[string]bool{"": true, "PLN": true}

// Shell runs a single shell command and captures its stdout. The
// production implementation backs onto psexec; tests may substitute a
// stub.
type Shell interface {
	Run(ctx context.Context, script, cwd string, env []string) (string, error)
}

// PsExecShell adapts a psexec.Executor to the Shell interface, the
// production implementation used by Expand.
type PsExecShell struct {
	Executor *psexec.Executor
}

func (s *PsExecShell) Run(ctx context.Context, script, cwd string, env []string) (string, error) {
	cmd := s.Executor.ShellCommand(script)
	cmd.Dir = cwd
	cmd.Env = env
	res := s.Executor.Run(ctx, cmd)
	if res.Err != nil {
		return "", res.Err
	}
	if !res.Success() {
		return "", &ParseError{Message: "shell call exited non-zero: " + res.Stderr}
	}
	return res.Stdout, nil
}

// Expand expands all `$...` references and `\`-escapes in text (assumed to
// be a single line), resolving bare names and "ALIAS.NAME" references
// against ctx and pipelines respectively, PLN(...) artifact paths against
// pipeline prefixes, and $(...) against sh. source/lineno are attached to
// any error raised.
func Expand(ctx context.Context, text string, vars model.Context, cwd string, pipelines map[string]*model.Pipeline, sh Shell, source string, lineno int) (string, error) {
	out, _, err := expandNested(ctx, text, vars, cwd, pipelines, sh, source, lineno, false)
	return out, err
}

// expandNested is the recursive form used both at the top level and for
// function arguments (nested=true), returning the position at which a
// terminating ")" was found when nested.
func expandNested(ctx context.Context, x string, vars model.Context, cwd string, pipelines map[string]*model.Pipeline, sh Shell, source string, lineno int, nested bool) (string, int, error) {
	cpos := 0

	for cpos < len(x) {
		switch x[cpos] {
		case '\\':
			if cpos == len(x)-1 {
				return "", 0, &ParseError{source, lineno, "incomplete escape sequence at EOL"}
			}
			c := x[cpos+1]
			if !strings.ContainsRune(supportedEscapable, rune(c)) {
				return "", 0, &ParseError{source, lineno, "invalid escape sequence \\" + string(c)}
			}
			x = x[:cpos] + string(c) + x[cpos+2:]
			cpos += 1

		case '$':
			if cpos == len(x)-1 {
				return "", 0, &ParseError{source, lineno, "incomplete variable reference"}
			}

			rest := x[cpos+1:]
			varname, raw, isCurly, matched := matchVariable(rest)
			if !matched {
				if rest[0] == '(' {
					varname = ""
				} else {
					return "", 0, &ParseError{source, lineno, "invalid variable reference"}
				}
			} else if isCurly {
				// splice out the curly braces, leaving the bare inner name
				// in place for the function-call check below.
				x = x[:cpos+1] + varname + x[cpos+1+len(raw):]
			}

			fxnParenPos := cpos + 1 + len(varname)
			if fxnParenPos < len(x)-1 && x[fxnParenPos] == '(' {
				if !builtinFunctions[varname] {
					return "", 0, &UnknownVariableError{source, lineno, "invalid builtin function name: " + varname}
				}

				argStart := fxnParenPos + 1
				expandedTail, eofxn, err := expandNested(ctx, x[argStart:], vars, cwd, pipelines, sh, source, lineno, true)
				if err != nil {
					return "", 0, err
				}
				x = x[:argStart] + expandedTail
				eofxn = argStart + eofxn

				argsStr := x[argStart:eofxn]
				args := splitArgs(argsStr)

				var retVal string
				switch varname {
				case "":
					out, err := sh.Run(ctx, argsStr, cwd, vars.Environ())
					if err != nil {
						return "", 0, err
					}
					out = strings.TrimSuffix(out, "\n")
					if strings.Contains(out, "\n") {
						return "", 0, &ParseError{source, lineno, "inline shell functions cannot return strings containing newlines"}
					}
					retVal = out

				case "PLN":
					var prefix, fname string
					switch len(args) {
					case 1:
						prefix = vars[model.PipelinePrefixVar]
						fname = args[0]
					case 2:
						alias := args[0]
						pln, ok := pipelines[alias]
						if !ok {
							return "", 0, &UnknownVariableError{source, lineno, "unable to find pipeline with alias \"" + alias + "\""}
						}
						prefix = pln.Prefix()
						fname = args[1]
					default:
						return "", 0, &ParseError{source, lineno, "too many arguments for $PLN(...) fxn"}
					}
					retVal = prefix + fname
				}

				x = x[:cpos] + retVal + x[eofxn+1:]
				cpos = cpos + len(retVal)
			} else {
				varCtx := vars
				lookupName := varname
				if idx := strings.IndexByte(varname, '.'); idx >= 0 {
					alias := varname[:idx]
					lookupName = varname[idx+1:]
					pln, ok := pipelines[alias]
					if !ok {
						return "", 0, &UnknownVariableError{source, lineno, "pipeline " + alias + " is unknown"}
					}
					varCtx = pln.Context
				}

				replacement, ok := varCtx[lookupName]
				if !ok {
					return "", 0, &UnknownVariableError{source, lineno, "variable " + lookupName + " does not exist"}
				}

				x = x[:cpos] + replacement + x[cpos+1+len(varname):]
				cpos = cpos + len(replacement)
			}

		case ')':
			if nested {
				return x, cpos, nil
			}
			cpos++

		default:
			cpos++
		}
	}

	if nested {
		return "", 0, &ParseError{source, lineno, "expected to find a \")\", none found"}
	}
	return x, cpos, nil
}

// matchVariable matches a bare name or a {NAME}/{ALIAS.NAME} curly
// reference at the start of s, returning the resolved variable name (with
// braces stripped, dotted form preserved) and the raw matched text.
func matchVariable(s string) (varname, raw string, isCurly bool, ok bool) {
	if s == "" {
		return "", "", false, false
	}
	if isWordChar(s[0]) {
		m := bareNameRe.FindString(s)
		return m, m, false, true
	}
	if s[0] == '{' {
		loc := curlyRe.FindStringSubmatchIndex(s)
		if loc == nil {
			return "", "", false, false
		}
		raw = s[loc[0]:loc[1]]
		alias := submatch(s, loc, 1)
		name := submatch(s, loc, 2)
		if alias != "" {
			varname = alias + "." + name
		} else {
			varname = name
		}
		return varname, raw, true, true
	}
	return "", "", false, false
}

func submatch(s string, loc []int, group int) string {
	start, end := loc[group*2], loc[group*2+1]
	if start < 0 {
		return ""
	}
	return s[start:end]
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// splitArgs splits a function-call argument string on literal commas,
// trimming surrounding whitespace from each piece. The split is textual
// and does not respect quoting.
func splitArgs(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
