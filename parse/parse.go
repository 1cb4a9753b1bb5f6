// Package parse lexes and parses a single pipeline file into an
// unresolved *model.Pipeline: preamble statements and tasks with
// unresolved dependency names, ready for the resolve package to compose
// via extend/use.
package parse

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/titpetric/xpipe/model"
)

var (
	extendRe     = regexp.MustCompile(`^extend\s+(.+)$`)
	usePathAsRe  = regexp.MustCompile(`^use\s+(.+?)(\s+as\s+([A-Za-z0-9_]+))?$`)
	prefixRe     = regexp.MustCompile(`^prefix\s+(file|dir)(\s+(.+?))?\s*$`)
	varAssignRe  = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*=(.+)$`)
	exportAssignRe = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*=(.*)$`)
	varDeleteRe  = regexp.MustCompile(`^unset\s+([A-Za-z0-9_]+)$`)
	taskHeaderRe = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*:(.*)$`)
	indentRe     = regexp.MustCompile(`^(\s+)\S`)
	validDepRe   = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)
)

// File reads and parses the pipeline file at path.
func File(path string, defaultPrefix model.PrefixKind) (*model.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), path, defaultPrefix)
}

// Parse parses pipeline file content already read into memory. source is
// the path recorded on statements/tasks and used in error messages.
func Parse(content, source string, defaultPrefix model.PrefixKind) (*model.Pipeline, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	statements, lineno, err := parsePreamble(lines, source)
	if err != nil {
		return nil, err
	}

	tasks, err := parseTasks(lines, lineno, source)
	if err != nil {
		return nil, err
	}

	pipeline := model.NewPipeline(source, statements, tasks, defaultPrefix)
	return pipeline, nil
}

func parsePreamble(lines []string, source string) ([]model.Statement, int, error) {
	var statements []model.Statement
	lineno := 0
	inComment := false
	inPreamble := true

	for lineno < len(lines) && inPreamble {
		cur := strings.TrimSpace(lines[lineno])

		switch {
		case inComment:
			if strings.HasPrefix(cur, "###") {
				inComment = false
			}
		case strings.HasPrefix(cur, "###"):
			inComment = true
		default:
			if m := extendRe.FindStringSubmatch(cur); m != nil {
				statements = append(statements, &model.ExtendStatement{
					Path: m[1], Source: source, Line: lineno + 1,
				})
			} else if m := varAssignRe.FindStringSubmatch(cur); m != nil {
				statements = append(statements, &model.VariableAssignment{
					Name: m[1], Value: m[2], Source: source, Line: lineno + 1,
				})
			} else if m := varDeleteRe.FindStringSubmatch(cur); m != nil {
				statements = append(statements, &model.DeleteVariable{
					Name: m[1], Source: source, Line: lineno + 1,
				})
			} else if m := usePathAsRe.FindStringSubmatch(cur); m != nil {
				var alias *string
				if m[3] != "" {
					a := m[3]
					alias = &a
				}
				us := &model.UseStatement{Path: m[1], Source: source, Line: lineno + 1}
				if alias != nil {
					us.Alias = *alias
				} else {
					us.Alias = m[1]
				}
				statements = append(statements, us)
			} else if m := prefixRe.FindStringSubmatch(cur); m != nil {
				var kind model.PrefixKind
				if m[1] == "dir" {
					kind = model.DirPrefix
				} else {
					kind = model.FilePrefix
				}
				var value *string
				if strings.TrimSpace(m[3]) != "" {
					v := strings.TrimSpace(m[3])
					value = &v
				}
				statements = append(statements, &model.PrefixStatement{
					Kind: kind, Value: value, Source: source, Line: lineno + 1,
				})
			} else if cur == "" || strings.HasPrefix(cur, "#") {
				// skip
			} else {
				inPreamble = false
			}
		}

		if inPreamble {
			lineno++
		}
	}

	return statements, lineno, nil
}

func parseTasks(lines []string, lineno int, source string) ([]*model.Task, error) {
	var tasks []*model.Task
	inComment := false

	for lineno < len(lines) {
		cur := strings.TrimRight(lines[lineno], " \t\r")

		switch {
		case inComment:
			lineno++
			if strings.HasPrefix(strings.TrimSpace(cur), "###") {
				inComment = false
			}
		case strings.HasPrefix(strings.TrimSpace(cur), "###"):
			lineno++
			inComment = true
		case strings.TrimSpace(cur) == "" || strings.HasPrefix(strings.TrimSpace(cur), "#"):
			lineno++
		default:
			m := taskHeaderRe.FindStringSubmatch(cur)
			if m == nil {
				return nil, &Error{source, lineno + 1, fmt.Sprintf("expected a task definition, got: %s", cur)}
			}
			task, next, err := parseTask(m[1], m[2], lines, source, lineno)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
			lineno = next
		}
	}

	return tasks, nil
}

// findIndentationMatch skips blank lines starting at lineno and applies
// re to the first non-blank line found, returning nil if none remain.
func findIndentationMatch(lines []string, lineno int, re *regexp.Regexp) []string {
	for lineno < len(lines) {
		if strings.TrimSpace(lines[lineno]) == "" {
			lineno++
			continue
		}
		return re.FindStringSubmatch(lines[lineno])
	}
	return nil
}

func parseTask(name, depStr string, lines []string, source string, lineno int) (*model.Task, int, error) {
	startLineno := lineno

	if idx := strings.IndexByte(depStr, '#'); idx >= 0 {
		depStr = depStr[:idx]
	}
	var depNames []string
	for _, dep := range strings.Fields(depStr) {
		if !validDepRe.MatchString(dep) {
			return nil, 0, &Error{source, lineno + 1, fmt.Sprintf("expected a dependency, got: %s", dep)}
		}
		depNames = append(depNames, dep)
	}
	lineno++

	im := findIndentationMatch(lines, lineno, indentRe)
	if im == nil {
		return &model.Task{Name: name, DepNames: depNames, Source: source, Line: startLineno + 1}, lineno, nil
	}
	indentSeq := im[1]
	codeRe := regexp.MustCompile(`^` + regexp.QuoteMeta(indentSeq) + `code\.(\w+):(.*)$`)
	exportRe := regexp.MustCompile(`^` + regexp.QuoteMeta(indentSeq) + `export:(.*)$`)
	commentFence := indentSeq + "###"
	commentLine := indentSeq + "#"

	var blocks []model.Block
	inTask := true
	inComment := false

	for lineno < len(lines) && inTask {
		cur := strings.TrimRight(lines[lineno], " \t\r")

		if inComment {
			if !strings.HasPrefix(cur, indentSeq) {
				return nil, 0, &Error{source, lineno + 1, "all lines in a comment block must be indented"}
			}
			lineno++
			if strings.TrimRight(cur, " \t") == commentFence {
				inComment = false
			}
			continue
		}

		mc := codeRe.FindStringSubmatch(cur)
		me := exportRe.FindStringSubmatch(cur)

		switch {
		case strings.HasPrefix(cur, commentFence):
			inComment = true
			lineno++
		case strings.HasPrefix(cur, commentLine) || strings.TrimSpace(cur) == "":
			lineno++
		case mc != nil:
			lang, argStr := mc[1], mc[2]
			blockLineno := lineno
			next, content, _ := readBlockContent(lines, lineno+1, indentSeq)
			blocks = append(blocks, &model.CodeBlock{
				Lang: lang, ArgStr: argStr, Lines: content,
				Source: source, Line: blockLineno + 1,
			})
			lineno = next
		case me != nil:
			argStr := strings.TrimSpace(me[1])
			if argStr != "" {
				return nil, 0, &Error{source, lineno + 1, "export block does not accept an argument string"}
			}
			exportLineno := lineno
			next, content, contentLinenos := readBlockContent(lines, lineno+1, indentSeq)

			stmts, err := parseExportStatements(content, contentLinenos, source)
			if err != nil {
				return nil, 0, err
			}
			blocks = append(blocks, &model.ExportBlock{Statements: stmts, Source: source, Line: exportLineno + 1})
			lineno = next
		default:
			inTask = false
		}
	}

	return &model.Task{Name: name, DepNames: depNames, Blocks: blocks, Source: source, Line: startLineno + 1}, lineno, nil
}

func parseExportStatements(content []string, linenos []int, source string) ([]model.ExportStatement, error) {
	var out []model.ExportStatement
	for i, line := range content {
		line = strings.TrimRight(line, " \t\r")
		ln := linenos[i] + 1
		if ma := exportAssignRe.FindStringSubmatch(line); ma != nil {
			out = append(out, &model.VariableAssignment{Name: ma[1], Value: ma[2], Source: source, Line: ln})
		} else if md := varDeleteRe.FindStringSubmatch(line); md != nil {
			out = append(out, &model.DeleteVariable{Name: md[1], Source: source, Line: ln})
		} else if line == "" {
			continue
		} else {
			return nil, &Error{source, ln, fmt.Sprintf("expected a variable assignment, got: %s", line)}
		}
	}
	return out, nil
}

// readBlockContent extracts a block's content lines: the first non-blank
// line after lineno fixes the inner indent sequence (strictly deeper than
// indentSeq); subsequent lines are content as long as they share that
// indent or are blank. Returns the line past the block, the dedented
// content, and the 0-based source line number of each content line.
func readBlockContent(lines []string, lineno int, indentSeq string) (int, []string, []int) {
	innerRe := regexp.MustCompile(`^(` + regexp.QuoteMeta(indentSeq) + `\s+)\S`)
	im := findIndentationMatch(lines, lineno, innerRe)
	if im == nil {
		return lineno, nil, nil
	}
	innerIndent := im[1]

	var content []string
	var linenos []int
	last := lineno
	for last < len(lines) {
		if strings.HasPrefix(lines[last], innerIndent) {
			content = append(content, lines[last])
			linenos = append(linenos, last)
		} else if strings.TrimSpace(lines[last]) == "" {
			content = append(content, innerIndent)
			linenos = append(linenos, last)
		} else {
			break
		}
		last++
	}

	il := len(innerIndent)
	for i, l := range content {
		content[i] = strings.TrimRight(l[il:], " \t\r")
	}
	return last, content, linenos
}
