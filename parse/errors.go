package parse

import "fmt"

// Error reports a malformed pipeline file: an unrecognized task-level
// line, a misshapen dependency token, an unindented comment-block line, or
// any other structural defect. Line is 1-based.
type Error struct {
	Source  string
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
}
