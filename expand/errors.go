package expand

import "fmt"

// ParseError reports a malformed escape, variable reference, or function
// call encountered while scanning a line.
type ParseError struct {
	Source  string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
}

// UnknownVariableError reports a reference to a variable or pipeline alias
// that does not exist in the context in scope.
type UnknownVariableError struct {
	Source  string
	Line    int
	Message string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
}
