// Package value defines the result and error records shared across the
// sequence engine: what a Function node leaves behind, and how a raised
// error is captured.
package value

import "fmt"

// ErrInfo captures a raised error by name and its arguments, the way a
// sequence function or wrapper signals failure (spec §6, §7).
type ErrInfo struct {
	Name string
	Args map[string]any
}

func (e *ErrInfo) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%v)", e.Name, e.Args)
}

// ExceptionInfo is the combined failure record for one Function node
// invocation: the user function's own error, if any, and the aggregate
// of wrapper pre/post errors, if any (spec §3, §4.4 step 6).
type ExceptionInfo struct {
	Function *ErrInfo
	Wrappers *ErrInfo
}

// Present reports whether either half of the exception carries an error.
func (e *ExceptionInfo) Present() bool {
	return e != nil && (e.Function != nil || e.Wrappers != nil)
}

// Result is the record left in the result registry after a Function node
// completes (spec §3). NID is the node id; Returned is absent (nil) on
// failure; Exception is nil when the invocation raised nothing.
type Result struct {
	NID       int
	Returned  any
	Exception *ExceptionInfo
}

// Failed reports whether this result carries an exception of any kind.
func (r Result) Failed() bool {
	return r.Exception.Present()
}
