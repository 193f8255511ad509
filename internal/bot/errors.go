package bot

import "fmt"

// ParamError rejects a caller-supplied argument before any network call.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

func blankParam(name string) *ParamError {
	return &ParamError{Param: name, Reason: "is blank"}
}
