package domain

// Status values carried by every Result. The process exit code is derived
// from the status alone: ok -> 0, fail -> 1, error -> 2.
const (
	StatusOK    = "ok"
	StatusFail  = "fail"
	StatusError = "error"
)

// Result is the single JSON object every invocation writes to stdout.
type Result struct {
	Status string     `json:"status"`
	Checks []Check    `json:"checks,omitempty"`
	Stdout string     `json:"stdout,omitempty"`
	Error  *ErrorInfo `json:"error,omitempty"`
	Data   any        `json:"data,omitempty"`
}

// Check is one named pass/fail outcome inside a probe or test.
type Check struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// ErrorInfo describes why an invocation could not be carried out.
// Location is "file:line:col" when the failure maps to a source position.
type ErrorInfo struct {
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// OK builds a success result with an optional data payload.
func OK(data any) Result {
	return Result{Status: StatusOK, Data: data}
}

// Failed reports whether any check in the list did not hold.
func Failed(checks []Check) bool {
	for _, c := range checks {
		if !c.Passed {
			return true
		}
	}
	return false
}

// FromChecks builds a result whose status reflects the check outcomes.
func FromChecks(checks []Check, stdout string, data any) Result {
	status := StatusOK
	if Failed(checks) {
		status = StatusFail
	}
	return Result{Status: status, Checks: checks, Stdout: stdout, Data: data}
}

// Errored builds an execution-error result from err, preserving the
// source location when the error carries one.
func Errored(err error, stdout string) Result {
	info := &ErrorInfo{Message: err.Error()}
	if loc := LocationOf(err); loc != "" {
		info.Location = loc
	}
	return Result{Status: StatusError, Stdout: stdout, Error: info}
}
