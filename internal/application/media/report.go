package media

import "ytgrab/internal/domain/media"

const successMessage = "Downloaded Successfully"

// Result is the caller-facing form of an outcome.
type Result struct {
	Message   string          `json:"message"`
	Path      string          `json:"path,omitempty"`
	ErrorCode media.ErrorCode `json:"errorCode,omitempty"`
}

// Report maps an outcome to its caller-facing result.
func Report(outcome media.Outcome) Result {
	if outcome.Succeeded() {
		return Result{Message: successMessage, Path: outcome.Path}
	}
	return Result{Message: outcome.Err.Reason, ErrorCode: outcome.Err.Code}
}
