package media

import (
	"io"
	"time"
)

// ProcessState describes the transcoder lifecycle of a job.
type ProcessState string

const (
	ProcessNotStarted ProcessState = "not_started"
	ProcessStarted    ProcessState = "started"
	ProcessClosed     ProcessState = "closed"
)

// Stream is an upstream byte stream bound to one transcoder input.
type Stream struct {
	// Name identifies the stream in signals and logs ("audio" or "video").
	Name      string
	Rendition Rendition
	Body      io.ReadCloser
}

// PendingOutput is a destination that becomes visible at its final path
// only once published.
type PendingOutput interface {
	io.Writer
	// Path is where a transcoder may write directly.
	Path() string
	Publish() error
	Discard() error
}

// TranscodePlan is everything the transcoder needs to produce one output.
type TranscodePlan struct {
	JobID  string
	Kind   Kind
	Audio  *Stream
	Video  *Stream
	Output PendingOutput
}

// Job is the transient state of one download. It is owned by the call that
// created it and never shared.
type Job struct {
	ID        string
	Request   DownloadRequest
	Output    OutputDescriptor
	Streams   []*Stream
	State     ProcessState
	StartedAt time.Time
}
