package media

import "fmt"

// Origin tags the source of a terminal signal.
type Origin string

const (
	OriginStream  Origin = "stream"
	OriginProcess Origin = "process"
	OriginSink    Origin = "sink"
)

// Signal is one observable event from a job's I/O sources.
type Signal struct {
	Origin Origin
	// Source names the emitter, e.g. "audio" for a stream.
	Source string
	Err    error
	// Exited is set when the process closed with ExitCode.
	Exited   bool
	ExitCode int
}

// StreamFailed reports an upstream read error.
func StreamFailed(name string, err error) Signal {
	return Signal{Origin: OriginStream, Source: name, Err: err}
}

// ProcessFailed reports a spawn or runtime error of the transcoder.
func ProcessFailed(err error) Signal {
	return Signal{Origin: OriginProcess, Source: "ffmpeg", Err: err}
}

// ProcessExited reports the transcoder closing with code.
func ProcessExited(code int) Signal {
	return Signal{Origin: OriginProcess, Source: "ffmpeg", Exited: true, ExitCode: code}
}

// SinkFailed reports a write error on the output file.
func SinkFailed(err error) Signal {
	return Signal{Origin: OriginSink, Source: "output", Err: err}
}

func (s Signal) String() string {
	if s.Exited {
		return fmt.Sprintf("%s exited with code %d", s.Source, s.ExitCode)
	}
	return fmt.Sprintf("%s %s error: %v", s.Origin, s.Source, s.Err)
}

// SignalSink receives job signals. Offer reports whether the signal
// committed the terminal outcome.
type SignalSink interface {
	Offer(sig Signal) bool
}

// Outcome is the terminal result of a job: Path on success, Err otherwise.
type Outcome struct {
	Path string
	Err  *Error
	// Cached is set when the output already existed.
	Cached bool
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Success builds a successful outcome.
func Success(path string) Outcome {
	return Outcome{Path: path}
}

// Failure builds a failed outcome.
func Failure(err *Error) Outcome {
	return Outcome{Err: err}
}

// OutcomeOf maps a committing signal to its outcome. Only a zero exit
// code succeeds.
func OutcomeOf(sig Signal, path string) Outcome {
	if sig.Exited && sig.ExitCode == 0 {
		return Success(path)
	}

	e := &Error{Origin: sig.Origin, Err: sig.Err}
	switch sig.Origin {
	case OriginStream:
		e.Code = CodeResolution
		e.Reason = fmt.Sprintf("error in %s stream: %v", sig.Source, sig.Err)
	case OriginSink:
		e.Code = CodeSink
		e.Reason = fmt.Sprintf("error writing to output file: %v", sig.Err)
	case OriginProcess:
		e.Code = CodeProcess
		if sig.Exited {
			e.Reason = fmt.Sprintf("ffmpeg exited with code %d", sig.ExitCode)
		} else {
			e.Reason = fmt.Sprintf("error in ffmpeg process: %v", sig.Err)
		}
	default:
		e.Code = CodeInternal
		e.Reason = sig.String()
	}
	return Failure(e)
}
