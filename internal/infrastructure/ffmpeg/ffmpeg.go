package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ytgrab/internal/domain/media"
	"ytgrab/internal/metrics"
)

const (
	stderrTailLines = 20
	copyBufferSize  = 32 * 1024
)

// Runner spawns ffmpeg for download jobs.
type Runner struct {
	BinPath string
	// Env is appended to the current environment of the child.
	Env []string
	// KillGrace bounds how long Run waits for I/O after the process is killed.
	KillGrace time.Duration

	logger zerolog.Logger
}

// NewRunner creates an ffmpeg adapter.
func NewRunner(binPath string, killGrace time.Duration, logger zerolog.Logger) *Runner {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Runner{BinPath: binPath, KillGrace: killGrace, logger: logger}
}

// Available reports whether the ffmpeg binary can be found.
func (r *Runner) Available() error {
	if _, err := exec.LookPath(r.BinPath); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// AudioArgs extracts the audio of pipe:0 as mp3 onto pipe:1.
func AudioArgs() []string {
	return []string{
		"-hide_banner",
		"-i", "pipe:0",
		"-q:a", "0",
		"-map", "a",
		"-f", "mp3",
		"pipe:1",
	}
}

// MuxArgs muxes audio from fd 3 and video from fd 4 into an mp4 at outputPath,
// copying the video track untouched.
func MuxArgs(outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", "pipe:3",
		"-i", "pipe:4",
		"-map", "0:a",
		"-map", "1:v",
		"-c:v", "copy",
		"-c:a", "aac",
		"-f", "mp4",
		outputPath,
	}
}

// Run spawns ffmpeg for plan and wires its streams. Every stream error, sink
// error, spawn error and process close is forwarded to signals; Run itself
// never decides the outcome. The returned channel closes when the process has
// been reaped and every wiring goroutine has returned.
func (r *Runner) Run(ctx context.Context, plan media.TranscodePlan, signals media.SignalSink) <-chan struct{} {
	done := make(chan struct{})
	logger := r.logger.With().Str("job_id", plan.JobID).Logger()

	w, err := wire(plan)
	if err != nil {
		metrics.TranscoderExits.WithLabelValues("wiring_error").Inc()
		signals.Offer(media.ProcessFailed(err))
		close(done)
		return done
	}

	stderr := newLineLog(logger, stderrTailLines)
	cmd := exec.CommandContext(ctx, r.BinPath, w.args...)
	cmd.Env = append(os.Environ(), r.Env...)
	if w.stdin != nil {
		cmd.Stdin = w.stdin
	}
	if w.stdout != nil {
		cmd.Stdout = w.stdout
	}
	cmd.ExtraFiles = w.extra
	cmd.Stderr = stderr
	cmd.WaitDelay = r.KillGrace

	if err := cmd.Start(); err != nil {
		w.closeAll()
		metrics.TranscoderExits.WithLabelValues("spawn_error").Inc()
		signals.Offer(media.ProcessFailed(err))
		close(done)
		return done
	}
	w.closeChildEnds()
	logger.Debug().Int("pid", cmd.Process.Pid).Strs("args", w.args).Msg("ffmpeg started")

	var wg sync.WaitGroup
	for _, in := range w.inputs {
		wg.Add(1)
		go func(in input) {
			defer wg.Done()
			pump(in, signals, logger)
		}(in)
	}

	sinkDone := make(chan struct{})
	if w.output != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(sinkDone)
			drain(w.output, plan.Output, signals, logger)
		}()
	} else {
		close(sinkDone)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := cmd.Wait()
		// The process only counts as closed once its output is fully written.
		<-sinkDone
		reportExit(err, stderr, signals, logger)
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func reportExit(err error, stderr *lineLog, signals media.SignalSink, logger zerolog.Logger) {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		metrics.TranscoderExits.WithLabelValues("exit0").Inc()
		signals.Offer(media.ProcessExited(0))
		return
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		metrics.TranscoderExits.WithLabelValues("exit_nonzero").Inc()
		signals.Offer(media.ProcessExited(exitErr.ExitCode()))
	default:
		metrics.TranscoderExits.WithLabelValues("error").Inc()
		signals.Offer(media.ProcessFailed(err))
	}
	logger.Warn().Err(err).Strs("stderr", stderr.Tail()).Msg("ffmpeg failed")
}

// pump copies an upstream stream into its transcoder input. Read errors are
// stream signals; a failed write means the process went away and is left to
// the process close to report.
func pump(in input, signals media.SignalSink, logger zerolog.Logger) {
	defer in.dst.Close()

	buf := make([]byte, copyBufferSize)
	for {
		n, err := in.src.Read(buf)
		if n > 0 {
			if _, werr := in.dst.Write(buf[:n]); werr != nil {
				logger.Debug().Err(werr).Str("stream", in.name).Msg("ffmpeg input closed")
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			signals.Offer(media.StreamFailed(in.name, err))
			return
		}
	}
}

// drain copies ffmpeg's stdout into the output. After a write error the rest
// of stdout is discarded so ffmpeg never blocks on a full pipe.
func drain(src *os.File, dst io.Writer, signals media.SignalSink, logger zerolog.Logger) {
	defer src.Close()

	buf := make([]byte, copyBufferSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				signals.Offer(media.SinkFailed(werr))
				_, _ = io.Copy(io.Discard, src)
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			logger.Debug().Err(err).Msg("ffmpeg output read failed")
			return
		}
	}
}
