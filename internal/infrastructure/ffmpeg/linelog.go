package ffmpeg

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// lineLog is the stderr of an ffmpeg process. It logs each line at debug
// and keeps the last lines for failure reports.
type lineLog struct {
	mu      sync.Mutex
	logger  zerolog.Logger
	partial []byte
	ring    []string
	next    int
	full    bool
}

func newLineLog(logger zerolog.Logger, size int) *lineLog {
	return &lineLog{logger: logger, ring: make([]string, size)}
}

func (l *lineLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.partial = append(l.partial, p...)
	for {
		// ffmpeg rewrites its progress line with \r.
		i := bytes.IndexAny(l.partial, "\r\n")
		if i < 0 {
			break
		}
		l.push(string(bytes.TrimSpace(l.partial[:i])))
		l.partial = l.partial[i+1:]
	}
	return len(p), nil
}

func (l *lineLog) push(line string) {
	if line == "" {
		return
	}
	l.logger.Debug().Str("stderr", line).Msg("ffmpeg")
	l.ring[l.next] = line
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
}

// Tail returns the retained lines, oldest first, including an unterminated last line.
func (l *lineLog) Tail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	if l.full {
		out = append(out, l.ring[l.next:]...)
	}
	out = append(out, l.ring[:l.next]...)
	if rest := string(bytes.TrimSpace(l.partial)); rest != "" {
		out = append(out, rest)
	}
	return out
}
