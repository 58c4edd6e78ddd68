package media

import (
	"context"
	"io"

	mediadomain "ytgrab/internal/domain/media"
)

// SourceResolver is an application port for catalog lookup and upstream streams.
type SourceResolver interface {
	ResolveCatalog(ctx context.Context, locator string) (mediadomain.Catalog, error)
	OpenStream(ctx context.Context, locator string, sel mediadomain.Selector) (mediadomain.Rendition, io.ReadCloser, error)
}

// Transcoder is an application port for the external transcoding process.
type Transcoder interface {
	// Available reports whether the transcoder can be spawned at all.
	Available() error
	// Run spawns the process, wires the plan's streams and output and forwards
	// every observable event to signals. It returns once wiring is done; the
	// returned channel closes after the process is reaped and all wiring has
	// stopped. Cancelling ctx kills the process.
	Run(ctx context.Context, plan mediadomain.TranscodePlan, signals mediadomain.SignalSink) <-chan struct{}
}

// OutputStore is an application port for the output layout and cache presence.
type OutputStore interface {
	Describe(req mediadomain.DownloadRequest) mediadomain.OutputDescriptor
	Exists(desc mediadomain.OutputDescriptor) (bool, error)
	Create(desc mediadomain.OutputDescriptor) (mediadomain.PendingOutput, error)
}
