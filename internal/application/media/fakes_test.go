package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"ytgrab/internal/domain/media"
)

type fakeStore struct {
	mu         sync.Mutex
	existing   map[string]bool
	existsErr  error
	createErr  error
	publishErr error
	outputs    []*fakeOutput
	probes     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: make(map[string]bool)}
}

func (s *fakeStore) Describe(req media.DownloadRequest) media.OutputDescriptor {
	dir := "videos"
	if req.Kind == media.KindAudio {
		dir = "audios"
	}
	name := media.OutputName(req)
	public := "/" + dir + "/" + name
	return media.OutputDescriptor{Kind: req.Kind, Name: name, Path: "/srv/public" + public, PublicPath: public}
}

func (s *fakeStore) Exists(desc media.OutputDescriptor) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.existing[desc.Path], nil
}

func (s *fakeStore) Create(desc media.OutputDescriptor) (media.PendingOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	out := &fakeOutput{store: s, final: desc.Path}
	s.outputs = append(s.outputs, out)
	return out, nil
}

func (s *fakeStore) probeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probes
}

func (s *fakeStore) created() []*fakeOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeOutput(nil), s.outputs...)
}

type fakeOutput struct {
	store *fakeStore
	final string

	mu        sync.Mutex
	buf       bytes.Buffer
	published bool
	discarded bool
}

func (o *fakeOutput) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

func (o *fakeOutput) Path() string { return o.final + ".pending" }

func (o *fakeOutput) Publish() error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if o.store.publishErr != nil {
		return o.store.publishErr
	}
	o.mu.Lock()
	o.published = true
	o.mu.Unlock()
	o.store.existing[o.final] = true
	return nil
}

func (o *fakeOutput) Discard() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.published {
		o.discarded = true
	}
	return nil
}

func (o *fakeOutput) state() (published, discarded bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.published, o.discarded
}

type trackedBody struct {
	io.Reader
	closed atomic.Bool
}

func (b *trackedBody) Close() error {
	b.closed.Store(true)
	return nil
}

type openCall struct {
	locator  string
	selector media.Selector
	body     *trackedBody
}

type fakeSource struct {
	catalog    media.Catalog
	catalogErr error
	// failOn makes OpenStream fail for selectors with this String().
	failOn string

	mu    sync.Mutex
	calls []openCall
}

func (f *fakeSource) ResolveCatalog(_ context.Context, _ string) (media.Catalog, error) {
	if f.catalogErr != nil {
		return media.Catalog{}, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeSource) OpenStream(_ context.Context, locator string, sel media.Selector) (media.Rendition, io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sel.String() == f.failOn {
		f.calls = append(f.calls, openCall{locator: locator, selector: sel})
		return media.Rendition{}, nil, errors.New("410 gone")
	}
	body := &trackedBody{Reader: strings.NewReader(sel.String())}
	f.calls = append(f.calls, openCall{locator: locator, selector: sel, body: body})
	rendition, _ := sel.Select(f.catalog)
	return rendition, body, nil
}

func (f *fakeSource) opened() []openCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openCall(nil), f.calls...)
}

type fakeTranscoder struct {
	availableErr error
	// script runs in its own goroutine for every Run call.
	script func(ctx context.Context, plan media.TranscodePlan, signals media.SignalSink)

	mu    sync.Mutex
	plans []media.TranscodePlan
}

func (f *fakeTranscoder) Available() error { return f.availableErr }

func (f *fakeTranscoder) Run(ctx context.Context, plan media.TranscodePlan, signals media.SignalSink) <-chan struct{} {
	f.mu.Lock()
	f.plans = append(f.plans, plan)
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.script(ctx, plan, signals)
	}()
	return done
}

func (f *fakeTranscoder) runs() []media.TranscodePlan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.TranscodePlan(nil), f.plans...)
}

// exitWith writes to the output and reports a process close with code.
func exitWith(code int) func(context.Context, media.TranscodePlan, media.SignalSink) {
	return func(_ context.Context, plan media.TranscodePlan, signals media.SignalSink) {
		_, _ = plan.Output.Write([]byte("encoded"))
		signals.Offer(media.ProcessExited(code))
	}
}

func testCatalog() media.Catalog {
	return media.Catalog{
		Title: "Test Video",
		Renditions: []media.Rendition{
			{ID: "18", Kind: media.RenditionMuxed, QualityLabel: "360p", AudioBitrate: 96},
			{ID: "134", Kind: media.RenditionVideo, QualityLabel: "360p"},
			{ID: "140", Kind: media.RenditionAudio, AudioBitrate: 128, MimeType: "audio/mp4"},
			{ID: "251", Kind: media.RenditionAudio, AudioBitrate: 160, MimeType: "audio/webm"},
		},
	}
}
