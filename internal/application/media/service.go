package media

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"ytgrab/internal/domain/media"
	"ytgrab/internal/metrics"
)

// Service handles catalog and download use cases.
type Service struct {
	store      OutputStore
	source     SourceResolver
	transcoder Transcoder
	logger     zerolog.Logger

	// flights serializes jobs per output path; identical concurrent
	// requests share the running job's outcome.
	flights singleflight.Group
}

// NewService creates a media use-case service with injected ports.
func NewService(store OutputStore, source SourceResolver, transcoder Transcoder, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		source:     source,
		transcoder: transcoder,
		logger:     logger,
	}
}

// Catalog returns the metadata and renditions of locator.
func (s *Service) Catalog(ctx context.Context, locator string) (media.Catalog, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return media.Catalog{}, media.Validation("url is required")
	}
	catalog, err := s.source.ResolveCatalog(ctx, locator)
	if err != nil {
		s.logger.Warn().Err(err).Str("locator", locator).Msg("catalog lookup failed")
		return media.Catalog{}, media.Resolution("Url is not valid", err)
	}
	return catalog, nil
}

// Download validates raw, reuses an existing output when present and
// otherwise transcodes it. Exactly one outcome is returned per call.
func (s *Service) Download(ctx context.Context, raw media.RawRequest) media.Outcome {
	req, err := media.ParseRequest(raw)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("invalid", string(media.CodeOf(err))).Inc()
		return media.Failure(media.AsError(err))
	}

	desc := s.store.Describe(req)
	outcome := s.download(ctx, req, desc)

	result := "ok"
	switch {
	case outcome.Err != nil:
		result = string(outcome.Err.Code)
	case outcome.Cached:
		result = "cached"
	}
	metrics.DownloadsTotal.WithLabelValues(string(req.Kind), result).Inc()
	return outcome
}

func (s *Service) download(ctx context.Context, req media.DownloadRequest, desc media.OutputDescriptor) media.Outcome {
	if outcome, hit := s.probe(desc); hit {
		return outcome
	}

	if err := s.transcoder.Available(); err != nil {
		s.logger.Error().Err(err).Msg("transcoder unavailable")
		return media.Failure(&media.Error{
			Code:   media.CodeProcess,
			Origin: media.OriginProcess,
			Reason: "FFmpeg not found",
			Err:    err,
		})
	}

	// Jobs are not cancellable: a caller going away does not stop the transcode.
	jobCtx := context.WithoutCancel(ctx)
	v, _, shared := s.flights.Do(desc.Path, func() (interface{}, error) {
		if outcome, hit := s.probe(desc); hit {
			return outcome, nil
		}
		return s.transcode(jobCtx, req, desc), nil
	})
	if shared {
		metrics.JobsJoined.Inc()
		s.logger.Info().Str("path", desc.PublicPath).Msg("identical download shared an in-flight job")
	}
	return v.(media.Outcome)
}

// probe reports whether desc already exists. A failed presence check is a
// terminal internal failure.
func (s *Service) probe(desc media.OutputDescriptor) (media.Outcome, bool) {
	exists, err := s.store.Exists(desc)
	if err != nil {
		metrics.CacheProbes.WithLabelValues("error").Inc()
		return media.Failure(media.Internal("cannot check output file", err)), true
	}
	if !exists {
		metrics.CacheProbes.WithLabelValues("miss").Inc()
		return media.Outcome{}, false
	}
	metrics.CacheProbes.WithLabelValues("hit").Inc()
	s.logger.Debug().Str("path", desc.PublicPath).Msg("output already exists")
	return media.Outcome{Path: desc.PublicPath, Cached: true}, true
}

func (s *Service) transcode(ctx context.Context, req media.DownloadRequest, desc media.OutputDescriptor) media.Outcome {
	job := &media.Job{
		ID:        uuid.NewString(),
		Request:   req,
		Output:    desc,
		State:     media.ProcessNotStarted,
		StartedAt: time.Now(),
	}
	logger := s.logger.With().
		Str("job_id", job.ID).
		Str("kind", string(req.Kind)).
		Str("path", desc.PublicPath).
		Logger()

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	audio, video, err := s.acquireStreams(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("stream acquisition failed")
		return media.Failure(media.AsError(err))
	}
	job.Streams = append(job.Streams, audio)
	if video != nil {
		job.Streams = append(job.Streams, video)
	}

	output, err := s.store.Create(desc)
	if err != nil {
		closeStreams(job.Streams...)
		logger.Error().Err(err).Msg("cannot create output file")
		return media.Failure(&media.Error{
			Code:   media.CodeSink,
			Origin: media.OriginSink,
			Reason: "cannot create output file",
			Err:    err,
		})
	}

	arb := newArbiter(desc.PublicPath, logger)
	procCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info().Int("streams", len(job.Streams)).Msg("transcode started")
	done := s.transcoder.Run(procCtx, media.TranscodePlan{
		JobID:  job.ID,
		Kind:   req.Kind,
		Audio:  audio,
		Video:  video,
		Output: output,
	}, arb)
	advance(job, media.ProcessStarted, logger)

	outcome := arb.Outcome()

	// Release everything the job owns before reporting.
	cancel()
	closeStreams(job.Streams...)
	<-done
	advance(job, media.ProcessClosed, logger)

	outcome = s.settle(outcome, output, logger)

	result := "ok"
	if outcome.Err != nil {
		result = string(outcome.Err.Code)
		logger.Warn().
			Str("origin", string(outcome.Err.Origin)).
			Str("reason", outcome.Err.Reason).
			Dur("elapsed", time.Since(job.StartedAt)).
			Msg("transcode failed")
	} else {
		logger.Info().Dur("elapsed", time.Since(job.StartedAt)).Msg("transcode finished")
	}
	metrics.JobDuration.WithLabelValues(string(req.Kind), result).Observe(time.Since(job.StartedAt).Seconds())
	return outcome
}

// advance moves job to state and logs the transition.
func advance(job *media.Job, state media.ProcessState, logger zerolog.Logger) {
	logger.Debug().
		Str("from", string(job.State)).
		Str("to", string(state)).
		Msg("job state changed")
	job.State = state
}

// settle publishes the output of a successful job and discards it otherwise,
// so the deterministic path only ever holds finished files.
func (s *Service) settle(outcome media.Outcome, output media.PendingOutput, logger zerolog.Logger) media.Outcome {
	if !outcome.Succeeded() {
		if err := output.Discard(); err != nil {
			logger.Warn().Err(err).Msg("cannot remove partial output")
		}
		return outcome
	}

	if err := output.Publish(); err != nil {
		_ = output.Discard()
		return media.Failure(&media.Error{
			Code:   media.CodeSink,
			Origin: media.OriginSink,
			Reason: "cannot publish output file",
			Err:    err,
		})
	}
	return outcome
}
