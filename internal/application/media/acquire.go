package media

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ytgrab/internal/domain/media"
)

// acquireStreams opens the upstream streams a request needs: the exact
// rendition for audio downloads, or the exact video rendition plus the best
// available audio for video downloads. On error nothing is left open.
func (s *Service) acquireStreams(ctx context.Context, req media.DownloadRequest) (audio, video *media.Stream, err error) {
	if req.Kind == media.KindAudio {
		audio, err = s.openStream(ctx, req.Locator, "audio", media.ByID(req.RenditionID))
		return audio, nil, err
	}

	// Streams outlive the group: never open them on a group context.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		video, err = s.openStream(ctx, req.Locator, "video", media.ByID(req.RenditionID))
		return err
	})
	g.Go(func() error {
		var err error
		audio, err = s.openStream(ctx, req.Locator, "audio", media.BestAudio{})
		return err
	})
	if err := g.Wait(); err != nil {
		closeStreams(audio, video)
		return nil, nil, err
	}
	return audio, video, nil
}

func (s *Service) openStream(ctx context.Context, locator, name string, sel media.Selector) (*media.Stream, error) {
	rendition, body, err := s.source.OpenStream(ctx, locator, sel)
	if err != nil {
		return nil, media.Resolution(fmt.Sprintf("cannot open %s stream (%s)", name, sel), err)
	}
	s.logger.Debug().
		Str("stream", name).
		Str("selector", sel.String()).
		Str("rendition", rendition.ID).
		Msg("upstream stream opened")
	return &media.Stream{Name: name, Rendition: rendition, Body: body}, nil
}

func closeStreams(streams ...*media.Stream) {
	for _, st := range streams {
		if st != nil && st.Body != nil {
			_ = st.Body.Close()
		}
	}
}
