package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"ytgrab/internal/domain/media"
)

// ErrNoRendition is returned when no format of a video matches a selector.
var ErrNoRendition = errors.New("no matching rendition")

// Known audio bitrates (kbps) of common itags; other formats fall back to
// the advertised bitrate.
var itagAudioBitrates = map[int]int{
	18:  96,
	22:  192,
	139: 48,
	140: 128,
	141: 256,
	171: 128,
	172: 192,
	249: 48,
	250: 64,
	251: 160,
}

// Client resolves catalogs and streams through the YouTube player API.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a source resolver. A nil httpClient uses the library default.
func NewClient(httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{httpClient: httpClient, logger: logger}
}

// player returns a fresh API client for one operation. youtube.Client keeps
// mutable session state and must not be shared between goroutines or jobs.
func (c *Client) player() *youtube.Client {
	return &youtube.Client{HTTPClient: c.httpClient}
}

// ResolveCatalog fetches the metadata and renditions of locator.
func (c *Client) ResolveCatalog(ctx context.Context, locator string) (media.Catalog, error) {
	video, err := c.player().GetVideoContext(ctx, locator)
	if err != nil {
		return media.Catalog{}, fmt.Errorf("get video %q: %w", locator, err)
	}
	return catalogOf(video), nil
}

// OpenStream opens the byte stream of the rendition sel picks for locator.
func (c *Client) OpenStream(ctx context.Context, locator string, sel media.Selector) (media.Rendition, io.ReadCloser, error) {
	yt := c.player()
	video, err := yt.GetVideoContext(ctx, locator)
	if err != nil {
		return media.Rendition{}, nil, fmt.Errorf("get video %q: %w", locator, err)
	}

	rendition, ok := sel.Select(catalogOf(video))
	if !ok {
		return media.Rendition{}, nil, fmt.Errorf("%w: %s", ErrNoRendition, sel)
	}
	format := findFormat(video.Formats, rendition.ID)
	if format == nil {
		return media.Rendition{}, nil, fmt.Errorf("%w: %s", ErrNoRendition, sel)
	}

	body, size, err := yt.GetStreamContext(ctx, video, format)
	if err != nil {
		return media.Rendition{}, nil, fmt.Errorf("open stream itag %d: %w", format.ItagNo, err)
	}
	c.logger.Debug().
		Str("video_id", video.ID).
		Int("itag", format.ItagNo).
		Int64("size", size).
		Msg("stream opened")
	return rendition, body, nil
}

func findFormat(formats youtube.FormatList, id string) *youtube.Format {
	itag, err := strconv.Atoi(id)
	if err != nil {
		return nil
	}
	for i := range formats {
		if formats[i].ItagNo == itag {
			return &formats[i]
		}
	}
	return nil
}

func catalogOf(video *youtube.Video) media.Catalog {
	renditions := make([]media.Rendition, 0, len(video.Formats))
	for i := range video.Formats {
		renditions = append(renditions, renditionOf(&video.Formats[i]))
	}
	return media.Catalog{
		Title:      video.Title,
		Author:     video.Author,
		Duration:   video.Duration,
		Renditions: renditions,
	}
}

func renditionOf(f *youtube.Format) media.Rendition {
	kind := media.RenditionVideo
	switch {
	case strings.HasPrefix(f.MimeType, "audio/"):
		kind = media.RenditionAudio
	case f.AudioChannels > 0:
		kind = media.RenditionMuxed
	}

	r := media.Rendition{
		ID:            strconv.Itoa(f.ItagNo),
		Kind:          kind,
		MimeType:      f.MimeType,
		Codec:         codecOf(f.MimeType),
		QualityLabel:  f.QualityLabel,
		Bitrate:       f.Bitrate,
		ContentLength: f.ContentLength,
	}
	if r.HasAudio() {
		r.AudioBitrate = audioBitrate(f)
	}
	return r
}

func audioBitrate(f *youtube.Format) int {
	if kbps, ok := itagAudioBitrates[f.ItagNo]; ok {
		return kbps
	}
	bps := f.AverageBitrate
	if bps == 0 {
		bps = f.Bitrate
	}
	return (bps + 500) / 1000
}

// codecOf extracts the codecs parameter of a mime type such as
// `video/mp4; codecs="avc1.4d401e, mp4a.40.2"`.
func codecOf(mimeType string) string {
	_, params, ok := strings.Cut(mimeType, "codecs=")
	if !ok {
		return ""
	}
	return strings.Trim(strings.TrimSpace(params), `"`)
}
