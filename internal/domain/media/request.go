package media

import (
	"encoding/json"
	"strings"
)

// Kind selects the rendition family of a download.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Valid reports whether kind is a supported download kind.
func (k Kind) Valid() bool {
	return k == KindVideo || k == KindAudio
}

// RawRequest is the unvalidated download body as received from a caller.
type RawRequest struct {
	URL          string      `json:"url"`
	Itag         json.Number `json:"itag"`
	Title        string      `json:"title"`
	Type         string      `json:"type"`
	QualityLabel string      `json:"qualityLabel"`
	AudioBitrate int         `json:"audioBitrate"`
}

// DownloadRequest is a validated download request.
type DownloadRequest struct {
	Locator      string
	RenditionID  string
	Title        string
	Kind         Kind
	QualityLabel string
	AudioBitrate int
}

// ParseRequest normalizes raw and checks it against the per-kind invariants.
func ParseRequest(raw RawRequest) (DownloadRequest, error) {
	req := DownloadRequest{
		Locator:      strings.TrimSpace(raw.URL),
		RenditionID:  strings.TrimSpace(raw.Itag.String()),
		Title:        strings.TrimSpace(raw.Title),
		Kind:         Kind(strings.ToLower(strings.TrimSpace(raw.Type))),
		QualityLabel: strings.TrimSpace(raw.QualityLabel),
		AudioBitrate: raw.AudioBitrate,
	}

	switch {
	case req.Locator == "":
		return DownloadRequest{}, Validation("url is required")
	case req.RenditionID == "":
		return DownloadRequest{}, Validation("itag is required")
	case req.Title == "":
		return DownloadRequest{}, Validation("title is required")
	case !req.Kind.Valid():
		return DownloadRequest{}, Validation("type must be video or audio")
	case req.Kind == KindVideo && req.QualityLabel == "":
		return DownloadRequest{}, Validation("qualityLabel is required for video")
	case req.Kind == KindAudio && req.AudioBitrate <= 0:
		return DownloadRequest{}, Validation("audioBitrate must be positive for audio")
	}

	return req, nil
}
