package media

import (
	"strings"
	"time"
)

// RenditionKind describes which tracks a rendition carries.
type RenditionKind string

const (
	RenditionAudio RenditionKind = "audio"
	RenditionVideo RenditionKind = "video"
	// RenditionMuxed carries both audio and video.
	RenditionMuxed RenditionKind = "muxed"
)

// Rendition is one encoded variant of a source.
type Rendition struct {
	ID            string        `json:"id"`
	Kind          RenditionKind `json:"kind"`
	MimeType      string        `json:"mimeType"`
	Codec         string        `json:"codec,omitempty"`
	QualityLabel  string        `json:"qualityLabel,omitempty"`
	AudioBitrate  int           `json:"audioBitrate,omitempty"`
	Bitrate       int           `json:"bitrate"`
	ContentLength int64         `json:"contentLength"`
}

// HasAudio reports whether the rendition carries an audio track.
func (r Rendition) HasAudio() bool {
	return r.Kind == RenditionAudio || r.Kind == RenditionMuxed
}

// Catalog is the metadata of a source.
type Catalog struct {
	Title      string        `json:"title"`
	Author     string        `json:"author,omitempty"`
	Duration   time.Duration `json:"-"`
	Renditions []Rendition   `json:"renditions"`
}

// Selector picks a rendition from a catalog.
type Selector interface {
	Select(c Catalog) (Rendition, bool)
	String() string
}

// ByID selects the rendition with exactly this identifier.
type ByID string

func (id ByID) Select(c Catalog) (Rendition, bool) {
	for _, r := range c.Renditions {
		if r.ID == string(id) {
			return r, true
		}
	}
	return Rendition{}, false
}

func (id ByID) String() string { return "id=" + string(id) }

// BestAudio selects the highest-bitrate audio rendition, preferring
// audio-only renditions over muxed ones and mp4 over other containers on ties.
type BestAudio struct{}

func (BestAudio) Select(c Catalog) (Rendition, bool) {
	var best Rendition
	found := false
	for _, r := range c.Renditions {
		if !r.HasAudio() {
			continue
		}
		if !found || audioRank(r, best) > 0 {
			best = r
			found = true
		}
	}
	return best, found
}

func (BestAudio) String() string { return "best-audio" }

func audioRank(a, b Rendition) int {
	if (a.Kind == RenditionAudio) != (b.Kind == RenditionAudio) {
		if a.Kind == RenditionAudio {
			return 1
		}
		return -1
	}
	if a.AudioBitrate != b.AudioBitrate {
		return a.AudioBitrate - b.AudioBitrate
	}
	if a.Bitrate != b.Bitrate {
		return a.Bitrate - b.Bitrate
	}
	aMP4 := strings.Contains(a.MimeType, "mp4")
	bMP4 := strings.Contains(b.MimeType, "mp4")
	if aMP4 && !bMP4 {
		return 1
	}
	return 0
}
