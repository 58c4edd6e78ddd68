package media

import "testing"

func sampleCatalog() Catalog {
	return Catalog{
		Title: "Test Video",
		Renditions: []Rendition{
			{ID: "18", Kind: RenditionMuxed, MimeType: "video/mp4", QualityLabel: "360p", AudioBitrate: 96},
			{ID: "137", Kind: RenditionVideo, MimeType: "video/mp4", QualityLabel: "1080p"},
			{ID: "140", Kind: RenditionAudio, MimeType: "audio/mp4", AudioBitrate: 128},
			{ID: "251", Kind: RenditionAudio, MimeType: "audio/webm", AudioBitrate: 160},
			{ID: "250", Kind: RenditionAudio, MimeType: "audio/webm", AudioBitrate: 70},
		},
	}
}

func TestByID(t *testing.T) {
	r, ok := ByID("137").Select(sampleCatalog())
	if !ok || r.QualityLabel != "1080p" {
		t.Fatalf("expected rendition 137, got %+v ok=%v", r, ok)
	}
	if _, ok := ByID("999").Select(sampleCatalog()); ok {
		t.Fatalf("expected no match for unknown id")
	}
}

func TestBestAudio_PrefersHighestAudioOnly(t *testing.T) {
	r, ok := BestAudio{}.Select(sampleCatalog())
	if !ok || r.ID != "251" {
		t.Fatalf("expected 251, got %+v ok=%v", r, ok)
	}
}

func TestBestAudio_FallsBackToMuxed(t *testing.T) {
	c := Catalog{Renditions: []Rendition{
		{ID: "137", Kind: RenditionVideo},
		{ID: "18", Kind: RenditionMuxed, AudioBitrate: 96},
	}}
	r, ok := BestAudio{}.Select(c)
	if !ok || r.ID != "18" {
		t.Fatalf("expected muxed 18, got %+v ok=%v", r, ok)
	}
}

func TestBestAudio_PrefersMP4OnTie(t *testing.T) {
	c := Catalog{Renditions: []Rendition{
		{ID: "a", Kind: RenditionAudio, MimeType: "audio/webm", AudioBitrate: 128, Bitrate: 1000},
		{ID: "b", Kind: RenditionAudio, MimeType: "audio/mp4", AudioBitrate: 128, Bitrate: 1000},
	}}
	r, _ := BestAudio{}.Select(c)
	if r.ID != "b" {
		t.Fatalf("expected mp4 rendition, got %s", r.ID)
	}
}

func TestBestAudio_NoAudio(t *testing.T) {
	c := Catalog{Renditions: []Rendition{{ID: "137", Kind: RenditionVideo}}}
	if _, ok := (BestAudio{}).Select(c); ok {
		t.Fatalf("expected no audio rendition")
	}
}
