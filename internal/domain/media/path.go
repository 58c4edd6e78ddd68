package media

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxNameBytes = 200

var extensions = map[Kind]string{
	KindAudio: ".mp3",
	KindVideo: ".mp4",
}

// OutputDescriptor locates the finished file of a download.
type OutputDescriptor struct {
	Kind Kind
	// Name is the file name inside the kind's output directory.
	Name string
	// Path is the filesystem path under the public directory.
	Path string
	// PublicPath is the caller-relative path, e.g. /videos/Test_Video_360p.mp4.
	PublicPath string
}

// Extension returns the container extension for kind.
func Extension(kind Kind) string {
	return extensions[kind]
}

// OutputName derives the deterministic file name of a request.
// Distinct titles that sanitize to the same string share a name.
func OutputName(req DownloadRequest) string {
	suffix := Sanitize(req.QualityLabel)
	if req.Kind == KindAudio {
		suffix = strconv.Itoa(req.AudioBitrate) + "kbs"
	}
	return Sanitize(req.Title) + "_" + suffix + Extension(req.Kind)
}

// Sanitize turns s into a filesystem-safe name fragment.
func Sanitize(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsControl(r), strings.ContainsRune(`/\?%*:|"<>`, r):
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	value := strings.Trim(b.String(), ". ")
	if len(value) > maxNameBytes {
		value = value[:maxNameBytes]
		for !utf8.ValidString(value) {
			value = value[:len(value)-1]
		}
	}
	if value == "" {
		return "untitled"
	}
	return value
}
