package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgrab/internal/domain/media"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir())
	require.NoError(t, s.EnsureDirs())
	return s
}

func TestDescribe(t *testing.T) {
	s := newTestStore(t)

	video := s.Describe(media.DownloadRequest{Title: "Test Video", Kind: media.KindVideo, QualityLabel: "360p"})
	assert.Equal(t, "/videos/Test_Video_360p.mp4", video.PublicPath)
	assert.Equal(t, filepath.Join(s.PublicDir, "videos", "Test_Video_360p.mp4"), video.Path)

	audio := s.Describe(media.DownloadRequest{Title: "Test Video", Kind: media.KindAudio, AudioBitrate: 128})
	assert.Equal(t, "/audios/Test_Video_128kbs.mp3", audio.PublicPath)
	assert.Equal(t, filepath.Join(s.PublicDir, "audios", "Test_Video_128kbs.mp3"), audio.Path)
}

func TestPendingOutput_PublishMakesFileVisible(t *testing.T) {
	s := newTestStore(t)
	desc := s.Describe(media.DownloadRequest{Title: "clip", Kind: media.KindAudio, AudioBitrate: 64})

	out, err := s.Create(desc)
	require.NoError(t, err)
	assert.NotEqual(t, desc.Path, out.Path())
	assert.Equal(t, filepath.Dir(desc.Path), filepath.Dir(out.Path()))

	_, err = out.Write([]byte("data"))
	require.NoError(t, err)

	exists, err := s.Exists(desc)
	require.NoError(t, err)
	assert.False(t, exists, "pending output must not be a cache hit")

	require.NoError(t, out.Publish())
	require.NoError(t, out.Discard())

	exists, err = s.Exists(desc)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(desc.Path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestCreate_PendingFileInTargetDir(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	s := newTestStore(t)
	desc := s.Describe(media.DownloadRequest{Title: "clip", Kind: media.KindVideo, QualityLabel: "720p"})

	out, err := s.Create(desc)
	require.NoError(t, err)
	defer out.Discard()

	assert.Equal(t, filepath.Dir(desc.Path), filepath.Dir(out.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(out.Path()), "."), "pending file %s is not hidden", out.Path())
}

func TestPendingOutput_DiscardLeavesNothing(t *testing.T) {
	s := newTestStore(t)
	desc := s.Describe(media.DownloadRequest{Title: "clip", Kind: media.KindVideo, QualityLabel: "720p"})

	out, err := s.Create(desc)
	require.NoError(t, err)
	pending := out.Path()
	_, err = out.Write([]byte("partial"))
	require.NoError(t, err)

	require.NoError(t, out.Discard())

	_, err = os.Stat(pending)
	assert.True(t, os.IsNotExist(err))
	exists, err := s.Exists(desc)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExists_RejectsDirectory(t *testing.T) {
	s := newTestStore(t)
	desc := s.Describe(media.DownloadRequest{Title: "dir", Kind: media.KindVideo, QualityLabel: "360p"})
	require.NoError(t, os.MkdirAll(desc.Path, 0o755))

	_, err := s.Exists(desc)
	assert.Error(t, err)
}

func TestResolvePublicPath(t *testing.T) {
	s := newTestStore(t)

	full, err := s.ResolvePublicPath("/videos/a_360p.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.PublicDir, "videos", "a_360p.mp4"), full)

	full, err = s.ResolvePublicPath("audios/b_128kbs.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.PublicDir, "audios", "b_128kbs.mp3"), full)

	for _, raw := range []string{
		"",
		"/",
		"/videos/",
		"/etc/passwd",
		"/videos/../../etc/passwd",
		`\videos\..\..\secret`,
		"/videos/.a_360p.mp4123",
		"/videos/sub/a.mp4",
	} {
		_, err := s.ResolvePublicPath(raw)
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", raw)
	}
}

func TestFileExists(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.PublicDir, "audios", "x_128kbs.mp3"), []byte("x"), 0o644))

	_, err := s.FileExists("/audios/x_128kbs.mp3")
	assert.NoError(t, err)

	_, err = s.FileExists("/audios/missing.mp3")
	assert.ErrorIs(t, err, ErrNotFound)
}
