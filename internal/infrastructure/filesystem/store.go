package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"ytgrab/internal/domain/media"
)

var (
	ErrInvalidPath = errors.New("invalid file path")
	ErrNotFound    = errors.New("file not found")
)

var kindDirs = map[media.Kind]string{
	media.KindAudio: "audios",
	media.KindVideo: "videos",
}

// Store manages the public output directories.
type Store struct {
	PublicDir string
}

// NewStore creates filesystem adapter rooted at publicDir.
func NewStore(publicDir string) *Store {
	return &Store{PublicDir: publicDir}
}

// EnsureDirs creates the output directories.
func (s *Store) EnsureDirs() error {
	for _, kind := range []media.Kind{media.KindAudio, media.KindVideo} {
		if err := os.MkdirAll(s.dir(kind), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) dir(kind media.Kind) string {
	return filepath.Join(s.PublicDir, kindDirs[kind])
}

// Describe builds the deterministic output location of req.
func (s *Store) Describe(req media.DownloadRequest) media.OutputDescriptor {
	name := media.OutputName(req)
	return media.OutputDescriptor{
		Kind:       req.Kind,
		Name:       name,
		Path:       filepath.Join(s.dir(req.Kind), name),
		PublicPath: "/" + kindDirs[req.Kind] + "/" + name,
	}
}

// Exists reports whether a finished output is present at desc.
func (s *Store) Exists(desc media.OutputDescriptor) (bool, error) {
	info, err := os.Stat(desc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("%s is not a regular file", desc.Path)
	}
	return true, nil
}

// Create opens a hidden pending file next to desc.Path. The file only
// appears at desc.Path once published.
func (s *Store) Create(desc media.OutputDescriptor) (media.PendingOutput, error) {
	if err := os.MkdirAll(filepath.Dir(desc.Path), 0o755); err != nil {
		return nil, err
	}
	pending, err := renameio.NewPendingFile(desc.Path,
		renameio.WithTempDir(filepath.Dir(desc.Path)),
		renameio.WithPermissions(0o644),
	)
	if err != nil {
		return nil, fmt.Errorf("create pending output: %w", err)
	}
	return &pendingOutput{file: pending}, nil
}

type pendingOutput struct {
	file *renameio.PendingFile
}

func (p *pendingOutput) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

func (p *pendingOutput) Path() string {
	return p.file.Name()
}

// Publish syncs the pending file and renames it onto the final path.
func (p *pendingOutput) Publish() error {
	if err := p.file.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}
	return nil
}

// Discard removes the pending file. It is a no-op after a successful Publish.
func (p *pendingOutput) Discard() error {
	return p.file.Cleanup()
}

// ResolvePublicPath maps a caller-relative output path such as
// /videos/a_360p.mp4 to its file, confined to the output directories.
func (s *Store) ResolvePublicPath(raw string) (string, error) {
	value := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if value == "" {
		return "", ErrInvalidPath
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+value), "/")

	dir, name, ok := strings.Cut(cleaned, "/")
	if !ok || name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
		return "", ErrInvalidPath
	}
	if dir != kindDirs[media.KindAudio] && dir != kindDirs[media.KindVideo] {
		return "", ErrInvalidPath
	}

	full := filepath.Join(s.PublicDir, dir, name)
	if !isWithinDir(s.PublicDir, full) {
		return "", ErrInvalidPath
	}
	return full, nil
}

// FileExists reports whether a published output exists at the caller-relative path.
func (s *Store) FileExists(raw string) (string, error) {
	full, err := s.ResolvePublicPath(raw)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return full, nil
}

func isWithinDir(basePath, targetPath string) bool {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false
	}
	sep := string(os.PathSeparator)
	if rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return false
	}
	return true
}
