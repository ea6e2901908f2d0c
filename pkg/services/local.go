package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"content-dashboard/pkg/models"

	"github.com/sirupsen/logrus"
)

// LocalGateway serves a working-tree directory as the backing store.
// Revisions are git blob hashes, so they match what the contents API
// reports for the same bytes.
type LocalGateway struct {
	root string
	git  *GitRecorder
	log  *logrus.Logger

	// mu makes the revision check and the write one step.
	mu sync.Mutex
}

type LocalOption func(*LocalGateway)

// WithGitRecorder commits every change through rec.
func WithGitRecorder(rec *GitRecorder) LocalOption {
	return func(l *LocalGateway) { l.git = rec }
}

func WithLocalLogger(log *logrus.Logger) LocalOption {
	return func(l *LocalGateway) { l.log = log }
}

func NewLocalGateway(root string, opts ...LocalOption) (*LocalGateway, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}
	l := &LocalGateway{root: root, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// SafeJoin joins a slash-separated repository path below root. It returns ""
// for paths that would leave root.
func SafeJoin(root, target string) string {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(target, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return ""
	}
	if clean == "." {
		return root
	}
	return filepath.Join(root, clean)
}

// BlobRevision is the git blob id of content.
func BlobRevision(content []byte) string {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (l *LocalGateway) resolve(op, path string) (string, error) {
	full := SafeJoin(l.root, path)
	if full == "" {
		return "", newError(op, path, ErrValidation, errors.New("path escapes the repository"))
	}
	return full, nil
}

func (l *LocalGateway) ReadFile(ctx context.Context, path string) (*models.ContentFile, error) {
	full, err := l.resolve("read", path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, l.fail("read", path, err)
	}
	if info.IsDir() {
		return nil, newError("read", path, ErrNotFound, errors.New("path is a directory"))
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, l.fail("read", path, err)
	}
	return &models.ContentFile{Path: path, Content: content, Revision: BlobRevision(content)}, nil
}

func (l *LocalGateway) ListDirectory(ctx context.Context, path string) ([]models.DirectoryEntry, error) {
	full, err := l.resolve("list", path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, l.fail("list", path, err)
	}
	if !info.IsDir() {
		return nil, newError("list", path, ErrNotFound, errors.New("path is not a directory"))
	}
	dirEntries, err := os.ReadDir(full)
	if err != nil {
		return nil, l.fail("list", path, err)
	}

	prefix := strings.Trim(path, "/")
	entries := make([]models.DirectoryEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.Name() == ".git" {
			continue
		}
		rel := d.Name()
		if prefix != "" {
			rel = prefix + "/" + d.Name()
		}
		e := models.DirectoryEntry{Name: d.Name(), Path: rel, Type: models.EntryFile}
		if d.IsDir() {
			e.Type = models.EntryDir
		} else {
			content, err := os.ReadFile(filepath.Join(full, d.Name()))
			if err != nil {
				return nil, l.fail("list", rel, err)
			}
			e.Revision = BlobRevision(content)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *LocalGateway) WriteFile(ctx context.Context, path string, content []byte, revision, message string) (models.Commit, error) {
	full, err := l.resolve("write", path)
	if err != nil {
		return models.Commit{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists, err := l.currentRevision(full)
	if err != nil {
		return models.Commit{}, l.fail("write", path, err)
	}
	switch {
	case revision == "" && exists:
		return models.Commit{}, newError("write", path, ErrConflict, errors.New("file already exists"))
	case revision != "" && !exists:
		return models.Commit{}, newError("write", path, ErrNotFound, errors.New("file does not exist"))
	case revision != "" && revision != current:
		return models.Commit{}, newError("write", path, ErrConflict, fmt.Errorf("revision %s is stale", revision))
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return models.Commit{}, l.fail("write", path, err)
	}
	if err := writeAtomic(full, content); err != nil {
		return models.Commit{}, l.fail("write", path, err)
	}

	c := models.Commit{Revision: BlobRevision(content), Message: message}
	c.CommitSHA = l.record(ctx, path, message)
	return c, nil
}

func (l *LocalGateway) DeleteFile(ctx context.Context, path, revision, message string) (models.Commit, error) {
	full, err := l.resolve("delete", path)
	if err != nil {
		return models.Commit{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists, err := l.currentRevision(full)
	if err != nil {
		return models.Commit{}, l.fail("delete", path, err)
	}
	if !exists {
		return models.Commit{}, newError("delete", path, ErrNotFound, nil)
	}
	if revision != current {
		return models.Commit{}, newError("delete", path, ErrConflict, fmt.Errorf("revision %q is stale", revision))
	}
	if err := os.Remove(full); err != nil {
		return models.Commit{}, l.fail("delete", path, err)
	}
	return models.Commit{Message: message, CommitSHA: l.record(ctx, path, message)}, nil
}

func (l *LocalGateway) currentRevision(full string) (string, bool, error) {
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("%s is a directory", full)
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return "", false, err
	}
	return BlobRevision(content), true, nil
}

// record commits path when a recorder is configured. A failed commit leaves
// the change in the working tree and is only logged.
func (l *LocalGateway) record(ctx context.Context, path, message string) string {
	if l.git == nil {
		return ""
	}
	sha, err := l.git.Commit(ctx, path, message)
	if err != nil {
		l.log.WithField("path", path).WithError(err).Warn("git commit failed")
		return ""
	}
	return sha
}

func (l *LocalGateway) fail(op, path string, err error) error {
	kind := ErrTransient
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrAuth
	}
	l.log.WithFields(logrus.Fields{"op": op, "path": path}).WithError(err).Warn("working tree access failed")
	return newError(op, path, kind, err)
}

func writeAtomic(full string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(full), ".dashboard-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), full)
}
