package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/models"

	"github.com/sirupsen/logrus"
)

// EditSession is the state of one document being edited: what was read and
// the in-progress value. It is carried by the request, never shared.
type EditSession struct {
	Path     string
	Revision string
	Doc      document.Value
	Policy   models.Document
}

// WithDoc returns a copy of the session holding doc.
func (s EditSession) WithDoc(doc document.Value) EditSession {
	s.Doc = doc
	return s
}

type ContentService struct {
	gw        Gateway
	dashboard *models.DashboardConfig
	log       *logrus.Logger
}

func NewContentService(gw Gateway, dashboard *models.DashboardConfig, log *logrus.Logger) *ContentService {
	return &ContentService{gw: gw, dashboard: dashboard, log: log}
}

func UpdateMessage(path string) string { return fmt.Sprintf("Update %s via Dashboard", path) }

// CheckPath rejects empty paths and paths with parent segments.
func CheckPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return newError("check", path, ErrValidation, errors.New("missing path"))
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return newError("check", path, ErrValidation, errors.New("path must not contain .."))
		}
	}
	return nil
}

// Open reads path and parses it into a new editing session.
func (s *ContentService) Open(ctx context.Context, path string) (EditSession, error) {
	if err := CheckPath(path); err != nil {
		return EditSession{}, err
	}
	f, err := s.gw.ReadFile(ctx, path)
	if err != nil {
		return EditSession{}, err
	}
	doc, err := document.Parse(f.Content)
	if err != nil {
		return EditSession{}, newError("open", path, ErrValidation, err)
	}
	return EditSession{Path: path, Revision: f.Revision, Doc: doc, Policy: s.dashboard.DocumentByPath(path)}, nil
}

// Resume rebuilds a session from a submitted document text.
func (s *ContentService) Resume(path, revision, text string) (EditSession, error) {
	if err := CheckPath(path); err != nil {
		return EditSession{}, err
	}
	doc, err := document.Parse([]byte(text))
	if err != nil {
		return EditSession{}, newError("resume", path, ErrValidation, err)
	}
	return EditSession{Path: path, Revision: revision, Doc: doc, Policy: s.dashboard.DocumentByPath(path)}, nil
}

// ReadText returns the file and its content re-indented for the raw editor.
// Content that does not parse is returned as stored.
func (s *ContentService) ReadText(ctx context.Context, path string) (*models.ContentFile, string, error) {
	if err := CheckPath(path); err != nil {
		return nil, "", err
	}
	f, err := s.gw.ReadFile(ctx, path)
	if err != nil {
		return nil, "", err
	}
	pretty, err := document.Pretty(f.Content)
	if err != nil {
		s.log.WithField("path", path).WithError(err).Warn("stored file is not valid JSON")
		return f, f.Text(), nil
	}
	return f, string(pretty), nil
}

// SaveJSON writes text to path if it is well-formed JSON. Malformed text
// fails with ErrValidation before the store is contacted. CRLF line breaks
// from browser text areas are stored as LF.
func (s *ContentService) SaveJSON(ctx context.Context, path, text, revision string) (models.Commit, error) {
	if err := CheckPath(path); err != nil {
		return models.Commit{}, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !document.Valid([]byte(text)) {
		_, perr := document.Parse([]byte(text))
		return models.Commit{}, newError("save", path, ErrValidation, perr)
	}
	return s.write(ctx, path, []byte(text), revision)
}

// Save serializes the whole session document and writes it with the
// revision the session was opened at.
func (s *ContentService) Save(ctx context.Context, sess EditSession) (models.Commit, error) {
	if err := CheckPath(sess.Path); err != nil {
		return models.Commit{}, err
	}
	return s.write(ctx, sess.Path, document.Encode(sess.Doc), sess.Revision)
}

func (s *ContentService) write(ctx context.Context, path string, content []byte, revision string) (models.Commit, error) {
	c, err := s.gw.WriteFile(ctx, path, content, revision, UpdateMessage(path))
	if err != nil {
		return models.Commit{}, err
	}
	s.log.WithFields(logrus.Fields{"path": path, "revision": c.Revision}).Info("content saved")
	return c, nil
}

// Delete removes path if revision is still current.
func (s *ContentService) Delete(ctx context.Context, path, revision string) (models.Commit, error) {
	if err := CheckPath(path); err != nil {
		return models.Commit{}, err
	}
	if revision == "" {
		return models.Commit{}, newError("delete", path, ErrValidation, errors.New("missing revision"))
	}
	c, err := s.gw.DeleteFile(ctx, path, revision, DeleteMessage(path))
	if err != nil {
		return models.Commit{}, err
	}
	s.log.WithField("path", path).Info("content deleted")
	return c, nil
}

// ListDirectory lists dir as stored.
func (s *ContentService) ListDirectory(ctx context.Context, dir string) ([]models.DirectoryEntry, error) {
	return s.gw.ListDirectory(ctx, dir)
}

// ListDocuments returns the JSON files of dir by name.
func (s *ContentService) ListDocuments(ctx context.Context, dir string) ([]models.DirectoryEntry, error) {
	entries, err := s.gw.ListDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	var out []models.DirectoryEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name, ".json") {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
