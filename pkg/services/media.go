package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"content-dashboard/pkg/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ImageLinks turns repository image paths into URLs a browser can load and
// into the values stored in content documents.
type ImageLinks struct {
	PublicDir string
	// RawBaseURL is prefixed to repository paths, e.g.
	// https://raw.githubusercontent.com/owner/repo/main/.
	RawBaseURL string
	// ProxyPath serves images through the dashboard; used when Proxy is set
	// or no RawBaseURL is known.
	ProxyPath string
	Proxy     bool
}

// PreviewURL resolves a value stored in a document ("/images/a.png").
func (l ImageLinks) PreviewURL(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	clean := strings.TrimPrefix(value, "/")
	if l.PublicDir != "" && !strings.HasPrefix(clean, l.PublicDir+"/") {
		clean = l.PublicDir + "/" + clean
	}
	return l.repoURL(clean)
}

// EntryURL is the thumbnail URL of a listed file.
func (l ImageLinks) EntryURL(e models.DirectoryEntry) string {
	if !l.Proxy && e.FetchURL != "" {
		return e.FetchURL
	}
	return l.repoURL(e.Path)
}

func (l ImageLinks) repoURL(repoPath string) string {
	if l.Proxy || l.RawBaseURL == "" {
		return l.ProxyPath + "?path=" + url.QueryEscape(repoPath)
	}
	return l.RawBaseURL + repoPath
}

// StoredValue is what a document stores for a picked image: the repository
// path without the public directory, which is the site's web root.
func (l ImageLinks) StoredValue(repoPath string) string {
	if l.PublicDir != "" && strings.HasPrefix(repoPath, l.PublicDir+"/") {
		return strings.TrimPrefix(repoPath, l.PublicDir)
	}
	return repoPath
}

type GalleryOptions struct {
	Root       string
	PickerDirs []string
	PageSize   int
	MaxBytes   int64
	Links      ImageLinks
}

// Gallery browses and changes the image tree below Root.
type Gallery struct {
	gw   Gateway
	opts GalleryOptions
	log  *logrus.Logger
}

func NewGallery(gw Gateway, opts GalleryOptions, log *logrus.Logger) *Gallery {
	opts.Root = strings.Trim(opts.Root, "/")
	if opts.PageSize <= 0 {
		opts.PageSize = 48
	}
	return &Gallery{gw: gw, opts: opts, log: log}
}

func (g *Gallery) Root() string      { return g.opts.Root }
func (g *Gallery) Links() ImageLinks { return g.opts.Links }

func UploadMessage(path string) string { return fmt.Sprintf("Upload image %s via Dashboard", path) }
func DeleteMessage(path string) string { return fmt.Sprintf("Delete %s via Dashboard", path) }

// SortEntries orders directories first, then names by collation.
func SortEntries(entries []models.DirectoryEntry) []models.DirectoryEntry {
	out := append([]models.DirectoryEntry(nil), entries...)
	c := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDir() != out[j].IsDir() {
			return out[i].IsDir()
		}
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

type Crumb struct {
	Name string
	Path string
}

// Listing is one page of a gallery directory.
type Listing struct {
	Dir     string
	Entries []models.DirectoryEntry
	Total   int
	Page    int
	Pages   int
	Crumbs  []Crumb
	Parent  string
	AtRoot  bool
}

func (l Listing) HasPrev() bool { return l.Page > 1 }
func (l Listing) HasNext() bool { return l.Page < l.Pages }

// Within normalizes dir and checks it lies in the gallery root. An empty dir
// is the root.
func (g *Gallery) Within(dir string) (string, error) {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return g.opts.Root, nil
	}
	if err := CheckPath(dir); err != nil {
		return "", err
	}
	if dir != g.opts.Root && !strings.HasPrefix(dir, g.opts.Root+"/") {
		return "", newError("gallery", dir, ErrValidation, fmt.Errorf("outside of %s", g.opts.Root))
	}
	return dir, nil
}

func (g *Gallery) List(ctx context.Context, dir string, page int) (Listing, error) {
	dir, err := g.Within(dir)
	if err != nil {
		return Listing{}, err
	}
	entries, err := g.gw.ListDirectory(ctx, dir)
	if err != nil {
		return Listing{}, err
	}
	sorted := SortEntries(entries)

	l := Listing{Dir: dir, Total: len(sorted), AtRoot: dir == g.opts.Root, Crumbs: g.crumbs(dir)}
	if !l.AtRoot {
		l.Parent = path.Dir(dir)
	}
	l.Pages = (len(sorted) + g.opts.PageSize - 1) / g.opts.PageSize
	if l.Pages == 0 {
		l.Pages = 1
	}
	l.Page = min(max(page, 1), l.Pages)
	start := (l.Page - 1) * g.opts.PageSize
	end := min(start+g.opts.PageSize, len(sorted))
	l.Entries = sorted[start:end]
	return l, nil
}

func (g *Gallery) crumbs(dir string) []Crumb {
	crumbs := []Crumb{{Name: path.Base(g.opts.Root), Path: g.opts.Root}}
	rel := strings.TrimPrefix(strings.TrimPrefix(dir, g.opts.Root), "/")
	if rel == "" {
		return crumbs
	}
	cur := g.opts.Root
	for _, seg := range strings.Split(rel, "/") {
		cur += "/" + seg
		crumbs = append(crumbs, Crumb{Name: seg, Path: cur})
	}
	return crumbs
}

// Upload is an image sent by an editor for Dir.
type Upload struct {
	Dir            string
	Filename       string
	Content        []byte
	ConfirmReplace bool
}

// Upload stores the image at Dir/Filename. Replacing an existing file needs
// ConfirmReplace; the existing revision is then used for the write.
func (g *Gallery) Upload(ctx context.Context, up Upload) (string, models.Commit, error) {
	dir, err := g.Within(up.Dir)
	if err != nil {
		return "", models.Commit{}, err
	}
	name := path.Base(strings.ReplaceAll(up.Filename, `\`, "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", models.Commit{}, newError("upload", up.Filename, ErrValidation, errors.New("invalid file name"))
	}
	target := dir + "/" + name
	if g.opts.MaxBytes > 0 && int64(len(up.Content)) > g.opts.MaxBytes {
		return target, models.Commit{}, newError("upload", target, ErrValidation, fmt.Errorf("file is larger than %d bytes", g.opts.MaxBytes))
	}
	if mt := mimetype.Detect(up.Content); !strings.HasPrefix(mt.String(), "image/") {
		return target, models.Commit{}, newError("upload", target, ErrValidation, fmt.Errorf("%s is not an image", mt.String()))
	}

	revision := ""
	entries, err := g.gw.ListDirectory(ctx, dir)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return target, models.Commit{}, err
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		if e.IsDir() {
			return target, models.Commit{}, newError("upload", target, ErrValidation, errors.New("a directory has this name"))
		}
		if !up.ConfirmReplace {
			return target, models.Commit{}, newError("upload", target, ErrNeedsConfirmation, errors.New("file already exists"))
		}
		revision = e.Revision
	}

	c, err := g.gw.WriteFile(ctx, target, up.Content, revision, UploadMessage(target))
	if err != nil {
		return target, models.Commit{}, err
	}
	g.log.WithFields(logrus.Fields{"path": target, "replaced": revision != ""}).Info("image uploaded")
	return target, c, nil
}

// Delete removes the image at p, which must be confirmed and carry the
// revision the editor saw.
func (g *Gallery) Delete(ctx context.Context, p, revision string, confirmed bool) (models.Commit, error) {
	if _, err := g.Within(path.Dir(p)); err != nil {
		return models.Commit{}, err
	}
	if !confirmed {
		return models.Commit{}, newError("delete", p, ErrNeedsConfirmation, nil)
	}
	if revision == "" {
		return models.Commit{}, newError("delete", p, ErrValidation, errors.New("missing revision"))
	}
	c, err := g.gw.DeleteFile(ctx, p, revision, DeleteMessage(p))
	if err != nil {
		return models.Commit{}, err
	}
	g.log.WithField("path", p).Info("image deleted")
	return c, nil
}

// PickerImages lists the files of the picker directories. Directories that
// fail to list are skipped; files are unique by path.
func (g *Gallery) PickerImages(ctx context.Context) []models.DirectoryEntry {
	results := make([][]models.DirectoryEntry, len(g.opts.PickerDirs))
	eg, ctx := errgroup.WithContext(ctx)
	for i, dir := range g.opts.PickerDirs {
		eg.Go(func() error {
			entries, err := g.gw.ListDirectory(ctx, dir)
			if err != nil {
				g.log.WithField("dir", dir).WithError(err).Debug("picker directory skipped")
				return nil
			}
			results[i] = entries
			return nil
		})
	}
	_ = eg.Wait()

	seen := map[string]bool{}
	var out []models.DirectoryEntry
	for _, entries := range results {
		for _, e := range entries {
			if e.IsDir() || seen[e.Path] {
				continue
			}
			seen[e.Path] = true
			out = append(out, e)
		}
	}
	return out
}

// FilterImages keeps files whose name contains q, ignoring case.
func FilterImages(entries []models.DirectoryEntry, q string) []models.DirectoryEntry {
	q = strings.ToLower(q)
	var out []models.DirectoryEntry
	for _, e := range entries {
		if !e.IsDir() && strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}

// Open reads an image below the public directory for the proxy.
func (g *Gallery) Open(ctx context.Context, p string) (*models.ContentFile, string, error) {
	if err := CheckPath(p); err != nil {
		return nil, "", err
	}
	pub := g.opts.Links.PublicDir
	if pub != "" && !strings.HasPrefix(strings.TrimPrefix(p, "/"), pub+"/") {
		return nil, "", newError("open", p, ErrValidation, fmt.Errorf("outside of %s", pub))
	}
	f, err := g.gw.ReadFile(ctx, strings.TrimPrefix(p, "/"))
	if err != nil {
		return nil, "", err
	}
	return f, mimetype.Detect(f.Content).String(), nil
}
