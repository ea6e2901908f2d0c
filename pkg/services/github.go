package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"content-dashboard/pkg/models"

	"github.com/google/go-github/v66/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// GitHubGateway talks to the contents API of one repository branch.
type GitHubGateway struct {
	client    *github.Client
	baseURL   *url.URL
	owner     string
	repo      string
	branch    string
	committer *github.CommitAuthor
	log       *logrus.Logger
}

type GitHubOption func(*GitHubGateway)

// WithCommitter records name and email as the committer of every change.
func WithCommitter(name, email string) GitHubOption {
	return func(g *GitHubGateway) {
		if name == "" && email == "" {
			return
		}
		g.committer = &github.CommitAuthor{Name: github.String(name), Email: github.String(email)}
	}
}

func WithGitHubLogger(l *logrus.Logger) GitHubOption {
	return func(g *GitHubGateway) { g.log = l }
}

// NewGitHubGateway authenticates with token. apiURL overrides the public API
// endpoint (GitHub Enterprise, tests); leave it empty for api.github.com.
func NewGitHubGateway(token, apiURL, owner, repo, branch string, opts ...GitHubOption) (*GitHubGateway, error) {
	g := &GitHubGateway{owner: owner, repo: repo, branch: branch, log: logrus.StandardLogger()}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("parse api url: %w", err)
		}
		g.baseURL = u
	}
	g.client = g.newClient(token)
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GitHubGateway) newClient(token string) *github.Client {
	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	c := github.NewClient(hc)
	if g.baseURL != nil {
		c.BaseURL = g.baseURL
	}
	return c
}

// repoPath drops the slashes around a path; the contents API rejects them.
func repoPath(p string) string { return strings.Trim(p, "/") }

func (g *GitHubGateway) ReadFile(ctx context.Context, path string) (*models.ContentFile, error) {
	path = repoPath(path)
	fc, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, &github.RepositoryContentGetOptions{Ref: g.branch})
	if err != nil {
		return nil, g.fail("read", path, err)
	}
	if fc == nil {
		return nil, g.fail("read", path, newError("read", path, ErrNotFound, errors.New("path is a directory")))
	}
	if fc.GetType() != "file" {
		return nil, g.fail("read", path, newError("read", path, ErrNotFound, fmt.Errorf("path is a %s", fc.GetType())))
	}

	var content []byte
	if fc.GetEncoding() == "none" || (fc.Content == nil && fc.GetSize() > 0) {
		// Files above the contents API limit come without inline content.
		content, _, err = g.client.Git.GetBlobRaw(ctx, g.owner, g.repo, fc.GetSHA())
		if err != nil {
			return nil, g.fail("read", path, err)
		}
	} else {
		text, err := fc.GetContent()
		if err != nil {
			return nil, g.fail("read", path, err)
		}
		content = []byte(text)
	}
	return &models.ContentFile{Path: fc.GetPath(), Content: content, Revision: fc.GetSHA()}, nil
}

func (g *GitHubGateway) ListDirectory(ctx context.Context, path string) ([]models.DirectoryEntry, error) {
	path = repoPath(path)
	fc, dc, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, &github.RepositoryContentGetOptions{Ref: g.branch})
	if err != nil {
		return nil, g.fail("list", path, err)
	}
	if fc != nil {
		return nil, g.fail("list", path, newError("list", path, ErrNotFound, errors.New("path is not a directory")))
	}
	entries := make([]models.DirectoryEntry, 0, len(dc))
	for _, item := range dc {
		e := models.DirectoryEntry{Name: item.GetName(), Path: item.GetPath(), Type: models.EntryFile}
		if item.GetType() == "dir" {
			e.Type = models.EntryDir
		} else {
			e.Revision = item.GetSHA()
			e.FetchURL = item.GetDownloadURL()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (g *GitHubGateway) WriteFile(ctx context.Context, path string, content []byte, revision, message string) (models.Commit, error) {
	path = repoPath(path)
	opts := &github.RepositoryContentFileOptions{
		Message:   github.String(message),
		Content:   content,
		Branch:    github.String(g.branch),
		Committer: g.committer,
	}
	var (
		res *github.RepositoryContentResponse
		err error
	)
	if revision == "" {
		res, _, err = g.client.Repositories.CreateFile(ctx, g.owner, g.repo, path, opts)
	} else {
		opts.SHA = github.String(revision)
		res, _, err = g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, path, opts)
	}
	if err != nil {
		return models.Commit{}, g.fail("write", path, err)
	}
	c := models.Commit{CommitSHA: res.Commit.GetSHA(), Message: message}
	if res.Content != nil {
		c.Revision = res.Content.GetSHA()
	}
	g.log.WithFields(logrus.Fields{"path": path, "commit": c.CommitSHA}).Info("file written")
	return c, nil
}

func (g *GitHubGateway) DeleteFile(ctx context.Context, path, revision, message string) (models.Commit, error) {
	path = repoPath(path)
	opts := &github.RepositoryContentFileOptions{
		Message:   github.String(message),
		SHA:       github.String(revision),
		Branch:    github.String(g.branch),
		Committer: g.committer,
	}
	res, _, err := g.client.Repositories.DeleteFile(ctx, g.owner, g.repo, path, opts)
	if err != nil {
		return models.Commit{}, g.fail("delete", path, err)
	}
	c := models.Commit{CommitSHA: res.Commit.GetSHA(), Message: message}
	g.log.WithFields(logrus.Fields{"path": path, "commit": c.CommitSHA}).Info("file deleted")
	return c, nil
}

// Editor resolves the GitHub login behind an OAuth token and checks that it
// may push to the repository, or is listed in allowed when that is set.
// The permission is read with the store's own token: a read:user token
// cannot see a private repository.
func (g *GitHubGateway) Editor(ctx context.Context, token string, allowed []string) (string, error) {
	user, _, err := g.newClient(token).Users.Get(ctx, "")
	if err != nil {
		return "", g.fail("identify", "", err)
	}
	login := user.GetLogin()
	if len(allowed) > 0 {
		for _, a := range allowed {
			if strings.EqualFold(a, login) {
				return login, nil
			}
		}
		return "", newError("identify", login, ErrAuth, errors.New("user is not allowed"))
	}
	perm, _, err := g.client.Repositories.GetPermissionLevel(ctx, g.owner, g.repo, login)
	if err != nil {
		return "", g.fail("identify", login, err)
	}
	switch perm.GetPermission() {
	case "admin", "maintain", "write":
		return login, nil
	}
	return "", newError("identify", login, ErrAuth, fmt.Errorf("permission %q cannot push", perm.GetPermission()))
}

func (g *GitHubGateway) fail(op, path string, err error) error {
	var ge *GatewayError
	if !errors.As(err, &ge) {
		err = newError(op, path, classify(err), err)
	}
	g.log.WithFields(logrus.Fields{"op": op, "path": path}).WithError(err).Warn("backing store request failed")
	return err
}

func classify(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return ErrTransient
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		switch {
		case code == http.StatusNotFound:
			return ErrNotFound
		case code == http.StatusConflict, code == http.StatusUnprocessableEntity:
			// 422 is what the contents API answers when the sha is missing
			// for an existing file or does not name a blob.
			return ErrConflict
		case code == http.StatusUnauthorized, code == http.StatusForbidden:
			return ErrAuth
		case code == http.StatusTooManyRequests, code >= 500:
			return ErrTransient
		}
		return ErrValidation
	}
	return ErrTransient
}
