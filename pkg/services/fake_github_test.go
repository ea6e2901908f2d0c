package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const (
	fakeOwner = "acme"
	fakeRepo  = "site"
	fakeToken = "secret"
	// fakeUserToken identifies a user but cannot see the private repository.
	fakeUserToken = "user-secret"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeGitHub implements the parts of the contents API the gateway uses.
type fakeGitHub struct {
	mu         sync.Mutex
	files      map[string][]byte
	commits    []string
	failStatus int
	permission string

	srv *httptest.Server
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{files: map[string][]byte{}, permission: "write"}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGitHub) gateway(t *testing.T, token string) *GitHubGateway {
	t.Helper()
	g, err := NewGitHubGateway(token, f.srv.URL, fakeOwner, fakeRepo, "main",
		WithCommitter("Dashboard Bot", "bot@example.com"), WithGitHubLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func (f *fakeGitHub) put(p string, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[p] = []byte(content)
}

func (f *fakeGitHub) setFailure(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
}

func (f *fakeGitHub) setPermission(perm string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permission = perm
}

func (f *fakeGitHub) commitLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commits...)
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Header.Get("Authorization") {
	case "Bearer " + fakeToken:
	case "Bearer " + fakeUserToken:
		if r.URL.Path != "/user" {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
			return
		}
	default:
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Bad credentials"})
		return
	}
	if f.failStatus != 0 {
		writeJSON(w, f.failStatus, map[string]any{"message": "unavailable"})
		return
	}

	repoPrefix := fmt.Sprintf("/repos/%s/%s/", fakeOwner, fakeRepo)
	switch {
	case strings.Contains(r.URL.Path, "//"):
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	case r.URL.Path == "/user":
		writeJSON(w, http.StatusOK, map[string]any{"login": "octo"})
		return
	case strings.HasPrefix(r.URL.Path, repoPrefix+"collaborators/"):
		writeJSON(w, http.StatusOK, map[string]any{"permission": f.permission})
		return
	case strings.HasPrefix(r.URL.Path, repoPrefix+"contents"):
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}

	p := strings.Trim(strings.TrimPrefix(r.URL.Path, repoPrefix+"contents"), "/")
	switch r.Method {
	case http.MethodGet:
		f.get(w, p)
	case http.MethodPut:
		f.write(w, r, p)
	case http.MethodDelete:
		f.remove(w, r, p)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeGitHub) fileJSON(p string, content []byte, withContent bool) map[string]any {
	m := map[string]any{
		"type":         "file",
		"name":         path.Base(p),
		"path":         p,
		"sha":          BlobRevision(content),
		"size":         len(content),
		"download_url": f.srv.URL + "/raw/" + p,
	}
	if withContent {
		m["encoding"] = "base64"
		m["content"] = base64.StdEncoding.EncodeToString(content)
	}
	return m
}

func (f *fakeGitHub) get(w http.ResponseWriter, p string) {
	if content, ok := f.files[p]; ok {
		writeJSON(w, http.StatusOK, f.fileJSON(p, content, true))
		return
	}

	prefix := p + "/"
	if p == "" {
		prefix = ""
	}
	children := map[string]map[string]any{}
	for fp, content := range f.files {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rest := strings.TrimPrefix(fp, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			name := rest[:i]
			children[name] = map[string]any{"type": "dir", "name": name, "path": prefix + name, "sha": "tree-" + name}
			continue
		}
		children[rest] = f.fileJSON(fp, content, false)
	}
	if len(children) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	names := make([]string, 0, len(children))
	for n := range children {
		names = append(names, n)
	}
	sort.Strings(names)
	list := make([]map[string]any, 0, len(names))
	for _, n := range names {
		list = append(list, children[n])
	}
	writeJSON(w, http.StatusOK, list)
}

type fakeFileRequest struct {
	Message string `json:"message"`
	Content []byte `json:"content"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

func (f *fakeGitHub) write(w http.ResponseWriter, r *http.Request, p string) {
	var req fakeFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	cur, exists := f.files[p]
	switch {
	case exists && req.SHA == "":
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
		return
	case exists && req.SHA != BlobRevision(cur):
		writeJSON(w, http.StatusConflict, map[string]any{"message": fmt.Sprintf("%s does not match %s", p, req.SHA)})
		return
	case !exists && req.SHA != "":
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	f.files[p] = req.Content
	f.commits = append(f.commits, req.Message)
	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"content": f.fileJSON(p, req.Content, false),
		"commit":  map[string]any{"sha": fmt.Sprintf("c%03d", len(f.commits)), "message": req.Message},
	})
}

func (f *fakeGitHub) remove(w http.ResponseWriter, r *http.Request, p string) {
	var req fakeFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	cur, exists := f.files[p]
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	if req.SHA != BlobRevision(cur) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "sha does not match"})
		return
	}
	delete(f.files, p)
	f.commits = append(f.commits, req.Message)
	writeJSON(w, http.StatusOK, map[string]any{
		"content": nil,
		"commit":  map[string]any{"sha": fmt.Sprintf("c%03d", len(f.commits)), "message": req.Message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
