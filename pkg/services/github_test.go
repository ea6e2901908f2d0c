package services

import (
	"net/http"
	"testing"

	"content-dashboard/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubReadWriteRoundTrip(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("data/hero.json", `{"title":"Hello"}`)
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	f, err := gw.ReadFile(ctx, "data/hero.json")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Hello"}`, f.Text())
	assert.Equal(t, BlobRevision(f.Content), f.Revision)

	c, err := gw.WriteFile(ctx, "data/hero.json", f.Content, f.Revision, UpdateMessage("data/hero.json"))
	require.NoError(t, err)
	assert.Equal(t, "c001", c.CommitSHA)
	assert.Equal(t, []string{"Update data/hero.json via Dashboard"}, fake.commitLog())

	again, err := gw.ReadFile(ctx, "data/hero.json")
	require.NoError(t, err)
	assert.Equal(t, f.Content, again.Content)
	assert.Equal(t, c.Revision, again.Revision)
}

func TestGitHubStaleWriteConflicts(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("data/hero.json", `{"title":"v1"}`)
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	f, err := gw.ReadFile(ctx, "data/hero.json")
	require.NoError(t, err)
	r1 := f.Revision

	c, err := gw.WriteFile(ctx, "data/hero.json", []byte(`{"title":"v2"}`), r1, "second")
	require.NoError(t, err)
	assert.NotEqual(t, r1, c.Revision)

	_, err = gw.WriteFile(ctx, "data/hero.json", []byte(`{"title":"v3"}`), r1, "stale")
	assert.ErrorIs(t, err, ErrConflict)

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "write", ge.Op)
	assert.Equal(t, "data/hero.json", ge.Path)
}

func TestGitHubCreate(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("data/hero.json", `{}`)
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	c, err := gw.WriteFile(ctx, "data/new.json", []byte(`{"a":1}`), "", "create")
	require.NoError(t, err)
	assert.Equal(t, BlobRevision([]byte(`{"a":1}`)), c.Revision)

	f, err := gw.ReadFile(ctx, "data/new.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, f.Text())

	_, err = gw.WriteFile(ctx, "data/hero.json", []byte(`{}`), "", "blind overwrite")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGitHubNotFound(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("public/images/a.png", "png")
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	_, err := gw.ReadFile(ctx, "data/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gw.ReadFile(ctx, "public/images")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gw.ListDirectory(ctx, "public/images/a.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gw.ListDirectory(ctx, "public/videos")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubListDirectory(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("public/images/logo.png", "png")
	fake.put("public/images/products/p1.webp", "webp")
	gw := fake.gateway(t, fakeToken)

	entries, err := gw.ListDirectory(t.Context(), "public/images")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, models.DirectoryEntry{
		Name:     "logo.png",
		Path:     "public/images/logo.png",
		Type:     models.EntryFile,
		Revision: BlobRevision([]byte("png")),
		FetchURL: fake.srv.URL + "/raw/public/images/logo.png",
	}, entries[0])
	assert.Equal(t, models.EntryDir, entries[1].Type)
	assert.Equal(t, "public/images/products", entries[1].Path)
	assert.Empty(t, entries[1].Revision)
}

func TestGitHubDelete(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("public/images/a.png", "png")
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	_, err := gw.DeleteFile(ctx, "public/images/a.png", BlobRevision([]byte("old")), "stale")
	assert.ErrorIs(t, err, ErrConflict)

	c, err := gw.DeleteFile(ctx, "public/images/a.png", BlobRevision([]byte("png")), DeleteMessage("public/images/a.png"))
	require.NoError(t, err)
	assert.Empty(t, c.Revision)
	assert.Equal(t, "Delete public/images/a.png via Dashboard", c.Message)

	_, err = gw.ReadFile(ctx, "public/images/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubFailureKinds(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("data/hero.json", `{}`)
	ctx := t.Context()

	_, err := fake.gateway(t, "wrong").ReadFile(ctx, "data/hero.json")
	assert.ErrorIs(t, err, ErrAuth)

	fake.setFailure(http.StatusServiceUnavailable)
	_, err = fake.gateway(t, fakeToken).ReadFile(ctx, "data/hero.json")
	assert.ErrorIs(t, err, ErrTransient)
}

func TestGitHubEditor(t *testing.T) {
	fake := newFakeGitHub(t)
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	// The user's token only identifies the login; permissions come from the store token.
	login, err := gw.Editor(ctx, fakeUserToken, nil)
	require.NoError(t, err)
	assert.Equal(t, "octo", login)

	_, err = gw.Editor(ctx, fakeUserToken, []string{"someone-else"})
	assert.ErrorIs(t, err, ErrAuth)

	login, err = gw.Editor(ctx, fakeUserToken, []string{"OCTO"})
	require.NoError(t, err)
	assert.Equal(t, "octo", login)

	fake.setPermission("read")
	_, err = gw.Editor(ctx, fakeUserToken, nil)
	assert.ErrorIs(t, err, ErrAuth)

	_, err = gw.Editor(ctx, "revoked", nil)
	assert.ErrorIs(t, err, ErrAuth)
}

func TestGitHubTrimsLeadingSlash(t *testing.T) {
	fake := newFakeGitHub(t)
	fake.put("data/hero.json", `{"a":1}`)
	gw := fake.gateway(t, fakeToken)
	ctx := t.Context()

	f, err := gw.ReadFile(ctx, "/data/hero.json")
	require.NoError(t, err)
	assert.Equal(t, "data/hero.json", f.Path)

	entries, err := gw.ListDirectory(ctx, "/data/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data/hero.json", entries[0].Path)

	c, err := gw.WriteFile(ctx, "/data/hero.json", []byte(`{"a":2}`), f.Revision, UpdateMessage("data/hero.json"))
	require.NoError(t, err)
	_, err = gw.DeleteFile(ctx, "/data/hero.json", c.Revision, DeleteMessage("data/hero.json"))
	require.NoError(t, err)
}
