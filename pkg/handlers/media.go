package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"content-dashboard/pkg/models"
	"content-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

type galleryBody struct {
	Listing        services.Listing
	Existing       string
	PendingDelete  *models.DirectoryEntry
	PendingReplace bool
	Thumb          func(models.DirectoryEntry) string
	Stored         func(string) string
}

func (h *Handler) Gallery(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	h.showGallery(c, http.StatusOK, c.Query("path"), page, nil, "")
}

func (h *Handler) showGallery(c *gin.Context, status int, dir string, page int, body func(*galleryBody), errMsg string) {
	listing, err := h.gallery.List(c.Request.Context(), dir, page)
	if err != nil {
		h.renderError(c, err)
		return
	}
	links := h.gallery.Links()
	b := galleryBody{Listing: listing, Thumb: links.EntryURL, Stored: links.StoredValue}
	var names []string
	for _, e := range listing.Entries {
		names = append(names, e.Name)
	}
	b.Existing = strings.Join(names, "/")
	if body != nil {
		body(&b)
	}
	p := h.newPage(c, h.tr.T("gallery.title"), "/images", b)
	p.Error = errMsg
	c.HTML(status, "gallery.html", p)
}

func galleryURL(dir string) string {
	return "/images?path=" + url.QueryEscape(dir)
}

// readUpload reads an uploaded file up to limit bytes; larger files are
// left for the gallery to reject.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if limit <= 0 {
		return io.ReadAll(f)
	}
	return io.ReadAll(io.LimitReader(f, limit+1))
}

func (h *Handler) upload(c *gin.Context) (string, models.Commit, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", models.Commit{}, errInvalid(errors.New("no file uploaded"))
	}
	content, err := readUpload(fh, h.maxUpload)
	if err != nil {
		return "", models.Commit{}, errInvalid(fmt.Errorf("read upload: %w", err))
	}
	replace, _ := strconv.ParseBool(c.PostForm("replace"))
	return h.gallery.Upload(c.Request.Context(), services.Upload{
		Dir:            c.PostForm("dir"),
		Filename:       fh.Filename,
		Content:        content,
		ConfirmReplace: replace,
	})
}

func (h *Handler) UploadMedia(c *gin.Context) {
	dir := c.PostForm("dir")
	target, _, err := h.upload(c)
	switch {
	case errors.Is(err, services.ErrNeedsConfirmation):
		msg := h.tr.T("gallery.confirm_replace", path.Base(target))
		h.showGallery(c, http.StatusConflict, dir, 1, func(b *galleryBody) { b.PendingReplace = true }, msg)
	case err != nil:
		c.Error(err)
		h.showGallery(c, statusFor(err), dir, 1, nil, h.errorText(err))
	default:
		h.flash(c, h.tr.T("gallery.uploaded"), galleryURL(path.Dir(target)))
	}
}

// DeleteMedia removes an image once confirmed; an unconfirmed request shows
// the confirmation form.
func (h *Handler) DeleteMedia(c *gin.Context) {
	p := c.PostForm("path")
	revision := c.PostForm("revision")
	confirmed, _ := strconv.ParseBool(c.PostForm("confirm"))
	dir := path.Dir(p)

	_, err := h.gallery.Delete(c.Request.Context(), p, revision, confirmed)
	switch {
	case errors.Is(err, services.ErrNeedsConfirmation):
		entry := &models.DirectoryEntry{Name: path.Base(p), Path: p, Type: models.EntryFile, Revision: revision}
		h.showGallery(c, http.StatusOK, dir, 1, func(b *galleryBody) { b.PendingDelete = entry }, "")
	case err != nil:
		c.Error(err)
		if _, werr := h.gallery.Within(dir); werr != nil {
			h.renderError(c, err)
			return
		}
		h.showGallery(c, statusFor(err), dir, 1, nil, h.errorText(err))
	default:
		h.flash(c, h.tr.T("gallery.deleted"), galleryURL(dir))
	}
}

// ServeMediaRaw proxies an image of the public directory, for stores whose
// files have no public URL. Responses are sandboxed so an uploaded SVG cannot
// run script on the dashboard's origin.
func (h *Handler) ServeMediaRaw(c *gin.Context) {
	targetPath := c.Query("path")
	if targetPath == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	f, mime, err := h.gallery.Open(c.Request.Context(), targetPath)
	if err != nil {
		c.Status(statusFor(err))
		return
	}
	c.Header("Content-Security-Policy", "sandbox; default-src 'none'; style-src 'unsafe-inline'")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Cache-Control", "private, max-age=60")
	c.Header("ETag", `"`+f.Revision+`"`)
	c.Data(http.StatusOK, mime, f.Content)
}
