package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/form"
	"content-dashboard/pkg/models"
	"content-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Overview(c *gin.Context) {
	c.HTML(http.StatusOK, "overview.html", h.newPage(c, "", "/", nil))
}

func (h *Handler) DataFiles(c *gin.Context) {
	files, err := h.content.ListDocuments(c.Request.Context(), h.dataDir)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "data.html", h.newPage(c, h.tr.T("data.title"), "/data", files))
}

type editorBody struct {
	Path      string
	Revision  string
	Document  string
	Form      form.Form
	NotObject bool
	Picker    []pickerImage
}

type editRequest struct {
	Path     string `form:"path" binding:"required"`
	Revision string `form:"revision"`
	Document string `form:"document" binding:"required"`
	Op       string `form:"op"`
}

// docPath resolves /data/:name through the configured slugs, falling back to
// a file of the data directory.
func (h *Handler) docPath(name string) string {
	if d, ok := h.dashboard.DocumentBySlug(name); ok {
		return d.Path
	}
	return h.dataDir + "/" + strings.TrimSuffix(name, ".json") + ".json"
}

func (h *Handler) activeFor(doc models.Document) string {
	if doc.Slug != "" {
		return "/data/" + doc.Slug
	}
	return "/data"
}

func (h *Handler) EditDocument(c *gin.Context) {
	path := c.Query("path")
	if name := c.Param("name"); name != "" {
		path = h.docPath(name)
	}
	sess, err := h.content.Open(c.Request.Context(), path)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.showEditor(c, http.StatusOK, sess, nil, "")
}

// SubmitDocument applies a form submission to the submitted document and
// performs the pressed action. Only save reaches the store.
func (h *Handler) SubmitDocument(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(err)
		h.renderError(c, errInvalid(err))
		return
	}
	sess, err := h.content.Resume(req.Path, req.Revision, req.Document)
	if err != nil {
		h.renderError(c, err)
		return
	}

	values := map[string]string{}
	for key, vs := range c.Request.PostForm {
		if ptr, ok := strings.CutPrefix(key, "v:"); ok && len(vs) > 0 {
			values[ptr] = vs[0]
		}
	}
	doc, err := form.ApplyValues(sess.Doc, values, sess.Policy)
	if err != nil {
		h.showEditor(c, http.StatusBadRequest, sess, nil, h.errorText(errInvalid(err)))
		return
	}
	sess = sess.WithDoc(doc)

	action, err := form.ParseAction(req.Op)
	if err != nil {
		h.showEditor(c, http.StatusBadRequest, sess, nil, h.errorText(errInvalid(err)))
		return
	}
	switch action.Kind {
	case form.ActionAdd:
		doc, focus, err := form.AddItem(sess.Doc, action.Pointer, h.items, sess.Policy)
		if err != nil {
			h.showEditor(c, http.StatusBadRequest, sess, nil, h.errorText(errInvalid(err)))
			return
		}
		h.showEditor(c, http.StatusOK, sess.WithDoc(doc), focus, "")
	case form.ActionRemove:
		doc, err := form.RemoveItem(sess.Doc, action.Pointer, sess.Policy)
		if err != nil {
			h.showEditor(c, http.StatusBadRequest, sess, nil, h.errorText(errInvalid(err)))
			return
		}
		h.showEditor(c, http.StatusOK, sess.WithDoc(doc), nil, "")
	case form.ActionSave:
		if _, err := h.content.Save(c.Request.Context(), sess); err != nil {
			c.Error(err)
			h.showEditor(c, statusFor(err), sess, nil, h.errorText(err))
			return
		}
		h.flash(c, h.tr.T("editor.saved"), "/edit?path="+url.QueryEscape(sess.Path))
	default:
		h.showEditor(c, http.StatusOK, sess, nil, "")
	}
}

func (h *Handler) showEditor(c *gin.Context, status int, sess services.EditSession, focus document.Pointer, errMsg string) {
	focusStr := ""
	if focus != nil {
		focusStr = focus.String()
	}
	frm, err := h.renderer.Render(sess.Doc, sess.Policy, focusStr)
	body := editorBody{
		Path:      sess.Path,
		Revision:  sess.Revision,
		Document:  string(document.Encode(sess.Doc)),
		Form:      frm,
		NotObject: errors.Is(err, form.ErrNotObject),
	}
	if !body.NotObject {
		body.Picker = h.picker(c.Request.Context(), "")
	}
	p := h.newPage(c, sess.Policy.DisplayTitle(h.locale), h.activeFor(sess.Policy), body)
	p.Error = errMsg
	c.HTML(status, "editor.html", p)
}

type rawBody struct {
	Path     string
	Revision string
	Text     string
}

type rawRequest struct {
	Path     string `form:"path" binding:"required"`
	Revision string `form:"revision"`
	Content  string `form:"content"`
}

func (h *Handler) RawEditor(c *gin.Context) {
	path := c.Query("path")
	f, text, err := h.content.ReadText(c.Request.Context(), path)
	if err != nil {
		h.renderError(c, err)
		return
	}
	body := rawBody{Path: path, Revision: f.Revision, Text: text}
	p := h.newPage(c, h.tr.T("raw.title"), h.activeFor(h.dashboard.DocumentByPath(path)), body)
	c.HTML(http.StatusOK, "raw.html", p)
}

// SaveRaw writes the raw editor's text. Invalid JSON is shown back with the
// text as typed.
func (h *Handler) SaveRaw(c *gin.Context) {
	var req rawRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, errInvalid(err))
		return
	}
	if _, err := h.content.SaveJSON(c.Request.Context(), req.Path, req.Content, req.Revision); err != nil {
		c.Error(err)
		body := rawBody{Path: req.Path, Revision: req.Revision, Text: req.Content}
		p := h.newPage(c, h.tr.T("raw.title"), h.activeFor(h.dashboard.DocumentByPath(req.Path)), body)
		p.Error = h.errorText(err)
		c.HTML(statusFor(err), "raw.html", p)
		return
	}
	h.flash(c, h.tr.T("editor.saved"), "/raw?path="+url.QueryEscape(req.Path))
}

type pickerImage struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Value string `json:"value"`
	URL   string `json:"url"`
}

func (h *Handler) picker(ctx context.Context, q string) []pickerImage {
	links := h.gallery.Links()
	entries := h.gallery.PickerImages(ctx)
	if q != "" {
		entries = services.FilterImages(entries, q)
	}
	out := make([]pickerImage, 0, len(entries))
	for _, e := range entries {
		out = append(out, pickerImage{Name: e.Name, Path: e.Path, Value: links.StoredValue(e.Path), URL: links.EntryURL(e)})
	}
	return out
}

// errInvalid marks request errors as validation failures.
func errInvalid(err error) error {
	return &services.GatewayError{Op: "request", Kind: services.ErrValidation, Err: err}
}
