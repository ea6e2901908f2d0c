package handlers

import (
	"errors"
	"net/http"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/form"
	"content-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetFile(c *gin.Context) {
	f, text, err := h.content.ReadText(c.Request.Context(), c.Query("path"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": f.Path, "revision": f.Revision, "content": text})
}

type saveFileRequest struct {
	Path     string `json:"path" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Revision string `json:"revision"`
}

func (h *Handler) SaveFile(c *gin.Context) {
	var req saveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, errInvalid(err))
		return
	}
	commit, err := h.content.SaveJSON(c.Request.Context(), req.Path, req.Content, req.Revision)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "path": req.Path, "revision": commit.Revision, "commit": commit.CommitSHA})
}

func (h *Handler) DeleteFile(c *gin.Context) {
	commit, err := h.content.Delete(c.Request.Context(), c.Query("path"), c.Query("revision"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "commit": commit.CommitSHA})
}

func (h *Handler) ListDir(c *gin.Context) {
	p := c.Query("path")
	if p != "" {
		if err := services.CheckPath(p); err != nil {
			apiError(c, err)
			return
		}
	}
	entries, err := h.content.ListDirectory(c.Request.Context(), p)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.SortEntries(entries))
}

// GetForm returns the rendered form tree of a document, the way the editor
// page shows it.
func (h *Handler) GetForm(c *gin.Context) {
	sess, err := h.content.Open(c.Request.Context(), c.Query("path"))
	if err != nil {
		apiError(c, err)
		return
	}
	frm, err := h.renderer.Render(sess.Doc, sess.Policy, "")
	if errors.Is(err, form.ErrNotObject) {
		apiError(c, errInvalid(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":     sess.Path,
		"revision": sess.Revision,
		"title":    sess.Policy.DisplayTitle(h.locale),
		"document": string(document.Encode(sess.Doc)),
		"form":     frm,
	})
}

func (h *Handler) UploadImage(c *gin.Context) {
	target, commit, err := h.upload(c)
	if errors.Is(err, services.ErrNeedsConfirmation) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": kindName(err), "path": target, "needs_confirmation": true})
		return
	}
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":     target,
		"value":    h.gallery.Links().StoredValue(target),
		"revision": commit.Revision,
		"commit":   commit.CommitSHA,
	})
}

func (h *Handler) PickerImages(c *gin.Context) {
	c.JSON(http.StatusOK, h.picker(c.Request.Context(), c.Query("q")))
}
