package handlers

import (
	"errors"
	"net/http"

	"content-dashboard/pkg/form"
	"content-dashboard/pkg/i18n"
	"content-dashboard/pkg/models"
	"content-dashboard/pkg/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the dashboard pages and the JSON API.
type Handler struct {
	content   *services.ContentService
	gallery   *services.Gallery
	dashboard *models.DashboardConfig
	renderer  *form.Renderer
	items     form.ItemTemplate
	tr        i18n.Translator
	locale    string
	dataDir   string
	maxUpload int64
	auth      *Auth
	log       *logrus.Logger
}

type Options struct {
	Content   *services.ContentService
	Gallery   *services.Gallery
	Dashboard *models.DashboardConfig
	Catalog   *i18n.Catalog
	Locale    string
	DataDir   string
	MaxUpload int64
	// Auth enables the login gate; nil serves everyone.
	Auth   *Auth
	Logger *logrus.Logger
}

func New(opts Options) (*Handler, error) {
	rules := opts.Dashboard.Widgets
	if len(rules) == 0 {
		rules = form.DefaultRules()
	}
	classifier, err := form.NewClassifier(rules)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		content:   opts.Content,
		gallery:   opts.Gallery,
		dashboard: opts.Dashboard,
		items:     form.NewFirstElementTemplate(opts.Dashboard.ListTemplate),
		tr:        opts.Catalog.Translator(opts.Locale),
		locale:    opts.Locale,
		dataDir:   opts.DataDir,
		maxUpload: opts.MaxUpload,
		auth:      opts.Auth,
		log:       opts.Logger,
	}
	h.renderer = &form.Renderer{
		Classifier: classifier,
		Label:      func(key string) string { return opts.Dashboard.Label(opts.Locale, key) },
		Preview:    opts.Gallery.Links().PreviewURL,
	}
	return h, nil
}

type navLink struct {
	Title string
	Href  string
}

type navSection struct {
	Title string
	Links []navLink
}

// page is the data every template receives; Body holds the page's own part.
type page struct {
	T            i18n.Translator
	Title        string
	Active       string
	Nav          []navSection
	Flashes      []string
	Error        string
	User         string
	LoginEnabled bool
	Body         any
}

func (h *Handler) nav() []navSection {
	var out []navSection
	for _, section := range h.dashboard.Sections() {
		s := navSection{Title: h.tr.T("section." + section)}
		for _, d := range h.dashboard.Documents {
			if d.Section == section {
				s.Links = append(s.Links, navLink{Title: d.DisplayTitle(h.locale), Href: "/data/" + d.Slug})
			}
		}
		out = append(out, s)
	}
	return out
}

func (h *Handler) newPage(c *gin.Context, title, active string, body any) page {
	p := page{
		T:            h.tr,
		Title:        title,
		Active:       active,
		Nav:          h.nav(),
		LoginEnabled: h.auth != nil,
		Body:         body,
	}
	session := sessions.Default(c)
	if user, ok := session.Get(sessionUser).(string); ok {
		p.User = user
	}
	if flashes := session.Flashes(); len(flashes) > 0 {
		for _, f := range flashes {
			if s, ok := f.(string); ok {
				p.Flashes = append(p.Flashes, s)
			}
		}
		if err := session.Save(); err != nil {
			h.log.WithError(err).Warn("session save failed")
		}
	}
	return p
}

// flash queues msg for the next page and redirects there.
func (h *Handler) flash(c *gin.Context, msg, location string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	if err := session.Save(); err != nil {
		h.log.WithError(err).Warn("session save failed")
	}
	c.Redirect(http.StatusSeeOther, location)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	p := h.newPage(c, h.tr.T("error.title"), "", nil)
	p.Error = h.errorText(err)
	c.HTML(statusFor(err), "error.html", p)
}

var errorKeys = []struct {
	kind error
	key  string
}{
	{services.ErrValidation, "validation"},
	{services.ErrNeedsConfirmation, "confirmation"},
	{services.ErrNotFound, "not_found"},
	{services.ErrConflict, "conflict"},
	{services.ErrAuth, "auth"},
	{services.ErrTransient, "transient"},
}

func kindName(err error) string {
	kind := services.Kind(err)
	for _, k := range errorKeys {
		if k.kind == kind {
			return k.key
		}
	}
	return "unknown"
}

// statusFor maps a failure kind to the response status. Authentication
// failures toward the store are the server's problem, not the client's.
func statusFor(err error) int {
	switch services.Kind(err) {
	case services.ErrValidation:
		return http.StatusBadRequest
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrConflict, services.ErrNeedsConfirmation:
		return http.StatusConflict
	case services.ErrAuth:
		return http.StatusBadGateway
	case services.ErrTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorText is the localized message for err. Validation failures carry
// their cause, e.g. the JSON syntax error.
func (h *Handler) errorText(err error) string {
	msg := h.tr.T("error." + kindName(err))
	var ge *services.GatewayError
	if errors.Is(err, services.ErrValidation) && errors.As(err, &ge) && ge.Err != nil {
		msg += ": " + ge.Err.Error()
	}
	return msg
}

func apiError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": kindName(err)})
}
