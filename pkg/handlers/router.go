package handlers

import (
	"content-dashboard/pkg/logging"
	"content-dashboard/pkg/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with sessions keyed by secret, the page
// templates and every route.
func NewRouter(h *Handler, secret []byte) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(h.log))

	// Session Setup
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions("dashboard", store))

	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	// --- Auth Routes ---
	r.GET("/login", h.LoginPage)
	r.GET("/login/github", h.GithubLogin)
	r.GET("/auth/callback", h.AuthCallback)
	r.GET("/logout", h.Logout)

	// --- Main App (Authorized) ---
	authorized := r.Group("/")
	authorized.Use(h.AuthRequired)
	{
		authorized.GET("/", h.Overview)
		authorized.GET("/data", h.DataFiles)
		authorized.GET("/data/:name", h.EditDocument)
		authorized.GET("/edit", h.EditDocument)
		authorized.POST("/edit", h.SubmitDocument)
		authorized.GET("/raw", h.RawEditor)
		authorized.POST("/raw", h.SaveRaw)

		authorized.GET("/images", h.Gallery)
		authorized.POST("/images/upload", h.UploadMedia)
		authorized.POST("/images/delete", h.DeleteMedia)
		authorized.GET("/images/raw", h.ServeMediaRaw)

		api := authorized.Group("/api")
		{
			api.GET("/file", h.GetFile)
			api.PUT("/file", h.SaveFile)
			api.DELETE("/file", h.DeleteFile)
			api.GET("/dir", h.ListDir)
			api.GET("/form", h.GetForm)
			api.POST("/images", h.UploadImage)
			api.GET("/images/picker", h.PickerImages)
		}
	}
	return r, nil
}
