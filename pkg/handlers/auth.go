package handlers

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionToken = "access_token"
	sessionUser  = "login"
	sessionState = "oauth_state"
)

// Auth gates the dashboard behind a GitHub login. Verify resolves the login
// of a token and rejects users that may not edit.
type Auth struct {
	OAuth  *oauth2.Config
	Verify func(ctx context.Context, token string) (string, error)
}

func (h *Handler) AuthRequired(c *gin.Context) {
	if h.auth == nil {
		c.Next()
		return
	}
	session := sessions.Default(c)
	token := session.Get(sessionToken)
	if token == nil {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
		return
	}
	c.Next()
}

func (h *Handler) LoginPage(c *gin.Context) {
	if h.auth == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	p := h.newPage(c, h.tr.T("login.title"), "", nil)
	p.Nav = nil
	c.HTML(http.StatusOK, "login.html", p)
}

func (h *Handler) GithubLogin(c *gin.Context) {
	if h.auth == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	state := hex.EncodeToString(securecookie.GenerateRandomKey(16))
	session := sessions.Default(c)
	session.Set(sessionState, state)
	if err := session.Save(); err != nil {
		h.log.WithError(err).Error("session save failed")
		c.String(http.StatusInternalServerError, "Session error")
		return
	}
	url := h.auth.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *Handler) AuthCallback(c *gin.Context) {
	if h.auth == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	session := sessions.Default(c)
	want, _ := session.Get(sessionState).(string)
	session.Delete(sessionState)
	if want == "" || c.Query("state") != want {
		h.loginFailed(c, http.StatusBadRequest, "login.failed")
		return
	}

	token, err := h.auth.OAuth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.log.WithError(err).Warn("oauth exchange failed")
		h.loginFailed(c, http.StatusBadGateway, "login.failed")
		return
	}
	login, err := h.auth.Verify(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.log.WithError(err).Warn("login rejected")
		h.loginFailed(c, http.StatusForbidden, "login.denied")
		return
	}

	session.Set(sessionToken, token.AccessToken)
	session.Set(sessionUser, login)
	if err := session.Save(); err != nil {
		h.log.WithError(err).Error("session save failed")
		c.String(http.StatusInternalServerError, "Session error")
		return
	}
	h.log.WithField("user", login).Info("signed in")
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) loginFailed(c *gin.Context, status int, key string) {
	if err := sessions.Default(c).Save(); err != nil {
		h.log.WithError(err).Warn("session save failed")
	}
	p := h.newPage(c, h.tr.T("login.title"), "", nil)
	p.Nav = nil
	p.Error = h.tr.T(key)
	c.HTML(status, "login.html", p)
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.log.WithError(err).Warn("session save failed")
	}
	c.Redirect(http.StatusFound, "/login")
}
