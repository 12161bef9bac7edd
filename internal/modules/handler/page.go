package handler

import (
	"net/http"

	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PageHandler renders the server-side pages. The engine must have the
// templates from internal/web loaded.
type PageHandler struct {
	appName       string
	dashboardPath string
}

func NewPageHandler(appName, dashboardPath string) *PageHandler {
	return &PageHandler{appName: appName, dashboardPath: dashboardPath}
}

func (h *PageHandler) SignIn(c *gin.Context) {
	c.HTML(http.StatusOK, "sign-in.html", gin.H{
		"AppName":       h.appName,
		"DashboardPath": h.dashboardPath,
	})
}

// Dashboard serves the shell for every /dashboard route; it only runs behind SessionGate.
func (h *PageHandler) Dashboard(c *gin.Context) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.Redirect(http.StatusFound, "/sign-in")
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"AppName": h.appName,
		"User":    displayUser(s.User),
		"Path":    c.Request.URL.Path,
	})
}

func displayUser(u authprovider.User) authprovider.User {
	if u.DisplayUsername == "" {
		u.DisplayUsername = u.Username
	}
	if u.DisplayUsername == "" {
		u.DisplayUsername = u.Name
	}
	return u
}
