// admin.go - login-protected diagnostics for generated layouts
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type admin struct {
	token     string
	salt      string
	username  string
	password  string
	retention time.Duration
	store     *Store
	logger    *log.Logger
	now       func() time.Time
}

func newAdmin(cfg Config, store *Store, logger *log.Logger) (*admin, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	salt, err := generateToken()
	if err != nil {
		return nil, err
	}

	user, pass, defaulted := cfg.adminCredentials()
	if defaulted && gin.Mode() == gin.DebugMode {
		logger.Warn("Using default admin credentials. Set ADMIN_USERNAME and ADMIN_PASSWORD.")
	}

	logger.Info("Admin access available", "path", "/admin/login")
	if gin.Mode() == gin.DebugMode {
		logger.Debug("Admin token (dev only)", "token", token)
	}

	return &admin{
		token:     token,
		salt:      salt,
		username:  user,
		password:  pass,
		retention: cfg.Retention,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// hashIP is stable per address for the life of the process.
func (a *admin) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_token")
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// trackable reports whether a page view may be logged. Do Not Track is
// honoured and only page routes are counted.
func trackable(c *gin.Context) bool {
	path := c.Request.URL.Path
	for _, prefix := range []string{"/static/", "/admin/", "/api/", "/rotation/", "/favicon", "/privacy"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return c.GetHeader("DNT") != "1"
}

// purgeExpired drops layouts older than the retention window.
func (a *admin) purgeExpired(c *gin.Context) (int64, error) {
	n, err := a.store.Purge(c.Request.Context(), a.now().Add(-a.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.logger.Info("Privacy cleanup", "removed", n, "older_than", a.retention)
	}
	return n, nil
}

func (a *admin) routes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"retention": int(a.retention.Hours() / 24),
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
		if !userOK || !passOK {
			a.logger.Warn("Failed admin login attempt", "from", a.hashIP(c.ClientIP()))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		c.SetCookie("admin_token", a.token, 3600*24, "/admin", "", false, true)
		a.logger.Info("Admin login successful", "from", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", false, true)
		a.logger.Info("Admin logout", "from", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	group := r.Group("/admin")
	group.Use(a.authMiddleware())

	group.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.logger.Error("Error loading admin stats", "err", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"title": "Layout diagnostics",
			"stats": stats,
		})
	})

	group.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	group.DELETE("/layouts/:id", func(c *gin.Context) {
		id := c.Param("id")
		found, err := a.store.DeleteLayout(c.Request.Context(), id)
		if err != nil {
			a.logger.Error("Error deleting layout", "id", id, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete layout"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}
		a.logger.Info("Layout deleted", "id", id, "by", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Layout deleted successfully"})
	})

	group.POST("/privacy/purge", func(c *gin.Context) {
		n, err := a.purgeExpired(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	group.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=layout-stats.json")
		a.logger.Info("Admin stats exported", "by", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
