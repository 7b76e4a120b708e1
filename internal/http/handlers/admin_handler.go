// Package handlers – admin panel
//
// The admin panel is a small server-rendered HTML surface: login, a
// dashboard with document upload, pipeline settings, and allow-list
// management. Mutations are plain form POSTs that re-render the dashboard
// with a flash message, so the panel works without any client-side script.

package handlers

import (
	"crypto/subtle"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/domain"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/http/middleware"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/ingest"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/repo"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/services"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var adminTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const documentsPageSize = 10

// AdminHandler serves the panel.
type AdminHandler struct {
	DB       *gorm.DB
	Sessions *SessionStore
	Settings *services.SettingsService
	Ingestor *ingest.Ingestor
	Auth     config.AdminConfig

	// MaxUploadMB is surfaced in the upload form hint.
	MaxUploadMB int
}

// RequireSession gates the dashboard routes. Unauthenticated requests are
// redirected to the login page.
func (h *AdminHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)
		if !h.Sessions.Valid(token) {
			c.Redirect(http.StatusSeeOther, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginForm handles GET /admin/login.
func (h *AdminHandler) LoginForm(c *gin.Context) {
	c.Status(http.StatusOK)
	h.render(c, "login", gin.H{})
}

// Login handles POST /admin/login. Credential comparison is constant-time;
// a failed attempt re-renders the form with a generic message.
func (h *AdminHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.Auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.Auth.Password)) == 1
	if !userOK || !passOK {
		middleware.LoggerFrom(c).Warn().Msg("admin login rejected")
		c.Status(http.StatusUnauthorized)
		h.render(c, "login", gin.H{"Error": "Invalid username or password."})
		return
	}

	token := h.Sessions.Issue()
	c.SetCookie(sessionCookie, token, int(h.Sessions.TTL.Seconds()), "/admin", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Logout handles POST /admin/logout.
func (h *AdminHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		h.Sessions.Revoke(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/admin", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	h.renderDashboard(c, http.StatusOK, "", "")
}

// Upload handles POST /admin/upload.
func (h *AdminHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, "", "No file selected.")
		return
	}

	src, err := file.Open()
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, "", "Could not read the uploaded file.")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, "", "Could not read the uploaded file.")
		return
	}

	n, err := h.Ingestor.Ingest(c.Request.Context(), file.Filename, data)
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		h.renderDashboard(c, http.StatusBadRequest, "", "Only PDF and plain text files are supported.")
	case errors.Is(err, ingest.ErrExtractionFailed):
		h.renderDashboard(c, http.StatusBadRequest, "", "No text could be extracted from that file.")
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Str("filename", file.Filename).Msg("document ingestion failed")
		h.renderDashboard(c, http.StatusBadGateway, "", "Storing the document failed; try again.")
	default:
		h.renderDashboard(c, http.StatusOK, formatChunks(file.Filename, n), "")
	}
}

// SaveSettings handles POST /admin/settings.
func (h *AdminHandler) SaveSettings(c *gin.Context) {
	model := c.PostForm("model_name")
	trigger := c.PostForm("trigger_word")
	allowList := c.PostForm("whitelist")

	err := h.Settings.UpdateSettings(c.Request.Context(), model, trigger, allowList)
	switch {
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("settings update failed")
		h.renderDashboard(c, http.StatusInternalServerError, "", "Saving settings failed; try again.")
	default:
		h.renderDashboard(c, http.StatusOK, "Settings saved.", "")
	}
}

// AddWhitelist handles POST /admin/whitelist.
func (h *AdminHandler) AddWhitelist(c *gin.Context) {
	phone := c.PostForm("phone")
	name := c.PostForm("name")
	trigger := c.PostForm("trigger")

	err := h.Settings.AddEntry(c.Request.Context(), phone, name, trigger)
	switch {
	case errors.Is(err, services.ErrInvalidPhoneNumber):
		h.renderDashboard(c, http.StatusBadRequest, "", "A phone number is required.")
	case errors.Is(err, repo.ErrDuplicateEntry):
		h.renderDashboard(c, http.StatusBadRequest, "", "That number is already on the list.")
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("whitelist add failed")
		h.renderDashboard(c, http.StatusInternalServerError, "", "Adding the entry failed; try again.")
	default:
		h.renderDashboard(c, http.StatusOK, "Sender added to the allow list.", "")
	}
}

// DeleteWhitelist handles POST /admin/whitelist/:id/delete.
func (h *AdminHandler) DeleteWhitelist(c *gin.Context) {
	err := h.Settings.RemoveEntry(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		h.renderDashboard(c, http.StatusNotFound, "", "That entry no longer exists.")
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("whitelist delete failed")
		h.renderDashboard(c, http.StatusInternalServerError, "", "Removing the entry failed; try again.")
	default:
		h.renderDashboard(c, http.StatusOK, "Sender removed from the allow list.", "")
	}
}

// renderDashboard loads the current settings and documents page and renders
// the dashboard with an optional flash or error banner.
func (h *AdminHandler) renderDashboard(c *gin.Context, status int, flash, errMsg string) {
	snap := h.Settings.Current()

	total, err := repo.CountDocuments(c.Request.Context(), h.DB)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("document count failed")
	}
	totalPages := int((total + documentsPageSize - 1) / documentsPageSize)
	page := utils.ClampPage(utils.AtoiDefault(c.Query("page"), 1), totalPages)

	var docs []domain.Document
	if total > 0 {
		docs, err = repo.ListDocumentsPage(c.Request.Context(), h.DB, (page-1)*documentsPageSize, documentsPageSize)
		if err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("document list failed")
		}
	}

	csv := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		csv = append(csv, e.PhoneNumber)
	}

	c.Status(status)
	h.render(c, "dashboard", gin.H{
		"Flash":        flash,
		"Error":        errMsg,
		"Settings":     snap,
		"Entries":      snap.Entries,
		"AllowListCSV": strings.Join(csv, ", "),
		"Documents":    docs,
		"Page":         page,
		"TotalPages":   totalPages,
		"PrevPage":     page - 1,
		"NextPage":     page + 1,
		"MaxUploadMB":  h.MaxUploadMB,
	})
}

func (h *AdminHandler) render(c *gin.Context, name string, data gin.H) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := adminTemplates.ExecuteTemplate(c.Writer, name, data); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("template", name).Msg("template render failed")
	}
}

func formatChunks(filename string, n int) string {
	if n == 1 {
		return "Stored " + filename + " as 1 chunk."
	}
	return "Stored " + filename + " as " + strconv.Itoa(n) + " chunks."
}
