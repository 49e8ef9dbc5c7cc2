package handlers

import (
	"net/http"
	"time"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/validation"
	"github.com/transitrack/transitrack/view"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileHandler serves the profile page shared by both roles: display name
// and password change.
type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var profile models.Profile
	h.db.First(&profile, identity.UserID)

	view.Render(w, r, "profile.html", map[string]any{
		"Email":   identity.Email,
		"Profile": profile,
	})
}

// Save upserts the profile row keyed by the user id. First save creates it,
// later saves overwrite it.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	username := r.FormValue("username")
	v := make(validation.Violations)
	validation.Required("username", username, v)
	if !v.Empty() {
		SetFlashError(w, "Username is required")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	profile := models.Profile{ID: uid, Username: username, UpdatedAt: time.Now()}
	err := h.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&profile).Error
	if err != nil {
		SetFlashError(w, "Failed to save profile")
	} else {
		SetFlashSuccess(w, "Profile updated")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// ChangePassword sets a new password for the session user.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	v := make(validation.Violations)
	validation.MinLen("password", password, 6, v)
	if !v.Empty() {
		SetFlashError(w, "Password must be at least 6 characters")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	if password != confirm {
		SetFlashError(w, "Passwords do not match")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		SetFlashError(w, "Failed to update password")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	err = h.db.Model(&models.User{}).Where("id = ?", uid).
		Update("password", string(hashed)).Error
	if err != nil {
		SetFlashError(w, "Failed to update password")
	} else {
		SetFlashSuccess(w, "Password updated")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
