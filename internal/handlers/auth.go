package handlers

import (
	"net/http"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/validation"
	"github.com/transitrack/transitrack/view"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves the combined login/signup page and logout.
type AuthHandler struct {
	db *gorm.DB
	// homeFor maps an email to the signed-in home path, injected by the
	// policy wiring so role derivation stays in one place.
	homeFor    func(email string) string
	invalidate func(uint)
}

func NewAuthHandler(db *gorm.DB, homeFor func(string) string, invalidate func(uint)) *AuthHandler {
	if homeFor == nil {
		homeFor = func(string) string { return "/dashboard" }
	}
	if invalidate == nil {
		invalidate = func(uint) {}
	}
	return &AuthHandler{db: db, homeFor: homeFor, invalidate: invalidate}
}

// Auth renders the form on GET and processes login or signup on POST.
// The mode field toggles between the two, mirroring the single form with a
// switch link.
func (h *AuthHandler) Auth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		mode := r.URL.Query().Get("mode")
		if mode != "signup" {
			mode = "login"
		}
		view.Render(w, r, "auth.html", map[string]any{"Mode": mode, "Email": ""})
		return
	}

	mode := r.FormValue("mode")
	email := r.FormValue("email")
	password := r.FormValue("password")

	fail := func(msg string) {
		view.Render(w, r, "auth.html", map[string]any{
			"Mode":  mode,
			"Email": email,
			"Error": msg,
		})
	}

	v := make(validation.Violations)
	validation.Required("email", email, v)
	validation.Required("password", password, v)
	if !v.Empty() {
		fail("Email and password are required")
		return
	}

	if mode == "signup" {
		h.signup(w, r, email, password, fail)
		return
	}
	h.login(w, r, email, password, fail)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, email, password string, fail func(string)) {
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		fail("Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		fail("Invalid email or password")
		return
	}

	auth.CreateSession(w, auth.Identity{UserID: user.ID, Email: user.Email})
	http.Redirect(w, r, h.homeFor(user.Email), http.StatusSeeOther)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, email, password string, fail func(string)) {
	v := make(validation.Violations)
	validation.MinLen("password", password, 6, v)
	if !v.Empty() {
		fail("Password must be at least 6 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fail("Internal server error")
		return
	}

	user := models.User{Email: email, Password: string(hashed)}
	if err := h.db.Create(&user).Error; err != nil {
		fail("Email already exists")
		return
	}
	h.invalidate(user.ID)

	auth.CreateSession(w, auth.Identity{UserID: user.ID, Email: user.Email})
	http.Redirect(w, r, h.homeFor(user.Email), http.StatusSeeOther)
}

// Logout clears the session and returns to the landing page.
// Logging out twice is a no-op after the first.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
