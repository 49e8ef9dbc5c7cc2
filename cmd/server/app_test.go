package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/internal/config"
	"github.com/transitrack/transitrack/internal/db"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/internal/policy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const adminEmail = "admin@transitrack.example"

func testApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	// unique in-memory DB per test name to avoid leakage via shared cache
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Auth.AdminEmail = adminEmail
	cfg.Auth.RoleCacheTTL = 60
	return NewApp(d, policy.NewRouterConfig(d, cfg), false), d
}

func createUser(t *testing.T, d *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "hash"}
	if err := d.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return user
}

// sessionCookie builds a valid signed session cookie for the user.
func sessionCookie(user models.User) *http.Cookie {
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, auth.Identity{UserID: user.ID, Email: user.Email})
	return rec.Result().Cookies()[0]
}

func get(app *App, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, r)
	return rec
}

func TestAnonymousOnlySeesPublicPages(t *testing.T) {
	app, _ := testApp(t)

	if rec := get(app, "/", nil); rec.Code != http.StatusOK {
		t.Errorf("landing: expected 200, got %d", rec.Code)
	}
	if rec := get(app, "/auth", nil); rec.Code != http.StatusOK {
		t.Errorf("auth page: expected 200, got %d", rec.Code)
	}

	for _, path := range []string{"/dashboard", "/routes", "/notifications", "/comments", "/profile", "/admin", "/admin/comments", "/admin/notifications"} {
		rec := get(app, path, nil)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("%s: anonymous should be sent to /, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestUserTreeRouting(t *testing.T) {
	app, d := testApp(t)
	user := createUser(t, d, "rider@example.com")
	cookie := sessionCookie(user)

	// Public pages forward to the role home.
	for _, path := range []string{"/", "/auth"} {
		rec := get(app, path, cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
			t.Errorf("%s: user should be forwarded to /dashboard, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	for _, path := range []string{"/dashboard", "/routes", "/notifications", "/comments", "/profile"} {
		if rec := get(app, path, cookie); rec.Code != http.StatusOK {
			t.Errorf("%s: user should reach page, got %d", path, rec.Code)
		}
	}

	// Admin tree is out of reach.
	for _, path := range []string{"/admin", "/admin/comments", "/admin/notifications"} {
		rec := get(app, path, cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("%s: user should be sent to /, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestAdminTreeRouting(t *testing.T) {
	app, d := testApp(t)
	admin := createUser(t, d, adminEmail)
	cookie := sessionCookie(admin)

	for _, path := range []string{"/", "/auth"} {
		rec := get(app, path, cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin" {
			t.Errorf("%s: admin should be forwarded to /admin, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	for _, path := range []string{"/admin", "/admin/comments", "/admin/notifications", "/profile"} {
		if rec := get(app, path, cookie); rec.Code != http.StatusOK {
			t.Errorf("%s: admin should reach page, got %d", path, rec.Code)
		}
	}

	// Rider tree is out of reach for the admin.
	for _, path := range []string{"/dashboard", "/routes", "/notifications", "/comments"} {
		rec := get(app, path, cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("%s: admin should be sent to /, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestAdminRoleIsExactEmailMatch(t *testing.T) {
	app, d := testApp(t)
	almost := createUser(t, d, "Admin@transitrack.example")
	cookie := sessionCookie(almost)

	rec := get(app, "/", cookie)
	if rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("case-variant email must not gain admin, got %q", rec.Header().Get("Location"))
	}
}

func TestUnmatchedPathRedirectsToLanding(t *testing.T) {
	app, d := testApp(t)
	user := createUser(t, d, "rider@example.com")

	for _, cookie := range []*http.Cookie{nil, sessionCookie(user)} {
		rec := get(app, "/no-such-page", cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestTamperedSessionIsNoSession(t *testing.T) {
	app, d := testApp(t)
	user := createUser(t, d, "rider@example.com")
	cookie := sessionCookie(user)
	cookie.Value += "x"

	rec := get(app, "/dashboard", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("tampered session should redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	app, d := testApp(t)
	user := createUser(t, d, "rider@example.com")
	cookie := sessionCookie(user)

	first := get(app, "/logout", cookie)
	second := get(app, "/logout", nil)
	for i, rec := range []*httptest.ResponseRecorder{first, second} {
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("logout %d: expected redirect to /, got %d", i, rec.Code)
		}
	}
}

func TestAccountDeleteEndpointThroughRouter(t *testing.T) {
	app, d := testApp(t)
	user := createUser(t, d, "rider@example.com")

	r := httptest.NewRequest(http.MethodPost, "/api/account/delete", nil)
	r.AddCookie(sessionCookie(user))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	d.Unscoped().Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("user row should be gone, got %d", count)
	}
}
