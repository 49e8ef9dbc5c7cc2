package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/gate"
	"github.com/transitrack/transitrack/internal/handlers"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/internal/policy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// unique in-memory DB per test name to avoid leakage via shared cache
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	err = d.AutoMigrate(
		&models.User{}, &models.Profile{},
		&models.Route{}, &models.Schedule{},
		&models.Comment{}, &models.Notification{},
	)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testGate(roles map[uint]gate.Role) *gate.Gate[uint] {
	resolver := gate.NewStaticResolver[uint]()
	for uid, role := range roles {
		resolver.Set(uid, role)
	}
	g := gate.NewGate[uint](resolver)
	g.Register("comment", policy.NewOwnershipPolicy())
	return g
}

func postForm(path string, form url.Values, uid uint) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if uid != 0 {
		r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: uid, Email: "u@example.com"}))
	}
	return r
}

func TestRouteSaveUpsert(t *testing.T) {
	d := testDB(t)
	h := handlers.NewRouteHandler(d)

	rec := httptest.NewRecorder()
	h.Save(rec, postForm("/admin/routes/save", url.Values{
		"name":           {"Linea 4"},
		"start_location": {"Centro"},
		"end_location":   {"Terminal Norte"},
	}, 1))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create: expected redirect, got %d", rec.Code)
	}

	var route models.Route
	if err := d.Where("name = ?", "Linea 4").First(&route).Error; err != nil {
		t.Fatalf("route not created: %v", err)
	}

	rec = httptest.NewRecorder()
	h.Save(rec, postForm("/admin/routes/save", url.Values{
		"id":             {strconv.Itoa(int(route.ID))},
		"name":           {"Linea 4 Express"},
		"start_location": {"Centro"},
		"end_location":   {"Aeropuerto"},
	}, 1))

	var count int64
	d.Model(&models.Route{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected upsert, got %d routes", count)
	}
	d.First(&route, route.ID)
	if route.Name != "Linea 4 Express" || route.EndLocation != "Aeropuerto" {
		t.Errorf("route not updated: %+v", route)
	}
}

func TestRouteSaveRequiresFields(t *testing.T) {
	d := testDB(t)
	h := handlers.NewRouteHandler(d)

	rec := httptest.NewRecorder()
	h.Save(rec, postForm("/admin/routes/save", url.Values{"name": {"  "}}, 1))

	var count int64
	d.Model(&models.Route{}).Count(&count)
	if count != 0 {
		t.Fatalf("blank route should not be saved, got %d", count)
	}
}

func TestScheduleSaveAndDelete(t *testing.T) {
	d := testDB(t)
	h := handlers.NewRouteHandler(d)
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)

	rec := httptest.NewRecorder()
	h.SaveSchedule(rec, postForm("/admin/schedules/save", url.Values{
		"route_id":          {strconv.Itoa(int(route.ID))},
		"day_of_week":       {"Monday"},
		"start_time":        {"07:30"},
		"end_time":          {"09:00"},
		"frequency_minutes": {"15"},
	}, 1))

	var schedule models.Schedule
	if err := d.Where("route_id = ?", route.ID).First(&schedule).Error; err != nil {
		t.Fatalf("schedule not created: %v", err)
	}
	if schedule.FrequencyMinutes == nil || *schedule.FrequencyMinutes != 15 {
		t.Errorf("frequency not stored: %+v", schedule.FrequencyMinutes)
	}

	rec = httptest.NewRecorder()
	r := postForm("/admin/schedules/"+strconv.Itoa(int(schedule.ID))+"/delete",
		url.Values{"route_id": {strconv.Itoa(int(route.ID))}}, 1)
	r.SetPathValue("id", strconv.Itoa(int(schedule.ID)))
	h.DeleteSchedule(rec, r)

	var count int64
	d.Model(&models.Schedule{}).Count(&count)
	if count != 0 {
		t.Fatalf("schedule should be deleted, got %d", count)
	}
}

func TestScheduleSaveRejectsUnknownDay(t *testing.T) {
	d := testDB(t)
	h := handlers.NewRouteHandler(d)
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)

	rec := httptest.NewRecorder()
	h.SaveSchedule(rec, postForm("/admin/schedules/save", url.Values{
		"route_id":    {strconv.Itoa(int(route.ID))},
		"day_of_week": {"Funday"},
		"start_time":  {"07:30"},
		"end_time":    {"09:00"},
	}, 1))

	var count int64
	d.Model(&models.Schedule{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid day should not be saved, got %d", count)
	}
}

func TestCommentSaveForcesSessionAuthor(t *testing.T) {
	d := testDB(t)
	g := testGate(map[uint]gate.Role{2: gate.RoleUser})
	h := handlers.NewCommentHandler(d, g)
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)

	rec := httptest.NewRecorder()
	h.Save(rec, postForm("/comments/save", url.Values{
		"route_id":     {strconv.Itoa(int(route.ID))},
		"comment_text": {"Siempre puntual"},
		"rating":       {"5"},
		"user_id":      {"99"}, // must be ignored
	}, 2))

	var comment models.Comment
	if err := d.First(&comment).Error; err != nil {
		t.Fatalf("comment not created: %v", err)
	}
	if comment.UserID != 2 {
		t.Errorf("author should come from the session, got %d", comment.UserID)
	}
}

func TestCommentEditRejectsNonOwner(t *testing.T) {
	d := testDB(t)
	g := testGate(map[uint]gate.Role{2: gate.RoleUser, 3: gate.RoleUser})
	h := handlers.NewCommentHandler(d, g)
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)
	comment := models.Comment{UserID: 2, RouteID: route.ID, CommentText: "original", Rating: 4}
	d.Create(&comment)

	rec := httptest.NewRecorder()
	h.Save(rec, postForm("/comments/save", url.Values{
		"id":           {strconv.Itoa(int(comment.ID))},
		"route_id":     {strconv.Itoa(int(route.ID))},
		"comment_text": {"hijacked"},
		"rating":       {"1"},
	}, 3))

	d.First(&comment, comment.ID)
	if comment.CommentText != "original" {
		t.Errorf("non-owner edit should be rejected, got %q", comment.CommentText)
	}
}

func TestCommentDeleteByAdmin(t *testing.T) {
	d := testDB(t)
	g := testGate(map[uint]gate.Role{1: gate.RoleAdmin, 2: gate.RoleUser})
	h := handlers.NewCommentHandler(d, g)
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)
	comment := models.Comment{UserID: 2, RouteID: route.ID, CommentText: "x", Rating: 3}
	d.Create(&comment)

	rec := httptest.NewRecorder()
	r := postForm("/comments/"+strconv.Itoa(int(comment.ID))+"/delete", url.Values{}, 1)
	r.SetPathValue("id", strconv.Itoa(int(comment.ID)))
	h.Delete(rec, r)

	if loc := rec.Header().Get("Location"); loc != "/admin/comments" {
		t.Errorf("admin delete should return to moderation page, got %q", loc)
	}
	var count int64
	d.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Fatalf("comment should be deleted, got %d", count)
	}
}

func TestCommentRatingRange(t *testing.T) {
	d := testDB(t)
	g := testGate(map[uint]gate.Role{2: gate.RoleUser})
	h := handlers.NewCommentHandler(d, g)
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)

	for _, rating := range []string{"0", "6"} {
		rec := httptest.NewRecorder()
		h.Save(rec, postForm("/comments/save", url.Values{
			"route_id":     {strconv.Itoa(int(route.ID))},
			"comment_text": {"out of range"},
			"rating":       {rating},
		}, 2))
	}

	var count int64
	d.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Fatalf("out-of-range ratings should be rejected, got %d comments", count)
	}
}

func TestNotificationSaveStretchesExpiryToEndOfDay(t *testing.T) {
	d := testDB(t)
	h := handlers.NewNotificationHandler(d)

	rec := httptest.NewRecorder()
	h.Save(rec, postForm("/admin/notifications/save", url.Values{
		"title":        {"Obras en el centro"},
		"message":      {"Desvio temporal"},
		"type":         {"diversion"},
		"active_until": {"2026-09-15"},
	}, 1))

	var n models.Notification
	if err := d.First(&n).Error; err != nil {
		t.Fatalf("notification not created: %v", err)
	}
	if n.SentAt.IsZero() {
		t.Error("sent_at should be set on create")
	}
	if n.ActiveUntil == nil {
		t.Fatal("active_until should be set")
	}
	h23, m59, s59 := n.ActiveUntil.Clock()
	if h23 != 23 || m59 != 59 || s59 != 59 {
		t.Errorf("expiry should cover the whole day, got %v", n.ActiveUntil)
	}
}

func TestNotificationFeedHidesExpired(t *testing.T) {
	d := testDB(t)
	h := handlers.NewNotificationHandler(d)

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	d.Create(&models.Notification{Title: "Old diversion", Message: "m", Type: "diversion", SentAt: past, ActiveUntil: &past})
	d.Create(&models.Notification{Title: "Current delay", Message: "m", Type: "delay", SentAt: past, ActiveUntil: &future})
	d.Create(&models.Notification{Title: "Evergreen info", Message: "m", Type: "info", SentAt: past})

	rec := httptest.NewRecorder()
	h.UserList(rec, getAs("/notifications", 2))
	body := rec.Body.String()
	if strings.Contains(body, "Old diversion") {
		t.Error("expired notification should be hidden from riders")
	}
	for _, want := range []string{"Current delay", "Evergreen info"} {
		if !strings.Contains(body, want) {
			t.Errorf("active notification %q missing from feed", want)
		}
	}
}

func getAs(path string, uid uint) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if uid != 0 {
		r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: uid, Email: "u@example.com"}))
	}
	return r
}

func TestNotificationSaveRejectsUnknownType(t *testing.T) {
	d := testDB(t)
	h := handlers.NewNotificationHandler(d)

	rec := httptest.NewRecorder()
	h.Save(rec, postForm("/admin/notifications/save", url.Values{
		"title":   {"t"},
		"message": {"m"},
		"type":    {"urgent"},
	}, 1))

	var count int64
	d.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("unknown type should be rejected, got %d", count)
	}
}

func TestProfileSaveUpsertsByUserID(t *testing.T) {
	d := testDB(t)
	h := handlers.NewProfileHandler(d)

	for _, name := range []string{"viajero", "viajero_frecuente"} {
		rec := httptest.NewRecorder()
		h.Save(rec, postForm("/profile", url.Values{"username": {name}}, 7))
	}

	var count int64
	d.Model(&models.Profile{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single upserted profile row, got %d", count)
	}
	var profile models.Profile
	d.First(&profile, 7)
	if profile.Username != "viajero_frecuente" {
		t.Errorf("second save should overwrite, got %q", profile.Username)
	}
}

func TestAccountDeleteRequiresSession(t *testing.T) {
	d := testDB(t)
	h := handlers.NewAccountHandler(d, nil)

	rec := httptest.NewRecorder()
	h.Delete(rec, postForm("/api/account/delete", url.Values{}, 0))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}

func TestAccountDeletePreflight(t *testing.T) {
	d := testDB(t)
	h := handlers.NewAccountHandler(d, nil)

	rec := httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodOptions, "/api/account/delete", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("preflight should get 200, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight should carry CORS headers")
	}
}

func TestAccountDeleteRemovesUserData(t *testing.T) {
	d := testDB(t)
	invalidated := uint(0)
	h := handlers.NewAccountHandler(d, func(uid uint) { invalidated = uid })

	user := models.User{Email: "gone@example.com", Password: "hash"}
	d.Create(&user)
	d.Create(&models.Profile{ID: user.ID, Username: "gone", UpdatedAt: time.Now()})
	route := models.Route{Name: "Linea 1", StartLocation: "A", EndLocation: "B"}
	d.Create(&route)
	d.Create(&models.Comment{UserID: user.ID, RouteID: route.ID, CommentText: "bye", Rating: 3})

	rec := httptest.NewRecorder()
	h.Delete(rec, postForm("/api/account/delete", url.Values{}, user.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "User deleted successfully") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if invalidated != user.ID {
		t.Errorf("role cache should be invalidated for %d, got %d", user.ID, invalidated)
	}

	var users, profiles, comments int64
	d.Unscoped().Model(&models.User{}).Count(&users)
	d.Model(&models.Profile{}).Count(&profiles)
	d.Model(&models.Comment{}).Count(&comments)
	if users != 0 || profiles != 0 || comments != 0 {
		t.Errorf("expected all user data removed, got users=%d profiles=%d comments=%d", users, profiles, comments)
	}
}

func TestSignupCreatesSessionAndRedirects(t *testing.T) {
	d := testDB(t)
	h := handlers.NewAuthHandler(d, nil, nil)

	rec := httptest.NewRecorder()
	h.Auth(rec, postForm("/auth", url.Values{
		"mode":     {"signup"},
		"email":    {"new@example.com"},
		"password": {"secret1"},
	}, 0))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("signup should set a session cookie")
	}

	var user models.User
	if err := d.Where("email = ?", "new@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Password == "secret1" {
		t.Error("password must be stored hashed")
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	d := testDB(t)
	h := handlers.NewAuthHandler(d, nil, nil)

	rec := httptest.NewRecorder()
	h.Auth(rec, postForm("/auth", url.Values{
		"mode":     {"signup"},
		"email":    {"short@example.com"},
		"password": {"12345"},
	}, 0))

	var count int64
	d.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("short password should be rejected, got %d users", count)
	}
}

func TestLoginAgainstSignedUpAccount(t *testing.T) {
	d := testDB(t)
	h := handlers.NewAuthHandler(d, nil, nil)

	rec := httptest.NewRecorder()
	h.Auth(rec, postForm("/auth", url.Values{
		"mode":     {"signup"},
		"email":    {"rider@example.com"},
		"password": {"secret1"},
	}, 0))

	rec = httptest.NewRecorder()
	h.Auth(rec, postForm("/auth", url.Values{
		"mode":     {"login"},
		"email":    {"rider@example.com"},
		"password": {"secret1"},
	}, 0))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("login should redirect to /dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	h := handlers.NewAuthHandler(testDB(t), nil, nil)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Fatalf("logout %d: expected redirect to /, got %d", i, rec.Code)
		}
	}
}
