package handlers

import (
	"net/http"
	"strconv"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/gate"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/validation"
	"github.com/transitrack/transitrack/view"
	"gorm.io/gorm"
)

// CommentHandler serves the rider comment board and the admin moderation
// page. Edits go through the ownership policy; deletes additionally admit the
// administrator.
type CommentHandler struct {
	db   *gorm.DB
	gate *gate.Gate[uint]
}

func NewCommentHandler(db *gorm.DB, g *gate.Gate[uint]) *CommentHandler {
	return &CommentHandler{db: db, gate: g}
}

// listWithDetails loads all comments joined with author username and route
// name, newest first. Authors without a profile fall back to their email.
func (h *CommentHandler) listWithDetails() ([]models.CommentWithDetails, error) {
	var comments []models.CommentWithDetails
	err := h.db.Table("comments").
		Select("comments.*, COALESCE(profiles.username, users.email) AS username, routes.name AS route_name").
		Joins("LEFT JOIN profiles ON profiles.id = comments.user_id").
		Joins("LEFT JOIN users ON users.id = comments.user_id").
		Joins("LEFT JOIN routes ON routes.id = comments.route_id").
		Order("comments.created_at DESC").
		Scan(&comments).Error
	return comments, err
}

// UserList renders the comment board with the new-comment form.
// ?edit=<id> preloads the form with one of the viewer's own comments.
func (h *CommentHandler) UserList(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	comments, err := h.listWithDetails()
	if err != nil {
		http.Error(w, "failed to load comments", http.StatusInternalServerError)
		return
	}
	var routes []models.Route
	h.db.Order("name ASC").Find(&routes)

	data := map[string]any{
		"Comments":      comments,
		"Routes":        routes,
		"CurrentUserID": uid,
	}
	if id, err := strconv.Atoi(r.URL.Query().Get("edit")); err == nil && id > 0 {
		var comment models.Comment
		if err := h.db.First(&comment, id).Error; err == nil &&
			h.gate.Can(r.Context(), uid, gate.ActionUpdate, "comment", &comment) {
			data["Editing"] = &comment
		}
	}
	view.Render(w, r, "comments/index.html", data)
}

// AdminList renders the moderation page: every comment, delete only.
func (h *CommentHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.listWithDetails()
	if err != nil {
		http.Error(w, "failed to load comments", http.StatusInternalServerError)
		return
	}
	view.Render(w, r, "admin/comments.html", map[string]any{"Comments": comments})
}

// Save creates or updates a comment. The author is always the session user;
// an edit of someone else's comment is rejected by the ownership policy.
func (h *CommentHandler) Save(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, _ := strconv.Atoi(r.FormValue("id"))
	routeID, _ := strconv.Atoi(r.FormValue("route_id"))
	text := r.FormValue("comment_text")
	rating, _ := strconv.Atoi(r.FormValue("rating"))

	v := make(validation.Violations)
	validation.Required("comment_text", text, v)
	validation.IntRange("rating", rating, 1, 5, v)
	if routeID <= 0 || !v.Empty() {
		SetFlashError(w, "A route, comment and rating from 1 to 5 are required")
		http.Redirect(w, r, "/comments", http.StatusSeeOther)
		return
	}

	var comment models.Comment
	if id > 0 {
		if err := h.db.First(&comment, id).Error; err != nil {
			SetFlashError(w, "Comment not found")
			http.Redirect(w, r, "/comments", http.StatusSeeOther)
			return
		}
		if err := h.gate.Authorize(r.Context(), uid, gate.ActionUpdate, "comment", &comment); err != nil {
			SetFlashError(w, "You can only edit your own comments")
			http.Redirect(w, r, "/comments", http.StatusSeeOther)
			return
		}
	} else {
		comment.UserID = uid
	}
	comment.RouteID = uint(routeID)
	comment.CommentText = text
	comment.Rating = rating

	var err error
	if id > 0 {
		err = h.db.Save(&comment).Error
	} else {
		err = h.db.Create(&comment).Error
	}
	if err != nil {
		SetFlashError(w, "Failed to save comment")
	} else {
		SetFlashSuccess(w, "Comment saved")
	}
	http.Redirect(w, r, "/comments", http.StatusSeeOther)
}

// Delete removes a comment. The author may delete their own; the
// administrator may delete any. Redirects back to the page the role sees.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	back := "/comments"
	if h.gate.RoleOf(r.Context(), uid) == gate.RoleAdmin {
		back = "/admin/comments"
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, id).Error; err != nil {
		SetFlashError(w, "Comment not found")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if err := h.gate.Authorize(r.Context(), uid, gate.ActionDelete, "comment", &comment); err != nil {
		SetFlashError(w, "You can only delete your own comments")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err := h.db.Delete(&comment).Error; err != nil {
		SetFlashError(w, "Failed to delete comment")
	} else {
		SetFlashSuccess(w, "Comment deleted")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
