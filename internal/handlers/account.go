package handlers

import (
	"log/slog"
	"net/http"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/httpx"
	"github.com/transitrack/transitrack/internal/models"
	"gorm.io/gorm"
)

// AccountHandler serves the JSON account deletion endpoint. It is the one
// API-style route in the app so browser clients can call it with fetch.
type AccountHandler struct {
	db         *gorm.DB
	invalidate func(uint)
}

func NewAccountHandler(db *gorm.DB, invalidate func(uint)) *AccountHandler {
	if invalidate == nil {
		invalidate = func(uint) {}
	}
	return &AccountHandler{db: db, invalidate: invalidate}
}

// Delete removes the session user's account with its comments and profile,
// then clears the session. Unauthenticated calls get 401.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if httpx.CORS(w, r) {
		return
	}

	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "No authorization header", nil)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", uid).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Profile{}, uid).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.User{}, uid).Error
	})
	if err != nil {
		slog.Error("account deletion failed", "user_id", uid, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	h.invalidate(uid)
	auth.ClearSession(w)
	slog.Info("account deleted", "user_id", uid)
	httpx.JSONMessage(w, http.StatusOK, "User deleted successfully")
}
