package handlers

import (
	"net/http"

	"github.com/transitrack/transitrack/view"
)

// LandingHandler serves the public marketing page.
type LandingHandler struct{}

func NewLandingHandler() *LandingHandler { return &LandingHandler{} }

func (h *LandingHandler) Index(w http.ResponseWriter, r *http.Request) {
	view.Render(w, r, "index.html", map[string]any{})
}
