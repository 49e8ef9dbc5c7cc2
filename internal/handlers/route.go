package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/validation"
	"github.com/transitrack/transitrack/view"
	"gorm.io/gorm"
)

// Days of week in schedule sort order. Schedules store the weekday name, so
// ordering has to go through this table rather than the column itself.
var dayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// RouteHandler serves the rider-facing route explorer and the admin route and
// schedule management pages.
type RouteHandler struct {
	db *gorm.DB
}

func NewRouteHandler(db *gorm.DB) *RouteHandler {
	return &RouteHandler{db: db}
}

// UserList renders the route explorer. ?view=<id> expands one route's
// schedules inline.
func (h *RouteHandler) UserList(w http.ResponseWriter, r *http.Request) {
	var routes []models.Route
	if err := h.db.Order("name ASC").Find(&routes).Error; err != nil {
		http.Error(w, "failed to load routes", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Routes": routes}
	if id, err := strconv.Atoi(r.URL.Query().Get("view")); err == nil && id > 0 {
		var route models.Route
		if err := h.db.First(&route, id).Error; err == nil {
			route.Schedules = h.schedulesFor(route.ID)
			data["Viewing"] = &route
		}
	}
	view.Render(w, r, "routes/index.html", data)
}

// AdminList renders the admin route manager. ?edit=<id> preloads the form
// with an existing route; ?schedules=<id> opens the schedule editor for it.
func (h *RouteHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var routes []models.Route
	if err := h.db.Order("name ASC").Find(&routes).Error; err != nil {
		http.Error(w, "failed to load routes", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Routes": routes, "Days": dayOrder}
	if id, err := strconv.Atoi(r.URL.Query().Get("edit")); err == nil && id > 0 {
		var route models.Route
		if err := h.db.First(&route, id).Error; err == nil {
			data["Editing"] = &route
		}
	}
	if id, err := strconv.Atoi(r.URL.Query().Get("schedules")); err == nil && id > 0 {
		var route models.Route
		if err := h.db.First(&route, id).Error; err == nil {
			route.Schedules = h.schedulesFor(route.ID)
			data["ScheduleRoute"] = &route
		}
	}
	view.Render(w, r, "admin/routes.html", data)
}

// schedulesFor loads a route's schedules sorted by weekday then start time.
func (h *RouteHandler) schedulesFor(routeID uint) []models.Schedule {
	var schedules []models.Schedule
	h.db.Where("route_id = ?", routeID).Find(&schedules)
	rank := make(map[string]int, len(dayOrder))
	for i, d := range dayOrder {
		rank[d] = i
	}
	sort.SliceStable(schedules, func(i, j int) bool {
		if rank[schedules[i].DayOfWeek] != rank[schedules[j].DayOfWeek] {
			return rank[schedules[i].DayOfWeek] < rank[schedules[j].DayOfWeek]
		}
		return schedules[i].StartTime < schedules[j].StartTime
	})
	return schedules
}

// Save creates or updates a route. A non-zero id field means update.
func (h *RouteHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.FormValue("id"))
	name := r.FormValue("name")
	description := r.FormValue("description")
	start := r.FormValue("start_location")
	end := r.FormValue("end_location")

	v := make(validation.Violations)
	validation.Required("name", name, v)
	validation.Required("start_location", start, v)
	validation.Required("end_location", end, v)
	if !v.Empty() {
		SetFlashError(w, "Name, start and end locations are required")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	var route models.Route
	if id > 0 {
		if err := h.db.First(&route, id).Error; err != nil {
			SetFlashError(w, "Route not found")
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}
	route.Name = name
	route.Description = description
	route.StartLocation = start
	route.EndLocation = end

	var err error
	if id > 0 {
		err = h.db.Save(&route).Error
	} else {
		err = h.db.Create(&route).Error
	}
	if err != nil {
		SetFlashError(w, "Failed to save route")
	} else if id > 0 {
		SetFlashSuccess(w, "Route updated")
	} else {
		SetFlashSuccess(w, "Route created")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Delete removes a route. Schedules and comments go with it via the cascade
// constraint.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	if err := h.db.Delete(&models.Route{}, id).Error; err != nil {
		SetFlashError(w, "Failed to delete route")
	} else {
		SetFlashSuccess(w, "Route deleted")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// SaveSchedule creates or updates a schedule row on a route.
func (h *RouteHandler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.FormValue("id"))
	routeID, _ := strconv.Atoi(r.FormValue("route_id"))
	day := r.FormValue("day_of_week")
	startTime := r.FormValue("start_time")
	endTime := r.FormValue("end_time")

	back := "/admin?schedules=" + strconv.Itoa(routeID)

	v := make(validation.Violations)
	validation.OneOf("day_of_week", day, dayOrder, v)
	validation.Required("start_time", startTime, v)
	validation.Required("end_time", endTime, v)
	if routeID <= 0 || !v.Empty() {
		SetFlashError(w, "Day, start and end times are required")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	var frequency *int
	if raw := r.FormValue("frequency_minutes"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			frequency = &n
		}
	}

	var schedule models.Schedule
	if id > 0 {
		if err := h.db.First(&schedule, id).Error; err != nil {
			SetFlashError(w, "Schedule not found")
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
	}
	schedule.RouteID = uint(routeID)
	schedule.DayOfWeek = day
	schedule.StartTime = startTime
	schedule.EndTime = endTime
	schedule.FrequencyMinutes = frequency

	var err error
	if id > 0 {
		err = h.db.Save(&schedule).Error
	} else {
		err = h.db.Create(&schedule).Error
	}
	if err != nil {
		SetFlashError(w, "Failed to save schedule")
	} else {
		SetFlashSuccess(w, "Schedule saved")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// DeleteSchedule removes a single schedule row.
func (h *RouteHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	back := "/admin"
	if routeID, err := strconv.Atoi(r.FormValue("route_id")); err == nil && routeID > 0 {
		back = "/admin?schedules=" + strconv.Itoa(routeID)
	}
	if err != nil || id <= 0 {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if err := h.db.Delete(&models.Schedule{}, id).Error; err != nil {
		SetFlashError(w, "Failed to delete schedule")
	} else {
		SetFlashSuccess(w, "Schedule deleted")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
