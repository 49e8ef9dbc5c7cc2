// Package i18n provides translations for the small fixed set of UI strings.
// Spanish is the reference language; English is a secondary translation.
// Unknown codes fall back to the code itself so a missing entry is visible
// instead of blank.
package i18n

import (
	"context"
	"strings"
)

const defaultLang = "es"

type langKey struct{}

// WithLang returns a new context carrying the language code.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext retrieves the language from context, defaulting to Spanish.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return defaultLang
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(code, "-;"); i >= 0 {
			code = code[:i]
		}
		if _, ok := translations[code]; ok {
			return code
		}
	}
	return defaultLang
}

// T translates a code for the given language. Unknown languages fall back to
// Spanish; unknown codes fall back to the code itself.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[defaultLang][code]; ok {
		return s
	}
	return code
}

var translations = map[string]map[string]string{
	"es": {
		"app_name":             "TransiTrack",
		"tagline":              "Tu transporte público, en tiempo real",
		"nav_dashboard":        "Inicio",
		"nav_routes":           "Rutas",
		"nav_schedules":        "Horarios",
		"nav_comments":         "Comentarios",
		"nav_notifications":    "Notificaciones",
		"nav_profile":          "Mi Perfil",
		"login":                "Iniciar Sesión",
		"signup":               "Registrarse",
		"logout":               "Cerrar Sesión",
		"email":                "Correo Electrónico",
		"password":             "Contraseña",
		"new_password":         "Nueva Contraseña",
		"username":             "Nombre de Usuario",
		"save":                 "Guardar",
		"cancel":               "Cancelar",
		"edit":                 "Editar",
		"delete":               "Eliminar",
		"new_route":            "Nueva Ruta",
		"new_schedule":         "Nuevo Horario",
		"new_comment":          "Tu Comentario",
		"new_notification":     "Nueva Notificación",
		"title":                "Título",
		"message":              "Mensaje",
		"type":                 "Tipo",
		"route_name":           "Nombre de la ruta",
		"description":          "Descripción",
		"start_location":       "Origen",
		"end_location":         "Destino",
		"day_of_week":          "Día",
		"start_time":           "Hora de salida",
		"end_time":             "Hora de llegada",
		"frequency_minutes":    "Frecuencia (min)",
		"rating":               "Calificación",
		"all_routes":           "Todas las Rutas",
		"unknown_route":        "Ruta Desconocida",
		"no_routes":            "No hay rutas disponibles.",
		"no_comments":          "Aún no hay comentarios.",
		"no_notifications":     "No hay notificaciones activas en este momento.",
		"active_until":         "Activa hasta",
		"type_info":            "Información",
		"type_delay":           "Retraso",
		"type_diversion":       "Desvío",
		"delete_account":       "Eliminar mi cuenta",
		"required":             "Requerido",
		"too_short":            "Demasiado corto",
		"out_of_range":         "Fuera de rango",
		"invalid_value":        "Valor no válido",
		"confirm_delete_route": "¿Eliminar esta ruta? También se eliminarán sus horarios y comentarios.",
		"confirm_delete":       "¿Estás seguro?",
	},
	"en": {
		"app_name":             "TransiTrack",
		"tagline":              "Your public transit, in real time",
		"nav_dashboard":        "Home",
		"nav_routes":           "Routes",
		"nav_schedules":        "Schedules",
		"nav_comments":         "Comments",
		"nav_notifications":    "Notifications",
		"nav_profile":          "My Profile",
		"login":                "Log In",
		"signup":               "Sign Up",
		"logout":               "Log Out",
		"email":                "Email",
		"password":             "Password",
		"new_password":         "New Password",
		"username":             "Username",
		"save":                 "Save",
		"cancel":               "Cancel",
		"edit":                 "Edit",
		"delete":               "Delete",
		"new_route":            "New Route",
		"new_schedule":         "New Schedule",
		"new_comment":          "Your Comment",
		"new_notification":     "New Notification",
		"title":                "Title",
		"message":              "Message",
		"type":                 "Type",
		"route_name":           "Route name",
		"description":          "Description",
		"start_location":       "Origin",
		"end_location":         "Destination",
		"day_of_week":          "Day",
		"start_time":           "Departure time",
		"end_time":             "Arrival time",
		"frequency_minutes":    "Frequency (min)",
		"rating":               "Rating",
		"all_routes":           "All Routes",
		"unknown_route":        "Unknown Route",
		"no_routes":            "No routes available.",
		"no_comments":          "No comments yet.",
		"no_notifications":     "No active notifications right now.",
		"active_until":         "Active until",
		"type_info":            "Info",
		"type_delay":           "Delay",
		"type_diversion":       "Diversion",
		"delete_account":       "Delete my account",
		"required":             "Required",
		"too_short":            "Too short",
		"out_of_range":         "Out of range",
		"invalid_value":        "Invalid value",
		"confirm_delete_route": "Delete this route? Its schedules and comments will be removed too.",
		"confirm_delete":       "Are you sure?",
	},
}
