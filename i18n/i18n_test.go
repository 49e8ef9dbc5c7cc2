package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("es-MX,es;q=0.8") != "es" {
		t.Fatalf("expected es")
	}
	if DetectLanguage("") != "es" {
		t.Fatalf("expected default es")
	}
	if DetectLanguage("de-DE,de;q=0.9") != "es" {
		t.Fatalf("expected es fallback for unsupported language")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("es", "required") != "Requerido" {
		t.Fatalf("expected Requerido")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to es translation if exists
	if T("fr", "required") != "Requerido" {
		t.Fatalf("expected es fallback for fr lang")
	}
}
