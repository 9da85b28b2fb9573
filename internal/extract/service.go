package extract

import "strings"

// CatalogServiceParser matches against the tenant's configured service list
// first and falls back to fixed barbershop keyword rules.
type CatalogServiceParser struct{}

// ParseService returns the catalog entry whose name appears in the message
// (case-insensitive substring). With no catalog hit it applies keyword rules:
// both "corte" and "barba" present map to the combo service.
func (CatalogServiceParser) ParseService(text string, catalog []string) (string, bool) {
	lower := strings.ToLower(text)

	for _, svc := range catalog {
		name := strings.TrimSpace(svc)
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}

	hasCorte := strings.Contains(lower, "corte")
	hasBarba := strings.Contains(lower, "barba")
	switch {
	case hasCorte && hasBarba:
		return "Corte + Barba", true
	case hasCorte:
		return "Corte", true
	case hasBarba:
		return "Barba", true
	case strings.Contains(lower, "sobrancelha"):
		return "Sobrancelha", true
	}
	return "", false
}
