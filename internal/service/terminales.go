package service

import "strings"

// ReglaTerminal maps Glop terminal names onto Holded warehouses when the
// exact name does not exist in Holded.
type ReglaTerminal struct {
	// Contiene: the rule applies when the terminal contains any of these.
	Contiene []string
	// Canonico: exact warehouse name to resolve to.
	Canonico string
	// NombreIncluye: otherwise, first warehouse whose name contains all of these.
	NombreIncluye []string
	// FallbackID is used when NombreIncluye finds nothing. Empty means no fallback.
	FallbackID string
}

// ReglasPorDefecto are the store mappings in use. fallbackCaceres is the
// warehouse id used when no Cáceres store exists in Holded.
func ReglasPorDefecto(fallbackCaceres string) []ReglaTerminal {
	return []ReglaTerminal{
		{Contiene: []string{"MURCIA"}, Canonico: "TIENDA MURCIA"},
		{Contiene: []string{"SALAMANCA"}, Canonico: "TIENDA SALAMANCA"},
		{
			Contiene:      []string{"CACERES", "CÁCERES"},
			NombreIncluye: []string{"CÁCERES", "TIENDA"},
			FallbackID:    fallbackCaceres,
		},
	}
}

// ResolutorTerminales turns a CSV terminal into a warehouse id: exact match
// first, then the first rule whose trigger matches. A matching rule settles
// the outcome even if its target is missing.
type ResolutorTerminales struct {
	tabla  *TablaAlmacenes
	reglas []ReglaTerminal
}

func NuevoResolutorTerminales(tabla *TablaAlmacenes, reglas []ReglaTerminal) *ResolutorTerminales {
	return &ResolutorTerminales{tabla: tabla, reglas: reglas}
}

func (r *ResolutorTerminales) Resolver(terminal string) (string, bool) {
	nombre := normalizarNombre(terminal)
	if nombre == "" {
		return "", false
	}
	if id, ok := r.tabla.Buscar(nombre); ok {
		return id, true
	}
	for _, regla := range r.reglas {
		if !contieneAlguno(nombre, regla.Contiene) {
			continue
		}
		return r.aplicar(regla)
	}
	return "", false
}

func (r *ResolutorTerminales) aplicar(regla ReglaTerminal) (string, bool) {
	if regla.Canonico != "" {
		return r.tabla.Buscar(regla.Canonico)
	}
	if len(regla.NombreIncluye) > 0 {
		if id, ok := r.tabla.BuscarContiene(regla.NombreIncluye...); ok {
			return id, true
		}
	}
	if regla.FallbackID != "" {
		return regla.FallbackID, true
	}
	return "", false
}

func contieneAlguno(s string, fragmentos []string) bool {
	for _, f := range fragmentos {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
