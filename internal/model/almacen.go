package model

// Almacen is a Holded warehouse. Glop terminals map onto these.
type Almacen struct {
	ID     string `json:"id"`
	Nombre string `json:"name"`
}
