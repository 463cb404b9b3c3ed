package models

import "github.com/shopspring/decimal"

type Recurso struct {
	ID                     string          `json:"id"`
	Codigo                 string          `json:"codigo"`
	Nombre                 string          `json:"nombre"`
	UnidadID               string          `json:"unidad_id"`
	PrecioReferencial      decimal.Decimal `json:"precio_referencial"`
	ClasificacionRecursoID string          `json:"clasificacion_recurso_id"`
	Imagenes               []RecursoImagen `json:"imagenes"`
}

func (r Recurso) Key() string {
	return r.ID
}

type RecursoImagen struct {
	ID  string `json:"id"`
	URL string `json:"file"`
}

type Unidad struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

func (u Unidad) Key() string {
	return u.ID
}

type Almacen struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	ObraID    string `json:"obra_id"`
}

func (a Almacen) Key() string {
	return a.ID
}
