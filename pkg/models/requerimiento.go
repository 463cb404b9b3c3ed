package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Requerimiento struct {
	ID             string     `json:"id"`
	Codigo         string     `json:"codigo"`
	UsuarioID      string     `json:"usuario_id"`
	Usuario        string     `json:"usuario"`
	ObraID         string     `json:"obra_id"`
	FechaSolicitud *time.Time `json:"fecha_solicitud"`
	FechaFinal     *time.Time `json:"fecha_final"`
	Sustento       string     `json:"sustento"`
	EstadoAtencion string     `json:"estado_atencion"`
	Version        int        `json:"version"`
}

func (r Requerimiento) Key() string {
	return r.ID
}

func (r *Requerimiento) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "requerimiento",
	}
}

type CreateRequerimientoRequest struct {
	UsuarioID  string    `json:"usuario_id"`
	ObraID     string    `json:"obra_id" binding:"required"`
	FechaFinal time.Time `json:"fecha_final" binding:"required"`
	Sustento   string    `json:"sustento" binding:"required"`
}

// UpdateRequerimientoRequest carries the version read by the caller; the
// upstream rejects the write when it no longer matches.
type UpdateRequerimientoRequest struct {
	ObraID         *string    `json:"obra_id,omitempty"`
	FechaFinal     *time.Time `json:"fecha_final,omitempty"`
	Sustento       *string    `json:"sustento,omitempty"`
	EstadoAtencion *string    `json:"estado_atencion,omitempty"`
	Version        int        `json:"version" binding:"required"`
}

// TransitionRequest may carry the version the caller last saw; a stale one is
// rejected before anything is sent upstream.
type TransitionRequest struct {
	Action     string `json:"action" binding:"required"`
	Comentario string `json:"comentario"`
	Version    *int   `json:"version,omitempty"`
}

type RequerimientoRecurso struct {
	ID                string          `json:"id"`
	RequerimientoID   string          `json:"requerimiento_id"`
	RecursoID         string          `json:"recurso_id"`
	Codigo            string          `json:"codigo"`
	Nombre            string          `json:"nombre"`
	Unidad            string          `json:"unidad"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	CantidadAprobada  decimal.Decimal `json:"cantidad_aprobada"`
	FechaLimit        *time.Time      `json:"fecha_limit"`
	Notas             string          `json:"notas"`
	PrecioReferencial decimal.Decimal `json:"precio_referencial"`
	CostoRef          decimal.Decimal `json:"costo_ref"`
}

func (r RequerimientoRecurso) Key() string {
	return r.ID
}

// ComputeCostoRef sets the reference cost from the requested quantity and the
// catalog reference price.
func (r *RequerimientoRecurso) ComputeCostoRef() {
	r.CostoRef = r.Cantidad.Mul(r.PrecioReferencial)
}

func (r *RequerimientoRecurso) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "requerimiento_recurso",
	}
}

type RequerimientoRecursoRequest struct {
	RecursoID        string           `json:"recurso_id" binding:"required"`
	Cantidad         decimal.Decimal  `json:"cantidad"`
	CantidadAprobada *decimal.Decimal `json:"cantidad_aprobada,omitempty"`
	FechaLimit       *time.Time       `json:"fecha_limit,omitempty"`
	Notas            string           `json:"notas"`
}

type AlmacenStock struct {
	AlmacenID     string          `json:"almacen_id"`
	NombreAlmacen string          `json:"nombre_almacen"`
	Cantidad      decimal.Decimal `json:"cantidad"`
}

// RecursoConStock is a request line joined with the on-hand stock of every
// warehouse and project site that holds the resource.
type RecursoConStock struct {
	RequerimientoRecurso
	Almacenes []AlmacenStock `json:"almacenes"`
}
