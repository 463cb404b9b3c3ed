package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cotizacion struct {
	ID               string     `json:"id"`
	CodigoCotizacion string     `json:"codigo_cotizacion"`
	RequerimientoID  string     `json:"requerimiento_id"`
	UsuarioID        string     `json:"usuario_id"`
	EstadoCotizacion string     `json:"estado"`
	FechaCotizacion  *time.Time `json:"fecha_cotizacion"`
}

func (c Cotizacion) Key() string {
	return c.ID
}

func (c *Cotizacion) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   c.ID,
		ResourceType: "cotizacion",
	}
}

type CotizacionRecurso struct {
	ID           string          `json:"id"`
	CotizacionID string          `json:"cotizacion_id"`
	RecursoID    string          `json:"recurso_id"`
	Cantidad     decimal.Decimal `json:"cantidad"`
	Costo        decimal.Decimal `json:"costo"`
}

type CotizacionRequest struct {
	RequerimientoID string         `json:"requerimiento_id" binding:"required"`
	Recursos        []LineaRequest `json:"recursos" binding:"required,min=1,dive"`
}

type OrdenCompra struct {
	ID           string     `json:"id"`
	CodigoOrden  string     `json:"codigo_orden"`
	CotizacionID string     `json:"cotizacion_id"`
	Descripcion  string     `json:"descripcion"`
	Estado       string     `json:"estado"`
	FechaIni     *time.Time `json:"fecha_ini"`
	FechaFin     *time.Time `json:"fecha_fin"`
}

func (o OrdenCompra) Key() string {
	return o.ID
}

func (o *OrdenCompra) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   o.ID,
		ResourceType: "orden_compra",
	}
}

type OrdenCompraRecurso struct {
	ID            string          `json:"id"`
	OrdenCompraID string          `json:"orden_compra_id"`
	RecursoID     string          `json:"recurso_id"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	Costo         decimal.Decimal `json:"costo"`
}

type OrdenCompraRequest struct {
	CotizacionID string         `json:"cotizacion_id" binding:"required"`
	Descripcion  string         `json:"descripcion"`
	FechaFin     *time.Time     `json:"fecha_fin"`
	Recursos     []LineaRequest `json:"recursos" binding:"required,min=1,dive"`
}

type LineaRequest struct {
	RecursoID string          `json:"recurso_id" binding:"required"`
	Cantidad  decimal.Decimal `json:"cantidad"`
	Costo     decimal.Decimal `json:"costo"`
}

// SolicitudAlmacen is a warehouse transfer request; Pre marks the logistics
// pre-allocation variant.
type SolicitudAlmacen struct {
	ID               string     `json:"id"`
	RequerimientoID  string     `json:"requerimiento_id"`
	AlmacenOrigenID  string     `json:"almacen_origen_id"`
	AlmacenDestinoID string     `json:"almacen_destino_id"`
	UsuarioID        string     `json:"usuario_id"`
	Estado           string     `json:"estado"`
	Fecha            *time.Time `json:"fecha"`
	Pre              bool       `json:"pre"`
}

type SolicitudRecursoAlmacen struct {
	ID                 string          `json:"id"`
	SolicitudAlmacenID string          `json:"solicitud_almacen_id"`
	RecursoID          string          `json:"recurso_id"`
	Cantidad           decimal.Decimal `json:"cantidad"`
}
