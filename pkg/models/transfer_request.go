package models

import "github.com/shopspring/decimal"

const (
	TransferStageLogistica = "logistica"
	TransferStageAlmacen   = "almacen"
)

// TransferLineRequest holds the quantities an operator entered for one request
// line, keyed by source warehouse id.
type TransferLineRequest struct {
	RequerimientoRecursoID string                     `json:"requerimiento_recurso_id" binding:"required"`
	Quantities             map[string]decimal.Decimal `json:"quantities"`
}

type TransferRequest struct {
	Stage            string                `json:"stage" binding:"required,oneof=logistica almacen"`
	AlmacenDestinoID string                `json:"almacen_destino_id" binding:"required"`
	Lines            []TransferLineRequest `json:"lines" binding:"required,dive"`
}

type TransferResult struct {
	Lines       []ReconciledLine   `json:"lines"`
	Solicitudes []SolicitudAlmacen `json:"solicitudes"`
	Estado      string             `json:"estado_atencion"`
}

type ReconciledLine struct {
	RequerimientoRecursoID string                     `json:"requerimiento_recurso_id"`
	RecursoID              string                     `json:"recurso_id"`
	Requested              decimal.Decimal            `json:"requested"`
	Quantities             map[string]decimal.Decimal `json:"quantities"`
	TransferTotal          decimal.Decimal            `json:"transfer_total"`
	QuotationNeeded        decimal.Decimal            `json:"quotation_needed"`
}
