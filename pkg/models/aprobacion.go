package models

import "time"

type Aprobacion struct {
	ID                  string     `json:"id"`
	RequerimientoID     string     `json:"requerimiento_id"`
	UsuarioID           string     `json:"usuario_id"`
	GerarquiaAprobacion int        `json:"gerarquia_aprobacion"`
	EstadoAprobacion    string     `json:"estado_aprobacion"`
	Comentario          string     `json:"comentario"`
	Fecha               *time.Time `json:"fecha"`
}

func (a Aprobacion) Key() string {
	return a.ID
}

func (a *Aprobacion) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   a.ID,
		ResourceType: "aprobacion",
	}
}

type AssignApproverRequest struct {
	UsuarioID string `json:"usuario_id" binding:"required"`
	Gerarquia int    `json:"gerarquia" binding:"required"`
}

type AssignApproversRequest struct {
	Supervisores []string `json:"supervisores"`
	Gerentes     []string `json:"gerentes"`
}

type DecisionRequest struct {
	Estado     string `json:"estado" binding:"required,oneof=aprobado rechazado"`
	Comentario string `json:"comentario"`
}
