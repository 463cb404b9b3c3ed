package metadata

import (
	"fmt"

	custom_error "procurement/pkg/errors"
)

var ErrInvalidTransition = custom_error.ErrInvalidTransition

// EstadoAtencion is the attention state of a material request.
type EstadoAtencion string

const (
	EstadoPendiente          EstadoAtencion = "pendiente"
	EstadoAprobadoSupervisor EstadoAtencion = "aprobado_supervisor"
	EstadoAprobadoGerencia   EstadoAtencion = "aprobado_gerencia"
	EstadoAprobadoLogistica  EstadoAtencion = "aprobado_logistica"
	EstadoAprobadoAlmacen    EstadoAtencion = "aprobado_almacen"
	EstadoAtencionParcial    EstadoAtencion = "atencion_parcial"
	EstadoTerminados         EstadoAtencion = "terminados"
	EstadoRechazado          EstadoAtencion = "rechazado"
)

func NewEstadoAtencion(value string) (EstadoAtencion, error) {
	estado := EstadoAtencion(value)
	if !estado.IsValid() {
		return "", fmt.Errorf("invalid estado_atencion: %s", value)
	}
	return estado, nil
}

func (e EstadoAtencion) IsValid() bool {
	switch e {
	case EstadoPendiente, EstadoAprobadoSupervisor, EstadoAprobadoGerencia, EstadoAprobadoLogistica,
		EstadoAprobadoAlmacen, EstadoAtencionParcial, EstadoTerminados, EstadoRechazado:
		return true
	default:
		return false
	}
}

func (e EstadoAtencion) IsFinal() bool {
	return e == EstadoTerminados || e == EstadoRechazado
}

func (e EstadoAtencion) String() string {
	return string(e)
}

type Action string

const (
	ActionApproveSupervisor Action = "approve_supervisor"
	ActionApproveManagement Action = "approve_management"
	ActionApproveLogistics  Action = "approve_logistics"
	ActionApproveWarehouse  Action = "approve_warehouse"
	ActionPartialFulfilment Action = "partial_fulfilment"
	ActionComplete          Action = "complete"
	ActionReject            Action = "reject"
)

type transition struct {
	from []EstadoAtencion
	to   EstadoAtencion
}

var transitionTable = map[Action]transition{
	ActionApproveSupervisor: {from: []EstadoAtencion{EstadoPendiente}, to: EstadoAprobadoSupervisor},
	ActionApproveManagement: {from: []EstadoAtencion{EstadoAprobadoSupervisor}, to: EstadoAprobadoGerencia},
	ActionApproveLogistics:  {from: []EstadoAtencion{EstadoAprobadoGerencia}, to: EstadoAprobadoLogistica},
	ActionApproveWarehouse:  {from: []EstadoAtencion{EstadoAprobadoLogistica}, to: EstadoAprobadoAlmacen},
	ActionPartialFulfilment: {from: []EstadoAtencion{EstadoAprobadoAlmacen}, to: EstadoAtencionParcial},
	ActionComplete:          {from: []EstadoAtencion{EstadoAprobadoAlmacen, EstadoAtencionParcial}, to: EstadoTerminados},
	ActionReject: {
		from: []EstadoAtencion{EstadoPendiente, EstadoAprobadoSupervisor, EstadoAprobadoGerencia, EstadoAprobadoLogistica},
		to:   EstadoRechazado,
	},
}

// Transition is the only place that decides the next attention state.
func Transition(from EstadoAtencion, action Action) (EstadoAtencion, error) {
	t, ok := transitionTable[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	for _, allowed := range t.from {
		if allowed == from {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: %s cannot %s", ErrInvalidTransition, from, action)
}

// AllowedActions lists the actions that can be applied from the given state.
func AllowedActions(from EstadoAtencion) []Action {
	var actions []Action
	for _, action := range actionOrder {
		if _, err := Transition(from, action); err == nil {
			actions = append(actions, action)
		}
	}
	return actions
}

var actionOrder = []Action{
	ActionApproveSupervisor,
	ActionApproveManagement,
	ActionApproveLogistics,
	ActionApproveWarehouse,
	ActionPartialFulfilment,
	ActionComplete,
	ActionReject,
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pendiente"
	ApprovalApproved ApprovalStatus = "aprobado"
	ApprovalRejected ApprovalStatus = "rechazado"
)
