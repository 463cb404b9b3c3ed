package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     EstadoAtencion
		action   Action
		expected EstadoAtencion
		wantErr  bool
	}{
		{"supervisor approves pending", EstadoPendiente, ActionApproveSupervisor, EstadoAprobadoSupervisor, false},
		{"management approves", EstadoAprobadoSupervisor, ActionApproveManagement, EstadoAprobadoGerencia, false},
		{"logistics approves", EstadoAprobadoGerencia, ActionApproveLogistics, EstadoAprobadoLogistica, false},
		{"warehouse approves", EstadoAprobadoLogistica, ActionApproveWarehouse, EstadoAprobadoAlmacen, false},
		{"partial fulfilment", EstadoAprobadoAlmacen, ActionPartialFulfilment, EstadoAtencionParcial, false},
		{"complete from partial", EstadoAtencionParcial, ActionComplete, EstadoTerminados, false},
		{"complete from warehouse", EstadoAprobadoAlmacen, ActionComplete, EstadoTerminados, false},
		{"reject pending", EstadoPendiente, ActionReject, EstadoRechazado, false},
		{"skip a stage", EstadoPendiente, ActionApproveManagement, "", true},
		{"reject after warehouse", EstadoAprobadoAlmacen, ActionReject, "", true},
		{"nothing after terminados", EstadoTerminados, ActionComplete, "", true},
		{"unknown action", EstadoPendiente, Action("archive"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Transition(tt.from, tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestAllowedActions(t *testing.T) {
	assert.Equal(t, []Action{ActionApproveSupervisor, ActionReject}, AllowedActions(EstadoPendiente))
	assert.Equal(t, []Action{ActionPartialFulfilment, ActionComplete}, AllowedActions(EstadoAprobadoAlmacen))
	assert.Empty(t, AllowedActions(EstadoTerminados))
	assert.Empty(t, AllowedActions(EstadoAtencion("desconocido")))
}

func TestNewEstadoAtencion(t *testing.T) {
	estado, err := NewEstadoAtencion("aprobado_gerencia")
	assert.NoError(t, err)
	assert.Equal(t, EstadoAprobadoGerencia, estado)
	assert.False(t, estado.IsFinal())

	_, err = NewEstadoAtencion("en_cotizacion")
	assert.Error(t, err)

	assert.True(t, EstadoRechazado.IsFinal())
}
