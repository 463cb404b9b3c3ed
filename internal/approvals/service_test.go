package approvals

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"procurement/internal/store"
	"procurement/pkg/auditlog"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListAprobaciones(ctx context.Context, requerimientoID string) (json.RawMessage, error) {
	args := m.Called(requerimientoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return json.RawMessage(args.String(0)), args.Error(1)
}

func (m *MockGateway) AddAprobacion(ctx context.Context, a models.Aprobacion) (*models.Aprobacion, error) {
	args := m.Called(a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Aprobacion), args.Error(1)
}

func (m *MockGateway) UpdateAprobacion(ctx context.Context, id, estado, comentario string) (*models.Aprobacion, error) {
	args := m.Called(id, estado, comentario)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Aprobacion), args.Error(1)
}

func (m *MockGateway) DeleteAprobacion(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockGateway) ListUsuarios(ctx context.Context) ([]models.Usuario, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Usuario), args.Error(1)
}

func pending(reqID, userID string, rank int) models.Aprobacion {
	return models.Aprobacion{RequerimientoID: reqID, UsuarioID: userID, GerarquiaAprobacion: rank, EstadoAprobacion: "pendiente"}
}

func TestAssign(t *testing.T) {
	gw := new(MockGateway)
	service := NewApprovalService(gw, auditlog.Nop{}, zap.NewNop())
	st := store.New()

	created := pending("r1", "u1", 3)
	created.ID = "a1"
	gw.On("AddAprobacion", pending("r1", "u1", 3)).Return(&created, nil).Once()

	aprobacion, err := service.Assign(context.Background(), st, "r1", "u1", 3)

	require.NoError(t, err)
	assert.Equal(t, "a1", aprobacion.ID)
	_, found := st.Aprobaciones("r1").Snapshot().Find("a1")
	assert.True(t, found)

	_, err = service.Assign(context.Background(), st, "r1", "u1", 5)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	gw.AssertExpectations(t)
}

func TestAssignManyReportsPartialFailure(t *testing.T) {
	gw := new(MockGateway)
	service := NewApprovalService(gw, auditlog.Nop{}, zap.NewNop())
	st := store.New()

	first := pending("r1", "u1", 3)
	first.ID = "a1"
	gw.On("AddAprobacion", pending("r1", "u1", 3)).Return(&first, nil).Once()
	gw.On("AddAprobacion", pending("r1", "u2", 4)).Return(nil, &custom_error.GatewayError{Operation: "addRequerimientoAprobacion", Err: errors.New("timeout")}).Once()

	created, err := service.AssignMany(context.Background(), st, "r1", models.AssignApproversRequest{
		Supervisores: []string{"u1"},
		Gerentes:     []string{"u2", "u3"},
	})

	var partial *custom_error.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"supervisor u1"}, partial.Completed)
	assert.Equal(t, "gerente u2", partial.Failed)
	assert.False(t, partial.Compensated)
	assert.Len(t, created, 1)
	gw.AssertNotCalled(t, "AddAprobacion", pending("r1", "u3", 4))
}

func TestDecide(t *testing.T) {
	list := `[{"id":"a1","usuario_id":"u1","estado_aprobacion":"pendiente"},{"id":"a2","usuario_id":"u2","estado_aprobacion":"aprobado"}]`

	tests := []struct {
		name        string
		aprobacion  string
		usuario     string
		mockSetup   func(gw *MockGateway)
		expectedErr error
	}{
		{
			name:       "Owner approves",
			aprobacion: "a1",
			usuario:    "u1",
			mockSetup: func(gw *MockGateway) {
				gw.On("UpdateAprobacion", "a1", "aprobado", "ok").Return(&models.Aprobacion{ID: "a1", UsuarioID: "u1", EstadoAprobacion: "aprobado"}, nil)
			},
		},
		{name: "Another user", aprobacion: "a1", usuario: "u2", mockSetup: func(gw *MockGateway) {}, expectedErr: custom_error.ErrForbidden},
		{name: "Already decided", aprobacion: "a2", usuario: "u2", mockSetup: func(gw *MockGateway) {}, expectedErr: custom_error.ErrInvalidTransition},
		{name: "Unknown record", aprobacion: "a9", usuario: "u1", mockSetup: func(gw *MockGateway) {}, expectedErr: custom_error.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			gw.On("ListAprobaciones", "r1").Return(list, nil)
			tt.mockSetup(gw)
			service := NewApprovalService(gw, auditlog.Nop{}, zap.NewNop())
			st := store.New()

			updated, err := service.Decide(context.Background(), st, "r1", tt.aprobacion, tt.usuario, models.DecisionRequest{Estado: "aprobado", Comentario: "ok"})

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "aprobado", updated.EstadoAprobacion)
			assert.False(t, AwaitsDecision(st.Aprobaciones("r1").Snapshot().Items, "u1"))
			gw.AssertExpectations(t)
		})
	}
}
