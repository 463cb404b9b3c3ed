package transfers

import (
	"context"
	"errors"
	"testing"

	"procurement/internal/saga"
	"procurement/internal/store"
	"procurement/pkg/auditlog"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListRecursosConStock(ctx context.Context, requerimientoID string) ([]models.RecursoConStock, error) {
	args := m.Called(requerimientoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecursoConStock), args.Error(1)
}

func (m *MockGateway) AddSolicitudAlmacen(ctx context.Context, s models.SolicitudAlmacen) (*models.SolicitudAlmacen, error) {
	args := m.Called(s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SolicitudAlmacen), args.Error(1)
}

func (m *MockGateway) AddSolicitudRecursoAlmacen(ctx context.Context, line models.SolicitudRecursoAlmacen) (*models.SolicitudRecursoAlmacen, error) {
	args := m.Called(line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SolicitudRecursoAlmacen), args.Error(1)
}

func (m *MockGateway) DeleteSolicitudAlmacen(ctx context.Context, id string, pre bool) error {
	args := m.Called(id, pre)
	return args.Error(0)
}

func (m *MockGateway) DeleteSolicitudRecursoAlmacen(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockRequerimientos struct {
	mock.Mock
}

func (m *MockRequerimientos) Get(ctx context.Context, st *store.Store, id string) (*models.Requerimiento, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Requerimiento), args.Error(1)
}

func (m *MockRequerimientos) Transition(ctx context.Context, st *store.Store, id string, req models.TransitionRequest) (*models.Requerimiento, error) {
	args := m.Called(id, req.Action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Requerimiento), args.Error(1)
}

type recordingJournal struct {
	entries []saga.Entry
}

func (j *recordingJournal) Record(_ context.Context, entry saga.Entry) error {
	j.entries = append(j.entries, entry)
	return nil
}

func stockFixture() []models.RecursoConStock {
	return []models.RecursoConStock{
		{
			RequerimientoRecurso: models.RequerimientoRecurso{ID: "rr1", RecursoID: "cemento", Cantidad: d(10)},
			Almacenes:            []models.AlmacenStock{{AlmacenID: "w1", Cantidad: d(4)}, {AlmacenID: "w2", Cantidad: d(3)}},
		},
		{
			RequerimientoRecurso: models.RequerimientoRecurso{ID: "rr2", RecursoID: "fierro", Cantidad: d(2)},
			Almacenes:            []models.AlmacenStock{{AlmacenID: "w1", Cantidad: d(2)}},
		},
	}
}

func approveRequest() models.TransferRequest {
	return models.TransferRequest{
		Stage:            models.TransferStageAlmacen,
		AlmacenDestinoID: "obra-1",
		Lines: []models.TransferLineRequest{
			{RequerimientoRecursoID: "rr1", Quantities: map[string]decimal.Decimal{"w1": d(4), "w2": d(2)}},
			{RequerimientoRecursoID: "rr2", Quantities: map[string]decimal.Decimal{"w1": d(2)}},
		},
	}
}

func solicitud(origen string) models.SolicitudAlmacen {
	return models.SolicitudAlmacen{RequerimientoID: "r1", AlmacenOrigenID: origen, AlmacenDestinoID: "obra-1", UsuarioID: "u1"}
}

func linea(solicitudID, recursoID string, q int64) models.SolicitudRecursoAlmacen {
	return models.SolicitudRecursoAlmacen{SolicitudAlmacenID: solicitudID, RecursoID: recursoID, Cantidad: d(q)}
}

func newTestService(gw Gateway, reqs Requerimientos, journal saga.Journal) *TransferService {
	return NewTransferService(gw, reqs, journal, auditlog.Nop{}, zap.NewNop())
}

func TestApproveTransfer(t *testing.T) {
	gw := new(MockGateway)
	reqs := new(MockRequerimientos)
	journal := &recordingJournal{}

	reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_logistica", Version: 2}, nil)
	reqs.On("Transition", "r1", "approve_warehouse").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_almacen", Version: 3}, nil)
	gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)
	gw.On("AddSolicitudAlmacen", solicitud("w1")).Return(&models.SolicitudAlmacen{ID: "s1", AlmacenOrigenID: "w1"}, nil).Once()
	gw.On("AddSolicitudRecursoAlmacen", linea("s1", "cemento", 4)).Return(&models.SolicitudRecursoAlmacen{ID: "l1"}, nil).Once()
	gw.On("AddSolicitudRecursoAlmacen", linea("s1", "fierro", 2)).Return(&models.SolicitudRecursoAlmacen{ID: "l2"}, nil).Once()
	gw.On("AddSolicitudAlmacen", solicitud("w2")).Return(&models.SolicitudAlmacen{ID: "s2", AlmacenOrigenID: "w2"}, nil).Once()
	gw.On("AddSolicitudRecursoAlmacen", linea("s2", "cemento", 2)).Return(&models.SolicitudRecursoAlmacen{ID: "l3"}, nil).Once()

	result, err := newTestService(gw, reqs, journal).Approve(context.Background(), store.New(), "u1", "r1", approveRequest())

	require.NoError(t, err)
	assert.Equal(t, "aprobado_almacen", result.Estado)
	assert.Len(t, result.Solicitudes, 2)
	assert.True(t, d(4).Equal(result.Lines[0].QuotationNeeded))
	assert.True(t, d(0).Equal(result.Lines[1].QuotationNeeded))
	assert.Len(t, journal.entries, 6)
	gw.AssertExpectations(t)
	gw.AssertNotCalled(t, "DeleteSolicitudAlmacen", mock.Anything, mock.Anything)
}

func TestApproveTransferCompensates(t *testing.T) {
	gw := new(MockGateway)
	reqs := new(MockRequerimientos)
	journal := &recordingJournal{}
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(args mock.Arguments) { calls = append(calls, name) }
	}

	reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_logistica", Version: 2}, nil)
	gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)
	gw.On("AddSolicitudAlmacen", solicitud("w1")).Return(&models.SolicitudAlmacen{ID: "s1"}, nil).Run(record("add s1")).Once()
	gw.On("AddSolicitudRecursoAlmacen", linea("s1", "cemento", 4)).Return(&models.SolicitudRecursoAlmacen{ID: "l1"}, nil).Run(record("add l1")).Once()
	gw.On("AddSolicitudRecursoAlmacen", linea("s1", "fierro", 2)).Return(nil, &custom_error.GatewayError{Operation: "addSolicitudRecursoAlmacen", Err: errors.New("timeout")}).Run(record("add l2")).Once()
	gw.On("DeleteSolicitudRecursoAlmacen", "l1").Return(nil).Run(record("delete l1")).Once()
	gw.On("DeleteSolicitudAlmacen", "s1", false).Return(nil).Run(record("delete s1")).Once()

	result, err := newTestService(gw, reqs, journal).Approve(context.Background(), store.New(), "u1", "r1", approveRequest())

	assert.Nil(t, result)
	var partial *custom_error.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.True(t, partial.Compensated)
	assert.Equal(t, []string{"solicitud w1", "linea w1/cemento"}, partial.Completed)
	assert.Equal(t, "linea w1/fierro", partial.Failed)
	assert.Equal(t, []string{"add s1", "add l1", "add l2", "delete l1", "delete s1"}, calls)
	reqs.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
	gw.AssertExpectations(t)
}

func TestApproveTransferCompensatesRefusedTransition(t *testing.T) {
	gw := new(MockGateway)
	reqs := new(MockRequerimientos)

	reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_gerencia", Version: 2}, nil)
	reqs.On("Transition", "r1", "approve_logistics").Return(nil, &custom_error.VersionConflictError{Resource: "requerimiento", ID: "r1", Version: 2})
	gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)
	pre := solicitud("w1")
	pre.Pre = true
	gw.On("AddSolicitudAlmacen", pre).Return(&models.SolicitudAlmacen{ID: "p1", Pre: true}, nil)
	gw.On("AddSolicitudRecursoAlmacen", linea("p1", "cemento", 1)).Return(&models.SolicitudRecursoAlmacen{ID: "l1"}, nil)
	gw.On("DeleteSolicitudRecursoAlmacen", "l1").Return(nil)
	gw.On("DeleteSolicitudAlmacen", "p1", true).Return(nil)

	_, err := newTestService(gw, reqs, nil).Approve(context.Background(), store.New(), "u1", "r1", models.TransferRequest{
		Stage:            models.TransferStageLogistica,
		AlmacenDestinoID: "obra-1",
		Lines:            []models.TransferLineRequest{{RequerimientoRecursoID: "rr1", Quantities: map[string]decimal.Decimal{"w1": d(1)}}},
	})

	var conflict *custom_error.VersionConflictError
	assert.ErrorAs(t, err, &conflict)
	gw.AssertExpectations(t)
}

func TestApproveTransferRejectsOverStock(t *testing.T) {
	gw := new(MockGateway)
	reqs := new(MockRequerimientos)
	reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_logistica"}, nil)
	gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)

	req := approveRequest()
	req.Lines[0].Quantities["w2"] = d(9)
	_, err := newTestService(gw, reqs, nil).Approve(context.Background(), store.New(), "u1", "r1", req)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Len(t, stockErr.Reasons, 1)
	gw.AssertNotCalled(t, "AddSolicitudAlmacen", mock.Anything)
}

func TestApproveTransferChecksStageFirst(t *testing.T) {
	gw := new(MockGateway)
	reqs := new(MockRequerimientos)
	reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "pendiente"}, nil)

	_, err := newTestService(gw, reqs, nil).Approve(context.Background(), store.New(), "u1", "r1", approveRequest())

	assert.ErrorIs(t, err, custom_error.ErrInvalidTransition)
	gw.AssertNotCalled(t, "ListRecursosConStock", mock.Anything)
}

func TestPreview(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)

	preview, err := newTestService(gw, nil, nil).Preview(context.Background(), "r1", []models.TransferLineRequest{
		{RequerimientoRecursoID: "rr1", Quantities: map[string]decimal.Decimal{"w1": d(4), "w2": d(3)}},
	})

	require.NoError(t, err)
	assert.True(t, d(7).Equal(preview.Lines[0].TransferTotal))
	assert.True(t, d(3).Equal(preview.Lines[0].QuotationNeeded))
	assert.True(t, d(2).Equal(preview.Lines[1].QuotationNeeded))
	assert.Empty(t, preview.Issues)
}
