package resources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"procurement/internal/store"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListRecursos(ctx context.Context) ([]models.Recurso, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recurso), args.Error(1)
}

func (m *MockGateway) ListUnidades(ctx context.Context) ([]models.Unidad, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Unidad), args.Error(1)
}

func (m *MockGateway) ListAlmacenes(ctx context.Context) ([]models.Almacen, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Almacen), args.Error(1)
}

func (m *MockGateway) ListUsuarios(ctx context.Context) ([]models.Usuario, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Usuario), args.Error(1)
}

func catalogFixture(gw *MockGateway) {
	gw.On("ListRecursos").Return([]models.Recurso{
		{ID: "r1", Codigo: "CEM-01", Nombre: "Cemento Portland", UnidadID: "bls", PrecioReferencial: decimal.NewFromInt(25)},
		{ID: "r2", Codigo: "FIE-12", Nombre: "Fierro corrugado", UnidadID: "var"},
		{ID: "r3", Codigo: "TUB-04", Nombre: "Tubería PVC", UnidadID: "und"},
	}, nil)
	gw.On("ListUnidades").Return([]models.Unidad{{ID: "bls", Nombre: "Bolsa"}, {ID: "var", Nombre: "Varilla"}}, nil)
}

func TestRecursosSearch(t *testing.T) {
	tests := []struct {
		name     string
		search   string
		expected []string
	}{
		{name: "Empty search keeps all", search: "", expected: []string{"r1", "r2", "r3"}},
		{name: "Name match ignores case", search: "CEMENTO", expected: []string{"r1"}},
		{name: "Code match", search: "fie-", expected: []string{"r2"}},
		{name: "Accented name", search: "tubería", expected: []string{"r3"}},
		{name: "No match", search: "ladrillo", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			catalogFixture(gw)

			views, err := NewCatalogService(gw, zap.NewNop()).Recursos(context.Background(), store.New(), tt.search, false)

			require.NoError(t, err)
			ids := []string{}
			for _, v := range views {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestRecursosResolveUnitNames(t *testing.T) {
	gw := new(MockGateway)
	catalogFixture(gw)

	views, err := NewCatalogService(gw, zap.NewNop()).Recursos(context.Background(), store.New(), "", false)

	require.NoError(t, err)
	assert.Equal(t, "Bolsa", views[0].Unidad)
	assert.Equal(t, "", views[2].Unidad)
}

func TestCatalogServesCachedSnapshot(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListAlmacenes").Return([]models.Almacen{{ID: "w1", Nombre: "Central"}}, nil).Twice()
	svc := NewCatalogService(gw, zap.NewNop())
	st := store.New()

	_, err := svc.Almacenes(context.Background(), st, false)
	require.NoError(t, err)
	_, err = svc.Almacenes(context.Background(), st, false)
	require.NoError(t, err)
	gw.AssertNumberOfCalls(t, "ListAlmacenes", 1)

	_, err = svc.Almacenes(context.Background(), st, true)
	require.NoError(t, err)
	gw.AssertNumberOfCalls(t, "ListAlmacenes", 2)
}

func TestCatalogRetriesAfterFailure(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListUsuarios").Return(nil, errors.New("down")).Once()
	gw.On("ListUsuarios").Return([]models.Usuario{{ID: "u1"}}, nil).Once()
	svc := NewCatalogService(gw, zap.NewNop())
	st := store.New()

	_, err := svc.Usuarios(context.Background(), st, false)
	require.Error(t, err)
	assert.Equal(t, "down", st.Usuarios.Snapshot().Error)

	usuarios, err := svc.Usuarios(context.Background(), st, false)
	require.NoError(t, err)
	assert.Len(t, usuarios, 1)
}

func TestCatalogHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gw := new(MockGateway)
	catalogFixture(gw)

	router := gin.New()
	session := &security.Session{ID: "s1", UserID: "u1", Store: store.New()}
	router.Use(func(c *gin.Context) {
		security.SetSession(c, session)
		c.Next()
	})
	NewCatalogHandler(NewCatalogService(gw, zap.NewNop()), zap.NewNop()).RegisterRoutes(&router.RouterGroup)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "List with search", path: "/recursos?search=portland", expectedStatus: http.StatusOK, expectedBody: `"unidad":"Bolsa"`},
		{name: "Get one", path: "/recursos/r2", expectedStatus: http.StatusOK, expectedBody: `"codigo":"FIE-12"`},
		{name: "Unknown resource", path: "/recursos/missing", expectedStatus: http.StatusNotFound, expectedBody: `"code":"not_found"`},
		{name: "Units", path: "/recursos/unidades", expectedStatus: http.StatusOK, expectedBody: `"nombre":"Varilla"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
