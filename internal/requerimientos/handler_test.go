package requerimientos

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"procurement/internal/store"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(gw Gateway, lister ApprovalLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	session := &security.Session{ID: "s1", UserID: "u1", Store: store.New()}
	router.Use(func(c *gin.Context) {
		security.SetSession(c, session)
		c.Next()
	})

	NewRequerimientoHandler(newTestService(gw, lister), zap.NewNop()).RegisterRoutes(&router.RouterGroup)
	return router
}

func TestGetBoardHandler(t *testing.T) {
	gw := new(MockGateway)
	lister := new(MockApprovalLister)
	gw.On("ListRequerimientos").Return([]models.Requerimiento{
		{ID: "A", EstadoAtencion: "pendiente", Codigo: "CU-1", Sustento: "roof materials"},
		{ID: "B", EstadoAtencion: "aprobado_supervisor", Codigo: "LI-2", Sustento: "cement"},
	}, nil)
	lister.On("List", "B").Return([]models.Aprobacion{{UsuarioID: "u1", EstadoAprobacion: "pendiente"}}, nil)

	w := httptest.NewRecorder()
	newTestRouter(gw, lister).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requerimientos/board?search=CEMENT", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var board Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Equal(t, []string{"B"}, board.CardIDs())
	gerencia, _ := board.Bucket("aprobacion_gerencia")
	assert.True(t, gerencia.Cards[0].Highlight)
	lister.AssertNotCalled(t, "List", "A")
}

func TestCreateRequerimientoUsesSessionUser(t *testing.T) {
	gw := new(MockGateway)
	fecha := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	gw.On("AddRequerimiento", models.CreateRequerimientoRequest{
		UsuarioID:  "u1",
		ObraID:     "o1",
		FechaFinal: fecha,
		Sustento:   "roof materials",
	}).Return(&models.Requerimiento{ID: "r1", UsuarioID: "u1", EstadoAtencion: "pendiente"}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requerimientos", bytes.NewBufferString(`{"obra_id":"o1","fecha_final":"2026-11-30T00:00:00Z","sustento":"roof materials"}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(gw, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	gw.AssertExpectations(t)
}

func TestTransitionHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		current        models.Requerimiento
		mockSetup      func(gw *MockGateway)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "Applied",
			body:    `{"action":"approve_management"}`,
			current: models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_supervisor", Version: 1},
			mockSetup: func(gw *MockGateway) {
				gw.On("UpdateRequerimiento", "r1", mock.Anything).Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_gerencia", Version: 2}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid action",
			body:           `{"action":"complete"}`,
			current:        models.Requerimiento{ID: "r1", EstadoAtencion: "pendiente", Version: 1},
			mockSetup:      func(gw *MockGateway) {},
			expectedStatus: http.StatusConflict,
			expectedCode:   "invalid_transition",
		},
		{
			name:           "Stale version",
			body:           `{"action":"approve_supervisor","version":0}`,
			current:        models.Requerimiento{ID: "r1", EstadoAtencion: "pendiente", Version: 1},
			mockSetup:      func(gw *MockGateway) {},
			expectedStatus: http.StatusConflict,
			expectedCode:   "version_conflict",
		},
		{
			name:           "Missing action",
			body:           `{}`,
			current:        models.Requerimiento{ID: "r1"},
			mockSetup:      func(gw *MockGateway) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			current := tt.current
			gw.On("GetRequerimiento", "r1").Return(&current, nil)
			tt.mockSetup(gw)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/requerimientos/r1/transitions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newTestRouter(gw, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tt.expectedCode+`"`)
			}
		})
	}
}

func TestGetTransitionsHandler(t *testing.T) {
	gw := new(MockGateway)
	gw.On("GetRequerimiento", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_almacen", Version: 7}, nil)

	w := httptest.NewRecorder()
	newTestRouter(gw, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requerimientos/r1/transitions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"estado_atencion":"aprobado_almacen","version":7,"actions":["partial_fulfilment","complete"]}`, w.Body.String())
}

func TestGetHistoryWithoutDatabase(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(new(MockGateway), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requerimientos/r1/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}
