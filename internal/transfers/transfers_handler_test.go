package transfers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"procurement/internal/store"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRouter(gw Gateway, reqs Requerimientos) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	session := &security.Session{ID: "s1", UserID: "u1", Store: store.New()}
	router.Use(func(c *gin.Context) {
		security.SetSession(c, session)
		c.Next()
	})

	NewTransferHandler(newTestService(gw, reqs, nil), zap.NewNop()).RegisterRoutes(&router.RouterGroup)
	return router
}

func TestApproveTransferHandler(t *testing.T) {
	body := `{"stage":"almacen","almacen_destino_id":"obra-1","lines":[{"requerimiento_recurso_id":"rr1","quantities":{"w1":"9"}}]}`

	tests := []struct {
		name           string
		body           string
		mockSetup      func(gw *MockGateway, reqs *MockRequerimientos)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Unknown stage",
			body:           `{"stage":"compras","almacen_destino_id":"obra-1","lines":[]}`,
			mockSetup:      func(gw *MockGateway, reqs *MockRequerimientos) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Over stock",
			body: body,
			mockSetup: func(gw *MockGateway, reqs *MockRequerimientos) {
				reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_logistica"}, nil)
				gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"code":"stock_validation"`,
		},
		{
			name: "Upstream failure is compensated",
			body: `{"stage":"almacen","almacen_destino_id":"obra-1","lines":[{"requerimiento_recurso_id":"rr1","quantities":{"w1":"4"}}]}`,
			mockSetup: func(gw *MockGateway, reqs *MockRequerimientos) {
				reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "aprobado_logistica"}, nil)
				gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)
				gw.On("AddSolicitudAlmacen", solicitud("w1")).Return(&models.SolicitudAlmacen{ID: "s1"}, nil)
				gw.On("AddSolicitudRecursoAlmacen", linea("s1", "cemento", 4)).Return(nil, &custom_error.GatewayError{Operation: "addSolicitudRecursoAlmacen", Err: errors.New("down")})
				gw.On("DeleteSolicitudAlmacen", "s1", false).Return(nil)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `"compensated":true`,
		},
		{
			name: "Wrong stage for request",
			body: body,
			mockSetup: func(gw *MockGateway, reqs *MockRequerimientos) {
				reqs.On("Get", "r1").Return(&models.Requerimiento{ID: "r1", EstadoAtencion: "terminados"}, nil)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"code":"invalid_transition"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			reqs := new(MockRequerimientos)
			tt.mockSetup(gw, reqs)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/requerimientos/r1/reconciliation/approve", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newTestRouter(gw, reqs).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestPreviewTransferHandler(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListRecursosConStock", "r1").Return(stockFixture(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requerimientos/r1/reconciliation/preview",
		bytes.NewBufferString(`{"lines":[{"requerimiento_recurso_id":"rr1","quantities":{"w1":4,"w2":2}}]}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(gw, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transfer_total":"6"`)
	assert.Contains(t, w.Body.String(), `"quotation_needed":"4"`)
}
