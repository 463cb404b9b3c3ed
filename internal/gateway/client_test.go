package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type graphqlCall struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	Authorization string                 `json:"-"`
}

// newTestServer answers every GraphQL call with the given body and records
// the calls it received.
func newTestServer(t *testing.T, body string) (*Client, *[]graphqlCall) {
	t.Helper()
	var calls []graphqlCall

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call graphqlCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		call.Authorization = r.Header.Get("Authorization")
		calls = append(calls, call)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return NewClient(server.URL, 5*time.Second, zap.NewNop()), &calls
}

func TestLogin(t *testing.T) {
	client, calls := newTestServer(t, `{"data":{"login":{"id":"u1","usuario":"jperez","token":"abc"}}}`)

	result, err := client.Login(context.Background(), "jperez", "secret")

	require.NoError(t, err)
	assert.Equal(t, &models.LoginResult{ID: "u1", Usuario: "jperez", Token: "abc"}, result)
	assert.Equal(t, "jperez", (*calls)[0].Variables["usuario"])
	assert.Equal(t, "secret", (*calls)[0].Variables["contrasenna"])
	assert.Empty(t, (*calls)[0].Authorization)
}

func TestLoginWithoutToken(t *testing.T) {
	client, _ := newTestServer(t, `{"data":{"login":null}}`)

	_, err := client.Login(context.Background(), "jperez", "wrong")

	assert.ErrorIs(t, err, custom_error.ErrNotFound)
}

func TestListRequerimientosSendsToken(t *testing.T) {
	client, calls := newTestServer(t, `{"data":{"listRequerimientos":[
		{"id":"A","codigo":"CU-1","sustento":"roof materials","estado_atencion":"pendiente","version":3,"fecha_final":"2026-11-02T00:00:00Z"}
	]}}`)

	ctx := WithToken(context.Background(), "abc")
	items, err := client.ListRequerimientos(ctx)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CU-1", items[0].Codigo)
	assert.Equal(t, 3, items[0].Version)
	assert.Equal(t, 2026, items[0].FechaFinal.Year())
	assert.Equal(t, "Bearer abc", (*calls)[0].Authorization)
}

func TestGraphQLErrorBecomesGatewayError(t *testing.T) {
	client, _ := newTestServer(t, `{"data":null,"errors":[{"message":"boom"}]}`)

	_, err := client.ListUsuarios(context.Background())

	var gatewayErr *custom_error.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, "listUsuarios", gatewayErr.Operation)
}

func TestUpdateRequerimientoVersionConflict(t *testing.T) {
	client, calls := newTestServer(t, `{"data":null,"errors":[{"message":"VERSION_CONFLICT: expected 4"}]}`)
	estado := "aprobado_supervisor"

	_, err := client.UpdateRequerimiento(context.Background(), "A", models.UpdateRequerimientoRequest{
		EstadoAtencion: &estado,
		Version:        3,
	})

	var conflict *custom_error.VersionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "A", conflict.ID)
	assert.Equal(t, 3, conflict.Version)
	assert.Equal(t, "aprobado_supervisor", (*calls)[0].Variables["estado_atencion"])
	_, hasSustento := (*calls)[0].Variables["sustento"]
	assert.False(t, hasSustento)
}

func TestListRecursosConStockComputesCost(t *testing.T) {
	client, _ := newTestServer(t, `{"data":{"getRequerimientoRecursoByRequerimientoIdWithAlmacenQuantities":[
		{"id":"rr1","recurso_id":"r1","cantidad":10,"precio_referencial":2.5,
		 "almacenes":[{"almacen_id":"w1","nombre_almacen":"Central","cantidad":4},{"almacen_id":"w2","nombre_almacen":"Obra","cantidad":3}]}
	]}}`)

	items, err := client.ListRecursosConStock(context.Background(), "A")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(25).Equal(items[0].CostoRef))
	assert.Len(t, items[0].Almacenes, 2)
	assert.True(t, decimal.NewFromInt(4).Equal(items[0].Almacenes[0].Cantidad))
}

func TestAddPreSolicitudAlmacen(t *testing.T) {
	client, calls := newTestServer(t, `{"data":{"addPreSolicitudAlmacen":{"id":"s1","almacen_origen_id":"w1"}}}`)

	created, err := client.AddSolicitudAlmacen(context.Background(), models.SolicitudAlmacen{
		RequerimientoID:  "A",
		AlmacenOrigenID:  "w1",
		AlmacenDestinoID: "w9",
		UsuarioID:        "u1",
		Pre:              true,
	})

	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)
	assert.True(t, created.Pre)
	assert.True(t, strings.Contains((*calls)[0].Query, "addPreSolicitudAlmacen"))
}

func TestDeleteByIDBuildsMutation(t *testing.T) {
	client, calls := newTestServer(t, `{"data":{"deleteCotizacion":{"id":"c1"}}}`)

	require.NoError(t, client.DeleteCotizacion(context.Background(), "c1"))

	assert.Contains(t, (*calls)[0].Query, "mutation DeleteCotizacion($id: ID!)")
	assert.Contains(t, (*calls)[0].Query, "deleteCotizacion(id: $id)")
	assert.Equal(t, "c1", (*calls)[0].Variables["id"])
}
