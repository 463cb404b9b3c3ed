package gateway

import (
	"context"
	"encoding/json"

	"procurement/pkg/models"
)

const aprobacionFields = `
    id
    requerimiento_id
    usuario_id
    gerarquia_aprobacion
    estado_aprobacion
    comentario
    fecha`

var listAprobacionesQuery = `
query ListAprobaciones($requerimiento_id: ID!) {
  getRequerimientoAprobacionByRequerimientoId(requerimiento_id: $requerimiento_id) {` + aprobacionFields + `
  }
}`

var addAprobacionMutation = `
mutation AddAprobacion($requerimiento_id: String!, $usuario_id: String!, $gerarquia_aprobacion: Int!, $estado_aprobacion: String!, $comentario: String) {
  addRequerimientoAprobacion(requerimiento_id: $requerimiento_id, usuario_id: $usuario_id, gerarquia_aprobacion: $gerarquia_aprobacion, estado_aprobacion: $estado_aprobacion, comentario: $comentario) {` + aprobacionFields + `
  }
}`

var updateAprobacionMutation = `
mutation UpdateAprobacion($id: ID!, $estado_aprobacion: String!, $comentario: String) {
  updateRequerimientoAprobacion(id: $id, estado_aprobacion: $estado_aprobacion, comentario: $comentario) {` + aprobacionFields + `
  }
}`

const deleteAprobacionMutation = `
mutation DeleteAprobacion($id: ID!) {
  deleteRequerimientoAprobacion(id: $id) {
    id
  }
}`

// ListAprobaciones returns the raw list as sent by the upstream. The upstream
// sometimes nests the list one level deeper, so decoding is left to callers.
func (c *Client) ListAprobaciones(ctx context.Context, requerimientoID string) (json.RawMessage, error) {
	var resp struct {
		Items json.RawMessage `json:"getRequerimientoAprobacionByRequerimientoId"`
	}
	vars := map[string]interface{}{"requerimiento_id": requerimientoID}
	if err := c.run(ctx, "getRequerimientoAprobacionByRequerimientoId", listAprobacionesQuery, vars, &resp); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

func (c *Client) AddAprobacion(ctx context.Context, a models.Aprobacion) (*models.Aprobacion, error) {
	vars := map[string]interface{}{
		"requerimiento_id":     a.RequerimientoID,
		"usuario_id":           a.UsuarioID,
		"gerarquia_aprobacion": a.GerarquiaAprobacion,
		"estado_aprobacion":    a.EstadoAprobacion,
		"comentario":           a.Comentario,
	}
	var resp struct {
		Item models.Aprobacion `json:"addRequerimientoAprobacion"`
	}
	if err := c.run(ctx, "addRequerimientoAprobacion", addAprobacionMutation, vars, &resp); err != nil {
		return nil, err
	}

	return &resp.Item, nil
}

func (c *Client) UpdateAprobacion(ctx context.Context, id, estado, comentario string) (*models.Aprobacion, error) {
	vars := map[string]interface{}{
		"id":                id,
		"estado_aprobacion": estado,
		"comentario":        comentario,
	}
	var resp struct {
		Item models.Aprobacion `json:"updateRequerimientoAprobacion"`
	}
	if err := c.run(ctx, "updateRequerimientoAprobacion", updateAprobacionMutation, vars, &resp); err != nil {
		return nil, err
	}

	return &resp.Item, nil
}

func (c *Client) DeleteAprobacion(ctx context.Context, id string) error {
	var resp struct {
		Item struct {
			ID string `json:"id"`
		} `json:"deleteRequerimientoAprobacion"`
	}
	return c.run(ctx, "deleteRequerimientoAprobacion", deleteAprobacionMutation, map[string]interface{}{"id": id}, &resp)
}
