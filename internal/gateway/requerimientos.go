package gateway

import (
	"context"
	"fmt"
	"time"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"
)

const requerimientoFields = `
    id
    codigo
    usuario_id
    usuario
    obra_id
    fecha_solicitud
    fecha_final
    sustento
    estado_atencion
    version`

var listRequerimientosQuery = `
query ListRequerimientos {
  listRequerimientos {` + requerimientoFields + `
  }
}`

var getRequerimientoQuery = `
query GetRequerimiento($id: ID!) {
  getRequerimiento(id: $id) {` + requerimientoFields + `
  }
}`

var addRequerimientoMutation = `
mutation AddRequerimiento($usuario_id: String!, $obra_id: String!, $fecha_final: DateTime!, $sustento: String!) {
  addRequerimiento(usuario_id: $usuario_id, obra_id: $obra_id, fecha_final: $fecha_final, sustento: $sustento) {` + requerimientoFields + `
  }
}`

var updateRequerimientoMutation = `
mutation UpdateRequerimiento($id: ID!, $version: Int!, $obra_id: String, $fecha_final: DateTime, $sustento: String, $estado_atencion: String) {
  updateRequerimiento(id: $id, version: $version, obra_id: $obra_id, fecha_final: $fecha_final, sustento: $sustento, estado_atencion: $estado_atencion) {` + requerimientoFields + `
  }
}`

func (c *Client) ListRequerimientos(ctx context.Context) ([]models.Requerimiento, error) {
	var resp struct {
		Items []models.Requerimiento `json:"listRequerimientos"`
	}
	if err := c.run(ctx, "listRequerimientos", listRequerimientosQuery, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

func (c *Client) GetRequerimiento(ctx context.Context, id string) (*models.Requerimiento, error) {
	var resp struct {
		Item *models.Requerimiento `json:"getRequerimiento"`
	}
	if err := c.run(ctx, "getRequerimiento", getRequerimientoQuery, map[string]interface{}{"id": id}, &resp); err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, fmt.Errorf("requerimiento %s: %w", id, custom_error.ErrNotFound)
	}

	return resp.Item, nil
}

func (c *Client) AddRequerimiento(ctx context.Context, req models.CreateRequerimientoRequest) (*models.Requerimiento, error) {
	var resp struct {
		Item models.Requerimiento `json:"addRequerimiento"`
	}
	vars := map[string]interface{}{
		"usuario_id":  req.UsuarioID,
		"obra_id":     req.ObraID,
		"fecha_final": req.FechaFinal.Format(time.RFC3339),
		"sustento":    req.Sustento,
	}
	if err := c.run(ctx, "addRequerimiento", addRequerimientoMutation, vars, &resp); err != nil {
		return nil, err
	}

	return &resp.Item, nil
}

// UpdateRequerimiento sends only the fields that are set; a stale version is
// reported as a VersionConflictError.
func (c *Client) UpdateRequerimiento(ctx context.Context, id string, req models.UpdateRequerimientoRequest) (*models.Requerimiento, error) {
	vars := map[string]interface{}{"id": id, "version": req.Version}
	if req.ObraID != nil {
		vars["obra_id"] = *req.ObraID
	}
	if req.FechaFinal != nil {
		vars["fecha_final"] = req.FechaFinal.Format(time.RFC3339)
	}
	if req.Sustento != nil {
		vars["sustento"] = *req.Sustento
	}
	if req.EstadoAtencion != nil {
		vars["estado_atencion"] = *req.EstadoAtencion
	}

	var resp struct {
		Item models.Requerimiento `json:"updateRequerimiento"`
	}
	if err := c.run(ctx, "updateRequerimiento", updateRequerimientoMutation, vars, &resp); err != nil {
		if isVersionConflict(err) {
			return nil, &custom_error.VersionConflictError{Resource: "requerimiento", ID: id, Version: req.Version}
		}
		return nil, err
	}

	return &resp.Item, nil
}

const recursoLineFields = `
    id
    requerimiento_id
    recurso_id
    codigo
    nombre
    unidad
    cantidad
    cantidad_aprobada
    fecha_limit
    notas
    precio_referencial`

var listRequerimientoRecursosQuery = `
query ListRequerimientoRecursos($requerimiento_id: ID!) {
  getRequerimientoRecursoByRequerimientoId(requerimiento_id: $requerimiento_id) {` + recursoLineFields + `
  }
}`

var addRequerimientoRecursoMutation = `
mutation AddRequerimientoRecurso($requerimiento_id: String!, $recurso_id: String!, $cantidad: Float!, $fecha_limit: DateTime, $notas: String) {
  addRequerimientoRecurso(requerimiento_id: $requerimiento_id, recurso_id: $recurso_id, cantidad: $cantidad, fecha_limit: $fecha_limit, notas: $notas) {` + recursoLineFields + `
  }
}`

var updateRequerimientoRecursoMutation = `
mutation UpdateRequerimientoRecurso($id: ID!, $cantidad: Float, $cantidad_aprobada: Float, $fecha_limit: DateTime, $notas: String) {
  updateRequerimientoRecurso(id: $id, cantidad: $cantidad, cantidad_aprobada: $cantidad_aprobada, fecha_limit: $fecha_limit, notas: $notas) {` + recursoLineFields + `
  }
}`

const deleteRequerimientoRecursoMutation = `
mutation DeleteRequerimientoRecurso($id: ID!) {
  deleteRequerimientoRecurso(id: $id) {
    id
  }
}`

var recursosConStockQuery = `
query RecursosConStock($requerimiento_id: ID!) {
  getRequerimientoRecursoByRequerimientoIdWithAlmacenQuantities(requerimiento_id: $requerimiento_id) {` + recursoLineFields + `
    almacenes {
      almacen_id
      nombre_almacen
      cantidad
    }
  }
}`

func (c *Client) ListRequerimientoRecursos(ctx context.Context, requerimientoID string) ([]models.RequerimientoRecurso, error) {
	var resp struct {
		Items []models.RequerimientoRecurso `json:"getRequerimientoRecursoByRequerimientoId"`
	}
	vars := map[string]interface{}{"requerimiento_id": requerimientoID}
	if err := c.run(ctx, "getRequerimientoRecursoByRequerimientoId", listRequerimientoRecursosQuery, vars, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Items {
		resp.Items[i].ComputeCostoRef()
	}

	return resp.Items, nil
}

func (c *Client) AddRequerimientoRecurso(ctx context.Context, requerimientoID string, req models.RequerimientoRecursoRequest) (*models.RequerimientoRecurso, error) {
	vars := map[string]interface{}{
		"requerimiento_id": requerimientoID,
		"recurso_id":       req.RecursoID,
		"cantidad":         req.Cantidad.InexactFloat64(),
		"notas":            req.Notas,
	}
	if req.FechaLimit != nil {
		vars["fecha_limit"] = req.FechaLimit.Format(time.RFC3339)
	}

	var resp struct {
		Item models.RequerimientoRecurso `json:"addRequerimientoRecurso"`
	}
	if err := c.run(ctx, "addRequerimientoRecurso", addRequerimientoRecursoMutation, vars, &resp); err != nil {
		return nil, err
	}
	resp.Item.ComputeCostoRef()

	return &resp.Item, nil
}

func (c *Client) UpdateRequerimientoRecurso(ctx context.Context, id string, req models.RequerimientoRecursoRequest) (*models.RequerimientoRecurso, error) {
	vars := map[string]interface{}{
		"id":       id,
		"cantidad": req.Cantidad.InexactFloat64(),
		"notas":    req.Notas,
	}
	if req.CantidadAprobada != nil {
		vars["cantidad_aprobada"] = req.CantidadAprobada.InexactFloat64()
	}
	if req.FechaLimit != nil {
		vars["fecha_limit"] = req.FechaLimit.Format(time.RFC3339)
	}

	var resp struct {
		Item models.RequerimientoRecurso `json:"updateRequerimientoRecurso"`
	}
	if err := c.run(ctx, "updateRequerimientoRecurso", updateRequerimientoRecursoMutation, vars, &resp); err != nil {
		return nil, err
	}
	resp.Item.ComputeCostoRef()

	return &resp.Item, nil
}

func (c *Client) DeleteRequerimientoRecurso(ctx context.Context, id string) error {
	var resp struct {
		Item struct {
			ID string `json:"id"`
		} `json:"deleteRequerimientoRecurso"`
	}
	return c.run(ctx, "deleteRequerimientoRecurso", deleteRequerimientoRecursoMutation, map[string]interface{}{"id": id}, &resp)
}

func (c *Client) ListRecursosConStock(ctx context.Context, requerimientoID string) ([]models.RecursoConStock, error) {
	var resp struct {
		Items []models.RecursoConStock `json:"getRequerimientoRecursoByRequerimientoIdWithAlmacenQuantities"`
	}
	vars := map[string]interface{}{"requerimiento_id": requerimientoID}
	if err := c.run(ctx, "getRequerimientoRecursoByRequerimientoIdWithAlmacenQuantities", recursosConStockQuery, vars, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Items {
		resp.Items[i].ComputeCostoRef()
	}

	return resp.Items, nil
}
