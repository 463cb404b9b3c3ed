package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"procurement/pkg/models"
)

const listCotizacionesQuery = `
query ListCotizaciones {
  listCotizaciones {
    id
    codigo_cotizacion
    requerimiento_id
    usuario_id
    estado
    fecha_cotizacion
  }
}`

const addCotizacionMutation = `
mutation AddCotizacion($requerimiento_id: String!, $usuario_id: String!) {
  addCotizacion(requerimiento_id: $requerimiento_id, usuario_id: $usuario_id) {
    id
    codigo_cotizacion
    requerimiento_id
    usuario_id
    estado
    fecha_cotizacion
  }
}`

const addCotizacionRecursoMutation = `
mutation AddCotizacionRecurso($cotizacion_id: String!, $recurso_id: String!, $cantidad: Float!, $costo: Float!) {
  addCotizacionRecurso(cotizacion_id: $cotizacion_id, recurso_id: $recurso_id, cantidad: $cantidad, costo: $costo) {
    id
    cotizacion_id
    recurso_id
    cantidad
    costo
  }
}`

const listOrdenesCompraQuery = `
query ListOrdenCompras {
  listOrdenCompras {
    id
    codigo_orden
    cotizacion_id
    descripcion
    estado
    fecha_ini
    fecha_fin
  }
}`

const addOrdenCompraMutation = `
mutation AddOrdenCompra($cotizacion_id: String!, $descripcion: String, $fecha_fin: DateTime) {
  addOrdenCompra(cotizacion_id: $cotizacion_id, descripcion: $descripcion, fecha_fin: $fecha_fin) {
    id
    codigo_orden
    cotizacion_id
    descripcion
    estado
    fecha_ini
    fecha_fin
  }
}`

const addOrdenCompraRecursoMutation = `
mutation AddOrdenCompraRecurso($orden_compra_id: String!, $recurso_id: String!, $cantidad: Float!, $costo: Float!) {
  addOrdenCompraRecurso(orden_compra_id: $orden_compra_id, recurso_id: $recurso_id, cantidad: $cantidad, costo: $costo) {
    id
    orden_compra_id
    recurso_id
    cantidad
    costo
  }
}`

const addSolicitudAlmacenMutation = `
mutation AddSolicitudAlmacen($requerimiento_id: String!, $almacen_origen_id: String!, $almacen_destino_id: String!, $usuario_id: String!) {
  addSolicitudAlmacen(requerimiento_id: $requerimiento_id, almacen_origen_id: $almacen_origen_id, almacen_destino_id: $almacen_destino_id, usuario_id: $usuario_id) {
    id
    requerimiento_id
    almacen_origen_id
    almacen_destino_id
    usuario_id
    estado
    fecha
  }
}`

const addPreSolicitudAlmacenMutation = `
mutation AddPreSolicitudAlmacen($requerimiento_id: String!, $almacen_origen_id: String!, $almacen_destino_id: String!, $usuario_id: String!) {
  addPreSolicitudAlmacen(requerimiento_id: $requerimiento_id, almacen_origen_id: $almacen_origen_id, almacen_destino_id: $almacen_destino_id, usuario_id: $usuario_id) {
    id
    requerimiento_id
    almacen_origen_id
    almacen_destino_id
    usuario_id
    estado
    fecha
  }
}`

const addSolicitudRecursoAlmacenMutation = `
mutation AddSolicitudRecursoAlmacen($solicitud_almacen_id: String!, $recurso_id: String!, $cantidad: Float!) {
  addSolicitudRecursoAlmacen(solicitud_almacen_id: $solicitud_almacen_id, recurso_id: $recurso_id, cantidad: $cantidad) {
    id
    solicitud_almacen_id
    recurso_id
    cantidad
  }
}`

const deleteByIDMutation = `
mutation Delete%s($id: ID!) {
  %s(id: $id) {
    id
  }
}`

func (c *Client) ListCotizaciones(ctx context.Context) ([]models.Cotizacion, error) {
	var resp struct {
		Items []models.Cotizacion `json:"listCotizaciones"`
	}
	if err := c.run(ctx, "listCotizaciones", listCotizacionesQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) AddCotizacion(ctx context.Context, requerimientoID, usuarioID string) (*models.Cotizacion, error) {
	var resp struct {
		Item models.Cotizacion `json:"addCotizacion"`
	}
	vars := map[string]interface{}{"requerimiento_id": requerimientoID, "usuario_id": usuarioID}
	if err := c.run(ctx, "addCotizacion", addCotizacionMutation, vars, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func (c *Client) AddCotizacionRecurso(ctx context.Context, cotizacionID string, line models.LineaRequest) (*models.CotizacionRecurso, error) {
	var resp struct {
		Item models.CotizacionRecurso `json:"addCotizacionRecurso"`
	}
	vars := map[string]interface{}{
		"cotizacion_id": cotizacionID,
		"recurso_id":    line.RecursoID,
		"cantidad":      line.Cantidad.InexactFloat64(),
		"costo":         line.Costo.InexactFloat64(),
	}
	if err := c.run(ctx, "addCotizacionRecurso", addCotizacionRecursoMutation, vars, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func (c *Client) DeleteCotizacion(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "deleteCotizacion", id)
}

func (c *Client) DeleteCotizacionRecurso(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "deleteCotizacionRecurso", id)
}

func (c *Client) ListOrdenesCompra(ctx context.Context) ([]models.OrdenCompra, error) {
	var resp struct {
		Items []models.OrdenCompra `json:"listOrdenCompras"`
	}
	if err := c.run(ctx, "listOrdenCompras", listOrdenesCompraQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) AddOrdenCompra(ctx context.Context, req models.OrdenCompraRequest) (*models.OrdenCompra, error) {
	vars := map[string]interface{}{
		"cotizacion_id": req.CotizacionID,
		"descripcion":   req.Descripcion,
	}
	if req.FechaFin != nil {
		vars["fecha_fin"] = req.FechaFin.Format(time.RFC3339)
	}
	var resp struct {
		Item models.OrdenCompra `json:"addOrdenCompra"`
	}
	if err := c.run(ctx, "addOrdenCompra", addOrdenCompraMutation, vars, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func (c *Client) AddOrdenCompraRecurso(ctx context.Context, ordenID string, line models.LineaRequest) (*models.OrdenCompraRecurso, error) {
	var resp struct {
		Item models.OrdenCompraRecurso `json:"addOrdenCompraRecurso"`
	}
	vars := map[string]interface{}{
		"orden_compra_id": ordenID,
		"recurso_id":      line.RecursoID,
		"cantidad":        line.Cantidad.InexactFloat64(),
		"costo":           line.Costo.InexactFloat64(),
	}
	if err := c.run(ctx, "addOrdenCompraRecurso", addOrdenCompraRecursoMutation, vars, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func (c *Client) DeleteOrdenCompra(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "deleteOrdenCompra", id)
}

func (c *Client) DeleteOrdenCompraRecurso(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "deleteOrdenCompraRecurso", id)
}

// AddSolicitudAlmacen creates a warehouse transfer request header, or the
// logistics pre-allocation variant when s.Pre is set.
func (c *Client) AddSolicitudAlmacen(ctx context.Context, s models.SolicitudAlmacen) (*models.SolicitudAlmacen, error) {
	operation, query := "addSolicitudAlmacen", addSolicitudAlmacenMutation
	if s.Pre {
		operation, query = "addPreSolicitudAlmacen", addPreSolicitudAlmacenMutation
	}
	vars := map[string]interface{}{
		"requerimiento_id":   s.RequerimientoID,
		"almacen_origen_id":  s.AlmacenOrigenID,
		"almacen_destino_id": s.AlmacenDestinoID,
		"usuario_id":         s.UsuarioID,
	}

	resp := map[string]*models.SolicitudAlmacen{}
	if err := c.run(ctx, operation, query, vars, &resp); err != nil {
		return nil, err
	}
	created := resp[operation]
	if created == nil {
		created = &models.SolicitudAlmacen{}
	}
	created.Pre = s.Pre

	return created, nil
}

func (c *Client) AddSolicitudRecursoAlmacen(ctx context.Context, line models.SolicitudRecursoAlmacen) (*models.SolicitudRecursoAlmacen, error) {
	var resp struct {
		Item models.SolicitudRecursoAlmacen `json:"addSolicitudRecursoAlmacen"`
	}
	vars := map[string]interface{}{
		"solicitud_almacen_id": line.SolicitudAlmacenID,
		"recurso_id":           line.RecursoID,
		"cantidad":             line.Cantidad.InexactFloat64(),
	}
	if err := c.run(ctx, "addSolicitudRecursoAlmacen", addSolicitudRecursoAlmacenMutation, vars, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func (c *Client) DeleteSolicitudAlmacen(ctx context.Context, id string, pre bool) error {
	if pre {
		return c.deleteByID(ctx, "deletePreSolicitudAlmacen", id)
	}
	return c.deleteByID(ctx, "deleteSolicitudAlmacen", id)
}

func (c *Client) DeleteSolicitudRecursoAlmacen(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "deleteSolicitudRecursoAlmacen", id)
}

func (c *Client) deleteByID(ctx context.Context, operation, id string) error {
	query := fmt.Sprintf(deleteByIDMutation, strings.TrimPrefix(operation, "delete"), operation)
	var resp map[string]interface{}
	return c.run(ctx, operation, query, map[string]interface{}{"id": id}, &resp)
}
