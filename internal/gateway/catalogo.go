package gateway

import (
	"context"

	"procurement/pkg/models"
)

const listRecursosQuery = `
query ListRecursos {
  listRecurso {
    id
    codigo
    nombre
    unidad_id
    precio_referencial
    clasificacion_recurso_id
    imagenes {
      id
      file
    }
  }
}`

const listUnidadesQuery = `
query ListUnidades {
  listUnidad {
    id
    nombre
  }
}`

const listUsuariosQuery = `
query ListUsuarios {
  listUsuarios {
    id
    nombres
    apellidos
    usuario
    cargo_id {
      id
      nombre
      gerarquia
    }
  }
}`

const listAlmacenesQuery = `
query ListAlmacenes {
  listAlmacenes {
    id
    nombre
    direccion
    obra_id
  }
}`

func (c *Client) ListRecursos(ctx context.Context) ([]models.Recurso, error) {
	var resp struct {
		Items []models.Recurso `json:"listRecurso"`
	}
	if err := c.run(ctx, "listRecurso", listRecursosQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) ListUnidades(ctx context.Context) ([]models.Unidad, error) {
	var resp struct {
		Items []models.Unidad `json:"listUnidad"`
	}
	if err := c.run(ctx, "listUnidad", listUnidadesQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) ListUsuarios(ctx context.Context) ([]models.Usuario, error) {
	var resp struct {
		Items []models.Usuario `json:"listUsuarios"`
	}
	if err := c.run(ctx, "listUsuarios", listUsuariosQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) ListAlmacenes(ctx context.Context) ([]models.Almacen, error) {
	var resp struct {
		Items []models.Almacen `json:"listAlmacenes"`
	}
	if err := c.run(ctx, "listAlmacenes", listAlmacenesQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
