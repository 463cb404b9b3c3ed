package purchasing

import (
	"context"
	"fmt"

	"procurement/internal/saga"
	"procurement/internal/store"
	"procurement/pkg/auditlog"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"go.uber.org/zap"
)

type Gateway interface {
	ListCotizaciones(ctx context.Context) ([]models.Cotizacion, error)
	AddCotizacion(ctx context.Context, requerimientoID, usuarioID string) (*models.Cotizacion, error)
	AddCotizacionRecurso(ctx context.Context, cotizacionID string, line models.LineaRequest) (*models.CotizacionRecurso, error)
	DeleteCotizacion(ctx context.Context, id string) error
	DeleteCotizacionRecurso(ctx context.Context, id string) error
	ListOrdenesCompra(ctx context.Context) ([]models.OrdenCompra, error)
	AddOrdenCompra(ctx context.Context, req models.OrdenCompraRequest) (*models.OrdenCompra, error)
	AddOrdenCompraRecurso(ctx context.Context, ordenID string, line models.LineaRequest) (*models.OrdenCompraRecurso, error)
	DeleteOrdenCompra(ctx context.Context, id string) error
	DeleteOrdenCompraRecurso(ctx context.Context, id string) error
}

type CotizacionDetalle struct {
	models.Cotizacion
	Recursos []models.CotizacionRecurso `json:"recursos"`
}

type OrdenCompraDetalle struct {
	models.OrdenCompra
	Recursos []models.OrdenCompraRecurso `json:"recursos"`
}

type PurchasingService struct {
	gw      Gateway
	journal saga.Journal
	audit   auditlog.Recorder
	logger  *zap.Logger
}

func NewPurchasingService(gw Gateway, journal saga.Journal, audit auditlog.Recorder, logger *zap.Logger) *PurchasingService {
	return &PurchasingService{gw: gw, journal: journal, audit: audit, logger: logger}
}

func (s *PurchasingService) ListCotizaciones(ctx context.Context, st *store.Store) ([]models.Cotizacion, error) {
	snapshot, err := st.Cotizaciones.Load(ctx, s.gw.ListCotizaciones)
	if err != nil {
		return nil, err
	}
	return snapshot.Items, nil
}

// CreateCotizacion creates the quotation header and then one line per
// resource. A failed line removes everything created before it.
func (s *PurchasingService) CreateCotizacion(ctx context.Context, st *store.Store, usuarioID string, req models.CotizacionRequest) (*CotizacionDetalle, error) {
	if err := validateLines(req.Recursos); err != nil {
		return nil, err
	}

	detalle := &CotizacionDetalle{Recursos: []models.CotizacionRecurso{}}
	tx := saga.New("create_cotizacion", s.journal, s.logger)

	tx.AddStep(saga.Step{
		Name: "cotizacion",
		Do: func(ctx context.Context) error {
			created, err := s.gw.AddCotizacion(ctx, req.RequerimientoID, usuarioID)
			if err != nil {
				return err
			}
			detalle.Cotizacion = *created
			return nil
		},
		Undo: func(ctx context.Context) error {
			return s.gw.DeleteCotizacion(ctx, detalle.ID)
		},
	})

	for _, line := range req.Recursos {
		line := line
		var createdID string
		tx.AddStep(saga.Step{
			Name: "cotizacion_recurso " + line.RecursoID,
			Do: func(ctx context.Context) error {
				created, err := s.gw.AddCotizacionRecurso(ctx, detalle.ID, line)
				if err != nil {
					return err
				}
				createdID = created.ID
				detalle.Recursos = append(detalle.Recursos, *created)
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.gw.DeleteCotizacionRecurso(ctx, createdID)
			},
		})
	}

	if err := tx.Run(ctx); err != nil {
		return nil, err
	}

	st.Cotizaciones.Upsert(detalle.Cotizacion)
	s.audit.Log(ctx, "create", map[string]interface{}{
		"requerimiento_id": req.RequerimientoID,
		"recursos":         len(detalle.Recursos),
	}, &detalle.Cotizacion)

	return detalle, nil
}

func (s *PurchasingService) DeleteCotizacion(ctx context.Context, st *store.Store, id string) error {
	if err := s.gw.DeleteCotizacion(ctx, id); err != nil {
		return err
	}

	st.Cotizaciones.Remove(id)
	s.audit.Log(ctx, "delete", nil, &models.Cotizacion{ID: id})
	return nil
}

func (s *PurchasingService) ListOrdenesCompra(ctx context.Context, st *store.Store) ([]models.OrdenCompra, error) {
	snapshot, err := st.OrdenesCompra.Load(ctx, s.gw.ListOrdenesCompra)
	if err != nil {
		return nil, err
	}
	return snapshot.Items, nil
}

// CreateOrdenCompra creates the purchase order header and then its lines,
// deleting the partial order when a line fails.
func (s *PurchasingService) CreateOrdenCompra(ctx context.Context, st *store.Store, req models.OrdenCompraRequest) (*OrdenCompraDetalle, error) {
	if err := validateLines(req.Recursos); err != nil {
		return nil, err
	}

	detalle := &OrdenCompraDetalle{Recursos: []models.OrdenCompraRecurso{}}
	tx := saga.New("create_orden_compra", s.journal, s.logger)

	tx.AddStep(saga.Step{
		Name: "orden_compra",
		Do: func(ctx context.Context) error {
			created, err := s.gw.AddOrdenCompra(ctx, req)
			if err != nil {
				return err
			}
			detalle.OrdenCompra = *created
			return nil
		},
		Undo: func(ctx context.Context) error {
			return s.gw.DeleteOrdenCompra(ctx, detalle.ID)
		},
	})

	for _, line := range req.Recursos {
		line := line
		var createdID string
		tx.AddStep(saga.Step{
			Name: "orden_compra_recurso " + line.RecursoID,
			Do: func(ctx context.Context) error {
				created, err := s.gw.AddOrdenCompraRecurso(ctx, detalle.ID, line)
				if err != nil {
					return err
				}
				createdID = created.ID
				detalle.Recursos = append(detalle.Recursos, *created)
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.gw.DeleteOrdenCompraRecurso(ctx, createdID)
			},
		})
	}

	if err := tx.Run(ctx); err != nil {
		return nil, err
	}

	st.OrdenesCompra.Upsert(detalle.OrdenCompra)
	s.audit.Log(ctx, "create", map[string]interface{}{
		"cotizacion_id": req.CotizacionID,
		"recursos":      len(detalle.Recursos),
	}, &detalle.OrdenCompra)

	return detalle, nil
}

func (s *PurchasingService) DeleteOrdenCompra(ctx context.Context, st *store.Store, id string) error {
	if err := s.gw.DeleteOrdenCompra(ctx, id); err != nil {
		return err
	}

	st.OrdenesCompra.Remove(id)
	s.audit.Log(ctx, "delete", nil, &models.OrdenCompra{ID: id})
	return nil
}

func validateLines(lines []models.LineaRequest) error {
	if len(lines) == 0 {
		return &custom_error.ValidationError{Message: "at least one line is required", Property: "recursos"}
	}
	for i, line := range lines {
		if !line.Cantidad.IsPositive() {
			return &custom_error.ValidationError{Message: "must be greater than zero", Property: fmt.Sprintf("recursos[%d].cantidad", i)}
		}
		if line.Costo.IsNegative() {
			return &custom_error.ValidationError{Message: "must not be negative", Property: fmt.Sprintf("recursos[%d].costo", i)}
		}
	}
	return nil
}
