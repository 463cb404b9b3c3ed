package transfers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"procurement/internal/saga"
	"procurement/internal/store"
	"procurement/pkg/auditlog"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/metadata"
	"procurement/pkg/models"

	"go.uber.org/zap"
)

type Gateway interface {
	ListRecursosConStock(ctx context.Context, requerimientoID string) ([]models.RecursoConStock, error)
	AddSolicitudAlmacen(ctx context.Context, s models.SolicitudAlmacen) (*models.SolicitudAlmacen, error)
	AddSolicitudRecursoAlmacen(ctx context.Context, line models.SolicitudRecursoAlmacen) (*models.SolicitudRecursoAlmacen, error)
	DeleteSolicitudAlmacen(ctx context.Context, id string, pre bool) error
	DeleteSolicitudRecursoAlmacen(ctx context.Context, id string) error
}

type Requerimientos interface {
	Get(ctx context.Context, st *store.Store, id string) (*models.Requerimiento, error)
	Transition(ctx context.Context, st *store.Store, id string, req models.TransitionRequest) (*models.Requerimiento, error)
}

// StockError lists entered quantities that exceed the available stock.
type StockError struct {
	Reasons []custom_error.ValidationError
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, r.Error())
	}
	return "stock validation failed: " + strings.Join(parts, "; ")
}

type TransferService struct {
	gw             Gateway
	requerimientos Requerimientos
	journal        saga.Journal
	audit          auditlog.Recorder
	logger         *zap.Logger
}

func NewTransferService(gw Gateway, requerimientos Requerimientos, journal saga.Journal, audit auditlog.Recorder, logger *zap.Logger) *TransferService {
	return &TransferService{
		gw:             gw,
		requerimientos: requerimientos,
		journal:        journal,
		audit:          audit,
		logger:         logger,
	}
}

type Preview struct {
	Lines  []models.ReconciledLine      `json:"lines"`
	Issues []custom_error.ValidationError `json:"issues"`
}

// Preview recomputes the reconciliation without touching anything upstream.
func (s *TransferService) Preview(ctx context.Context, requerimientoID string, lines []models.TransferLineRequest) (*Preview, error) {
	stock, err := s.gw.ListRecursosConStock(ctx, requerimientoID)
	if err != nil {
		return nil, err
	}

	reconciled, issues := Reconcile(stock, lines)
	if issues == nil {
		issues = []custom_error.ValidationError{}
	}
	return &Preview{Lines: reconciled, Issues: issues}, nil
}

func stageAction(stage string) metadata.Action {
	if stage == models.TransferStageLogistica {
		return metadata.ActionApproveLogistics
	}
	return metadata.ActionApproveWarehouse
}

// Approve creates one transfer request per source warehouse with one line per
// non-zero item, then moves the requerimiento to the next stage. The whole
// sequence runs as a saga: a failure deletes what was already created.
func (s *TransferService) Approve(ctx context.Context, st *store.Store, userID, requerimientoID string, req models.TransferRequest) (*models.TransferResult, error) {
	action := stageAction(req.Stage)

	current, err := s.requerimientos.Get(ctx, st, requerimientoID)
	if err != nil {
		return nil, err
	}
	if _, err := metadata.Transition(metadata.EstadoAtencion(current.EstadoAtencion), action); err != nil {
		return nil, err
	}

	stock, err := s.gw.ListRecursosConStock(ctx, requerimientoID)
	if err != nil {
		return nil, err
	}
	reconciled, issues := Reconcile(stock, req.Lines)
	if len(issues) > 0 {
		return nil, &StockError{Reasons: issues}
	}

	result := &models.TransferResult{Lines: reconciled, Solicitudes: []models.SolicitudAlmacen{}}
	pre := req.Stage == models.TransferStageLogistica
	tx := saga.New("approve_transfer", s.journal, s.logger)

	for _, almacenID := range sourceAlmacenes(reconciled) {
		almacenID := almacenID
		solicitud := &models.SolicitudAlmacen{}

		tx.AddStep(saga.Step{
			Name: "solicitud " + almacenID,
			Do: func(ctx context.Context) error {
				created, err := s.gw.AddSolicitudAlmacen(ctx, models.SolicitudAlmacen{
					RequerimientoID:  requerimientoID,
					AlmacenOrigenID:  almacenID,
					AlmacenDestinoID: req.AlmacenDestinoID,
					UsuarioID:        userID,
					Pre:              pre,
				})
				if err != nil {
					return err
				}
				*solicitud = *created
				result.Solicitudes = append(result.Solicitudes, *created)
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.gw.DeleteSolicitudAlmacen(ctx, solicitud.ID, pre)
			},
		})

		for _, line := range reconciled {
			q, ok := line.Quantities[almacenID]
			if !ok {
				continue
			}
			line := line
			var createdID string

			tx.AddStep(saga.Step{
				Name: fmt.Sprintf("linea %s/%s", almacenID, line.RecursoID),
				Do: func(ctx context.Context) error {
					created, err := s.gw.AddSolicitudRecursoAlmacen(ctx, models.SolicitudRecursoAlmacen{
						SolicitudAlmacenID: solicitud.ID,
						RecursoID:          line.RecursoID,
						Cantidad:           q,
					})
					if err != nil {
						return err
					}
					createdID = created.ID
					return nil
				},
				Undo: func(ctx context.Context) error {
					return s.gw.DeleteSolicitudRecursoAlmacen(ctx, createdID)
				},
			})
		}
	}

	tx.AddStep(saga.Step{
		Name: "transition " + string(action),
		Do: func(ctx context.Context) error {
			updated, err := s.requerimientos.Transition(ctx, st, requerimientoID, models.TransitionRequest{
				Action:  string(action),
				Version: &current.Version,
			})
			if err != nil {
				return err
			}
			result.Estado = updated.EstadoAtencion
			return nil
		},
	})

	if err := tx.Run(ctx); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, "transfer_approved", map[string]interface{}{
		"stage":              req.Stage,
		"almacen_destino_id": req.AlmacenDestinoID,
		"solicitudes":        len(result.Solicitudes),
		"saga_id":            tx.ID,
	}, current)

	s.logger.Info("Transfer approved",
		zap.String("requerimiento_id", requerimientoID),
		zap.String("stage", req.Stage),
		zap.Int("solicitudes", len(result.Solicitudes)),
	)

	return result, nil
}

func sourceAlmacenes(lines []models.ReconciledLine) []string {
	seen := map[string]bool{}
	var ids []string
	for _, line := range lines {
		for almacenID := range line.Quantities {
			if !seen[almacenID] {
				seen[almacenID] = true
				ids = append(ids, almacenID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
