package requerimientos

import (
	"context"
	"fmt"
	"sync"

	"procurement/internal/approvals"
	"procurement/internal/store"
	"procurement/pkg/auditlog"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/metadata"
	"procurement/pkg/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// highlightConcurrency bounds the approval lookups issued while building a board.
const highlightConcurrency = 8

type Gateway interface {
	ListRequerimientos(ctx context.Context) ([]models.Requerimiento, error)
	GetRequerimiento(ctx context.Context, id string) (*models.Requerimiento, error)
	AddRequerimiento(ctx context.Context, req models.CreateRequerimientoRequest) (*models.Requerimiento, error)
	UpdateRequerimiento(ctx context.Context, id string, req models.UpdateRequerimientoRequest) (*models.Requerimiento, error)
	ListRequerimientoRecursos(ctx context.Context, requerimientoID string) ([]models.RequerimientoRecurso, error)
	AddRequerimientoRecurso(ctx context.Context, requerimientoID string, req models.RequerimientoRecursoRequest) (*models.RequerimientoRecurso, error)
	UpdateRequerimientoRecurso(ctx context.Context, id string, req models.RequerimientoRecursoRequest) (*models.RequerimientoRecurso, error)
	DeleteRequerimientoRecurso(ctx context.Context, id string) error
	ListRecursosConStock(ctx context.Context, requerimientoID string) ([]models.RecursoConStock, error)
}

type ApprovalLister interface {
	List(ctx context.Context, st *store.Store, requerimientoID string) ([]models.Aprobacion, error)
}

type HistoryReader interface {
	GetResourceLog(ctx context.Context, resourceID, resourceType string) ([]models.AuditLog, error)
}

type RequerimientoService struct {
	gw        Gateway
	approvals ApprovalLister
	history   HistoryReader
	audit     auditlog.Recorder
	logger    *zap.Logger
}

func NewRequerimientoService(gw Gateway, approvals ApprovalLister, history HistoryReader, audit auditlog.Recorder, logger *zap.Logger) *RequerimientoService {
	return &RequerimientoService{
		gw:        gw,
		approvals: approvals,
		history:   history,
		audit:     audit,
		logger:    logger,
	}
}

func (s *RequerimientoService) List(ctx context.Context, st *store.Store) ([]models.Requerimiento, error) {
	snapshot, err := st.Requerimientos.Load(ctx, s.gw.ListRequerimientos)
	if err != nil {
		return nil, err
	}
	return snapshot.Items, nil
}

// Board reloads the requests and projects them for userID. A failed approval
// lookup only drops the highlight of that card.
func (s *RequerimientoService) Board(ctx context.Context, st *store.Store, userID, search string) (Board, error) {
	reqs, err := s.List(ctx, st)
	if err != nil {
		return Board{}, err
	}

	board := BuildBoard(reqs, search)
	highlights, err := s.highlights(ctx, st, userID, board.CardIDs())
	if err != nil {
		return Board{}, err
	}

	return board.Highlight(highlights), nil
}

func (s *RequerimientoService) highlights(ctx context.Context, st *store.Store, userID string, ids []string) (map[string]bool, error) {
	var mu sync.Mutex
	highlights := make(map[string]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(highlightConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			list, err := s.approvals.List(gctx, st, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("Unable to load approvals for card", zap.String("requerimiento_id", id), zap.Error(err))
				return nil
			}

			mu.Lock()
			highlights[id] = approvals.AwaitsDecision(list, userID)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return highlights, nil
}

func (s *RequerimientoService) Get(ctx context.Context, st *store.Store, id string) (*models.Requerimiento, error) {
	req, err := s.gw.GetRequerimiento(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Requerimientos.Upsert(*req)
	return req, nil
}

func (s *RequerimientoService) Create(ctx context.Context, st *store.Store, req models.CreateRequerimientoRequest) (*models.Requerimiento, error) {
	created, err := s.gw.AddRequerimiento(ctx, req)
	if err != nil {
		return nil, err
	}

	st.Requerimientos.Upsert(*created)
	s.audit.Log(ctx, "create", map[string]interface{}{
		"obra_id":  req.ObraID,
		"sustento": req.Sustento,
	}, created)

	return created, nil
}

// Update edits the descriptive fields of a request. The status only moves
// through Transition.
func (s *RequerimientoService) Update(ctx context.Context, st *store.Store, id string, req models.UpdateRequerimientoRequest) (*models.Requerimiento, error) {
	if req.EstadoAtencion != nil {
		return nil, &custom_error.ValidationError{Message: "status changes go through transitions", Property: "estado_atencion"}
	}

	updated, err := s.gw.UpdateRequerimiento(ctx, id, req)
	if err != nil {
		return nil, err
	}

	st.Requerimientos.Upsert(*updated)
	s.audit.Log(ctx, "update", req, updated)

	return updated, nil
}

// Transition applies action to the current status of the request and writes
// the result with the version that was read.
func (s *RequerimientoService) Transition(ctx context.Context, st *store.Store, id string, req models.TransitionRequest) (*models.Requerimiento, error) {
	current, err := s.Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, &custom_error.VersionConflictError{Resource: "requerimiento", ID: id, Version: *req.Version}
	}

	from := metadata.EstadoAtencion(current.EstadoAtencion)
	to, err := metadata.Transition(from, metadata.Action(req.Action))
	if err != nil {
		return nil, err
	}

	estado := to.String()
	updated, err := s.gw.UpdateRequerimiento(ctx, id, models.UpdateRequerimientoRequest{
		EstadoAtencion: &estado,
		Version:        current.Version,
	})
	if err != nil {
		return nil, err
	}

	st.Requerimientos.Upsert(*updated)
	s.audit.Log(ctx, req.Action, map[string]interface{}{
		"from":       from.String(),
		"to":         estado,
		"comentario": req.Comentario,
	}, updated)

	s.logger.Info("Requerimiento transitioned",
		zap.String("requerimiento_id", id),
		zap.String("from", from.String()),
		zap.String("to", estado),
	)

	return updated, nil
}

type AllowedTransitions struct {
	Estado  string            `json:"estado_atencion"`
	Version int               `json:"version"`
	Actions []metadata.Action `json:"actions"`
}

func (s *RequerimientoService) AllowedTransitions(ctx context.Context, st *store.Store, id string) (*AllowedTransitions, error) {
	current, err := s.Get(ctx, st, id)
	if err != nil {
		return nil, err
	}

	actions := metadata.AllowedActions(metadata.EstadoAtencion(current.EstadoAtencion))
	if actions == nil {
		actions = []metadata.Action{}
	}
	return &AllowedTransitions{Estado: current.EstadoAtencion, Version: current.Version, Actions: actions}, nil
}

func (s *RequerimientoService) History(ctx context.Context, id string) ([]models.AuditLog, error) {
	if s.history == nil {
		return []models.AuditLog{}, nil
	}
	return s.history.GetResourceLog(ctx, id, "requerimiento")
}

func (s *RequerimientoService) ListRecursos(ctx context.Context, st *store.Store, requerimientoID string) ([]models.RequerimientoRecurso, error) {
	snapshot, err := st.RequerimientoRecursos(requerimientoID).Load(ctx, func(ctx context.Context) ([]models.RequerimientoRecurso, error) {
		return s.gw.ListRequerimientoRecursos(ctx, requerimientoID)
	})
	if err != nil {
		return nil, err
	}
	return snapshot.Items, nil
}

func (s *RequerimientoService) RecursosConStock(ctx context.Context, requerimientoID string) ([]models.RecursoConStock, error) {
	return s.gw.ListRecursosConStock(ctx, requerimientoID)
}

func (s *RequerimientoService) AddRecurso(ctx context.Context, st *store.Store, userID, requerimientoID string, req models.RequerimientoRecursoRequest) (*models.RequerimientoRecurso, error) {
	if err := validateRecurso(req, false); err != nil {
		return nil, err
	}
	if err := s.ensureEditable(ctx, st, userID, requerimientoID); err != nil {
		return nil, err
	}

	created, err := s.gw.AddRequerimientoRecurso(ctx, requerimientoID, req)
	if err != nil {
		return nil, err
	}

	st.RequerimientoRecursos(requerimientoID).Upsert(*created)
	s.audit.Log(ctx, "add_recurso", req, created)

	return created, nil
}

// UpdateRecurso is used by the approval screens of every stage, so it does not
// check ownership.
func (s *RequerimientoService) UpdateRecurso(ctx context.Context, st *store.Store, requerimientoID, id string, req models.RequerimientoRecursoRequest) (*models.RequerimientoRecurso, error) {
	if err := validateRecurso(req, true); err != nil {
		return nil, err
	}
	if err := s.ensureLine(ctx, st, requerimientoID, id); err != nil {
		return nil, err
	}

	updated, err := s.gw.UpdateRequerimientoRecurso(ctx, id, req)
	if err != nil {
		return nil, err
	}

	st.RequerimientoRecursos(requerimientoID).Upsert(*updated)
	s.audit.Log(ctx, "update_recurso", req, updated)

	return updated, nil
}

// DeleteRecurso is only allowed to the requester while the request is still
// pending its first approval.
func (s *RequerimientoService) DeleteRecurso(ctx context.Context, st *store.Store, userID, requerimientoID, id string) error {
	if err := s.ensureEditable(ctx, st, userID, requerimientoID); err != nil {
		return err
	}
	if err := s.ensureLine(ctx, st, requerimientoID, id); err != nil {
		return err
	}
	if err := s.gw.DeleteRequerimientoRecurso(ctx, id); err != nil {
		return err
	}

	st.RequerimientoRecursos(requerimientoID).Remove(id)
	s.audit.Log(ctx, "delete_recurso", map[string]interface{}{"requerimiento_id": requerimientoID}, &models.RequerimientoRecurso{ID: id})

	return nil
}

func (s *RequerimientoService) ensureEditable(ctx context.Context, st *store.Store, userID, requerimientoID string) error {
	req, err := s.Get(ctx, st, requerimientoID)
	if err != nil {
		return err
	}
	if req.UsuarioID != userID {
		return fmt.Errorf("requerimiento %s belongs to another user: %w", requerimientoID, custom_error.ErrForbidden)
	}
	if req.EstadoAtencion != metadata.EstadoPendiente.String() {
		return fmt.Errorf("requerimiento %s is %s: %w", requerimientoID, req.EstadoAtencion, custom_error.ErrForbidden)
	}
	return nil
}

// ensureLine rejects line item ids that do not belong to requerimientoID. The
// cached lines are trusted first; a miss reloads them from upstream.
func (s *RequerimientoService) ensureLine(ctx context.Context, st *store.Store, requerimientoID, id string) error {
	lines := st.RequerimientoRecursos(requerimientoID)
	if line, ok := lines.Snapshot().Find(id); ok && belongsTo(line, requerimientoID) {
		return nil
	}

	snapshot, err := lines.Load(ctx, func(ctx context.Context) ([]models.RequerimientoRecurso, error) {
		return s.gw.ListRequerimientoRecursos(ctx, requerimientoID)
	})
	if err != nil {
		return err
	}
	if line, ok := snapshot.Find(id); ok && belongsTo(line, requerimientoID) {
		return nil
	}
	return fmt.Errorf("recurso %s is not part of requerimiento %s: %w", id, requerimientoID, custom_error.ErrNotFound)
}

func belongsTo(line models.RequerimientoRecurso, requerimientoID string) bool {
	return line.RequerimientoID == "" || line.RequerimientoID == requerimientoID
}

func validateRecurso(req models.RequerimientoRecursoRequest, allowZero bool) error {
	if req.Cantidad.IsNegative() || (!allowZero && req.Cantidad.IsZero()) {
		return &custom_error.ValidationError{Message: "must be greater than zero", Property: "cantidad"}
	}
	if req.CantidadAprobada != nil {
		if req.CantidadAprobada.IsNegative() {
			return &custom_error.ValidationError{Message: "must not be negative", Property: "cantidad_aprobada"}
		}
		if req.CantidadAprobada.GreaterThan(req.Cantidad) && !req.Cantidad.Equal(decimal.Zero) {
			return &custom_error.ValidationError{Message: "must not exceed cantidad", Property: "cantidad_aprobada"}
		}
	}
	return nil
}
