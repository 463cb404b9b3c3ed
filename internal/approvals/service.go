package approvals

import (
	"context"
	"encoding/json"
	"fmt"

	"procurement/internal/store"
	"procurement/pkg/auditlog"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/metadata"
	"procurement/pkg/models"
	"procurement/pkg/roles"

	"go.uber.org/zap"
)

type Gateway interface {
	ListAprobaciones(ctx context.Context, requerimientoID string) (json.RawMessage, error)
	AddAprobacion(ctx context.Context, a models.Aprobacion) (*models.Aprobacion, error)
	UpdateAprobacion(ctx context.Context, id, estado, comentario string) (*models.Aprobacion, error)
	DeleteAprobacion(ctx context.Context, id string) error
	ListUsuarios(ctx context.Context) ([]models.Usuario, error)
}

type ApprovalService struct {
	gw     Gateway
	audit  auditlog.Recorder
	logger *zap.Logger
}

func NewApprovalService(gw Gateway, audit auditlog.Recorder, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{gw: gw, audit: audit, logger: logger}
}

// List refreshes the approvals of one request in the session store.
func (s *ApprovalService) List(ctx context.Context, st *store.Store, requerimientoID string) ([]models.Aprobacion, error) {
	snapshot, err := st.Aprobaciones(requerimientoID).Load(ctx, func(ctx context.Context) ([]models.Aprobacion, error) {
		raw, err := s.gw.ListAprobaciones(ctx, requerimientoID)
		if err != nil {
			return nil, err
		}
		return Flatten(raw)
	})
	if err != nil {
		return nil, err
	}

	return snapshot.Items, nil
}

type Pools struct {
	Supervisores []models.Usuario `json:"supervisores"`
	Gerentes     []models.Usuario `json:"gerentes"`
}

func (s *ApprovalService) Pools(ctx context.Context, st *store.Store) (*Pools, error) {
	snapshot, err := st.Usuarios.Load(ctx, s.gw.ListUsuarios)
	if err != nil {
		return nil, err
	}

	return &Pools{
		Supervisores: SupervisorPool(snapshot.Items),
		Gerentes:     ManagerPool(snapshot.Items),
	}, nil
}

// Assign creates one pending approval record. Duplicates are not checked.
func (s *ApprovalService) Assign(ctx context.Context, st *store.Store, requerimientoID, usuarioID string, rank int) (*models.Aprobacion, error) {
	gerarquia, err := roles.NewGerarquia(rank)
	if err != nil {
		return nil, &custom_error.ValidationError{Message: err.Error(), Property: "gerarquia"}
	}

	created, err := s.gw.AddAprobacion(ctx, models.Aprobacion{
		RequerimientoID:     requerimientoID,
		UsuarioID:           usuarioID,
		GerarquiaAprobacion: int(gerarquia),
		EstadoAprobacion:    string(metadata.ApprovalPending),
	})
	if err != nil {
		return nil, err
	}

	st.Aprobaciones(requerimientoID).Upsert(*created)
	s.audit.Log(ctx, "assign_approver", map[string]interface{}{
		"requerimiento_id": requerimientoID,
		"usuario_id":       usuarioID,
		"gerarquia":        gerarquia.String(),
	}, created)

	return created, nil
}

func (s *ApprovalService) Unassign(ctx context.Context, st *store.Store, requerimientoID, aprobacionID string) error {
	if err := s.gw.DeleteAprobacion(ctx, aprobacionID); err != nil {
		return err
	}

	st.Aprobaciones(requerimientoID).Remove(aprobacionID)
	s.audit.Log(ctx, "unassign_approver", map[string]interface{}{
		"requerimiento_id": requerimientoID,
	}, &models.Aprobacion{ID: aprobacionID})

	return nil
}

// AssignMany assigns supervisors first, then managers, one call at each. The
// calls are independent: on failure the created records are kept and the
// error lists what went through.
func (s *ApprovalService) AssignMany(ctx context.Context, st *store.Store, requerimientoID string, req models.AssignApproversRequest) ([]models.Aprobacion, error) {
	type assignment struct {
		usuarioID string
		rank      roles.Gerarquia
	}

	var plan []assignment
	for _, id := range req.Supervisores {
		plan = append(plan, assignment{usuarioID: id, rank: roles.Supervisor})
	}
	for _, id := range req.Gerentes {
		plan = append(plan, assignment{usuarioID: id, rank: roles.Gerente})
	}

	created := []models.Aprobacion{}
	completed := []string{}
	for _, a := range plan {
		label := fmt.Sprintf("%s %s", a.rank, a.usuarioID)
		aprobacion, err := s.Assign(ctx, st, requerimientoID, a.usuarioID, int(a.rank))
		if err != nil {
			s.logger.Warn("Approver assignment stopped",
				zap.String("requerimiento_id", requerimientoID),
				zap.Strings("completed", completed),
				zap.String("failed", label),
				zap.Error(err),
			)
			return created, &custom_error.PartialFailureError{
				Operation: "assign approvers",
				Completed: completed,
				Failed:    label,
				Err:       err,
			}
		}
		created = append(created, *aprobacion)
		completed = append(completed, label)
	}

	return created, nil
}

// Decide records the decision of the approver who owns the record.
func (s *ApprovalService) Decide(ctx context.Context, st *store.Store, requerimientoID, aprobacionID, usuarioID string, req models.DecisionRequest) (*models.Aprobacion, error) {
	current, err := s.List(ctx, st, requerimientoID)
	if err != nil {
		return nil, err
	}

	var target *models.Aprobacion
	for i := range current {
		if current[i].ID == aprobacionID {
			target = &current[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("aprobacion %s: %w", aprobacionID, custom_error.ErrNotFound)
	}
	if target.UsuarioID != usuarioID {
		return nil, fmt.Errorf("aprobacion %s belongs to another user: %w", aprobacionID, custom_error.ErrForbidden)
	}
	if target.EstadoAprobacion != string(metadata.ApprovalPending) {
		return nil, fmt.Errorf("%w: aprobacion %s is already %s", custom_error.ErrInvalidTransition, aprobacionID, target.EstadoAprobacion)
	}

	updated, err := s.gw.UpdateAprobacion(ctx, aprobacionID, req.Estado, req.Comentario)
	if err != nil {
		return nil, err
	}

	st.Aprobaciones(requerimientoID).Upsert(*updated)
	s.audit.Log(ctx, "decide_approval", map[string]interface{}{
		"requerimiento_id": requerimientoID,
		"estado":           req.Estado,
		"comentario":       req.Comentario,
	}, updated)

	return updated, nil
}
