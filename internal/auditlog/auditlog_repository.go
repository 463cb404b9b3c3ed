package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"procurement/internal/repository"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type AuditLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AuditLogRepository {
	return &AuditLogRepository{repository: r}
}

func (r *AuditLogRepository) PersistLog(ctx context.Context, auditlog models.AuditLog, auditLogData interface{}) error {
	dataJSON, err := json.Marshal(auditLogData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	record := goqu.Record{
		"resource_id":   auditlog.ResourceID,
		"resource_type": auditlog.ResourceType,
		"action":        auditlog.Action,
		"data":          string(dataJSON),
	}
	if auditlog.UserID != nil {
		record["user_id"] = *auditlog.UserID
	}

	_, err = r.repository.GoquDBWrapper.Insert("audit_logs").Rows(record).Executor().ExecContext(ctx)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return custom_error.WrapDBError(pqErr.Message, string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetLogs returns entries matching the given conditions, newest first.
func (r *AuditLogRepository) GetLogs(ctx context.Context, conditions repository.QueryBuilder) ([]models.AuditLog, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("audit_logs").As("a")).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.resource_id").As("resource_id"),
			goqu.I("a.resource_type").As("resource_type"),
			goqu.I("a.action").As("action"),
			goqu.I("a.data").As("data"),
			goqu.I("a.created_at").As("created_at"),
			goqu.I("a.user_id").As("user_id"),
		).
		Where(conditions.BuildConditions(map[string]string{
			"resource_id":   "a.resource_id",
			"resource_type": "a.resource_type",
			"action":        "a.action",
			"user_id":       "a.user_id",
			"created_at":    "a.created_at",
		})).
		Order(goqu.I("a.created_at").Desc(), goqu.I("a.id").Desc())

	limit, offset := conditions.Page()
	query = query.Limit(limit).Offset(offset)

	rows, err := query.Executor().QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	defer rows.Close()

	auditLogs := []models.AuditLog{}
	for rows.Next() {
		var log models.AuditLog
		if err := rows.Scan(
			&log.ID,
			&log.ResourceID,
			&log.ResourceType,
			&log.Action,
			&log.DataRaw,
			&log.CreatedAt,
			&log.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		log.LoadFromDB()
		auditLogs = append(auditLogs, log)
	}

	return auditLogs, rows.Err()
}

func (r *AuditLogRepository) GetResourceLog(ctx context.Context, resourceID, resourceType string) ([]models.AuditLog, error) {
	conditions := repository.NewQueryBuilder()
	conditions.AddCondition("resource_id", resourceID)
	conditions.AddCondition("resource_type", resourceType)
	conditions.SetPage(repository.MaxLimit, 0)

	return r.GetLogs(ctx, conditions)
}
