package auditlog

import (
	"context"

	"procurement/pkg/models"

	"go.uber.org/zap"
)

type Auditable interface {
	CreateLogView() models.AuditLog
}

type Persister interface {
	PersistLog(ctx context.Context, auditlog models.AuditLog, data interface{}) error
}

// Recorder is what services depend on.
type Recorder interface {
	Log(ctx context.Context, action string, data interface{}, item Auditable)
}

type Auditlog struct {
	r      Persister
	logger *zap.Logger
}

func NewAuditLog(r Persister, logger *zap.Logger) *Auditlog {
	return &Auditlog{r: r, logger: logger}
}

type userKey struct{}

// WithUser marks ctx with the acting user; entries logged with it carry the id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func UserFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}

// Log persists the entry. Failures are logged and swallowed; an audit write
// never fails the workflow action it describes.
func (a *Auditlog) Log(ctx context.Context, action string, data interface{}, item Auditable) {
	auditLog := item.CreateLogView()
	auditLog.Action = action
	if userID, ok := UserFrom(ctx); ok {
		auditLog.UserID = &userID
	}

	if err := a.r.PersistLog(context.WithoutCancel(ctx), auditLog, data); err != nil {
		a.logger.Error("Unable to create AuditLog entry",
			zap.String("resource_id", auditLog.ResourceID),
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}

	a.logger.Debug("Created AuditLog entry", zap.String("resource_id", auditLog.ResourceID), zap.String("action", action))
}

// Nop discards entries; used when no database is configured.
type Nop struct{}

func (Nop) Log(context.Context, string, interface{}, Auditable) {}
