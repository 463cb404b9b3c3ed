package container

import (
	"context"
	"database/sql"
	"time"

	auditLogRepo "procurement/internal/auditlog"
	"procurement/internal/approvals"
	"procurement/internal/core/config"
	"procurement/internal/export"
	"procurement/internal/gateway"
	"procurement/internal/idempotency"
	"procurement/internal/middleware"
	"procurement/internal/purchasing"
	"procurement/internal/rate_limiter"
	"procurement/internal/repository"
	"procurement/internal/requerimientos"
	"procurement/internal/resources"
	"procurement/internal/saga"
	"procurement/internal/transfers"
	"procurement/pkg/auditlog"
	"procurement/pkg/security"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyLockTTL = time.Minute

type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Gateway     *gateway.Client
	Repository  *repository.Repository
	AuditLog    auditlog.Recorder
	Registry    *security.Registry
	Issuer      *security.TokenIssuer
	RateLimiter *rate_limiter.RateLimiter
	Idempotency *idempotency.Store
	Health      *middleware.Health

	LoginHandler         *security.LoginHandler
	RequerimientoHandler *requerimientos.RequerimientoHandler
	ApprovalHandler      *approvals.ApprovalHandler
	TransferHandler      *transfers.TransferHandler
	PurchasingHandler    *purchasing.PurchasingHandler
	CatalogHandler       *resources.CatalogHandler
	ExportHandler        *export.ExportHandler
	AuditLogHandler      *auditLogRepo.AuditLogHandler

	RequerimientoService *requerimientos.RequerimientoService
}

// NewAppContainer wires every component. db and rdb are optional. Without a
// database the audit log and saga journal are no-ops and the audit feed is
// not served; without redis the idempotency middleware is not installed.
func NewAppContainer(cfg *config.Config, db *sql.DB, rdb *redis.Client, logger *zap.Logger) *Container {
	gw := gateway.NewClient(cfg.GraphQLURL, cfg.RequestTimeout, logger)
	health := middleware.NewHealth(Version)

	var (
		repo    *repository.Repository
		audit   auditlog.Recorder = auditlog.Nop{}
		journal saga.Journal      = saga.NopJournal{}
		history requerimientos.HistoryReader
		feed    *auditLogRepo.AuditLogHandler
	)
	if db != nil {
		repo = repository.NewRepository(db)
		auditRepository := auditLogRepo.NewRepository(repo)
		audit = auditlog.NewAuditLog(auditRepository, logger)
		journal = saga.NewJournalRepository(repo)
		history = auditRepository
		feed = auditLogRepo.NewAuditLogHandler(auditRepository, logger)
		health.AddProbe("postgres", db.PingContext)
	}

	var idem *idempotency.Store
	if rdb != nil {
		idem = idempotency.NewStore(rdb, idempotencyLockTTL, cfg.IdempotencyTTL)
		health.AddProbe("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	registry := security.NewRegistry(cfg.SessionTTL)
	issuer := security.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	limiter := rate_limiter.NewRateLimiter(cfg.LoginLimit, cfg.LoginWindow)

	approvalService := approvals.NewApprovalService(gw, audit, logger)
	requerimientoService := requerimientos.NewRequerimientoService(gw, approvalService, history, audit, logger)
	transferService := transfers.NewTransferService(gw, requerimientoService, journal, audit, logger)
	purchasingService := purchasing.NewPurchasingService(gw, journal, audit, logger)
	catalogService := resources.NewCatalogService(gw, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Gateway:     gw,
		Repository:  repo,
		AuditLog:    audit,
		Registry:    registry,
		Issuer:      issuer,
		RateLimiter: limiter,
		Idempotency: idem,
		Health:      health,

		LoginHandler:         security.NewLoginHandler(gw, issuer, registry, limiter, logger),
		RequerimientoHandler: requerimientos.NewRequerimientoHandler(requerimientoService, logger),
		ApprovalHandler:      approvals.NewApprovalHandler(approvalService, logger),
		TransferHandler:      transfers.NewTransferHandler(transferService, logger),
		PurchasingHandler:    purchasing.NewPurchasingHandler(purchasingService, logger),
		CatalogHandler:       resources.NewCatalogHandler(catalogService, logger),
		ExportHandler:        export.NewExportHandler(logger),
		AuditLogHandler:      feed,

		RequerimientoService: requerimientoService,
	}
}

// Close releases background resources owned by the container.
func (c *Container) Close() {
	c.RateLimiter.Close()
	c.Registry.Stop()
}

var Version = "dev"
