package contracts

import (
	"context"
	"time"

	"carealert-service/internal/app/models"
)

// AuditUsecase appends compliance events, best effort. Record never returns
// an error: failures go to the diagnostic log and are swallowed.
type AuditUsecase interface {
	Record(ctx context.Context, action string, details map[string]interface{})
	RecordDeviceAction(ctx context.Context, action, deviceName string)
	RecordDataAccess(ctx context.Context, resource string)
	RecordError(ctx context.Context, operation string, err error)
	ArchiveBefore(ctx context.Context, cutoff time.Time) (archived int, err error)
}

type AuditLogRepository interface {
	Insert(ctx context.Context, entry *models.AuditLogEntry) error
	FindByActorID(ctx context.Context, actorID string, limit int64) ([]models.AuditLogEntry, error)
	FindBefore(ctx context.Context, cutoff time.Time) ([]models.AuditLogEntry, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) error
}

// AuditQueue decouples audit emission from persistence.
type AuditQueue interface {
	Enqueue(ctx context.Context, entry *models.AuditLogEntry) error
}
