package audit

import (
	"context"
	"fmt"
	"time"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// auditUsecase appends compliance events. The actor id always comes from the
// resolved session at record time; callers cannot supply one. Recording is
// best effort: a failed write must never break the operation being audited,
// so failures are logged and swallowed.
type auditUsecase struct {
	AuditQueue         contracts.AuditQueue
	AuditLogRepository contracts.AuditLogRepository
	SessionService     contracts.SessionService
	Storage            contracts.Storage
	Log                *zap.Logger

	archiveObjectPrefix string
}

func NewAuditUsecase(
	auditQueue contracts.AuditQueue,
	auditLogRepository contracts.AuditLogRepository,
	sessionService contracts.SessionService,
	storage contracts.Storage,
	logger *zap.Logger,
	archiveObjectPrefix string,
) contracts.AuditUsecase {
	return &auditUsecase{
		AuditQueue:          auditQueue,
		AuditLogRepository:  auditLogRepository,
		SessionService:      sessionService,
		Storage:             storage,
		Log:                 logger,
		archiveObjectPrefix: archiveObjectPrefix,
	}
}

func (uc *auditUsecase) Record(ctx context.Context, action string, details map[string]interface{}) {
	session := uc.SessionService.CurrentSession(ctx)
	if session == nil {
		uc.Log.Warn("AuditUsecase.Record skipped, no resolved session",
			zap.String(constvars.LoggingActionKey, action),
		)
		return
	}

	merged := make(map[string]interface{}, len(details)+1)
	for key, value := range details {
		merged[key] = value
	}
	if _, ok := merged[constvars.AuditDetailEmailKey]; !ok {
		merged[constvars.AuditDetailEmailKey] = session.Email
	}

	entry := &models.AuditLogEntry{
		Action:  action,
		ActorID: session.IdentityID,
		Details: merged,
	}

	if err := uc.AuditQueue.Enqueue(ctx, entry); err != nil {
		uc.Log.Error("AuditUsecase.Record enqueue failed, falling back to direct insert",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingActionKey, action),
			zap.Error(err),
		)
		if err := uc.AuditLogRepository.Insert(ctx, entry); err != nil {
			uc.Log.Error("AuditUsecase.Record direct insert failed, entry dropped",
				zap.String(constvars.LoggingActionKey, action),
				zap.String(constvars.LoggingActorIDKey, entry.ActorID),
				zap.Error(err),
			)
		}
	}
}

func (uc *auditUsecase) RecordDeviceAction(ctx context.Context, action, deviceName string) {
	uc.Record(ctx, action, map[string]interface{}{
		constvars.AuditDetailDeviceKey: deviceName,
	})
}

func (uc *auditUsecase) RecordDataAccess(ctx context.Context, resource string) {
	uc.Record(ctx, constvars.AuditActionDataAccess, map[string]interface{}{
		constvars.AuditDetailResourceKey: resource,
	})
}

func (uc *auditUsecase) RecordError(ctx context.Context, operation string, err error) {
	uc.Record(ctx, constvars.AuditActionErrorOccurred, map[string]interface{}{
		constvars.AuditDetailOperationKey: operation,
		constvars.AuditDetailErrorKey:     err.Error(),
	})
}

// ArchiveBefore exports every entry older than the cutoff to object storage
// and removes it from the hot collection. Entries are deleted only after the
// archive object is durably stored.
func (uc *auditUsecase) ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("AuditUsecase.ArchiveBefore called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Time("cutoff", cutoff),
	)

	entries, err := uc.AuditLogRepository.FindBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return 0, err
	}

	objectName := fmt.Sprintf("%s/entries-before-%s.json", uc.archiveObjectPrefix, cutoff.UTC().Format("2006-01-02T15-04-05Z"))
	if err := uc.Storage.PutObject(ctx, objectName, data, constvars.MIMEApplicationJSON); err != nil {
		return 0, err
	}

	if err := uc.AuditLogRepository.DeleteBefore(ctx, cutoff); err != nil {
		return 0, err
	}

	uc.Record(ctx, constvars.AuditActionArchiveExport, map[string]interface{}{
		constvars.AuditDetailResourceKey: objectName,
	})

	uc.Log.Info("AuditUsecase.ArchiveBefore succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("archived_count", len(entries)),
	)
	return len(entries), nil
}
