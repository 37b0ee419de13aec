package alerts

import (
	"context"
	"errors"
	"fmt"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/dto/responses"
	"carealert-service/internal/pkg/exceptions"
)

type alertUsecase struct {
	AlertRepository          contracts.AlertRepository
	AlertSubscriptionManager contracts.AlertSubscriptionManager
	SessionService           contracts.SessionService
	AuditUsecase             contracts.AuditUsecase
}

func NewAlertUsecase(
	alertRepository contracts.AlertRepository,
	alertSubscriptionManager contracts.AlertSubscriptionManager,
	sessionService contracts.SessionService,
	auditUsecase contracts.AuditUsecase,
) AlertUsecase {
	return &alertUsecase{
		AlertRepository:          alertRepository,
		AlertSubscriptionManager: alertSubscriptionManager,
		SessionService:           sessionService,
		AuditUsecase:             auditUsecase,
	}
}

func (uc *alertUsecase) GetPatientAlerts(ctx context.Context, patientID string) (*responses.AlertSnapshot, error) {
	if err := uc.authorize(ctx, patientID); err != nil {
		return nil, err
	}

	alerts, err := uc.AlertRepository.FindByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	uc.AuditUsecase.RecordDataAccess(ctx, alertResource(patientID))

	snapshot := &responses.AlertSnapshot{
		PatientID: patientID,
		Alerts:    make([]responses.Alert, 0, len(alerts)),
	}
	for _, alert := range alerts {
		snapshot.Alerts = append(snapshot.Alerts, responses.Alert{
			ID:        alert.ID,
			PatientID: alert.PatientID,
			Fields:    alert.Fields,
		})
	}
	return snapshot, nil
}

func (uc *alertUsecase) StreamPatientAlerts(ctx context.Context, patientID string) (<-chan []models.Alert, error) {
	if err := uc.authorize(ctx, patientID); err != nil {
		return nil, err
	}

	uc.AuditUsecase.RecordDataAccess(ctx, alertResource(patientID))
	return uc.AlertSubscriptionManager.WatchAlerts(ctx, patientID)
}

func (uc *alertUsecase) CloseStream() error {
	return uc.AlertSubscriptionManager.Close()
}

// authorize enforces that a patient only ever reads their own alerts.
// Caretaker and medical sessions may read any patient's feed.
func (uc *alertUsecase) authorize(ctx context.Context, patientID string) error {
	session := uc.SessionService.CurrentSession(ctx)
	if session == nil {
		return exceptions.ErrTokenMissing(errors.New("alert access without session"))
	}
	if session.Role == constvars.RoleTypePatient && session.PatientID != patientID {
		return exceptions.WrapWithoutError(constvars.StatusForbidden, constvars.ErrClientNotAuthorized, "patient session reading another patient's alerts")
	}
	return nil
}

func alertResource(patientID string) string {
	return fmt.Sprintf("patients/%s/alerts", patientID)
}
