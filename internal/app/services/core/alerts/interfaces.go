package alerts

import (
	"context"

	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/dto/responses"
)

type AlertUsecase interface {
	GetPatientAlerts(ctx context.Context, patientID string) (*responses.AlertSnapshot, error)
	StreamPatientAlerts(ctx context.Context, patientID string) (<-chan []models.Alert, error)
	CloseStream() error
}
