package controllers

import (
	"context"
	"net/http"
	"time"

	"carealert-service/internal/app/services/core/alerts"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/dto/responses"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type AlertController struct {
	Log          *zap.Logger
	AlertUsecase alerts.AlertUsecase
	upgrader     websocket.Upgrader
}

func NewAlertController(logger *zap.Logger, alertUsecase alerts.AlertUsecase) *AlertController {
	return &AlertController{
		Log:          logger,
		AlertUsecase: alertUsecase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (ctrl *AlertController) GetAlerts(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.AlertUsecase.GetPatientAlerts(ctx, patientID)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAlertsSuccess, response)
}

// StreamAlerts upgrades to a websocket and forwards every snapshot the live
// subscription pushes. Each frame is the full replacement set for the
// patient, never a diff.
func (ctrl *AlertController) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots, err := ctrl.AlertUsecase.StreamPatientAlerts(ctx, patientID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	conn, err := ctrl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctrl.Log.Error("AlertController.StreamAlerts upgrade failed",
			zap.String(constvars.LoggingPatientIDKey, patientID),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	// Client closes propagate through the read pump.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for snapshot := range snapshots {
		frame := responses.AlertSnapshot{
			PatientID: patientID,
			Alerts:    make([]responses.Alert, 0, len(snapshot)),
		}
		for _, alert := range snapshot {
			frame.Alerts = append(frame.Alerts, responses.Alert{
				ID:        alert.ID,
				PatientID: alert.PatientID,
				Fields:    alert.Fields,
			})
		}
		if err := conn.WriteJSON(frame); err != nil {
			ctrl.Log.Debug("AlertController.StreamAlerts write failed, closing",
				zap.String(constvars.LoggingPatientIDKey, patientID),
				zap.Error(err),
			)
			return
		}
	}
}
