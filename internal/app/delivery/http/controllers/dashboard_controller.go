package controllers

import (
	"context"
	"net/http"
	"time"

	"carealert-service/internal/app/services/core/users"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// DashboardController serves the role dashboards and the settings page. The
// route gates in front of it already decided that the session may be here;
// the controller only renders profile data.
type DashboardController struct {
	Log         *zap.Logger
	UserUsecase users.UserUsecase
}

func NewDashboardController(logger *zap.Logger, userUsecase users.UserUsecase) *DashboardController {
	return &DashboardController{
		Log:         logger,
		UserUsecase: userUsecase,
	}
}

func (ctrl *DashboardController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.UserUsecase.GetProfile(ctx)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetDashboardSuccess, response)
}

func (ctrl *DashboardController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.UserUsecase.GetProfile(ctx)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetSettingsSuccess, response)
}
