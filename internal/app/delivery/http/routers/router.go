package routers

import (
	"fmt"
	"net/http"
	"time"

	"carealert-service/internal/app/config"
	"carealert-service/internal/app/delivery/http/controllers"
	"carealert-service/internal/app/delivery/http/middlewares"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	authController *controllers.AuthController,
	dashboardController *controllers.DashboardController,
	alertController *controllers.AlertController,
) {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	// Rate limiting middleware using httprate
	rateLimiter := httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second)
	router.Use(rateLimiter)

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(middlewares.Log))
	router.Use(middlewares.ErrorHandler)

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.App.EndpointPrefix)
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			attachPublicRoutes(r, internalConfig, middlewares, authController)
			attachProtectedRoutes(r, middlewares, authController, dashboardController)
			attachAlertRoutes(r, middlewares, alertController)
		})
	})
}

func attachPublicRoutes(r chi.Router, internalConfig *config.InternalConfig, mw *middlewares.Middlewares, authController *controllers.AuthController) {
	r.Group(func(r chi.Router) {
		r.Use(mw.PublicRoute)

		r.Get(constvars.RouteHome, func(w http.ResponseWriter, req *http.Request) {
			utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseSuccess, map[string]string{
				"service": "carealert",
				"version": internalConfig.App.Version,
			})
		})
		r.Post(constvars.RouteLogin, authController.Login)
		r.Post("/signup/{role}", authController.Signup)
	})
}

func attachProtectedRoutes(r chi.Router, mw *middlewares.Middlewares, authController *controllers.AuthController, dashboardController *controllers.DashboardController) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RoleDashboard)
		r.Get("/dashboard/{role}", dashboardController.GetDashboard)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.ProtectedRoute)
		r.Get(constvars.RouteSettings, dashboardController.GetSettings)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Post("/logout", authController.Logout)
	})
}

func attachAlertRoutes(r chi.Router, mw *middlewares.Middlewares, alertController *controllers.AlertController) {
	r.Route("/patients/{patientID}/alerts", func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Get("/", alertController.GetAlerts)
		r.Get("/stream", alertController.StreamAlerts)
	})
}
