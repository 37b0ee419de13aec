package middlewares

import (
	"net/http"

	"carealert-service/internal/app/services/core/gates"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Gate adapters translate the pure gate decisions into HTTP. Wait never has a
// destination yet, so it is surfaced as 503 with a retry hint rather than a
// redirect; the gate machine forbids deciding a redirect before resolution.

func (m *Middlewares) PublicRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ctx := m.sessionState(r)
		m.applyDecision(w, r.WithContext(ctx), next, gates.NewPublicGate().Evaluate(state))
	})
}

// ProtectedRoute admits any resolved session.
func (m *Middlewares) ProtectedRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ctx := m.sessionState(r)
		m.applyDecision(w, r.WithContext(ctx), next, gates.NewProtectedGate("").Evaluate(state))
	})
}

// RoleDashboard narrows a protected route to the dashboard role named in the
// URL. A mismatched session is redirected to its own dashboard.
func (m *Middlewares) RoleDashboard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ctx := m.sessionState(r)
		requiredRole := chi.URLParam(r, "role")
		m.applyDecision(w, r.WithContext(ctx), next, gates.NewProtectedGate(requiredRole).Evaluate(state))
	})
}

func (m *Middlewares) applyDecision(w http.ResponseWriter, r *http.Request, next http.Handler, decision gates.Decision) {
	switch decision.Kind {
	case gates.DecisionPermit:
		next.ServeHTTP(w, r)
	case gates.DecisionRedirect:
		m.Log.Debug("gate redirect",
			zap.String("target", decision.Target),
			zap.String("endpoint", r.URL.Path),
		)
		http.Redirect(w, r, decision.Target, http.StatusSeeOther)
	default:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "session resolution in progress", http.StatusServiceUnavailable)
	}
}
