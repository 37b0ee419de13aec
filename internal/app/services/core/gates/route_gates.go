package gates

import (
	"fmt"

	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
)

type DecisionKind int

const (
	DecisionPermit DecisionKind = iota
	DecisionRedirect
	DecisionWait
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionPermit:
		return "permit"
	case DecisionRedirect:
		return "redirect"
	case DecisionWait:
		return "wait"
	}
	return "unknown"
}

// Decision is the outcome of evaluating one navigation attempt. Target is set
// only when Kind is DecisionRedirect.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Gate evaluates a session state against a destination. Evaluation is pure:
// no gate ever mutates session state or performs I/O, so the same state
// always yields the same decision.
type Gate interface {
	Evaluate(state models.SessionState) Decision
}

// PublicGate fronts destinations that only make sense while signed out, such
// as the landing, login and signup pages. A resolved session is bounced to
// its own dashboard instead.
type PublicGate struct{}

func NewPublicGate() Gate {
	return PublicGate{}
}

func (g PublicGate) Evaluate(state models.SessionState) Decision {
	switch state.Status {
	case models.SessionLoading:
		return Decision{Kind: DecisionWait}
	case models.SessionResolved:
		return Decision{Kind: DecisionRedirect, Target: DashboardPath(state.Session.Role)}
	default:
		return Decision{Kind: DecisionPermit}
	}
}

// ProtectedGate fronts destinations that require a resolved session.
// RequiredRole narrows access to one role's dashboard; empty admits any
// resolved role. A role mismatch redirects to the session's own dashboard,
// never to the requested one.
type ProtectedGate struct {
	RequiredRole string
}

func NewProtectedGate(requiredRole string) Gate {
	return ProtectedGate{RequiredRole: requiredRole}
}

func (g ProtectedGate) Evaluate(state models.SessionState) Decision {
	switch state.Status {
	case models.SessionLoading:
		return Decision{Kind: DecisionWait}
	case models.SessionResolved:
		if g.RequiredRole != "" && g.RequiredRole != state.Session.Role {
			return Decision{Kind: DecisionRedirect, Target: DashboardPath(state.Session.Role)}
		}
		return Decision{Kind: DecisionPermit}
	default:
		return Decision{Kind: DecisionRedirect, Target: constvars.RouteLogin}
	}
}

// DashboardPath maps a role to its dashboard destination.
func DashboardPath(role string) string {
	return fmt.Sprintf(constvars.RouteDashboardFormat, role)
}
