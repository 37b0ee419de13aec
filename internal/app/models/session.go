package models

import "time"

// Principal is what the identity provider reports on sign-in. It carries no
// role; the role is only known after the profile lookup resolves.
type Principal struct {
	IdentityID string `json:"identityId"`
	Email      string `json:"email"`
}

// Session is the resolved, role-bearing representation of the signed-in
// principal. A Session with a role implies a successful profile lookup for
// that exact identity id.
type Session struct {
	SessionID  string    `json:"sessionId"`
	IdentityID string    `json:"identityId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	PatientID  string    `json:"patientId,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type SessionStatus int

const (
	SessionLoading SessionStatus = iota
	SessionSignedOut
	SessionResolved
	SessionInvalid
)

func (s SessionStatus) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionSignedOut:
		return "signed_out"
	case SessionResolved:
		return "resolved"
	case SessionInvalid:
		return "invalid"
	}
	return "unknown"
}

// SessionState is what the resolver publishes. Session is non-nil only when
// Status is SessionResolved; Reason is set only when Status is SessionInvalid.
type SessionState struct {
	Status  SessionStatus
	Session *Session
	Reason  string
}
