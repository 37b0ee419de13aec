package constvars

const (
	LoggingRequestIDKey  = "request_id"
	LoggingSessionIDKey  = "session_id"
	LoggingIdentityIDKey = "identity_id"
	LoggingPatientIDKey  = "patient_id"
	LoggingActorIDKey    = "actor_id"
	LoggingActionKey     = "action"
	LoggingRoleKey       = "role"
	LoggingEmailKey      = "email"
	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"
)
