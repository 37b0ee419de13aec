package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_SESSION_DATA_KEY         ContextKey = "session_data"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "CRALRT_SVC_"
)

// Application roles. Every resolved session carries exactly one of these.
const (
	RoleTypePatient   = "patient"
	RoleTypeCaretaker = "caretaker"
	RoleTypeMedical   = "medical"
)

// Logical route surface.
const (
	RouteHome            = "/"
	RouteLogin           = "/login"
	RouteSignupFormat    = "/signup/%s"
	RouteDashboardFormat = "/dashboard/%s"
	RouteSettings        = "/settings"
)

const (
	MongoCollectionUsers     = "users"
	MongoCollectionAlerts    = "alerts"
	MongoCollectionAuditLogs = "auditLogs"
)

// Audit action names. Wrappers on the audit usecase standardize these so call
// sites never hand-roll action strings.
const (
	AuditActionLogin         = "user_login"
	AuditActionLogout        = "user_logout"
	AuditActionSignup        = "user_signup"
	AuditActionDeviceSync    = "device_sync"
	AuditActionDevicePair    = "device_pair"
	AuditActionDataAccess    = "data_access"
	AuditActionAlertViewed   = "alert_viewed"
	AuditActionErrorOccurred = "error_occurred"
	AuditActionArchiveExport = "audit_archive_export"
	AuditDetailEmailKey      = "email"
	AuditDetailResourceKey   = "resource"
	AuditDetailDeviceKey     = "device"
	AuditDetailErrorKey      = "error"
	AuditDetailOperationKey  = "operation"
	AuditDefaultQueryLimit   = 50
)

// Session invalidation reasons reported by the resolver.
const (
	SessionInvalidMissingProfile = "missing-profile"
	SessionInvalidBadRole        = "bad-role"
)
