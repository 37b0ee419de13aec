package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Auth messages
	SignupSuccess = "user created successfully"
	LoginSuccess  = "successfully login"
	LogoutSuccess = "successfully logout"

	// Dashboard / settings messages
	GetDashboardSuccess = "get dashboard successfully"
	GetSettingsSuccess  = "get settings successfully"
	GetAlertsSuccess    = "get alerts successfully"
)
