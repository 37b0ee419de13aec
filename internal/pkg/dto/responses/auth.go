package responses

type Signup struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type Login struct {
	Token         string `json:"token"`
	Role          string `json:"role"`
	DashboardPath string `json:"dashboard_path"`
}

type Profile struct {
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
}
