package model

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type AuthLogoutResponse struct {
	Status string `json:"status"`
}

type MeResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type PartnerIdentityResponse struct {
	Message string   `json:"message"`
	Owner   string   `json:"owner"`
	KeyName string   `json:"key_name"`
	Scopes  []string `json:"scopes"`
}

type EventAcceptedResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}
