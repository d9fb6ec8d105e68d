package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type CustomerListResponse struct {
	Customers []Customer `json:"customers"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Admin       Admin  `json:"admin"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Admin         *Admin `json:"admin,omitempty"`
}
