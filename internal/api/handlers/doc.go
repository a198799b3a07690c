package handlers

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status  string `json:"status" example:"ok"`
	Session string `json:"session,omitempty" example:"authenticated"`
}
