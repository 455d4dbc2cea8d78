package types

// ErrorResponse is the body of every failed HTTP call.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
