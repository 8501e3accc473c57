package models

// ExceededResponse is the 429 body returned to the client.
type ExceededResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ExceededError is the fixed error field of every 429 body.
const ExceededError = "Too many requests"
