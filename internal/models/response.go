package models

// ErrorResponse represents error response format
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// VerifyPhoneResponse reports the outcome of the access-verification flow.
type VerifyPhoneResponse struct {
	Allowed        bool    `json:"allowed"`
	CodeSent       bool    `json:"code_sent"`
	DistanceMeters float64 `json:"distance_meters"`
	Reason         string  `json:"reason,omitempty"`
}

// ConfirmCodeResponse reports whether the submitted code matched.
type ConfirmCodeResponse struct {
	Verified bool `json:"verified"`
}

// UploadResponse returns the stored object's key and public URL.
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
