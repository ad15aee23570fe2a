package responses

// RequestIDHeader carries the request id assigned by the request-id middleware.
const RequestIDHeader = "X-Request-Id"

// SuccessEnvelope wraps every successful JSON payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing part of a failed request. RequestID lets a
// caller quote the failure back to operators.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
