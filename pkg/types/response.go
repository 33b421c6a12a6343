package types

// SuccessEnvelope wraps every successful JSON reply the gateway sends.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the error payload inside ErrorEnvelope. Details only appear
// for codes whose metadata allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed JSON reply.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
