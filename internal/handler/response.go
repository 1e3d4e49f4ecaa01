package handler

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// OperationResponse is the {success, error?} shape the queue operations
// return.
type OperationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
