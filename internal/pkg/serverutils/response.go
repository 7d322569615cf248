package serverutils

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type APIError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type APIErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

func SuccessResponse[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) APIErrorResponse {
	return APIErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func ErrorResponseWithDetails(code int, message string, details interface{}) APIErrorResponse {
	return APIErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
