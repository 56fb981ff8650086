package models

type MessageResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

type ValidationResponse struct {
	StatusCode int         `json:"status_code"`
	Errors     interface{} `json:"errors"`
}

// DataResponse wraps successful payloads. Source reports which backend
// served the request ("remote" or "cache") so clients can tell degraded
// reads from healthy ones.
type DataResponse struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Source     string      `json:"source,omitempty"`
	Data       interface{} `json:"data"`
}

func NewMessageResponse(statusCode int, message string) MessageResponse {
	return MessageResponse{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewValidationResponse(statusCode int, errors interface{}) ValidationResponse {
	return ValidationResponse{
		StatusCode: statusCode,
		Errors:     errors,
	}
}

func NewDataResponse(statusCode int, message string, source string, data interface{}) DataResponse {
	return DataResponse{
		StatusCode: statusCode,
		Message:    message,
		Source:     source,
		Data:       data,
	}
}
