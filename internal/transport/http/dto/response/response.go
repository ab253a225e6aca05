package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse - ответ с ошибкой; Fields заполняется для ошибок формы и валидации
type ErrorResponse struct {
	Status  string            `json:"status"`
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func Failure(code, details string, fields map[string]string) ErrorResponse {
	if len(fields) == 0 {
		fields = nil
	}
	return ErrorResponse{
		Status:  "error",
		Error:   code,
		Details: details,
		Fields:  fields,
	}
}
