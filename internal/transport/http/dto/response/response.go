package response

// The wire envelopes are deliberately thin: reads and creates answer
// {"data": ...}, a successful update answers {"message": ...}, and every
// failure answers {"error": ...} carrying the backend's message string.

type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func Data(data interface{}) Response {
	return Response{Data: data}
}

func Message(msg string) Response {
	return Response{Message: msg}
}

func Error(err string) ErrorResponse {
	return ErrorResponse{Error: err}
}
