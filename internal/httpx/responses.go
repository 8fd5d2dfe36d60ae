package httpx

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

var statusMessages = map[int]string{
	http.StatusBadRequest:            "bad request",
	http.StatusNotFound:              "resource not found",
	http.StatusMethodNotAllowed:      "method not allowed",
	http.StatusRequestEntityTooLarge: "request entity too large",
	http.StatusUnprocessableEntity:   "unprocessable",
	http.StatusTooManyRequests:       "too many requests",
	http.StatusInternalServerError:   "internal server error",
	http.StatusServiceUnavailable:    "service unavailable",
}

// StatusMessage returns the fixed message sent with an error status.
func StatusMessage(statusCode int) string {
	if msg, ok := statusMessages[statusCode]; ok {
		return msg
	}
	return http.StatusText(statusCode)
}

// JSON writes body as a JSON document with the given status code.
func JSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// JSONSuccess writes body with status 200.
func JSONSuccess(w http.ResponseWriter, body any) {
	JSON(w, http.StatusOK, body)
}

// JSONError writes the error body for statusCode.
func JSONError(w http.ResponseWriter, statusCode int) {
	JSON(w, statusCode, ErrorResponse{
		Error:   statusCode,
		Message: StatusMessage(statusCode),
		Success: false,
	})
}

// NotFound replies 404 with the JSON error body.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	JSONError(w, http.StatusNotFound)
}

// Unmarshal decodes data with the same JSON configuration used for responses.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
