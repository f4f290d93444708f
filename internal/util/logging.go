package util

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"cookie-auth-server/internal/model/requestresponse"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ошибка кодирования ответа: %v", err)
	}
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}

// HandleValidationError : 400 с описанием ошибки по каждому полю
func HandleValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code:   http.StatusBadRequest,
			Text:   message,
			Fields: fields,
		},
	})
}
