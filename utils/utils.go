package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"clinicacrm/models"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// DecodeAndValidate decodes the request body into a structure and validates it
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
		return err
	}
	return validateStruct(w, v)
}

// DecodeRecordAndValidate reads the body once and returns it both as a
// schemaless Record for the data layer and decoded into v for validation.
func DecodeRecordAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) (models.Record, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		HandleMessageResponse(w, "could not read request body", http.StatusBadRequest)
		return nil, err
	}
	if err := json.Unmarshal(body, v); err != nil {
		HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}
	if err := validateStruct(w, v); err != nil {
		return nil, err
	}
	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}
	return rec, nil
}

func validateStruct(w http.ResponseWriter, v interface{}) error {
	if err := Validate.Struct(v); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)

		for _, e := range validationErrors {
			errorMessages[e.Field()] = e.Tag()
		}
		HandleValidationResponse(w, http.StatusBadRequest, errorMessages)
		return err
	}
	return nil
}

// HandleMessageResponse handles both success and error responses
func HandleMessageResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewMessageResponse(statusCode, message)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleValidationResponse handles validation errors response for struct validation
func HandleValidationResponse(w http.ResponseWriter, statusCode int, validationErrors interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewValidationResponse(statusCode, validationErrors)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleDataResponse handles success responses with data
func HandleDataResponse(w http.ResponseWriter, message string, source string, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewDataResponse(statusCode, message, source, data)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
