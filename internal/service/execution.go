package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-employee-client/internal"
	"github.com/antonio-alexander/go-employee-client/internal/data"

	"github.com/go-playground/validator/v10"
)

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathId], 10, 64)
	if err != nil {
		return 0, data.ErrInvalidId
	}
	return id, nil
}

func getCorrelationId(request *http.Request) string {
	return request.Header.Get(internal.HeaderCorrelationId)
}

func errorToStatusCode(err error) int {
	var validationErrors validator.ValidationErrors

	switch {
	default:
		return http.StatusInternalServerError
	case errors.Is(err, data.ErrEmployeeNotFound),
		errors.Is(err, data.ErrEmployeeNameNotFound):
		return http.StatusNotFound
	case errors.Is(err, data.ErrInvalidId),
		errors.Is(err, data.ErrEmployeeInvalid),
		errors.As(err, &validationErrors):
		return http.StatusBadRequest
	}
}

// handleResponse writes errors as plain text with a status code derived
// from the error, strings as plain text and everything else as json
func handleResponse(writer http.ResponseWriter, statusCode int, err error, item any) {
	var bytes []byte

	if err != nil {
		writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
		writer.WriteHeader(errorToStatusCode(err))
		if _, err := writer.Write([]byte(err.Error())); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	switch v := item.(type) {
	default:
		if bytes, err = json.Marshal(item); err != nil {
			handleResponse(writer, 0, err, nil)
			return
		}
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	case string:
		bytes = []byte(v)
		writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}
