package client

import (
	"context"
	"net/http"
)

const (
	outcomeSuccess    string = "success"
	outcomeClientData string = "client_data"
	outcomeService    string = "service"
	outcomeTransport  string = "transport"
	outcomeUnexpected string = "unexpected"
)

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// classify converts a non-success response into a typed error, the status
// code and message are logged before the error is returned
func (c *client) classify(ctx context.Context, operation string, statusCode int, body []byte) error {
	var outcome string
	var err error

	message := string(body)
	switch {
	default:
		outcome = outcomeUnexpected
		err = &UnexpectedStatusError{StatusCode: statusCode, Body: message}
	case statusCode >= 400 && statusCode < 500:
		outcome = outcomeClientData
		err = &ClientDataError{StatusCode: statusCode, Message: message}
	case statusCode >= 500 && statusCode < 600:
		outcome = outcomeService
		err = &ServiceError{StatusCode: statusCode, Message: message}
	}
	c.Error(ctx, "%s: error response code: %d, response body: %s",
		operation, statusCode, message)
	c.metrics.request(operation, outcome)
	return err
}

func (c *client) classifyTransport(ctx context.Context, operation string, err error) error {
	c.Error(ctx, "%s: error: %s", operation, err)
	c.metrics.request(operation, outcomeTransport)
	return &TransportError{Err: err}
}
