package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/antonio-alexander/go-employee-client/internal"
	"github.com/antonio-alexander/go-employee-client/internal/data"

	"github.com/pkg/errors"
)

type request struct {
	operation string
	endpoint  data.Endpoint
	params    map[string]string
	query     url.Values
	body      any
}

func (c *client) buildUri(r request, address string) (string, error) {
	path, err := r.endpoint.Expand(r.params)
	if err != nil {
		return "", err
	}
	uri := address + path
	if len(r.query) > 0 {
		uri += "?" + r.query.Encode()
	}
	return uri, nil
}

// doRequest performs exactly one round trip, it returns the body for
// success status codes and a classified error otherwise
func (c *client) doRequest(ctx context.Context, r request) ([]byte, error) {
	var body io.Reader

	c.RLock()
	address, httpClient := c.address, c.Client
	c.RUnlock()
	uri, err := c.buildUri(r, address)
	if err != nil {
		return nil, c.classifyTransport(ctx, r.operation,
			errors.Wrap(err, "unable to build request uri"))
	}
	if r.body != nil {
		byts, err := json.Marshal(r.body)
		if err != nil {
			return nil, c.classifyTransport(ctx, r.operation,
				errors.Wrap(err, "unable to encode request body"))
		}
		body = bytes.NewReader(byts)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, r.endpoint.Method, uri, body)
	if err != nil {
		return nil, c.classifyTransport(ctx, r.operation,
			errors.Wrap(err, "unable to create request"))
	}
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	httpRequest.Header.Set(internal.HeaderCorrelationId, internal.CorrelationIdFromCtx(ctx))
	c.Debug(ctx, "%s: %s %s", r.operation, r.endpoint.Method, uri)
	response, err := httpClient.Do(httpRequest)
	if err != nil {
		return nil, c.classifyTransport(ctx, r.operation, err)
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if !isSuccess(response.StatusCode) {
		if err != nil {
			responseBody = nil
		}
		return nil, c.classify(ctx, r.operation, response.StatusCode, responseBody)
	}
	if err != nil {
		return nil, c.classifyTransport(ctx, r.operation,
			errors.Wrap(err, "unable to read response body"))
	}
	c.metrics.request(r.operation, outcomeSuccess)
	c.Trace(ctx, "%s: response code: %d", r.operation, response.StatusCode)
	return responseBody, nil
}

// doJSON performs the request and decodes the body into T
func doJSON[T any](ctx context.Context, c *client, r request) (T, error) {
	var item T

	responseBody, err := c.doRequest(ctx, r)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(responseBody, &item); err != nil {
		c.Error(ctx, "%s: unable to decode response body: %s", r.operation, err)
		return item, &TransportError{Err: errors.Wrap(err, "unable to decode response body")}
	}
	return item, nil
}

// doString performs the request and returns the body as plain text
func doString(ctx context.Context, c *client, r request) (string, error) {
	responseBody, err := c.doRequest(ctx, r)
	if err != nil {
		return "", err
	}
	return string(responseBody), nil
}
