package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-client/internal/data"
	"github.com/antonio-alexander/go-employee-client/internal/utilities"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retryRecorder struct {
	sync.Mutex
	attempts []int
	delays   []time.Duration
}

func (r *retryRecorder) onRetry(attempt int, _ error, delay time.Duration) {
	r.Lock()
	defer r.Unlock()

	r.attempts = append(r.attempts, attempt)
	r.delays = append(r.delays, delay)
}

func testRetryConfig(recorder *retryRecorder) RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 5 * time.Millisecond,
		Multiplier:   2,
		MaxDelay:     time.Second,
		OnRetry:      recorder.onRetry,
	}
}

// countingHandler responds with the given responses in order, repeating the
// last one once they're exhausted
func countingHandler(hits *int32, responses ...func(http.ResponseWriter)) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		i := int(atomic.AddInt32(hits, 1)) - 1
		if i >= len(responses) {
			i = len(responses) - 1
		}
		responses[i](writer)
	})
}

func status(statusCode int, body string) func(http.ResponseWriter) {
	return func(writer http.ResponseWriter) {
		writer.WriteHeader(statusCode)
		_, _ = writer.Write([]byte(body))
	}
}

func TestRetryDefaults(t *testing.T) {
	config := DefaultRetryConfig()
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 2*time.Second, config.InitialDelay)
	assert.Equal(t, float64(2), config.Multiplier)
	assert.Nil(t, config.Filter)
	assert.Equal(t, uint(4), config.maxTries())

	b := config.backOff()
	b.Reset()
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 4*time.Second, b.NextBackOff())
	assert.Equal(t, 8*time.Second, b.NextBackOff())
}

func TestRetryConfigure(t *testing.T) {
	config := DefaultRetryConfig()
	err := config.Configure(map[string]string{
		"CLIENT_RETRY_MAX":            "5",
		"CLIENT_RETRY_INITIAL_DELAY":  "100",
		"CLIENT_RETRY_MULTIPLIER":     "3",
		"CLIENT_RETRY_MAX_DELAY":      "1000",
		"CLIENT_RETRY_TRANSIENT_ONLY": "true",
	})
	assert.Nil(t, err)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, config.InitialDelay)
	assert.Equal(t, float64(3), config.Multiplier)
	assert.Equal(t, time.Second, config.MaxDelay)
	assert.NotNil(t, config.Filter)

	b := config.backOff()
	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 900*time.Millisecond, b.NextBackOff())
	assert.Equal(t, time.Second, b.NextBackOff())

	err = config.Configure(map[string]string{"CLIENT_RETRY_MAX": "three"})
	assert.NotNil(t, err)
}

func TestRetryInitialDelayAboveMaxDelay(t *testing.T) {
	config := DefaultRetryConfig()
	err := config.Configure(map[string]string{"CLIENT_RETRY_INITIAL_DELAY": "120000"})
	assert.Nil(t, err)

	b := config.backOff()
	b.Reset()
	previous := b.NextBackOff()
	assert.Equal(t, 2*time.Minute, previous)
	for i := 0; i < 3; i++ {
		delay := b.NextBackOff()
		assert.GreaterOrEqual(t, delay, previous)
		previous = delay
	}
}

func TestRetryFilters(t *testing.T) {
	assert.True(t, RetryAll(&ClientDataError{StatusCode: http.StatusNotFound}))
	assert.False(t, RetryTransient(&ClientDataError{StatusCode: http.StatusNotFound}))
	assert.True(t, RetryTransient(&ServiceError{StatusCode: http.StatusBadGateway}))
	assert.True(t, RetryTransient(&TransportError{Err: context.DeadlineExceeded}))
	assert.False(t, RetryTransient(&UnexpectedStatusError{StatusCode: http.StatusNotModified}))
}

func TestRetry(t *testing.T) {
	t.Run("ExhaustedServiceError", func(t *testing.T) {
		var hits int32

		recorder := &retryRecorder{}
		client, buffer := newTestClient(t,
			countingHandler(&hits, status(http.StatusServiceUnavailable, "unavailable")),
			testRetryConfig(recorder))
		start := time.Now()
		employee, err := client.EmployeeReadWithRetry(context.TODO(), 2)
		elapsed := time.Since(start)
		assert.Nil(t, employee)
		assert.True(t, IsService(err))
		assert.Equal(t, "unavailable", Message(err))
		assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
		assert.Equal(t, []int{2, 3, 4}, recorder.attempts)
		assert.Equal(t, []time.Duration{
			5 * time.Millisecond,
			10 * time.Millisecond,
			20 * time.Millisecond,
		}, recorder.delays)
		assert.GreaterOrEqual(t, elapsed, 35*time.Millisecond)
		assert.Contains(t, buffer.String(), "retrying (attempt 2 of 4)")
		assert.Equal(t, float64(3), testutil.ToFloat64(
			client.metrics.retries.WithLabelValues(operationEmployeeRead)))
		assert.Equal(t, float64(4), testutil.ToFloat64(
			client.metrics.requests.WithLabelValues(operationEmployeeRead, outcomeService)))
	})
	t.Run("ClientDataRetriedByDefault", func(t *testing.T) {
		var hits int32

		recorder := &retryRecorder{}
		client, _ := newTestClient(t,
			countingHandler(&hits, status(http.StatusNotFound, data.MessageNotFound)),
			testRetryConfig(recorder))
		employee, err := client.EmployeeReadWithRetry(context.TODO(), 999)
		assert.Nil(t, employee)
		assert.True(t, IsClientData(err))
		assert.Equal(t, data.MessageNotFound, Message(err))
		assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	})
	t.Run("ClientDataNotRetriedWhenTransientOnly", func(t *testing.T) {
		var hits int32

		recorder := &retryRecorder{}
		config := testRetryConfig(recorder)
		config.Filter = RetryTransient
		client, _ := newTestClient(t,
			countingHandler(&hits, status(http.StatusNotFound, data.MessageNotFound)),
			config)
		_, err := client.EmployeeReadWithRetry(context.TODO(), 999)
		assert.True(t, IsClientData(err))
		_, isClientData := err.(*ClientDataError)
		assert.True(t, isClientData)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
		assert.Empty(t, recorder.attempts)
	})
	t.Run("RecoversAfterFailures", func(t *testing.T) {
		var hits int32

		recorder := &retryRecorder{}
		client, _ := newTestClient(t,
			countingHandler(&hits,
				status(http.StatusInternalServerError, data.MessageSomethingWrong),
				status(http.StatusBadGateway, "bad gateway"),
				status(http.StatusOK, adamJson)),
			testRetryConfig(recorder))
		employee, err := client.EmployeeReadWithRetry(context.TODO(), 2)
		assert.Nil(t, err)
		assert.Equal(t, "Adam", employee.FirstName)
		assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	})
	t.Run("NoRetries", func(t *testing.T) {
		var hits int32

		recorder := &retryRecorder{}
		config := testRetryConfig(recorder)
		config.MaxRetries = 0
		client, _ := newTestClient(t,
			countingHandler(&hits, status(http.StatusInternalServerError, "")),
			config)
		_, err := client.EmployeeReadWithRetry(context.TODO(), 2)
		assert.True(t, IsService(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})
	t.Run("Transport", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		serverUrl := server.URL
		server.Close()

		recorder := &retryRecorder{}
		c := NewClient(utilities.NewLogger(&bytes.Buffer{}), testRetryConfig(recorder)).(*client)
		err := c.Configure(map[string]string{"CLIENT_BASE_URL": serverUrl})
		require.Nil(t, err)
		err = c.Open(context.TODO())
		require.Nil(t, err)
		_, err = c.EmployeeReadWithRetry(context.TODO(), 2)
		assert.True(t, IsTransport(err))
		assert.Len(t, recorder.attempts, 3)
	})
	t.Run("CancelledWhileWaiting", func(t *testing.T) {
		var hits int32

		ctx, cancel := context.WithCancel(context.TODO())
		defer cancel()
		config := DefaultRetryConfig()
		config.OnRetry = func(int, error, time.Duration) { cancel() }
		client, _ := newTestClient(t,
			countingHandler(&hits, status(http.StatusInternalServerError, data.MessageSomethingWrong)),
			config)
		start := time.Now()
		_, err := client.EmployeeReadWithRetry(ctx, 2)
		assert.Less(t, time.Since(start), time.Second)
		assert.True(t, IsService(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})
}
