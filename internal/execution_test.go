package internal_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-client/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvs(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte("CLIENT_PORT=8081\nENVS_TEST_OVERRIDE=file\n"), 0600)
	require.Nil(t, err)
	t.Setenv("ENVS_TEST_OVERRIDE", "process")

	envs, err := internal.Envs(envFile, filepath.Join(t.TempDir(), "missing.env"))
	require.Nil(t, err)
	assert.Equal(t, "8081", envs["CLIENT_PORT"])
	assert.Equal(t, "process", envs["ENVS_TEST_OVERRIDE"])
}

func TestCorrelationId(t *testing.T) {
	ctx := context.TODO()
	assert.Empty(t, internal.CorrelationIdFromCtx(ctx))

	ctx, correlationId := internal.EnsureCorrelationId(ctx)
	assert.NotEmpty(t, correlationId)
	assert.Equal(t, correlationId, internal.CorrelationIdFromCtx(ctx))

	_, same := internal.EnsureCorrelationId(ctx)
	assert.Equal(t, correlationId, same)
}

func TestLaunchContext(t *testing.T) {
	var wg sync.WaitGroup

	osSignal := make(chan os.Signal, 1)
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()
	osSignal <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		assert.Fail(t, "context not cancelled after signal")
	}
	wg.Wait()
}
