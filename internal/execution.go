package internal

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// LaunchContext returns a context that's cancelled when a signal is
// received on osSignal or cancel is called
func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()
	return ctx, cancel
}

// Envs merges the process environment over the contents of the optional
// env files, files that don't exist are ignored
func Envs(envFiles ...string) (map[string]string, error) {
	envs := make(map[string]string)
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		fileEnvs, err := godotenv.Read(envFile)
		if err != nil {
			return nil, err
		}
		for key, value := range fileEnvs {
			envs[key] = value
		}
	}
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs, nil
}
