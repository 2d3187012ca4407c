package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-employee-client/internal"
	"github.com/antonio-alexander/go-employee-client/internal/data"
	"github.com/antonio-alexander/go-employee-client/internal/service"
	"github.com/antonio-alexander/go-employee-client/internal/utilities"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	envs, err := internal.Envs(".env")
	if err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func Main(envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create utilities
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}
	counter := utilities.NewCounter()

	//print version info
	logger.Info(ctx, "server: go-employee-client stub service v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	//create service, configure and open
	service := service.NewService(logger, counter)
	if err := service.Configure(envs); err != nil {
		return err
	}
	if err := service.Open(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "server: listening on %s", service.Address())
	<-ctx.Done()
	wg.Wait()
	if err := service.Close(context.Background()); err != nil {
		logger.Error(context.Background(), "error while closing service: %s", err)
	}
	for route, count := range counter.ReadAll() {
		logger.Debug(context.Background(), "server: %s called %d times", route, count)
	}
	return nil
}
