package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-client/internal"
	"github.com/antonio-alexander/go-employee-client/internal/data"
	"github.com/antonio-alexander/go-employee-client/internal/utilities"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
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

// service is a stand-in for the remote employee service, it keeps employees
// in memory and is used for local development and tests
type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		basePath         string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
	}
	ctx      context.Context
	cancel   context.CancelFunc
	listener net.Listener
	*mux.Router
	*http.Server
	store    *memoryStore
	validate *validator.Validate
	utilities.Logger
	utilities.Counter
}

func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	internal.Addresser
} {
	s := &service{
		store:    newMemoryStore(),
		validate: validator.New(),
	}
	s.config.shutdownTimeout = 10 * time.Second
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Counter:
			s.Counter = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	if s.Logger == nil {
		s.Logger = utilities.NewLogger()
	}
	if s.Counter == nil {
		s.Counter = utilities.NewCounter()
	}
	return s
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()

		close(started)
		if err := s.Server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.Error(s.ctx, "error while serving: %s", err)
		}
	}()
	<-started
	s.Info(s.ctx, "started server: %s", s.listener.Addr())
	return nil
}

func (s *service) countRoutes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if route := mux.CurrentRoute(request); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				s.Increment(request.Method + " " + template)
			}
		}
		next.ServeHTTP(writer, request)
	})
}

func (s *service) endpointDefault() func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer,
			"go-employee-client stub service\n"+
				"Version: \"%s\"\n"+
				"Git Commit: \"%s\"\n"+
				"Git Branch: \"%s\"\n",
			Version, GitCommit, GitBranch)
	}
}

func (s *service) decodeEmployee(request *http.Request) (data.Employee, error) {
	var employee data.Employee

	defer request.Body.Close()
	if err := json.NewDecoder(request.Body).Decode(&employee); err != nil {
		return data.Employee{}, fmt.Errorf("%w: %s", data.ErrEmployeeInvalid, err)
	}
	return employee, nil
}

func (s *service) endpointEmployeesList(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	employees, err := s.store.EmployeesList(ctx)
	handleResponse(writer, http.StatusOK, err, employees)
	s.Trace(ctx, "executed employees_list")
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	employee, err := s.store.EmployeeRead(ctx, id)
	handleResponse(writer, http.StatusOK, err, employee)
	s.Trace(ctx, "executed employee_read: %d", id)
}

func (s *service) endpointEmployeesByName(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	name := request.URL.Query().Get(data.ParameterEmployeeName)
	employees, err := s.store.EmployeesByName(ctx, name)
	handleResponse(writer, http.StatusOK, err, employees)
	s.Trace(ctx, "executed employees_by_name: %s", name)
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	employee, err := s.decodeEmployee(request)
	if err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	if err := s.validate.Struct(&employee); err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	employeeCreated, err := s.store.EmployeeCreate(ctx, employee)
	if err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	handleResponse(writer, http.StatusCreated, nil, employeeCreated)
	s.Trace(ctx, "executed employee_create: %d", employeeCreated.EmployeeId())
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	employee, err := s.decodeEmployee(request)
	if err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	employeeUpdated, err := s.store.EmployeeUpdate(ctx, id, employee)
	handleResponse(writer, http.StatusOK, err, employeeUpdated)
	s.Trace(ctx, "executed employee_update: %d", id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	if err := s.store.EmployeeDelete(ctx, id); err != nil {
		handleResponse(writer, 0, err, nil)
		return
	}
	handleResponse(writer, http.StatusOK, nil, data.MessageEmployeeDeleted)
	s.Trace(ctx, "executed employee_delete: %d", id)
}

func (s *service) endpointEmployeeError(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	handleResponse(writer, 0, data.ErrSimulated, nil)
	s.Trace(ctx, "executed employee_error")
}

func (s *service) buildRoutes() {
	s.Router = mux.NewRouter()
	s.Router.HandleFunc("/", s.endpointDefault())
	router := s.Router
	if basePath := strings.Trim(s.config.basePath, "/"); basePath != "" {
		router = s.Router.PathPrefix("/" + basePath).Subrouter()
	}
	router.Use(s.countRoutes)
	router.HandleFunc(data.RouteAllEmployees, s.endpointEmployeesList).
		Methods(http.MethodGet)
	router.HandleFunc(data.RouteEmployeeName, s.endpointEmployeesByName).
		Methods(http.MethodGet)
	router.HandleFunc(data.RouteEmployeeError, s.endpointEmployeeError).
		Methods(http.MethodGet)
	router.HandleFunc(data.RouteEmployee, s.endpointEmployeeCreate).
		Methods(http.MethodPost)
	router.HandleFunc(data.RouteEmployeeId, s.endpointEmployeeRead).
		Methods(http.MethodGet)
	router.HandleFunc(data.RouteEmployeeId, s.endpointEmployeeUpdate).
		Methods(http.MethodPut)
	router.HandleFunc(data.RouteEmployeeId, s.endpointEmployeeDelete).
		Methods(http.MethodDelete)
}

func (s *service) Configure(envs map[string]string) error {
	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port, ok := envs["SERVICE_PORT"]; ok {
		s.config.port = port
	}
	if basePath, ok := envs["SERVICE_BASE_PATH"]; ok {
		s.config.basePath = basePath
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins, ok := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; ok && allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods, ok := envs["SERVICE_CORS_ALLOWED_METHODS"]; ok && allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders, ok := envs["SERVICE_CORS_ALLOWED_HEADERS"]; ok && allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.buildRoutes()
	var handler http.Handler = s.Router
	if !s.config.corsDisabled {
		handler = cors.New(cors.Options{
			AllowedOrigins:   s.config.allowedOrigins,
			AllowCredentials: s.config.allowCredentials,
			AllowedMethods:   s.config.allowedMethods,
			AllowedHeaders:   s.config.allowedHeaders,
			Debug:            s.config.corsDebug,
		}).Handler(s.Router)
	}
	s.Server = &http.Server{Handler: handler}
	listener, err := net.Listen("tcp", net.JoinHostPort(s.config.address, s.config.port))
	if err != nil {
		s.cancel()
		return err
	}
	s.listener = listener
	return s.launchServer()
}

// Address returns the host:port the service is listening on
func (s *service) Address() string {
	s.RLock()
	defer s.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Clear resets the employees to the fixtures and resets the route counters
func (s *service) Clear(ctx context.Context) error {
	s.Counter.Reset()
	return s.store.Clear(ctx)
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	s.cancel()
	s.Wait()
	return nil
}
