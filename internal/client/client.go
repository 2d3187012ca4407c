package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-client/internal"
	"github.com/antonio-alexander/go-employee-client/internal/data"
	"github.com/antonio-alexander/go-employee-client/internal/utilities"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	operationEmployeesList   string = "employees_list"
	operationEmployeeRead    string = "employee_read"
	operationEmployeesByName string = "employees_by_name"
	operationEmployeeCreate  string = "employee_create"
	operationEmployeeUpdate  string = "employee_update"
	operationEmployeeDelete  string = "employee_delete"
	operationErrorEndpoint   string = "error_endpoint"
)

const defaultTimeout = 10 * time.Second

type Client interface {
	EmployeesList(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeReadWithRetry(ctx context.Context, id int64) (*data.Employee, error)
	EmployeesByName(ctx context.Context, name string) ([]*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) (string, error)
	ErrorEndpoint(ctx context.Context) (string, error)
}

type client struct {
	sync.RWMutex
	config struct {
		protocol   string
		address    string
		port       string
		basePath   string
		baseUrl    string
		timeout    time.Duration
		sslCaFile  string
		sslCrtFile string
		sslKeyFile string
	}
	address string
	retry   RetryConfig
	metrics *metrics
	utilities.Logger
	*http.Client
}

// NewClient creates a client; a utilities.Logger, RetryConfig,
// prometheus.Registerer or *http.Client can be provided as parameters
func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	var registerer prometheus.Registerer = prometheus.NewRegistry()

	c := &client{
		Client: &http.Client{},
		retry:  DefaultRetryConfig(),
	}
	c.config.protocol = "http"
	c.config.timeout = defaultTimeout
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		case RetryConfig:
			c.retry = p
		case prometheus.Registerer:
			registerer = p
		case *http.Client:
			c.Client = p
		}
	}
	if c.Logger == nil {
		c.Logger = utilities.NewLogger()
	}
	c.metrics = newMetrics(registerer)
	return c
}

func (c *client) Configure(envs map[string]string) error {
	if baseUrl, ok := envs["CLIENT_BASE_URL"]; ok {
		c.config.baseUrl = baseUrl
	}
	if address, ok := envs["CLIENT_ADDRESS"]; ok {
		c.config.address = address
	}
	if port, ok := envs["CLIENT_PORT"]; ok {
		c.config.port = port
	}
	if protocol, ok := envs["CLIENT_PROTOCOL"]; ok && protocol != "" {
		c.config.protocol = protocol
	}
	if basePath, ok := envs["CLIENT_BASE_PATH"]; ok {
		c.config.basePath = basePath
	}
	if timeout, ok := envs["CLIENT_TIMEOUT"]; ok && timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return err
		}
		c.config.timeout = time.Duration(i) * time.Second
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	return c.retry.Configure(envs)
}

func (c *client) buildAddress() (string, error) {
	if c.config.baseUrl != "" {
		u, err := url.Parse(c.config.baseUrl)
		if err != nil {
			return "", err
		}
		switch u.Scheme {
		default:
			return "", errors.Errorf("unsupported protocol: %s", u.Scheme)
		case "http", "https":
			return strings.TrimSuffix(u.String(), "/"), nil
		}
	}
	switch c.config.protocol {
	default:
		return "", errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
	}
	host := c.config.address
	if c.config.port != "" {
		host = net.JoinHostPort(c.config.address, c.config.port)
	}
	basePath := strings.Trim(c.config.basePath, "/")
	if basePath != "" {
		basePath = "/" + basePath
	}
	return fmt.Sprintf("%s://%s%s", c.config.protocol, host, basePath), nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	address, err := c.buildAddress()
	if err != nil {
		return err
	}
	//KIM: requests in flight hold on to the previous *http.Client, so
	// it's copied rather than modified
	httpClient := *c.Client
	httpClient.Timeout = c.config.timeout
	if httpClient.Transport == nil {
		transport, err := getTransport(c.config.sslCaFile, c.config.sslCrtFile,
			c.config.sslKeyFile)
		if err != nil {
			return err
		}
		httpClient.Transport = transport
	}
	c.address, c.Client = address, &httpClient
	c.Debug(ctx, "client: opened for %s", c.address)
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func idParams(id int64) map[string]string {
	return map[string]string{data.PathId: strconv.FormatInt(id, 10)}
}

func (c *client) EmployeesList(ctx context.Context) ([]*data.Employee, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return doJSON[[]*data.Employee](ctx, c, request{
		operation: operationEmployeesList,
		endpoint:  data.EndpointEmployeesList,
	})
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return doJSON[*data.Employee](ctx, c, request{
		operation: operationEmployeeRead,
		endpoint:  data.EndpointEmployeeRead,
		params:    idParams(id),
	})
}

func (c *client) EmployeeReadWithRetry(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return withRetry(ctx, c, operationEmployeeRead, c.retry, func() (*data.Employee, error) {
		return doJSON[*data.Employee](ctx, c, request{
			operation: operationEmployeeRead,
			endpoint:  data.EndpointEmployeeRead,
			params:    idParams(id),
		})
	})
}

func (c *client) EmployeesByName(ctx context.Context, name string) ([]*data.Employee, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return doJSON[[]*data.Employee](ctx, c, request{
		operation: operationEmployeesByName,
		endpoint:  data.EndpointEmployeeByName,
		query:     url.Values{data.ParameterEmployeeName: []string{name}},
	})
}

func (c *client) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	employee.ID = nil
	return doJSON[*data.Employee](ctx, c, request{
		operation: operationEmployeeCreate,
		endpoint:  data.EndpointEmployeeCreate,
		body:      &employee,
	})
}

func (c *client) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return doJSON[*data.Employee](ctx, c, request{
		operation: operationEmployeeUpdate,
		endpoint:  data.EndpointEmployeeUpdate,
		params:    idParams(id),
		body:      &employee,
	})
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) (string, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return doString(ctx, c, request{
		operation: operationEmployeeDelete,
		endpoint:  data.EndpointEmployeeDelete,
		params:    idParams(id),
	})
}

func (c *client) ErrorEndpoint(ctx context.Context) (string, error) {
	ctx, _ = internal.EnsureCorrelationId(ctx)
	return doString(ctx, c, request{
		operation: operationErrorEndpoint,
		endpoint:  data.EndpointEmployeeError,
	})
}
