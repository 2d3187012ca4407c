package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-client/internal/utilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	cases := map[string]struct {
		envs    map[string]string
		address string
		err     bool
	}{
		"defaults": {
			envs:    map[string]string{"CLIENT_ADDRESS": "localhost"},
			address: "http://localhost",
		},
		"host_port_base_path": {
			envs: map[string]string{
				"CLIENT_PROTOCOL":  "https",
				"CLIENT_ADDRESS":   "employees.local",
				"CLIENT_PORT":      "8443",
				"CLIENT_BASE_PATH": "employeeservice/",
			},
			address: "https://employees.local:8443/employeeservice",
		},
		"base_url": {
			envs: map[string]string{
				"CLIENT_ADDRESS":  "ignored",
				"CLIENT_BASE_URL": "http://127.0.0.1:8080/employeeservice/",
			},
			address: "http://127.0.0.1:8080/employeeservice",
		},
		"unsupported_protocol": {
			envs: map[string]string{"CLIENT_PROTOCOL": "ftp", "CLIENT_ADDRESS": "localhost"},
			err:  true,
		},
		"unsupported_base_url": {
			envs: map[string]string{"CLIENT_BASE_URL": "ftp://localhost"},
			err:  true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := NewClient(utilities.NewLogger(&bytes.Buffer{})).(*client)
			err := c.Configure(tc.envs)
			require.Nil(t, err)
			err = c.Open(context.TODO())
			if tc.err {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.address, c.address)
			assert.Equal(t, defaultTimeout, c.Client.Timeout)
		})
	}

	t.Run("Timeout", func(t *testing.T) {
		c := NewClient(utilities.NewLogger(&bytes.Buffer{})).(*client)
		err := c.Configure(map[string]string{"CLIENT_TIMEOUT": "3", "CLIENT_ADDRESS": "localhost"})
		require.Nil(t, err)
		err = c.Open(context.TODO())
		require.Nil(t, err)
		assert.Equal(t, 3*time.Second, c.Client.Timeout)

		err = c.Configure(map[string]string{"CLIENT_TIMEOUT": "soon"})
		assert.NotNil(t, err)
	})
	t.Run("ProvidedHttpClient", func(t *testing.T) {
		transport := &http.Transport{}
		httpClient := &http.Client{Transport: transport}
		c := NewClient(httpClient, utilities.NewLogger(&bytes.Buffer{})).(*client)
		err := c.Configure(map[string]string{"CLIENT_ADDRESS": "localhost"})
		require.Nil(t, err)
		err = c.Open(context.TODO())
		require.Nil(t, err)
		assert.Equal(t, transport, c.Client.Transport)
	})
}

func TestTransportTls(t *testing.T) {
	transport, err := getTransport("", "", "")
	assert.Nil(t, err)
	if tlsConfig := transport.TLSClientConfig; tlsConfig != nil {
		assert.Nil(t, tlsConfig.RootCAs)
		assert.Empty(t, tlsConfig.Certificates)
	}

	_, err = getTransport(filepath.Join(t.TempDir(), "missing.crt"), "", "")
	assert.NotNil(t, err)

	caFile := filepath.Join(t.TempDir(), "empty.crt")
	err = os.WriteFile(caFile, []byte("not a certificate"), 0o600)
	require.Nil(t, err)
	_, err = getTransport(caFile, "", "")
	assert.NotNil(t, err)

	_, err = getTransport("", filepath.Join(t.TempDir(), "client.crt"),
		filepath.Join(t.TempDir(), "client.key"))
	assert.NotNil(t, err)
}

func TestTransportTlsCa(t *testing.T) {
	server := httptest.NewTLSServer(respond(http.StatusOK, adamJson))
	t.Cleanup(server.Close)
	caFile := filepath.Join(t.TempDir(), "ca.crt")
	err := os.WriteFile(caFile, pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: server.Certificate().Raw,
	}), 0o600)
	require.Nil(t, err)

	transport, err := getTransport(caFile, "", "")
	require.Nil(t, err)
	require.NotNil(t, transport.TLSClientConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
	assert.NotNil(t, transport.TLSClientConfig.RootCAs)
	assert.Contains(t, transport.TLSClientConfig.NextProtos, "h2")

	c := NewClient(utilities.NewLogger(&bytes.Buffer{})).(*client)
	err = c.Configure(map[string]string{
		"CLIENT_BASE_URL": server.URL,
		"SSL_CA_FILE":     caFile,
	})
	require.Nil(t, err)
	err = c.Open(context.TODO())
	require.Nil(t, err)
	employee, err := c.EmployeeRead(context.TODO(), 2)
	assert.Nil(t, err)
	if assert.NotNil(t, employee) {
		assert.Equal(t, "Adam", employee.FirstName)
	}
}

func TestOpenConcurrentRequests(t *testing.T) {
	var wg sync.WaitGroup

	server := httptest.NewServer(respond(http.StatusOK, adamJson))
	t.Cleanup(server.Close)
	client := NewClient(utilities.NewLogger(io.Discard, utilities.Trace)).(*client)
	err := client.Configure(map[string]string{"CLIENT_BASE_URL": server.URL})
	require.Nil(t, err)
	err = client.Open(context.TODO())
	require.Nil(t, err)
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()

			_, err := client.EmployeeRead(context.TODO(), 2)
			assert.Nil(t, err)
		}()
		go func() {
			defer wg.Done()

			assert.Nil(t, client.Open(context.TODO()))
		}()
	}
	wg.Wait()
}
