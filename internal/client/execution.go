package client

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

func getCertificates(sslCrtFile, sslKeyFile string) ([]tls.Certificate, error) {
	if sslCrtFile == "" || sslKeyFile == "" {
		return []tls.Certificate{}, nil
	}
	certificate, err := tls.LoadX509KeyPair(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load client certificate")
	}
	return []tls.Certificate{certificate}, nil
}

func getCaCert(sslCaFile string) (*x509.CertPool, error) {
	if sslCaFile == "" {
		return nil, nil
	}
	bytes, err := os.ReadFile(sslCaFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read ca file")
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(bytes) {
		return nil, errors.Errorf("no certificates found in ca file: %s", sslCaFile)
	}
	return caCertPool, nil
}

// getTransport clones the default transport so connection pooling and
// proxy settings are kept, tls is only configured when a ca or client
// certificate is provided
func getTransport(sslCaFile, sslCrtFile, sslKeyFile string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if sslCaFile == "" && (sslCrtFile == "" || sslKeyFile == "") {
		return transport, nil
	}
	caCertPool, err := getCaCert(sslCaFile)
	if err != nil {
		return nil, err
	}
	certificates, err := getCertificates(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, err
	}
	//KIM: the cloned config carries the http/2 NextProtos, so it's cloned
	// again rather than replaced
	tlsConfig := &tls.Config{}
	if transport.TLSClientConfig != nil {
		tlsConfig = transport.TLSClientConfig.Clone()
	}
	// TLS versions below 1.2 are considered insecure
	// see https://www.rfc-editor.org/rfc/rfc7525.txt for details
	tlsConfig.MinVersion = tls.VersionTLS12
	tlsConfig.RootCAs = caCertPool
	tlsConfig.Certificates = certificates
	transport.TLSClientConfig = tlsConfig
	return transport, nil
}
