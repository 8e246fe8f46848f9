package storage

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// TLSConfig trusts the PEM CA at caPath in addition to the system roots.
// An empty caPath returns nil, which means the defaults.
func TLSConfig(caPath string) (*tls.Config, error) {
	if caPath == "" {
		return nil, nil
	}
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool, err := x509.SystemCertPool()
	if err != nil || caPool == nil {
		caPool = x509.NewCertPool()
	}
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	return &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12}, nil
}

// NewHTTPClient returns the client used for API calls.
func NewHTTPClient(tlsConfig *tls.Config, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
