package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the Elasticsearch client.
type ESOptions struct {
	Addrs      []string
	Username   string
	Password   string
	Timeout    time.Duration // dial and response-header timeout
	MaxRetries int           // 0 disables retries
}

// NewESClient creates an Elasticsearch client with optional basic auth.
// Retries back off linearly on 502, 503 and 504.
func NewESClient(o ESOptions) (*elasticsearch.Client, error) {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	cfg := elasticsearch.Config{
		Addresses:     o.Addrs,
		Username:      o.Username,
		Password:      o.Password,
		MaxRetries:    o.MaxRetries,
		DisableRetry:  o.MaxRetries <= 0,
		RetryOnStatus: []int{502, 503, 504},
		RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: o.Timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: o.Timeout}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}
