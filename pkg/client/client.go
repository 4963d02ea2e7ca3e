package client

import (
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zfogg/pageshare/pkg/config"
	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/telemetry"
)

// UserAgent is sent with every request.
const UserAgent = "PageShare-CLI/0.1.0"

var httpClient *resty.Client
var actingHandle string

// Init initializes the HTTP client
func Init() {
	httpClient = resty.New()

	baseURL := config.GetString("api.base_url")
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second

	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", UserAgent)
	httpClient.SetTransport(telemetry.Transport(nil))

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		if actingHandle != "" {
			req.Header.Set("X-PageShare-Handle", actingHandle)
		}
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// Reset drops the client so the next GetClient re-reads the configuration.
func Reset() {
	httpClient = nil
	actingHandle = ""
}

// SetActingHandle sets the handle sent with every request.
func SetActingHandle(handle string) {
	actingHandle = handle
}
