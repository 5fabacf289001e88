package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// New returns a resty client that honours the proxy environment variables.
// Only GET requests are retried: a repeated POST could place or fill an order twice.
func New(retryCount int, timeout time.Duration) *resty.Client {
	return configure(resty.New().SetTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
	}), retryCount, timeout)
}

// NewWithClient wraps an existing http.Client, e.g. the one of an httptest server.
func NewWithClient(hc *http.Client, retryCount int) *resty.Client {
	return configure(resty.NewWithClient(hc), retryCount, 0)
}

func configure(c *resty.Client, retryCount int, timeout time.Duration) *resty.Client {
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c.SetRetryCount(retryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		})
}
