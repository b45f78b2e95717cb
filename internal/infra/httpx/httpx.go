package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRetryMax  = 2
	defaultBackoff   = 300 * time.Millisecond
	defaultUserAgent = "moviechat/1.0 (+https://github.com/John-Robertt/moviechat)"
)

// Transport 把“UA + 代理 + 有界重试”固化为统一策略，数据源只负责拼 URL 与解析响应。
type Transport struct {
	Base http.RoundTripper

	UserAgent string

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int
	// Backoff 是第 n 次重试前的等待基数（线性递增：n*Backoff）。
	Backoff time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对可重放的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if attempt > 0 {
			if err := sleep(req, time.Duration(attempt)*t.Backoff); err != nil {
				return nil, lastErrOr(lastErr, err)
			}
		}

		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			if !retryableStatus(resp.StatusCode) || attempt == max {
				return resp, nil
			}
			// 丢弃本次响应，进入下一次尝试。
			resp.Body.Close()
			lastErr = fmt.Errorf("可重试的状态码：%s", resp.Status)
			continue
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// retryableStatus：限流与网关类错误值得重试；4xx 其余状态重试也不会变。
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sleep(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}

func lastErrOr(last, fallback error) error {
	if last != nil {
		return last
	}
	return fallback
}

// NewClient 构造用于远端数据源的 HTTP client。
//
// 规则：
// - proxyURL 非空：所有请求走该代理
// - 固定 UA + 有界重试 + 总超时
func NewClient(proxyURL string) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: &Transport{
			Base:      base,
			UserAgent: defaultUserAgent,
			RetryMax:  defaultRetryMax,
			Backoff:   defaultBackoff,
		},
		Timeout: defaultTimeout,
	}, nil
}
