package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示远端 API 返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	// Message 来自响应体中的错误说明（若有），例如 TMDB 的 status_message。
	Message string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// Unauthorized 报告该错误是否为鉴权失败（api key 缺失或无效）。
func (e *HTTPStatusError) Unauthorized() bool {
	return e != nil && (e.StatusCode == 401 || e.StatusCode == 403)
}
