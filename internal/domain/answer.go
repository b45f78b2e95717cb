package domain

const (
	// NoAnswers 表示命中了某个 pattern，但 action 没有找到任何结果。
	NoAnswers = "No answers"
	// NotUnderstood 表示没有任何 pattern 能匹配输入。
	NotUnderstood = "I don't understand"
)

const (
	StatusOK            = "ok"
	StatusNoAnswers     = "no_answers"
	StatusNotUnderstood = "not_understood"
	// StatusError 表示问答没有执行（例如配置错误）；只出现在 ask 的 JSON 输出里。
	StatusError = "error"
)

// Answer 是一次问答的对外稳定输出（ask 在非 TTY 下输出为 JSON）。
//
// 不变量：
// - ok 与两种兜底状态下 Lines 非空；兜底时恰好是对应的一行兜底文案
// - error 状态下 Lines 为空，原因见 ErrorCode / ErrorMsg
type Answer struct {
	Query   string   `json:"query"`
	Pattern string   `json:"pattern,omitempty"`
	Status  string   `json:"status"`
	Lines   []string `json:"lines"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// IsFallback 报告该回答是否为兜底回答（no_answers / not_understood）。
func (a Answer) IsFallback() bool {
	return a.Status == StatusNoAnswers || a.Status == StatusNotUnderstood
}
