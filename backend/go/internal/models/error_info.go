package models

// ErrorInfo 存储了关于错误的结构化信息，随日志一起输出。
type ErrorInfo struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"` // 出错的阶段，例如 "completion", "graph_upsert", "article_persist"
}
