package logger

import (
	"io"
	"os"

	"newsgraph/backend/go/internal/models"

	"github.com/sirupsen/logrus"
)

// Logger 是对 logrus 的封装，以提供更方便的结构化日志记录功能。
type Logger struct {
	entry *logrus.Entry
}

// Init 初始化全局的 logrus 配置。
// level: 设置日志级别 (e.g., logrus.InfoLevel, logrus.DebugLevel)。
func Init(level logrus.Level) {
	// 日志格式为 JSON，便于采集和检索。
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
}

// ParseLevel 解析日志级别字符串，无法识别时回退到 info。
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// New 创建一个新的 Logger 实例，并预设服务名、追踪ID和文章链接。
func New(serviceName, traceID, articleLink string) *Logger {
	fields := logrus.Fields{"service_name": serviceName}
	if traceID != "" {
		fields["trace_id"] = traceID
	}
	if articleLink != "" {
		fields["article_link"] = articleLink
	}
	return &Logger{entry: logrus.WithFields(fields)}
}

// Discard 返回一个丢弃所有输出的 Logger，供测试和命令行工具使用。
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// With 派生一个带有追踪ID和文章链接的子 Logger，不修改原实例。
func (l *Logger) With(traceID, articleLink string) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields{
		"trace_id":     traceID,
		"article_link": articleLink,
	})}
}

// WithField 添加单个字段。
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError 将错误信息添加到日志条目中。
func (l *Logger) WithError(err models.ErrorInfo) *Logger {
	return &Logger{entry: l.entry.WithField("error", err)}
}

// WithPayload 将自定义的业务数据添加到日志条目中。
func (l *Logger) WithPayload(payload map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithField("payload", payload)}
}

// Info 记录一条信息级别的日志。
func (l *Logger) Info(message string) {
	l.entry.Info(message)
}

// Warn 记录一条警告级别的日志。
func (l *Logger) Warn(message string) {
	l.entry.Warn(message)
}

// Error 记录一条错误级别的日志。
func (l *Logger) Error(message string) {
	l.entry.Error(message)
}

// Debug 记录一条调试级别的日志。
func (l *Logger) Debug(message string) {
	l.entry.Debug(message)
}

// Fatal 记录一条致命错误级别的日志，并终止程序。
func (l *Logger) Fatal(message string) {
	l.entry.Fatal(message)
}
