// Package logging 构建全局 zerolog 日志器
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New 创建根日志器
// level 为空或无法解析时使用 info；w 为 nil 时输出到控制台
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel 解析日志级别名，未知级别返回 info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// ForSystem 为某个系统派生带 system 字段的子日志器
func ForSystem(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("system", name).Logger()
}
