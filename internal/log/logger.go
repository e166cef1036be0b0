package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger はアプリケーション全体で使うロガーの最小インターフェースです。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Slog は log/slog のテキストハンドラを使う Logger 実装です。
type Slog struct {
	l *slog.Logger
}

// New は level (debug / info / warn / error) 以上を標準出力へ書くロガーを作成します。
// 空文字や不明な値は info として扱います。
func New(level string) *Slog {
	return NewWriter(os.Stdout, level)
}

// NewWriter は出力先を w にした New です。
func NewWriter(w io.Writer, level string) *Slog {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Slog{l: slog.New(h)}
}

// ParseLevel はレベル名を slog.Level に変換します。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With は args を常に付与する子ロガーを返します。
func (s *Slog) With(args ...any) *Slog { return &Slog{l: s.l.With(args...)} }

func (s *Slog) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.l.Error(msg, args...) }
