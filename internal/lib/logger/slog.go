package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New создаёт и настраивает новый экземпляр slog.Logger
// уровень логирования и формат определяются строковыми параметрами
func New(levelStr, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, levelStr, format)
}

// NewWithWriter то же самое, что New, но пишет в произвольный writer
func NewWithWriter(w io.Writer, levelStr, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true, // нужно, чтобы видеть файл и строку, откуда был вызов лога
		Level:     ParseLevel(levelStr),
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		// для продакшена
		handler = slog.NewJSONHandler(w, opts)
	default:
		// для локальной разработки
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel преобразует строковый уровень из конфига в slog.Level
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		// по умолчанию используем INFO, если в конфиге указано что-то некорректное
		return slog.LevelInfo
	}
}

// Discard возвращает логгер, который ничего не пишет (удобно в тестах)
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
