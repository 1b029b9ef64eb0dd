package errors

import "go.uber.org/zap"

// LogHandler is an ErrorHandler that writes through a zap logger.
type LogHandler struct {
	// Logger receives the entries. Nil means zap's global logger.
	Logger *zap.Logger
	// Verbose enables stack traces on panics.
	Verbose bool
}

func (h *LogHandler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

// HandleError logs a RecordError at error level.
func (h *LogHandler) HandleError(err *RecordError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Type != "" {
		fields = append(fields, zap.String("type", err.Type))
	}
	if err.Field != "" {
		fields = append(fields, zap.String("field", err.Field))
	}
	h.logger().Error("liteclass error", fields...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("panic", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("liteclass panic", fields...)
}
