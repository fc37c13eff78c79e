package phfmap

// Logger receives build progress messages. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// NopLogger discards all messages.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
