// Package debuglog routes structured logging to the host's debug import, the
// only log channel a sandboxed guest has. The host is free to discard the
// messages, so this is best-effort by construction.
package debuglog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures the logger.
type Option func(*options)

type options struct {
	level zapcore.LevelEnabler
	name  string
}

// WithLevel sets the minimum level. The default is Debug: filtering is the
// host's job in production, where debug messages are expected to be dropped.
func WithLevel(level zapcore.LevelEnabler) Option {
	return func(o *options) { o.level = level }
}

// WithName names the logger.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New builds a zap logger that writes one encoded line per entry to sink.
func New(sink func(string), opts ...Option) *zap.Logger {
	o := options{level: zapcore.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}
	logger := zap.New(&hostCore{
		LevelEnabler: o.level,
		enc:          zapcore.NewConsoleEncoder(encoderConfig()),
		sink:         sink,
	})
	if o.name != "" {
		logger = logger.Named(o.name)
	}
	return logger
}

// encoderConfig drops the timestamp: the host attaches its own timing when
// it records debug messages at all.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = zapcore.OmitKey
	return cfg
}

// hostCore is a zapcore.Core whose sink is the host debug call.
type hostCore struct {
	zapcore.LevelEnabler
	enc  zapcore.Encoder
	sink func(string)
}

var _ zapcore.Core = (*hostCore)(nil)

func (c *hostCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &hostCore{
		LevelEnabler: c.LevelEnabler,
		enc:          c.enc.Clone(),
		sink:         c.sink,
	}
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return clone
}

func (c *hostCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *hostCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	line := strings.TrimRight(buf.String(), "\n")
	buf.Free()
	c.sink(line)
	return nil
}

func (c *hostCore) Sync() error { return nil }
