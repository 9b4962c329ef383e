package telemetry

import "go.uber.org/zap"

// ZapLogger adapts *zap.SugaredLogger to Logger, the pack's widely used
// structured-logging library (googleapis-genai-toolbox, edgeflare-pgo,
// pgschema-pgschema, qbloq-graphjin-agentico, docxology-GuildNet all
// depend on it).
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps l. Pass zap.NewProduction() or zap.NewDevelopment()
// for the common cases; the caller owns l's lifecycle (Sync on shutdown).
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: l.Sugar()}
}

func (z *ZapLogger) Info(msg string, kv ...any)  { z.sugar.Infow(msg, kv...) }
func (z *ZapLogger) Warn(msg string, kv ...any)  { z.sugar.Warnw(msg, kv...) }
func (z *ZapLogger) Error(msg string, kv ...any) { z.sugar.Errorw(msg, kv...) }

var _ Logger = (*ZapLogger)(nil)
