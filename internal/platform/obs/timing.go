package obs

import (
	"context"
	"time"

	"route-selection-client/internal/platform/apperr"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Observer receives the orchestrator's diagnostic events. *logger.Logger
// satisfies it; tests use Nop or a recording observer.
type Observer interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}

// Nop discards every event.
var Nop Observer = nop{}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop
	}
	return o
}

// Time reports the duration of an operation when the returned func runs.
// Empty results are informational and logged at Info rather than Warn.
// Use it as: defer obs.Time(ctx, o, "op")(&err)
func Time(ctx context.Context, o Observer, name string) func(errp *error) {
	start := time.Now()
	o = OrNop(o)

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && apperr.IsKind(*errp, apperr.KindEmptyResult) {
			o.Info("op empty", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
			return
		}
		if errp != nil && *errp != nil {
			o.Warn("op failed", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		o.Debug("op done", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
