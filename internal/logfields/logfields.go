package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPage       = "page"
	KeyStage      = "stage"
	KeyDirective  = "directive"
	KeyImage      = "image"
	KeyReason     = "reason"
	KeyCategory   = "category"
	KeyDurationMS = "duration_ms"
	KeyRunID      = "run_id"
	KeyOutput     = "output"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Page(p string) slog.Attr          { return slog.String(KeyPage, p) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Directive(name string) slog.Attr  { return slog.String(KeyDirective, name) }
func Image(path string) slog.Attr      { return slog.String(KeyImage, path) }
func Reason(r string) slog.Attr        { return slog.String(KeyReason, r) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Output(path string) slog.Attr     { return slog.String(KeyOutput, path) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
