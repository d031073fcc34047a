package logging

import (
	"sort"
	"strings"
)

// mask replaces the value of a field whose key names a credential.
const mask = "****"

// credentialKeys are field keys whose values are always masked.
var credentialKeys = []string{
	"api_key", "apikey", "authorization", "password", "secret", "token",
}

// RedactingLogger wraps a Logger and masks known secrets in
// messages, string fields and failure records. A secret keeps its
// first four characters; the rest become asterisks.
type RedactingLogger struct {
	inner    Logger
	replacer *strings.Replacer
	secrets  []string
}

// NewRedactingLogger wraps inner. Secrets of four characters or
// fewer are ignored.
func NewRedactingLogger(inner Logger, secrets ...string) *RedactingLogger {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if len(s) > 4 {
			kept = append(kept, s)
		}
	}
	// Longest first so a secret containing another is masked whole.
	sort.Slice(kept, func(i, j int) bool { return len(kept[i]) > len(kept[j]) })

	pairs := make([]string, 0, 2*len(kept))
	for _, s := range kept {
		pairs = append(pairs, s, s[:4]+strings.Repeat("*", len(s)-4))
	}
	return &RedactingLogger{
		inner:    inner,
		replacer: strings.NewReplacer(pairs...),
		secrets:  kept,
	}
}

func (r *RedactingLogger) scrub(s string) string {
	return r.replacer.Replace(s)
}

func (r *RedactingLogger) scrubFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		if isCredential(f.Key) {
			out[i].Value = mask
		} else if s, ok := f.Value.(string); ok {
			out[i].Value = r.scrub(s)
		}
	}
	return out
}

func isCredential(key string) bool {
	key = strings.ToLower(key)
	for _, k := range credentialKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Info logs a scrubbed message at info level.
func (r *RedactingLogger) Info(msg string, fields ...Field) {
	r.inner.Info(r.scrub(msg), r.scrubFields(fields)...)
}

// Warn logs a scrubbed message at warn level.
func (r *RedactingLogger) Warn(msg string, fields ...Field) {
	r.inner.Warn(r.scrub(msg), r.scrubFields(fields)...)
}

// Error logs a scrubbed message at error level.
func (r *RedactingLogger) Error(msg string, fields ...Field) {
	r.inner.Error(r.scrub(msg), r.scrubFields(fields)...)
}

// Debug logs a scrubbed message at debug level.
func (r *RedactingLogger) Debug(msg string, fields ...Field) {
	r.inner.Debug(r.scrub(msg), r.scrubFields(fields)...)
}

// WithFields scrubs the fields before handing them to the inner
// logger.
func (r *RedactingLogger) WithFields(fields ...Field) Logger {
	return &RedactingLogger{
		inner:    r.inner.WithFields(r.scrubFields(fields)...),
		replacer: r.replacer,
		secrets:  r.secrets,
	}
}

// LogFailure scrubs the expression, message and report.
func (r *RedactingLogger) LogFailure(failure FailureLog) {
	failure.Expression = r.scrub(failure.Expression)
	failure.Message = r.scrub(failure.Message)
	failure.Report = r.scrub(failure.Report)
	r.inner.LogFailure(failure)
}

// Close closes the inner logger.
func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}
