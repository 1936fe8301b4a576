package logger

import (
	"io"
	"regexp"
)

// Redactor masks credentials before log lines reach their sink.
type Redactor struct {
	patterns []*regexp.Regexp
}

func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`),
			// Graph API page tokens travel as a query parameter.
			regexp.MustCompile(`access_token=[^&\s"]+`),
			regexp.MustCompile(`EAA[a-zA-Z0-9]{20,}`),
			regexp.MustCompile(`verify_token=[^&\s"]+`),
		},
	}
}

// Redact replaces every match with [REDACTED].
func (r *Redactor) Redact(s string) string {
	out := s
	for _, p := range r.patterns {
		out = p.ReplaceAllString(out, "[REDACTED]")
	}
	return out
}

// Wrap returns a writer that redacts each write before forwarding it.
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{writer: w, redactor: r}
}

type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

func (w *redactingWriter) Write(p []byte) (int, error) {
	if _, err := w.writer.Write([]byte(w.redactor.Redact(string(p)))); err != nil {
		return 0, err
	}
	// zerolog treats a short write as an error; report the original length.
	return len(p), nil
}
