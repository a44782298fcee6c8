// Package logging configures the process-wide slog logger and holds the
// canonical attribute helpers shared by commands and services.
package logging

import (
	"io"
	"log/slog"
)

// Canonical log field names.
const (
	KeyStack        = "stack"
	KeyBucket       = "bucket"
	KeyDistribution = "distribution_id"
	KeyRegion       = "region"
	KeyPath         = "path"
	KeyMode         = "mode"
	KeyOp           = "op"
	KeyCount        = "count"
	KeyError        = "error"
)

// New returns a text logger writing to w. Debug records are emitted only when
// verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything. Used as the default for
// optional logger fields.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func Stack(name string) slog.Attr       { return slog.String(KeyStack, name) }
func Bucket(name string) slog.Attr      { return slog.String(KeyBucket, name) }
func Distribution(id string) slog.Attr  { return slog.String(KeyDistribution, id) }
func Region(r string) slog.Attr         { return slog.String(KeyRegion, r) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Mode(m string) slog.Attr           { return slog.String(KeyMode, m) }
func Op(op string) slog.Attr            { return slog.String(KeyOp, op) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
