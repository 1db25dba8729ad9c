package utils

import (
	"io"
	"log/slog"
)

// CloseWithLog closes an io.Closer and logs any error that occurs.
// This is useful for defer statements where you want to ensure cleanup
// happens but don't want to override the main return error.
//
// Example usage:
//
//	resp, err := http.Get(url)
//	if err != nil {
//	    return err
//	}
//	defer CloseWithLog(resp.Body)
func CloseWithLog(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close resource", "error", err.Error())
	}
}

// HeaderOption represents a custom HTTP header to be added to requests.
// It holds the header name and value as strings.
type HeaderOption struct {
	Key   string
	Value string
}
