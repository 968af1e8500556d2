package api

import (
	"fmt"
	"io"
)

const (
	maxEnvelopeBytes = 8 << 20  // JSON envelope responses
	maxDownloadBytes = 64 << 20 // binary export downloads
)

// readAllWithLimit reads up to limit bytes and reports whether the body was
// truncated.
func readAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// readAllStrict reads up to limit bytes and fails when the body exceeds it.
func readAllStrict(r io.Reader, limit int64) ([]byte, error) {
	data, truncated, err := readAllWithLimit(r, limit)
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
