package ai

import "errors"

// ErrUnavailable means the generation or embedding backend is not usable for
// this request (missing key, unreachable endpoint). Callers surface it as a
// per-request error; the process stays healthy.
var ErrUnavailable = errors.New("ai provider unavailable")
