package worker

import "errors"

// ErrMalformedRequest — сообщение enrich.requested не удалось разобрать.
var ErrMalformedRequest = errors.New("malformed enrich request")
