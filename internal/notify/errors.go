package notify

import "errors"

// ErrRejected is returned when a webhook answers with a non-2xx status
var ErrRejected = errors.New("webhook rejected payload")
