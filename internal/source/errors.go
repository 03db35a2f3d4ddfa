package source

import "errors"

// ErrNoAPIKey is returned when a Linkup adapter is built without credentials
var ErrNoAPIKey = errors.New("linkup api key not set")
