package correlator

import "github.com/sagostin/go-esme/internal/esmeerr"

// ErrRequestTimeout is delivered on a request's result channel when it
// is swept from the outstanding-request table before a response arrives.
var ErrRequestTimeout = esmeerr.New(esmeerr.KindTimeout, "request timed out waiting for response", nil)
