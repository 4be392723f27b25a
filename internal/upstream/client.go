package upstream

import (
	"errors"
	"net/http"
	"time"
)

// ErrUnavailable marks any transport, auth, rate-limit or malformed-body
// failure of the external API. The cache treats every flavor identically and
// moves to the next fallback tier; it is never surfaced raw to a consumer.
var ErrUnavailable = errors.New("upstream unavailable")

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) Doer {
	return &http.Client{Timeout: timeout}
}
