package ports

import "net/http"

// HTTPClient is the slice of *http.Client the batch sender needs. Injecting
// it lets embedding applications and tests swap the transport without
// touching the sender.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
