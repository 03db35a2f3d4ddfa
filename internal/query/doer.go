package query

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Doer adapts a Client to the Do(*http.Request) shape SDK clients accept,
// so their calls get the same retry, backoff and overload accounting as
// every other query.
type Doer struct {
	Client  *Client
	Label   string
	Timeout time.Duration // Per attempt; zero uses the client's default
}

// Do sends req through Client.Execute. Retryable failures are handled
// before Do returns; any other response is handed back unchanged.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		body = data
	}

	label := d.Label
	if label == "" {
		label = req.Method + " " + req.URL.Path
	}

	resp, err := d.Client.Execute(req.Context(), Request{
		Method:  req.Method,
		URL:     req.URL.String(),
		Body:    body,
		Header:  req.Header.Clone(),
		Label:   label,
		Timeout: d.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}
