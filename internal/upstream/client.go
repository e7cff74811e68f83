// Package upstream is the shared HTTP plumbing for the weather, text
// generation and speech services: one resty client per service behind a
// circuit breaker, with non-2xx answers turned into *Error.
//
// Calls are never retried.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

const maxBodyInError = 200

// ErrCircuitOpen is returned while the breaker for a service is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Error describes a failed upstream call. Status is 0 for transport failures.
type Error struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Service, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, e.Body)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client wraps a resty client and a breaker for one named service.
type Client struct {
	name    string
	http    *resty.Client
	circuit *gobreaker.CircuitBreaker
}

// New creates a client whose requests time out after timeout.
func New(name string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		name: name,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "weather-voice/1.0"),
		circuit: cb,
	}
}

// Name returns the service name used in errors.
func (c *Client) Name() string {
	return c.name
}

// Do executes the request built by send exactly once.
func (c *Client) Do(ctx context.Context, send func(req *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := send(c.http.R().SetContext(ctx))
		if execErr != nil {
			return nil, &Error{Service: c.name, Err: execErr}
		}
		if !resp.IsSuccess() {
			return nil, &Error{
				Service: c.name,
				Status:  resp.StatusCode(),
				Body:    truncate(resp.String(), maxBodyInError),
			}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %v", c.name, ErrCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
