package weather

import (
	"context"
)

// Report is a decoded timeline together with the raw response body,
// which is kept for inspection.
type Report struct {
	Timeline Timeline
	Raw      []byte
}

// Provider abstracts the weather data source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, location string) (*Report, error)
}
