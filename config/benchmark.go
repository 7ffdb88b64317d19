package config

import (
	"github.com/AntonStoeckl/dynamic-entities-go/benchmark"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// NewClient creates a statistics client for the configured endpoint.
func (c BenchmarkConfig) NewClient(logger entity.Logger) (*benchmark.Client, error) {
	return benchmark.NewClient(c.Endpoint, benchmark.WithTimeout(c.Timeout), benchmark.WithLogger(logger))
}
