package transform

import (
	"fmt"
)

const (
	EnvDevelopment         = "development"
	EnvProduction          = "production"
	connectionTransformStr = "ConnectionTransform"
	devMaxFetchSize        = 100
	devDefaultFetchSize    = 1000
	devTimeoutSeconds      = 60
	prodFetchSize          = 10000
	prodMaxWorkers         = 4
	prodTimeoutSeconds     = 300
)

// ConnectionParams are the tuning settings of a transfer. Zero means unset.
type ConnectionParams struct {
	FetchSize      int `json:"fetch_size"`
	MaxWorkers     int `json:"max_workers"`
	TimeoutSeconds int `json:"timeout"`
}

func (c ConnectionParams) String() string {
	return fmt.Sprintf("fetch_size=%d max_workers=%d timeout=%d", c.FetchSize, c.MaxWorkers, c.TimeoutSeconds)
}

// ConnectionTransform tunes ConnectionParams for a target environment.
// Environments other than development and production leave the params unchanged.
type ConnectionTransform struct {
	Env      string
	original *ConnectionParams
}

func NewConnectionTransform(env string) *ConnectionTransform {
	if env == "" {
		env = EnvProduction
	}
	return &ConnectionTransform{Env: env}
}

func (c *ConnectionTransform) Name() string {
	return connectionTransformStr
}

func (c *ConnectionTransform) Encode(x interface{}) (interface{}, error) {
	p, ok := x.(ConnectionParams)
	if !ok {
		return x, nil
	}
	orig := p
	c.original = &orig
	switch c.Env {
	case EnvDevelopment:
		if p.FetchSize == 0 {
			p.FetchSize = devDefaultFetchSize
		}
		if p.FetchSize > devMaxFetchSize {
			p.FetchSize = devMaxFetchSize
		}
		p.MaxWorkers = 1
		p.TimeoutSeconds = devTimeoutSeconds
	case EnvProduction:
		if p.FetchSize == 0 {
			p.FetchSize = prodFetchSize
		}
		if p.MaxWorkers == 0 {
			p.MaxWorkers = prodMaxWorkers
		}
		if p.TimeoutSeconds == 0 {
			p.TimeoutSeconds = prodTimeoutSeconds
		}
	}
	return p, nil
}

// Decode returns the params seen by the last Encode, or x if there was none.
func (c *ConnectionTransform) Decode(x interface{}) (interface{}, error) {
	if _, ok := x.(ConnectionParams); !ok {
		return x, nil
	}
	if c.original != nil {
		return *c.original, nil
	}
	return x, nil
}
