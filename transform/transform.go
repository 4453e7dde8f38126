package transform

import (
	"github.com/pkg/errors"
)

// Transform converts a value forwards with Encode and back again with Decode.
// Values of a type a Transform does not handle pass through unchanged.
type Transform interface {
	Encode(x interface{}) (interface{}, error)
	Decode(x interface{}) (interface{}, error)
	Name() string
}

// Pipeline applies a list of transforms in order.
type Pipeline struct {
	Transforms []Transform
}

func NewPipeline(t ...Transform) *Pipeline {
	return &Pipeline{Transforms: t}
}

// Encode runs each transform in turn, feeding the output of one into the next.
func (p *Pipeline) Encode(x interface{}) (interface{}, error) {
	var err error
	for _, t := range p.Transforms {
		if x, err = t.Encode(x); err != nil {
			return nil, errors.Wrapf(err, "error encoding with %v", t.Name())
		}
	}
	return x, nil
}

// Decode runs the transforms in reverse order.
func (p *Pipeline) Decode(x interface{}) (interface{}, error) {
	var err error
	for idx := len(p.Transforms) - 1; idx >= 0; idx-- {
		t := p.Transforms[idx]
		if x, err = t.Decode(x); err != nil {
			return nil, errors.Wrapf(err, "error decoding with %v", t.Name())
		}
	}
	return x, nil
}

func (p *Pipeline) Add(t Transform) {
	p.Transforms = append(p.Transforms, t)
}

func (p *Pipeline) TransformNames() []string {
	retval := make([]string, len(p.Transforms))
	for idx, t := range p.Transforms {
		retval[idx] = t.Name()
	}
	return retval
}
