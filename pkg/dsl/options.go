package dsl

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/aretw0/grove/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type settings struct {
	options     domain.Options
	description string
}

// Option configures a context, an example or a hook at declaration time.
type Option func(*settings) error

// Timeout bounds the node's bodies and hooks. Zero disables the limit.
func Timeout(d time.Duration) Option {
	return func(s *settings) error {
		if d < 0 {
			return fmt.Errorf("%w: timeout must be >= 0, got %s", domain.ErrMalformedOptions, d)
		}
		s.options.Timeout = &d
		return nil
	}
}

// Random controls whether the children of a context run in random order.
func Random(random bool) Option {
	return func(s *settings) error {
		s.options.Random = &random
		return nil
	}
}

// Label sets the description of a hook.
func Label(description string) Option {
	return func(s *settings) error {
		s.description = description
		return nil
	}
}

// rawOptions mirrors the option map accepted by Options.
type rawOptions struct {
	Timeout *time.Duration `mapstructure:"timeout"`
	Random  *bool          `mapstructure:"random"`
}

// Options decodes a {timeout, random} map. Timeout accepts a time.Duration, a
// duration string ("250ms") or a number of milliseconds. Unknown keys and
// mistyped values are rejected.
func Options(m map[string]any) Option {
	return func(s *settings) error {
		var raw rawOptions
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:  DurationHook,
			ErrorUnused: true,
			Result:      &raw,
		})
		if err != nil {
			return err
		}
		if err := dec.Decode(m); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedOptions, err)
		}
		if raw.Timeout != nil {
			if err := Timeout(*raw.Timeout)(s); err != nil {
				return err
			}
		}
		if raw.Random != nil {
			s.options.Random = raw.Random
		}
		return nil
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

// DurationHook is a mapstructure decode hook converting duration strings and
// millisecond counts into time.Duration.
func DurationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case time.Duration:
		return v, nil
	case string:
		return time.ParseDuration(v)
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

func applyOptions(opts []Option) (settings, error) {
	var s settings
	var errs []error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&s); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}
