package orchestrate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmorgan81/imagine/internal/prompt"
)

// Mode picks the provider model tier.
type Mode string

const (
	// Quality issues one single-image call per requested image.
	Quality Mode = "quality"
	// Economy asks the cheaper model for every image in one call.
	Economy Mode = "economy"
)

// Dispatch controls how single-image calls are scheduled in Quality mode.
type Dispatch string

const (
	Parallel   Dispatch = "parallel"
	Sequential Dispatch = "sequential"
	// Hybrid issues the first call alone and the rest concurrently.
	Hybrid Dispatch = "hybrid"
)

// TimeoutPolicy decides what a request returns once MaxDuration has passed.
type TimeoutPolicy string

const (
	// Partial returns whatever images finished before the deadline.
	Partial TimeoutPolicy = "partial"
	// Fail discards finished images and reports a timeout.
	Fail TimeoutPolicy = "fail"
)

const maxCount = 10

type Config struct {
	Count        int
	Mode         Mode
	Dispatch     Dispatch
	Variation    prompt.Variation
	QualityModel string
	EconomyModel string
	// Size is the requested resolution; empty picks a default for Mode.
	Size        string
	MaxDuration time.Duration
	OnTimeout   TimeoutPolicy
}

func DefaultConfig() Config {
	return Config{
		Count:        4,
		Mode:         Quality,
		Dispatch:     Parallel,
		Variation:    prompt.Identical,
		QualityModel: "dall-e-3",
		EconomyModel: "dall-e-2",
		MaxDuration:  60 * time.Second,
		OnTimeout:    Partial,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Count < 1 || c.Count > maxCount {
		errs = append(errs, fmt.Errorf("image count must be between 1 and %d, got %d", maxCount, c.Count))
	}
	if c.Mode != Quality && c.Mode != Economy {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Dispatch != Parallel && c.Dispatch != Sequential && c.Dispatch != Hybrid {
		errs = append(errs, fmt.Errorf("unknown dispatch %q", c.Dispatch))
	}
	if c.OnTimeout != Partial && c.OnTimeout != Fail {
		errs = append(errs, fmt.Errorf("unknown timeout policy %q", c.OnTimeout))
	}
	if c.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("max duration must not be negative, got %s", c.MaxDuration))
	}
	return errors.Join(errs...)
}

func (c Config) model() string {
	if c.Mode == Economy {
		return c.EconomyModel
	}
	return c.QualityModel
}

func (c Config) size() string {
	switch {
	case c.Size != "":
		return c.Size
	case c.Mode == Economy:
		return "512x512"
	default:
		return "1024x1024"
	}
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(normalize(s)); m {
	case "":
		return Quality, nil
	case Quality, Economy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

func ParseDispatch(s string) (Dispatch, error) {
	switch d := Dispatch(normalize(s)); d {
	case "":
		return Parallel, nil
	case Parallel, Sequential, Hybrid:
		return d, nil
	default:
		return "", fmt.Errorf("unknown dispatch %q", s)
	}
}

func ParseTimeoutPolicy(s string) (TimeoutPolicy, error) {
	switch p := TimeoutPolicy(normalize(s)); p {
	case "":
		return Partial, nil
	case Partial, Fail:
		return p, nil
	default:
		return "", fmt.Errorf("unknown timeout policy %q", s)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
