package inject

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmorgan81/imagine/internal/orchestrate"
	"github.com/dmorgan81/imagine/internal/prompt"
)

// orchestratorConfig reads the orchestrator settings through getenv,
// keeping defaults for unset variables.
func orchestratorConfig(getenv func(string) string) (orchestrate.Config, error) {
	c := orchestrate.DefaultConfig()
	var errs []error

	var err error
	if c.Mode, err = orchestrate.ParseMode(getenv("IMAGE_MODE")); err != nil {
		errs = append(errs, err)
	}
	if c.Dispatch, err = orchestrate.ParseDispatch(getenv("DISPATCH")); err != nil {
		errs = append(errs, err)
	}
	if c.Variation, err = prompt.ParseVariation(getenv("VARIATION")); err != nil {
		errs = append(errs, err)
	}
	if c.OnTimeout, err = orchestrate.ParseTimeoutPolicy(getenv("ON_TIMEOUT")); err != nil {
		errs = append(errs, err)
	}
	if v := getenv("IMAGE_COUNT"); v != "" {
		if c.Count, err = strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("IMAGE_COUNT: %w", err))
		}
	}
	if v := getenv("MAX_DURATION"); v != "" {
		if c.MaxDuration, err = parseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("MAX_DURATION: %w", err))
		}
	}
	if v := getenv("QUALITY_MODEL"); v != "" {
		c.QualityModel = v
	}
	if v := getenv("ECONOMY_MODEL"); v != "" {
		c.EconomyModel = v
	}
	c.Size = getenv("IMAGE_SIZE")

	if err := errors.Join(errs...); err != nil {
		return orchestrate.Config{}, err
	}
	return c, c.Validate()
}

// parseDuration accepts Go durations ("90s") and bare seconds ("60").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
