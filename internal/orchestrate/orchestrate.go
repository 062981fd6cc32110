package orchestrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmorgan81/imagine/internal/image"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/prompt"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Request struct {
	Prompt string
}

// Result holds image URLs in the order their calls were issued, whatever
// order the calls completed in.
type Result struct {
	Images []string
}

// call is one provider request and its outcome. Each goroutine writes only
// its own call.
type call struct {
	prompt string
	urls   []string
	err    error
}

type Orchestrator struct {
	generator image.Generator
	config    Config
}

func New(generator image.Generator, config Config) *Orchestrator {
	return &Orchestrator{generator: generator, config: config}
}

func NewOrchestrator(i *do.Injector) (*Orchestrator, error) {
	config := do.MustInvoke[Config](i)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return New(do.MustInvoke[image.Generator](i), config), nil
}

func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("orchestrator").With(
		"mode", o.config.Mode,
		"dispatch", o.config.Dispatch,
		"count", o.config.Count,
	)

	if c, ok := o.generator.(image.Checker); ok {
		if err := c.Check(); err != nil {
			logger.Error("provider not configured", "error", err)
			return Result{}, fmt.Errorf("%w: %w", ErrNotConfigured, err)
		}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, ErrPromptRequired
	}

	if o.config.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.MaxDuration)
		defer cancel()
	}

	logger.Info("generating images", "prompt", req.Prompt)

	var calls []call
	if o.config.Mode == Economy {
		calls = []call{o.issue(ctx, 0, req.Prompt, o.config.Count)}
	} else {
		calls = o.fanOut(ctx, prompt.Variants(req.Prompt, o.config.Count, o.config.Variation))
	}

	images := lo.Flatten(lo.Map(calls, func(c call, _ int) []string { return c.urls }))
	if len(images) > o.config.Count {
		images = images[:o.config.Count]
	}
	errs := lo.FilterMap(calls, func(c call, _ int) (error, bool) { return c.err, c.err != nil })

	if err := ctx.Err(); err != nil && len(images) < o.config.Count && o.config.OnTimeout == Fail {
		logger.Warn("deadline reached, discarding finished images", "finished", len(images))
		return Result{}, fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if len(images) == 0 {
		failed := &FailedError{Errors: errs}
		logger.Error("every image call failed", "error", failed.Error())
		return Result{}, failed
	}

	logger.Info("generated images", "succeeded", len(images), "failed", len(errs))
	return Result{Images: images}, nil
}

func (o *Orchestrator) fanOut(ctx context.Context, prompts []string) []call {
	calls := make([]call, len(prompts))

	switch o.config.Dispatch {
	case Sequential:
		for i, p := range prompts {
			if err := ctx.Err(); err != nil {
				calls[i] = call{prompt: p, err: err}
				continue
			}
			calls[i] = o.issue(ctx, i, p, 1)
		}
	case Hybrid:
		if len(prompts) > 0 {
			calls[0] = o.issue(ctx, 0, prompts[0], 1)
			o.concurrently(ctx, prompts[1:], calls[1:], 1)
		}
	default:
		o.concurrently(ctx, prompts, calls, 0)
	}
	return calls
}

// concurrently settles every call; a failure never cancels its siblings, so
// the group has no derived context and every func returns nil.
func (o *Orchestrator) concurrently(ctx context.Context, prompts []string, calls []call, offset int) {
	if len(prompts) == 0 {
		return
	}

	var group errgroup.Group
	group.SetLimit(len(prompts))
	for i, p := range prompts {
		i, p := i, p
		group.Go(func() error {
			calls[i] = o.issue(ctx, offset+i, p, 1)
			return nil
		})
	}
	_ = group.Wait()
}

func (o *Orchestrator) issue(ctx context.Context, index int, p string, n int) call {
	logger := log.FromContextOrDiscard(ctx).WithGroup("orchestrator").With("call", index+1)

	urls, err := o.generator.Generate(ctx, image.Params{
		Model:  o.config.model(),
		Prompt: p,
		N:      n,
		Size:   o.config.size(),
	})
	urls = lo.Compact(urls)
	if err == nil && len(urls) == 0 {
		err = image.ErrNoImage
	}
	if err != nil {
		logger.Warn("image call failed", "error", err)
		return call{prompt: p, err: err}
	}
	if len(urls) > n {
		urls = urls[:n]
	}

	logger.Debug("image call succeeded", "images", len(urls))
	return call{prompt: p, urls: urls}
}
