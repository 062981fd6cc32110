package inject

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/image"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/orchestrate"
	"github.com/dmorgan81/imagine/internal/param"
	"github.com/dmorgan81/imagine/internal/server"
	"github.com/dmorgan81/imagine/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"github.com/samber/lo"
)

func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[image.Generator](injector, image.NewOpenAIGenerator)
	do.Provide[orchestrate.Config](injector, func(i *do.Injector) (orchestrate.Config, error) {
		return orchestratorConfig(os.Getenv)
	})
	do.Provide[*orchestrate.Orchestrator](injector, orchestrate.NewOrchestrator)
	do.Provide[*store.Archiver](injector, store.NewArchiver)
	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*gin.Engine](injector, server.NewRouter)

	do.ProvideNamed[string](injector, "openai_key", func(i *do.Injector) (string, error) {
		return apiKey(ctx, i)
	})
	do.ProvideNamedValue[string](injector, "openai_base_url",
		lo.Ternary(os.Getenv("OPENAI_BASE_URL") != "", os.Getenv("OPENAI_BASE_URL"), image.DefaultBaseURL))
	do.ProvideNamedValue[string](injector, "port", lo.Ternary(os.Getenv("PORT") != "", os.Getenv("PORT"), "8080"))
	do.ProvideNamedValue[string](injector, "archive_bucket", os.Getenv("ARCHIVE_BUCKET"))
	do.ProvideNamedValue[string](injector, "archive_dir", os.Getenv("ARCHIVE_DIR"))
	do.ProvideNamed[string](injector, "archive_base_url", func(i *do.Injector) (string, error) {
		if v := os.Getenv("ARCHIVE_BASE_URL"); v != "" {
			return v, nil
		}
		if os.Getenv("ARCHIVE_DIR") != "" {
			return "http://localhost:" + do.MustInvokeNamed[string](i, "port") + "/images", nil
		}
		return "", nil
	})

	return injector
}

// apiKey prefers OPENAI_API_KEY and falls back to the parameter named by
// OPENAI_API_KEY_PARAM. A missing key is not fatal; requests report it.
func apiKey(ctx context.Context, i *do.Injector) (string, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	path := os.Getenv("OPENAI_API_KEY_PARAM")
	if path == "" {
		log.FromContextOrDiscard(ctx).Warn("OPENAI_API_KEY is not set")
		return "", nil
	}

	key, err := do.MustInvoke[param.Fetcher](i).Fetch(ctx, path)
	if err != nil {
		log.FromContextOrDiscard(ctx).Error("fetching api key", "path", path, "error", err)
		return "", nil
	}
	return key, nil
}
