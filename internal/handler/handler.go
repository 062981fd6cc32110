package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/orchestrate"
	"github.com/dmorgan81/imagine/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Input struct {
	Prompt string `json:"prompt"`
}

type Output struct {
	ImageURLs []string `json:"imageUrls,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type Handler struct {
	orchestrator *orchestrate.Orchestrator
	archiver     *store.Archiver
}

func New(orchestrator *orchestrate.Orchestrator, archiver *store.Archiver) *Handler {
	return &Handler{orchestrator: orchestrator, archiver: archiver}
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return New(
		do.MustInvoke[*orchestrate.Orchestrator](i),
		do.MustInvoke[*store.Archiver](i),
	), nil
}

// Generate runs one generate-images request given its raw JSON body and
// returns the HTTP status and payload.
func (h *Handler) Generate(ctx context.Context, body []byte) (int, Output) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("handler")

	var input Input
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			logger.Warn("invalid request body", "error", err)
			return http.StatusBadRequest, Output{Error: "Invalid request body"}
		}
	}

	res, err := h.orchestrator.Generate(ctx, orchestrate.Request{Prompt: input.Prompt})
	if err != nil {
		status, out := fromError(err)
		logger.Info("request failed", "status", status, "error", out.Error)
		return status, out
	}

	images := h.archiver.Archive(ctx, input.Prompt, res.Images)
	logger.Info("request succeeded", "images", len(images), "archived", h.archiver.Enabled())
	return http.StatusOK, Output{ImageURLs: images}
}

func fromError(err error) (int, Output) {
	var failed *orchestrate.FailedError
	switch {
	case errors.Is(err, orchestrate.ErrPromptRequired):
		return http.StatusBadRequest, Output{Error: "Prompt is required"}
	case errors.Is(err, orchestrate.ErrNotConfigured):
		return http.StatusInternalServerError, Output{Error: "Server configuration error: API key is missing"}
	case errors.As(err, &failed):
		return http.StatusInternalServerError, Output{Error: lo.Ternary(failed.Error() != "", failed.Error(), "Failed to generate images")}
	default:
		return http.StatusInternalServerError, Output{Error: lo.Ternary(err.Error() != "", err.Error(), "Failed to process request")}
	}
}

// Handle serves Lambda function URL and API Gateway HTTP API invocations.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("Handler").With(
		"method", req.RequestContext.HTTP.Method,
		"path", req.RawPath,
		"request_id", req.RequestContext.RequestID,
	)
	logger.Info("handling lambda invocation")
	ctx = log.NewContext(ctx, logger)

	if req.RequestContext.HTTP.Method != http.MethodPost {
		return respond(http.StatusMethodNotAllowed, Output{Error: "Method not allowed"}, map[string]string{"Allow": http.MethodPost})
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return respond(http.StatusBadRequest, Output{Error: "Invalid request body"}, nil)
		}
		body = decoded
	}

	status, out := h.Generate(ctx, body)
	return respond(status, out, nil)
}

func respond(status int, out Output, headers map[string]string) (events.APIGatewayV2HTTPResponse, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    lo.Assign(map[string]string{"Content-Type": "application/json"}, headers),
		Body:       string(data),
	}, nil
}
