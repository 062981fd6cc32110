package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type OpenAIGenerator struct {
	Client  *http.Client
	Key     string
	BaseURL string
}

func NewOpenAIGenerator(i *do.Injector) (Generator, error) {
	return &OpenAIGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		Key:     do.MustInvokeNamed[string](i, "openai_key"),
		BaseURL: do.MustInvokeNamed[string](i, "openai_base_url"),
	}, nil
}

type openAIRequest struct {
	Params
	ResponseFormat string `json:"response_format"`
}

type openAIImage struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type openAIResponse struct {
	Data  []openAIImage `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (g *OpenAIGenerator) Check() error {
	return lo.Ternary(g.Key == "", ErrMissingKey, nil)
}

func (g *OpenAIGenerator) Generate(ctx context.Context, params Params) ([]string, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("openai").With("model", params.Model, "n", params.N)
	logger.Debug("requesting images")

	if err := g.Check(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(openAIRequest{Params: params, ResponseFormat: "url"})
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(lo.Ternary(g.BaseURL != "", g.BaseURL, DefaultBaseURL), "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.Key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out openAIResponse
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && out.Error != nil {
			apiErr.Message, apiErr.Type, apiErr.Code = out.Error.Message, out.Error.Type, out.Error.Code
		}
		logger.Debug("provider rejected request", "status", resp.StatusCode, "error", apiErr.Message)
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	urls := lo.FilterMap(out.Data, func(d openAIImage, _ int) (string, bool) {
		return d.URL, d.URL != ""
	})
	if len(urls) == 0 {
		return nil, ErrNoImage
	}

	logger.Debug("received images", "count", len(urls))
	return urls, nil
}
