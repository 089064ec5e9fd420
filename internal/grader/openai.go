package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/peoplebench/people-bench/internal/dataset"
	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/searcher"
)

// Judgment is the judge's answer for one (query, candidate) pair.
type Judgment struct {
	Match     bool
	Rationale string
}

// Judge issues one external call per (query, candidate) pair and
// returns a binary verdict. Implemented by the OpenAI judge; faked in
// tests.
type Judge interface {
	Judge(ctx context.Context, q dataset.Query, c searcher.Candidate) (Judgment, error)
}

// OpenAIJudgeConfig holds the judge model settings.
type OpenAIJudgeConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAIJudge grades candidates with an OpenAI-compatible chat model.
type OpenAIJudge struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIJudge creates the judge client.
func NewOpenAIJudge(cfg OpenAIJudgeConfig) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.ConfigError("judge: API key required (set OPENAI_API_KEY)")
	}
	if cfg.Model == "" {
		return nil, apperrors.ConfigError("judge: model required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIJudge{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

type judgeResponse struct {
	Explanation string  `json:"explanation"`
	Score       float64 `json:"score"`
}

// Judge implements the Judge interface.
func (j *OpenAIJudge) Judge(ctx context.Context, q dataset.Query, c searcher.Candidate) (Judgment, error) {
	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       j.model,
		Temperature: j.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(q, c)},
		},
	})
	if err != nil {
		return Judgment{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return Judgment{}, apperrors.JudgeError("empty judge response", nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var parsed judgeResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Judgment{}, apperrors.JudgeError("unparseable judge response", err).
			WithDetail("content", truncate(content, 200))
	}
	if parsed.Score < 0 || parsed.Score > 1 {
		return Judgment{}, apperrors.JudgeError(fmt.Sprintf("judge score out of range: %g", parsed.Score), nil)
	}

	return Judgment{
		Match:     parsed.Score >= 0.5,
		Rationale: parsed.Explanation,
	}, nil
}

// parseAPIError maps go-openai errors onto the app error taxonomy so
// the retry classifier can distinguish transient failures.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.JudgeError("judge API error", err).
			WithDetail("status", fmt.Sprintf("%d", apiErr.HTTPStatusCode))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.JudgeError("judge request failed", err).
			WithDetail("status", fmt.Sprintf("%d", reqErr.HTTPStatusCode))
	}

	return apperrors.JudgeError("judge call failed", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
