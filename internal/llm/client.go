// Package llm talks to an OpenAI-compatible chat completions endpoint and
// turns business profiles and free-form briefs into agent prompts.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/prompts"
	"voiceagent-platform/pkg/logger"
)

var ErrNotConfigured = errors.New("llm: OPENAI_API_KEY is not set")

// Client implements prompts.Generator on top of go-openai.
type Client struct {
	api   *openai.Client
	model string
}

func New(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Client{
		api:   openai.NewClientWithConfig(clientConfig),
		model: cfg.Model,
	}, nil
}

const generateSystemMessage = `You write system prompts for AI voice agents that take phone calls.
Given a business profile, produce a complete system prompt in markdown and a
short set of welcome messages the agent can open calls with.
Respond with a JSON object: {"finalPrompt": string, "welcomeMessages": [string]}.`

const generateFromTextSystemMessage = `You write system prompts for AI voice agents that take phone calls.
The user gives you a free-form description of their business and what the
agent should do. Produce a complete system prompt in markdown and a short set
of welcome messages the agent can open calls with.
Respond with a JSON object: {"finalPrompt": string, "welcomeMessages": [string]}.`

const formatSystemMessage = `You reformat system prompts for AI voice agents.
Restructure the prompt the user gives you into clean markdown sections.
Do not add, remove, or change any instruction. Respond with the reformatted
prompt only, no commentary.`

const extractProfileSystemMessage = `You extract structured business facts from document text.
Respond with a JSON object using these keys, omitting any you cannot fill:
company_name, industry, website_url, description, target_audience,
value_proposition, services, faqs, objections, policies, call_type,
call_goal, tone. List keys take arrays of short strings.`

func (c *Client) GeneratePrompt(ctx context.Context, profile prompts.AgentPromptProfile) (prompts.GeneratedPrompt, error) {
	brief, err := json.Marshal(profile)
	if err != nil {
		return prompts.GeneratedPrompt{}, fmt.Errorf("llm: marshal profile: %w", err)
	}
	return c.completeJSON(ctx, "generate_prompt", generateSystemMessage, string(brief))
}

func (c *Client) GenerateFromText(ctx context.Context, text string) (prompts.GeneratedPrompt, error) {
	return c.completeJSON(ctx, "generate_from_text", generateFromTextSystemMessage, text)
}

func (c *Client) FormatPrompt(ctx context.Context, raw string) (string, error) {
	content, err := c.complete(ctx, "format_prompt", formatSystemMessage, raw, false)
	if err != nil {
		return "", err
	}
	formatted := strings.TrimSpace(stripCodeFence(content))
	if formatted == "" {
		return "", errors.New("llm: empty formatting response")
	}
	return formatted, nil
}

func (c *Client) ExtractProfile(ctx context.Context, text string) (prompts.AgentPromptProfile, error) {
	content, err := c.complete(ctx, "extract_profile", extractProfileSystemMessage, text, true)
	if err != nil {
		return prompts.AgentPromptProfile{}, err
	}

	var profile prompts.AgentPromptProfile
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &profile); err != nil {
		return prompts.AgentPromptProfile{}, fmt.Errorf("llm: parse profile response: %w", err)
	}
	return profile, nil
}

func (c *Client) completeJSON(ctx context.Context, op, system, user string) (prompts.GeneratedPrompt, error) {
	content, err := c.complete(ctx, op, system, user, true)
	if err != nil {
		return prompts.GeneratedPrompt{}, err
	}

	generated, err := ParseGenerated(content)
	if err != nil {
		return prompts.GeneratedPrompt{}, err
	}
	return generated, nil
}

func (c *Client) complete(ctx context.Context, op, system, user string, jsonMode bool) (string, error) {
	log := logger.From(ctx)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error("llm request failed",
			slog.String("op", op),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("llm: %s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: %s: no choices in response", op)
	}

	log.Info("llm request completed",
		slog.String("op", op),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// ParseGenerated decodes a generation response. Models sometimes wrap JSON in
// a markdown code fence even in JSON mode, so the fence is stripped first.
func ParseGenerated(content string) (prompts.GeneratedPrompt, error) {
	var generated prompts.GeneratedPrompt
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &generated); err != nil {
		return prompts.GeneratedPrompt{}, fmt.Errorf("llm: parse generation response: %w", err)
	}
	if strings.TrimSpace(generated.FinalPrompt) == "" {
		return prompts.GeneratedPrompt{}, errors.New("llm: generation response has no prompt")
	}
	return generated, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
