/**
 * @description
 * AI spending advisor backed by the OpenAI chat completions API. The
 * model is asked for a JSON object so the response can be decoded
 * directly into an Analysis.
 */
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/subtrack/subscription-service/internal/domain"
)

const systemPrompt = `You are an expert Financial Advisor specializing in subscription optimization.
Your goal is to save the user money and identify wasteful spending.

Analyze the provided subscription list.

Output MUST be valid JSON with this structure:
{
    "summary": "A 1-sentence punched summary of their spending habits.",
    "insights": [
        "Specific actionable advice 1 (e.g., 'Switch Netflix to annual...')",
        "Specific actionable advice 2 (e.g., 'You have 3 music apps, cancel 2...')",
        "Specific actionable advice 3"
    ],
    "risk_score": 1-10 (1=safe, 10=wasteful)
}

Rules:
1. Context Matters: If they only have 1-2 subscriptions and low total cost (<$50), the Risk Score should be LOW (1-3). Don't panic over small amounts.
2. Categorization: Netflix/Spotify are "Entertainment", NOT "Utilities". AWS/GitHub are "Productivity" or "Work".
3. Be Direct: Suggest cheaper alternatives or annual plans if common (Disney+, HBO, etc.).
4. Detect Duplicates: Mark having multiple similar services (e.g. 2 music apps) as High Risk.
5. Do NOT use markdown in the JSON values.`

// Analysis is the advisor's structured verdict on a spending portfolio.
type Analysis struct {
	Summary   string   `json:"summary"`
	Insights  []string `json:"insights"`
	RiskScore int      `json:"risk_score"`
}

// Client wraps the OpenAI API for spending analysis.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates an advisor client. The caller is expected to have
// checked that the API key is present.
func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		api:    openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// AnalyzeSpending asks the model for savings advice over the portfolio.
func (c *Client) AnalyzeSpending(ctx context.Context, subs []*domain.Subscription, totalMonthlyCost float64) (Analysis, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(subs, totalMonthlyCost)},
		},
		Temperature: 0.7,
		MaxTokens:   1024,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("no completion choices returned")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("ai advisor response", "model", c.model, "content", content)

	var analysis Analysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return analysis, nil
}

func userMessage(subs []*domain.Subscription, totalMonthlyCost float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is my subscription portfolio:\nTotal Monthly Cost: $%.2f\n\nSubscriptions:\n", totalMonthlyCost)
	for _, sub := range subs {
		fmt.Fprintf(&b, "- %s: $%.2f/%s (%s)\n", sub.Name, sub.Cost, sub.BillingCycleLabel(), sub.Category)
	}
	b.WriteString("\nAnalyze this and tell me how to save money.")
	return b.String()
}
