package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenerateSimple is the degraded path used when the tool-enabled call fails:
// a single no-tools GenerateContent over the flattened conversation history,
// via the official SDK. Returns the response text.
func (c *Client) GenerateSimple(ctx context.Context, history []string, systemInstruction string) (string, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var config *genai.GenerateContentConfig
	if systemInstruction != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		}
	}

	result, err := client.Models.GenerateContent(
		ctx,
		c.model(),
		genai.Text(strings.Join(history, "\n")),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("fallback generation failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in fallback response")
	}

	out := ""
	for _, part := range result.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out, nil
}
