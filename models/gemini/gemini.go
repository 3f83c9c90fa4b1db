package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	models "github.com/mzngu/Red-panda-x/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client talks to the Gemini generateContent REST endpoint.
// The zero BaseURL uses the public API; tests point it at a local server.
type Client struct {
	Model   string
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

// NewClient returns a Client for the given model. The API key comes from the
// GEMINI_API_KEY environment variable unless set explicitly.
func NewClient(model string) *Client {
	return &Client{
		Model:      model,
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return defaultBaseURL
}

func (c *Client) model() string {
	if c.Model != "" {
		return c.Model
	}
	return "gemini-2.5-flash"
}

// Generate performs a single generateContent call. The request must contain a
// user message; tool results from the previous round, if any, are unrolled
// into their own content blocks after the prompt parts.
func (c *Client) Generate(ctx context.Context, request models.Model_Request, tools []models.FunctionDeclaration, systemInstruction string) (models.Model_Response, error) {
	if request.User_Message == nil && request.Tool_Results == nil {
		return models.Model_Response{}, fmt.Errorf("request must contain either user message or tool results")
	}

	body, err := create_gemini_request(request, tools, systemInstruction)
	if err != nil {
		return models.Model_Response{}, fmt.Errorf("failed to create gemini request: %w", err)
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return models.Model_Response{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	geminiResponse, err := c.make_request(ctx, string(jsonBytes))
	if err != nil {
		return models.Model_Response{}, err
	}
	return gemini_response_to_model_response(geminiResponse), nil
}

func (c *Client) make_request(ctx context.Context, request_body string) (Gemini_response, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL(), c.model(), c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(request_body))
	if err != nil {
		return Gemini_response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Gemini_response{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Gemini_response{}, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Gemini_response{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var response Gemini_response
	if err := json.Unmarshal(respBody, &response); err != nil {
		return Gemini_response{}, fmt.Errorf("error unmarshalling response: %w", err)
	}

	return response, nil
}

// gemini_response_to_model_response decodes the wire response defensively:
// absent fields land as zero values, never as a fault.
func gemini_response_to_model_response(response Gemini_response) models.Model_Response {
	modelResponse := models.Model_Response{}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			var modelPart models.Model_Part
			if part.Text != nil && *part.Text != "" {
				modelPart.Text = part.Text
			}
			if part.FunctionCall != nil {
				args := part.FunctionCall.Args
				if args == nil {
					args = map[string]interface{}{}
				}
				modelPart.FunctionCall = &models.FunctionCall{
					Name: part.FunctionCall.Name,
					Args: args,
				}
			}
			if modelPart.Text == nil && modelPart.FunctionCall == nil {
				continue
			}
			modelResponse.Parts = append(modelResponse.Parts, modelPart)
		}
	}
	return modelResponse
}

// create_gemini_request turns a Model_Request into the wire body: the prompt
// parts first, then one content block per tool result (function responses
// always carry the "user" role).
func create_gemini_request(request models.Model_Request, tools []models.FunctionDeclaration, systemInstruction string) (Gemini_Request_Body, error) {
	allContents := []Gemini_Content{}

	if request.User_Message != nil {
		currentUserParts := []Request_Part{}
		for _, part := range request.User_Message.Content.Parts {
			if part.FunctionResponse != nil {
				// Tool results belong in Tool_Results, not in the prompt parts.
				continue
			}
			if part.Text != "" {
				currentUserParts = append(currentUserParts, Request_Part{Text: part.Text})
			} else if part.InlineData != nil {
				currentUserParts = append(currentUserParts, Request_Part{
					InlineData: &InlineData{MimeType: part.InlineData.MimeType, Data: part.InlineData.Data},
				})
			}
		}
		if len(currentUserParts) > 0 {
			allContents = append(allContents, Gemini_Content{Role: "user", Parts: currentUserParts})
		}
	}

	if request.Tool_Results != nil {
		for _, tr := range *request.Tool_Results {
			var respMap map[string]interface{}
			if err := json.Unmarshal([]byte(tr.Tool_Output), &respMap); err != nil {
				// Wrap non-JSON output in a standard structure.
				respMap = map[string]interface{}{"output": tr.Tool_Output}
			}
			allContents = append(allContents, Gemini_Content{
				Role: "user",
				Parts: []Request_Part{{
					FunctionResponse: &models.FunctionResponse{ID: tr.Tool_ID, Name: tr.Tool_Name, Response: respMap},
				}},
			})
		}
	}

	if len(allContents) == 0 {
		// An empty-content turn still goes through: the model may respond to
		// the system instruction alone.
		allContents = append(allContents, Gemini_Content{Role: "user", Parts: []Request_Part{{Text: ""}}})
	}

	var gemini_tools *[]Gemini_Tools
	if len(tools) > 0 {
		t := []Gemini_Tools{{FunctionDeclarations: tools}}
		gemini_tools = &t
	}

	var system *SystemInstruction
	if systemInstruction != "" {
		system = &SystemInstruction{Parts: []SystemPart{{Text: systemInstruction}}}
	}

	return Gemini_Request_Body{
		Contents:          &allContents,
		Tools:             gemini_tools,
		SystemInstruction: system,
	}, nil
}
