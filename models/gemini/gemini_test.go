package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/mzngu/Red-panda-x/models"
)

func newTestClient(t *testing.T, status int, responseBody string) (*Client, *Gemini_Request_Body, *string) {
	t.Helper()
	var captured Gemini_Request_Body
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)
	return &Client{Model: "gemini-2.0-flash", BaseURL: srv.URL, APIKey: "test-key"}, &captured, &path
}

func userRequest(text string) models.Model_Request {
	return models.Model_Request{
		User_Message: &models.User_Message{
			Role:    "user",
			Content: models.Content{Parts: []models.User_Part{{Text: text}}},
		},
	}
}

func TestGenerateTextResponse(t *testing.T) {
	client, captured, path := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"Bonjour !"}],"role":"model"}}]}`)

	resp, err := client.Generate(context.Background(), userRequest("Bonjour"), nil, "sois poli")
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", *path)
	assert.Equal(t, "Bonjour !", resp.Text())
	assert.Empty(t, resp.FunctionCalls())

	contents := *captured.Contents
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "Bonjour", contents[0].Parts[0].Text)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "sois poli", captured.SystemInstruction.Parts[0].Text)
	assert.Nil(t, captured.Tools)
}

func TestGenerateFunctionCallResponse(t *testing.T) {
	client, captured, _ := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"listEvents","args":{}}}],"role":"model"}}]}`)

	tools := []models.FunctionDeclaration{{Name: "listEvents", Parameters: models.Parameters{Type: "object"}}}
	resp, err := client.Generate(context.Background(), userRequest("mes rendez-vous"), tools, "")
	require.NoError(t, err)

	calls := resp.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "listEvents", calls[0].Name)
	assert.NotNil(t, calls[0].Args)

	require.NotNil(t, captured.Tools)
	declarations := (*captured.Tools)[0].FunctionDeclarations
	require.Len(t, declarations, 1)
	assert.Equal(t, "listEvents", declarations[0].Name)
}

func TestGenerateToolResultsUnrolled(t *testing.T) {
	client, captured, _ := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"ok"}],"role":"model"}}]}`)

	results := []models.Tool_Result{
		{Tool_ID: "id-1", Tool_Name: "addEvent", Tool_Output: `{"id":3}`},
		{Tool_ID: "id-2", Tool_Name: "listEvents", Tool_Output: "not json"},
	}
	req := userRequest("ajoute")
	req.Tool_Results = &results

	_, err := client.Generate(context.Background(), req, nil, "")
	require.NoError(t, err)

	contents := *captured.Contents
	require.Len(t, contents, 3)
	assert.Equal(t, "ajoute", contents[0].Parts[0].Text)

	first := contents[1].Parts[0].FunctionResponse
	require.NotNil(t, first)
	assert.Equal(t, "addEvent", first.Name)
	assert.Equal(t, float64(3), first.Response["id"])

	second := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, second)
	assert.Equal(t, "not json", second.Response["output"])
}

func TestGenerateInlineImage(t *testing.T) {
	client, captured, _ := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"une ordonnance"}],"role":"model"}}]}`)

	req := models.Model_Request{
		User_Message: &models.User_Message{
			Role: "user",
			Content: models.Content{Parts: []models.User_Part{
				{Text: "lis ça"},
				{InlineData: &models.InlineData{MimeType: "image/png", Data: "aGVsbG8="}},
			}},
		},
	}
	_, err := client.Generate(context.Background(), req, nil, "")
	require.NoError(t, err)

	parts := (*captured.Contents)[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
	assert.Equal(t, "aGVsbG8=", parts[1].InlineData.Data)
}

func TestGenerateRejectsEmptyRequest(t *testing.T) {
	client := &Client{Model: "gemini-2.0-flash"}
	_, err := client.Generate(context.Background(), models.Model_Request{}, nil, "")
	assert.Error(t, err)
}

func TestGenerateNon200(t *testing.T) {
	client, _, _ := newTestClient(t, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`)

	_, err := client.Generate(context.Background(), userRequest("bonjour"), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGenerateMalformedResponseBody(t *testing.T) {
	client, _, _ := newTestClient(t, http.StatusOK, `{broken`)

	_, err := client.Generate(context.Background(), userRequest("bonjour"), nil, "")
	assert.Error(t, err)
}

func TestGenerateDefensiveDecode(t *testing.T) {
	// empty candidate content must produce an empty response, not a fault
	client, _, _ := newTestClient(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{}],"role":"model"}}]}`)

	resp, err := client.Generate(context.Background(), userRequest("bonjour"), nil, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Parts)
	assert.Equal(t, "", resp.Text())
}
