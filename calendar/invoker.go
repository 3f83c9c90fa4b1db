// Package calendar executes the calendar tool calls requested by the model
// against the calendar HTTP API.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mzngu/Red-panda-x/logger"
	"github.com/mzngu/Red-panda-x/models"
)

const sessionCookieName = "session_token"

// Invoker maps tool calls onto the calendar API. It is stateless and safe to
// share across connections.
type Invoker struct {
	BaseURL    string
	HTTPClient *http.Client
	Log        *logger.Logger
}

// NewInvoker creates an Invoker with the 10s per-call timeout every calendar
// request carries.
func NewInvoker(baseURL string, log *logger.Logger) *Invoker {
	return &Invoker{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Log:        log,
	}
}

// Declarations returns the tool set this invoker can execute.
func (inv *Invoker) Declarations() []models.FunctionDeclaration {
	return Declarations()
}

// Invoke executes one tool call and always returns a JSON body: the API
// response on success, an {"error": ...} object on any failure. Unknown tool
// names are rejected without a network call.
func (inv *Invoker) Invoke(ctx context.Context, name string, args map[string]interface{}, token string) string {
	var (
		body []byte
		err  error
	)

	switch name {
	case "addEvent":
		body, err = inv.do(ctx, http.MethodPost, "/calendar/events", args, token)
	case "listEvents":
		body, err = inv.do(ctx, http.MethodGet, "/calendar/events", nil, token)
	case "deleteEvent":
		id, ok := eventID(args)
		if !ok {
			return errorBody("deleteEvent requires an id")
		}
		body, err = inv.do(ctx, http.MethodDelete, "/calendar/events/"+id, nil, token)
	default:
		return errorBody("Unknown tool " + name)
	}

	if err != nil {
		inv.Log.Warn("Calendar tool call failed", "tool", name, "error", err)
		return errorBody(err.Error())
	}
	return string(body)
}

func (inv *Invoker) do(ctx context.Context, method, path string, payload map[string]interface{}, token string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode arguments: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, inv.BaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}

	resp, err := inv.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// eventID renders the id argument for the URL path as-is, whatever shape the
// model sent it in. Only a missing id is rejected.
func eventID(args map[string]interface{}) (string, bool) {
	switch v := args["id"].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case json.Number:
		return v.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func errorBody(message string) string {
	encoded, _ := json.Marshal(map[string]string{"error": message})
	return string(encoded)
}
