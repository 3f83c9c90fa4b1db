package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzngu/Red-panda-x/logger"
)

type recordedRequest struct {
	Method string
	Path   string
	Cookie string
	Body   map[string]interface{}
}

func newTestInvoker(t *testing.T, status int, responseBody string) (*Invoker, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		if c, err := r.Cookie("session_token"); err == nil {
			rec.Cookie = c.Value
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)
	return NewInvoker(srv.URL, logger.NewNop()), rec
}

func TestInvokeAddEvent(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusCreated, `{"id":12}`)

	out := inv.Invoke(context.Background(), "addEvent", map[string]interface{}{
		"title":    "Rendez-vous cardiologue",
		"start_dt": "2025-09-03T15:00:00+02:00",
		"end_dt":   "2025-09-03T16:00:00+02:00",
	}, "tok")

	assert.Equal(t, `{"id":12}`, out)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/calendar/events", rec.Path)
	assert.Equal(t, "tok", rec.Cookie)
	assert.Equal(t, "Rendez-vous cardiologue", rec.Body["title"])
}

func TestInvokeListEvents(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusOK, `{"events":[]}`)

	out := inv.Invoke(context.Background(), "listEvents", map[string]interface{}{}, "tok")

	assert.Equal(t, `{"events":[]}`, out)
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/calendar/events", rec.Path)
}

func TestInvokeDeleteEvent(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusOK, `{"deleted":true}`)

	out := inv.Invoke(context.Background(), "deleteEvent", map[string]interface{}{"id": float64(7)}, "tok")

	assert.Equal(t, `{"deleted":true}`, out)
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/calendar/events/7", rec.Path)
}

func TestInvokeDeleteEventStringID(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusOK, `{"deleted":true}`)

	out := inv.Invoke(context.Background(), "deleteEvent", map[string]interface{}{"id": "12"}, "tok")

	assert.Equal(t, `{"deleted":true}`, out)
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/calendar/events/12", rec.Path)
}

func TestInvokeDeleteEventMissingID(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusOK, `{}`)

	out := inv.Invoke(context.Background(), "deleteEvent", map[string]interface{}{}, "tok")

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "deleteEvent requires an id", body["error"])
	assert.Empty(t, rec.Method)
}

func TestInvokeNon2xx(t *testing.T) {
	inv, _ := newTestInvoker(t, http.StatusUnauthorized, `{"detail":"no"}`)

	out := inv.Invoke(context.Background(), "listEvents", nil, "")

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Contains(t, body["error"], "401")
}

func TestInvokeUnknownTool(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusOK, `{}`)

	out := inv.Invoke(context.Background(), "sendEmail", nil, "tok")

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "Unknown tool sendEmail", body["error"])
	assert.Empty(t, rec.Method)
}

func TestInvokeNoTokenNoCookie(t *testing.T) {
	inv, rec := newTestInvoker(t, http.StatusOK, `{"events":[]}`)

	inv.Invoke(context.Background(), "listEvents", nil, "")

	assert.Empty(t, rec.Cookie)
}

func TestDeclarations(t *testing.T) {
	decls := Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "addEvent", decls[0].Name)
	assert.Equal(t, "listEvents", decls[1].Name)
	assert.Equal(t, "deleteEvent", decls[2].Name)
}
