// internal/tests/helpers_test.go
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kisanexport/storefront/internal/services"
)

// A PNG signature is enough for content sniffing to report image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type response struct {
	*httptest.ResponseRecorder
	body envelope
}

func (r *response) object(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(r.body.Data, &out), r.Body.String())
	return out
}

func (r *response) list(t *testing.T) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, json.Unmarshal(r.body.Data, &out), r.Body.String())
	return out
}

// client is a browser-like caller that keeps the cookies it is handed.
type client struct {
	t       *testing.T
	handler http.Handler
	bearer  string
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, handler http.Handler) *client {
	return &client{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(method, path string, body io.Reader, contentType string) *response {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}

	res := &response{ResponseRecorder: w}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &res.body), w.Body.String())
	}
	return res
}

func (c *client) get(path string) *response {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil, "")
}

func (c *client) delete(path string) *response {
	c.t.Helper()
	return c.do(http.MethodDelete, path, nil, "")
}

func (c *client) sendJSON(method, path string, payload interface{}) *response {
	c.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(c.t, err)
	return c.do(method, path, bytes.NewReader(data), "application/json")
}

func (c *client) sendForm(method, path string, fields map[string]string, files map[string][]string) *response {
	c.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(c.t, writer.WriteField(name, value))
	}
	for name, filenames := range files {
		for _, filename := range filenames {
			part, err := writer.CreateFormFile(name, filename)
			require.NoError(c.t, err)
			_, err = part.Write(pngBytes)
			require.NoError(c.t, err)
		}
	}
	require.NoError(c.t, writer.Close())
	return c.do(method, path, &buf, writer.FormDataContentType())
}

// fakeGateway stands in for Stripe. Intents stay unpaid until succeed is called.
type fakeGateway struct {
	mu      sync.Mutex
	intents map[string]*services.PaymentIntent
	keys    map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents: make(map[string]*services.PaymentIntent),
		keys:    make(map[string]string),
	}
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*services.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.keys[idempotencyKey]; ok {
		copied := *g.intents[id]
		return &copied, nil
	}
	id := fmt.Sprintf("pi_%d", len(g.intents)+1)
	g.intents[id] = &services.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	g.keys[idempotencyKey] = id
	copied := *g.intents[id]
	return &copied, nil
}

func (g *fakeGateway) GetPaymentIntent(ctx context.Context, id string) (*services.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent: %s", id)
	}
	copied := *pi
	return &copied, nil
}

func (g *fakeGateway) succeed(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id].Status = services.PaymentStatusSucceeded
}
