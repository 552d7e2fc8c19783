package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the JSON envelope every API response uses.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Decode unmarshals Data into dest.
func (e Envelope) Decode(t testing.TB, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dest), "data: %s", string(e.Data))
}

// Scenario is one request against a handler and the expected outcome.
type Scenario struct {
	Name         string
	Method       string
	URL          string
	Body         any // marshalled as JSON; a string or []byte is sent as-is
	Token        string
	Headers      map[string]string
	ExpectedCode int
	Check        func(t *testing.T, env Envelope)
}

// Run fires every scenario at h as a subtest, in order. Scenarios may depend
// on the state left by earlier ones.
func Run(t *testing.T, h http.Handler, scenarios []Scenario) {
	t.Helper()
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			rec := Call(t, h, s)
			env := DecodeEnvelope(t, rec)
			assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] status; body: %s", s.Name, rec.Body.String())
			if s.Check != nil {
				s.Check(t, env)
			}
		})
	}
}

// Call performs the scenario's request and returns the recorder.
func Call(t testing.TB, h http.Handler, s Scenario) *httptest.ResponseRecorder {
	t.Helper()

	method := s.Method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, s.URL, body(t, s.Body))
	if s.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// DecodeEnvelope parses the recorder body. Non-JSON bodies yield an empty
// envelope.
func DecodeEnvelope(t testing.TB, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return env
}

// AssertJSON compares two JSON documents ignoring key order and whitespace.
func AssertJSON(t testing.TB, expected string, actual []byte) bool {
	t.Helper()
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(expected), &exp), "expected is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &act), "actual is not valid JSON: %s", string(actual)) {
		return false
	}
	return assert.Equal(t, exp, act)
}

func body(t testing.TB, v any) io.Reader {
	switch b := v.(type) {
	case nil:
		return nil
	case string:
		return bytes.NewBufferString(b)
	case []byte:
		return bytes.NewReader(b)
	}
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}
