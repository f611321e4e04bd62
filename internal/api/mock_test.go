package api

import (
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
)

// mockDoer records requests and replies with a canned response
type mockDoer struct {
	status      int
	body        string
	contentType string
	err         error

	requests []*fhttp.Request
	bodies   []string
}

func (m *mockDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.requests = append(m.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.bodies = append(m.bodies, string(data))
	} else {
		m.bodies = append(m.bodies, "")
	}

	if m.err != nil {
		return nil, m.err
	}

	header := make(fhttp.Header)
	if m.contentType != "" {
		header.Set("Content-Type", m.contentType)
	}
	return &fhttp.Response{
		StatusCode: m.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(m.body)),
	}, nil
}

func (m *mockDoer) lastBody(t *testing.T) gjson.Result {
	t.Helper()
	if len(m.bodies) == 0 {
		t.Fatal("no request recorded")
	}
	body := m.bodies[len(m.bodies)-1]
	if !gjson.Valid(body) {
		t.Fatalf("request body is not JSON: %s", body)
	}
	return gjson.Parse(body)
}

func newTestClient(t *testing.T, doer *mockDoer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{
		WithAPIKey("test-key"),
		WithHTTPClient(doer),
		WithBaseURL("https://gemini.test/v1beta/"),
	}, opts...)

	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}
