package nodes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/wrap"
	"github.com/pflow-dev/pflow-core/pkg/logging"
)

const httpSubsystem = "HTTPNode"

func init() {
	Register("http", registry.InterfaceSpec{
		Description: "issues a single HTTP request",
		Params: []registry.FieldSpec{
			{Key: "url", Type: "string", Required: true},
			{Key: "method", Type: "string", Description: "defaults to GET"},
			{Key: "headers", Type: "object"},
			{Key: "body", Type: "string"},
			{Key: "timeout_seconds", Type: "number", Description: "defaults to 30"},
		},
		Outputs: []registry.FieldSpec{
			{Key: "response", Type: "string"},
			{Key: "status_code", Type: "number"},
			{Key: "headers", Type: "object"},
		},
		Actions: []string{"default", "error"},
	}, "internal/nodes.HTTPNode", func(params map[string]interface{}) wrap.NodeRunner {
		return NewHTTPNode(params)
	})
}

// HTTPNode issues a single HTTP request. Outputs response, status_code,
// headers. Post returns action "error" when status>=400, letting a
// workflow route HTTP failures without Exec itself returning an error
// (Exec errors are reserved for transport-level failures the retry loop
// should engage on).
type HTTPNode struct {
	Base
	client *http.Client
}

// NewHTTPNode constructs an HTTPNode from the node's raw IR params.
func NewHTTPNode(params map[string]interface{}) *HTTPNode {
	return &HTTPNode{Base: NewBase(params), client: &http.Client{}}
}

func (n *HTTPNode) Clone() wrap.NodeRunner {
	return &HTTPNode{Base: n.cloneBase(), client: &http.Client{}}
}

type httpPrep struct {
	url     string
	method  string
	headers map[string]string
	body    string
	timeout time.Duration
}

func (n *HTTPNode) Prep(ctx context.Context, s store.Accessor) (any, error) {
	url := n.stringParam("url", "")
	if url == "" {
		return nil, fmt.Errorf("http node: missing required param %q", "url")
	}
	method := strings.ToUpper(n.stringParam("method", "GET"))

	headers := map[string]string{}
	if raw, ok := n.Params["headers"]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			for k, v := range m {
				headers[k] = fmt.Sprintf("%v", v)
			}
		}
	}

	timeoutSeconds := toFloat(n.Params["timeout_seconds"], 30)

	return httpPrep{
		url:     url,
		method:  method,
		headers: headers,
		body:    n.stringParam("body", ""),
		timeout: time.Duration(timeoutSeconds * float64(time.Second)),
	}, nil
}

func (n *HTTPNode) Exec(ctx context.Context, prepAny any) (any, error) {
	p := prepAny.(httpPrep)

	reqCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if p.body != "" {
		bodyReader = bytes.NewBufferString(p.body)
	}

	req, err := http.NewRequestWithContext(reqCtx, p.method, p.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("http node: building request: %w", err)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	logging.Debug(httpSubsystem, "%s %s", p.method, p.url)
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http node: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http node: reading response: %w", err)
	}

	respHeaders := map[string]interface{}{}
	for k := range resp.Header {
		respHeaders[k] = resp.Header.Get(k)
	}

	var response interface{} = string(raw)
	if !isTextContentType(resp.Header.Get("Content-Type")) {
		response = raw
	}

	return map[string]interface{}{
		"response":    response,
		"status_code": resp.StatusCode,
		"headers":     respHeaders,
	}, nil
}

// isTextContentType reports whether a response body should be exposed as
// a string rather than raw bytes, per spec.md's Scenario E ("download of
// binary file... response is bytes; ... byte-identical to the original").
// An absent Content-Type defaults to text, matching this node's prior
// always-a-string behavior for the common case of a server that omits it.
func isTextContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.HasSuffix(mediaType, "+json"), strings.HasSuffix(mediaType, "+xml"):
		return true
	case mediaType == "application/json",
		mediaType == "application/xml",
		mediaType == "application/x-www-form-urlencoded",
		mediaType == "application/javascript":
		return true
	default:
		return false
	}
}

func (n *HTTPNode) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	out, ok := exec.(map[string]interface{})
	if !ok {
		return "default", fmt.Errorf("http node: unexpected exec result type %T", exec)
	}
	for k, v := range out {
		s.Set(k, v)
	}
	if status, ok := out["status_code"].(int); ok && status >= 400 {
		return "error", nil
	}
	return "default", nil
}
