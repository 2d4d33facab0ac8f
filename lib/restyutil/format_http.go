package restyutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
)

// formatHeaders writes one "Key: Value" line per value, keys sorted so dumps
// of the same exchange diff cleanly.
func formatHeaders(headers http.Header) string {
	keys := lo.Keys(headers)
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

func formatRequestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(readBody)
}

// formatResponseBody indents json payloads, the council apis return them on
// a single line. Anything else is written as received.
func formatResponseBody(res *resty.Response) string {
	body := res.Body()
	if !strings.Contains(res.Header().Get("Content-Type"), "json") {
		return string(body)
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, body, "", "  "); err != nil {
		return string(body)
	}
	return indented.String()
}

func formatHttpMessage(res *resty.Response) string {
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n", res.Request.Method, res.Request.URL)
	if attempt, ok := AttemptFrom(res.Request.Context()); ok {
		fmt.Fprintf(&out, "attempt: %d\n", attempt)
	}
	fmt.Fprintf(&out, "\n%s\n\n%s\n\n", formatHeaders(res.Request.RawRequest.Header), formatRequestBody(res.Request.RawRequest))

	responseUrl := res.Request.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		responseUrl = redirected.String()
	}

	out.WriteString("---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s (%s)\n\n", res.StatusCode(), responseUrl, res.Time().Round(time.Millisecond))
	fmt.Fprintf(&out, "%s\n\n%s", formatHeaders(res.Header()), formatResponseBody(res))

	return out.String()
}
