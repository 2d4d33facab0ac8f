package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"wcs-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// council pages run to hundreds of kilobytes, span attributes keep the head
const maxBodyAttributeLength = 8 << 10

const (
	sourceKey  = attribute.Key("wcs.source")
	attemptKey = attribute.Key("wcs.attempt")
)

// session cookies are what the bot protection hands out, they do not belong
// in an exported span
var redactedHeaders = []string{"Cookie", "Set-Cookie", "Authorization"}

// InstrumentResty starts a span for every request made by client on behalf of
// source. Spans carry the retry attempt when the request context has one (see
// restyutil.WithAttempt), redacted headers and truncated bodies.
func InstrumentResty(client *resty.Client, tracerName, source string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(onBeforeRequest(tracer, source))
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func onBeforeRequest(tracer trace.Tracer, source string) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		attrs := []attribute.KeyValue{sourceKey.String(source)}
		if attempt, ok := restyutil.AttemptFrom(req.Context()); ok {
			attrs = append(attrs, attemptKey.Int(attempt))
		}

		ctx, _ := tracer.Start(
			req.Context(),
			fmt.Sprintf("http %s", req.Method),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...),
		)
		req.SetContext(ctx)
		return nil
	}
}

func headerAttributes(prefix string, headers http.Header) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(headers))
	for header, values := range headers {
		if lo.Contains(redactedHeaders, http.CanonicalHeaderKey(header)) {
			values = lo.Map(values, func(string, int) string { return "[redacted]" })
		}
		attrs = append(attrs, attribute.StringSlice(prefix+strings.ToLower(header), values))
	}
	return attrs
}

func truncateBody(body string) string {
	if len(body) <= maxBodyAttributeLength {
		return body
	}
	return fmt.Sprintf(
		"%s... (%d bytes truncated)",
		strings.ToValidUTF8(body[:maxBodyAttributeLength], ""),
		len(body)-maxBodyAttributeLength,
	)
}

func requestBody(req *http.Request) (string, bool) {
	if req.GetBody == nil {
		return "", false
	}
	reader, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error()), true
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error()), true
	}
	return string(body), len(body) > 0
}

func setRequestAttributes(span trace.Span, req *resty.Request) {
	span.SetAttributes(headerAttributes("http.request.header.", req.Header)...)
	// RawRequest is only built once the request is sent
	if req.RawRequest == nil {
		return
	}
	span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	if body, ok := requestBody(req.RawRequest); ok {
		span.SetAttributes(attribute.String("http.request.body", truncateBody(body)))
	}
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	setRequestAttributes(span, res.Request)
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	span.SetAttributes(headerAttributes("http.response.header.", res.Header())...)
	span.SetAttributes(attribute.String("http.response.body", truncateBody(res.String())))

	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	setRequestAttributes(span, req)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
