package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wcs-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs a global provider, InstrumentResty resolves its tracer
// from the global one.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		provider.Shutdown(context.Background())
	})
	return recorder
}

func attributeMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestInstrumentRestyTagsSourceAndAttempt(t *testing.T) {
	recorder := recordSpans(t)

	page := strings.Repeat("<div class=\"waste-services-result\"></div>", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "__cf_bm=secret")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	client := resty.New()
	InstrumentResty(client, "test", "woollahra_nsw_gov_au")

	_, err := client.R().
		SetContext(restyutil.WithAttempt(context.Background(), 2)).
		SetHeader("Cookie", "__cf_bm=secret").
		Get(server.URL)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "http GET", spans[0].Name())

	attrs := attributeMap(spans[0])
	require.Equal(t, "woollahra_nsw_gov_au", attrs[sourceKey].AsString())
	require.EqualValues(t, 2, attrs[attemptKey].AsInt64())
	require.Equal(t, []string{"[redacted]"}, attrs["http.request.header.cookie"].AsStringSlice())
	require.Equal(t, []string{"[redacted]"}, attrs["http.response.header.set-cookie"].AsStringSlice())
	require.Equal(t, []string{"text/html"}, attrs["http.response.header.content-type"].AsStringSlice())

	body := attrs["http.response.body"].AsString()
	require.True(t, strings.HasPrefix(body, page[:maxBodyAttributeLength]))
	require.True(t, strings.HasSuffix(body, "bytes truncated)"))
	require.Less(t, len(body), len(page))
}

func TestInstrumentRestyWithoutAttempt(t *testing.T) {
	recorder := recordSpans(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := resty.New()
	InstrumentResty(client, "test", "lbbd_gov_uk")

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attributeMap(spans[0])
	require.Equal(t, "lbbd_gov_uk", attrs[sourceKey].AsString())
	require.NotContains(t, attrs, attemptKey)
	require.Equal(t, `{"results": []}`, attrs["http.response.body"].AsString())
	require.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestInstrumentRestyNetworkError(t *testing.T) {
	recorder := recordSpans(t)

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := resty.New()
	InstrumentResty(client, "test", "lbbd_gov_uk")

	_, err := client.R().Get(server.URL)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
}

func TestTruncateBody(t *testing.T) {
	require.Equal(t, "short", truncateBody("short"))

	long := strings.Repeat("a", maxBodyAttributeLength+10)
	require.Equal(t, strings.Repeat("a", maxBodyAttributeLength)+"... (10 bytes truncated)", truncateBody(long))
}
