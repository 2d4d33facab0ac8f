package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"wcs-backend/lib/collection"
	"wcs-backend/lib/source"
	"wcs-backend/lib/telemetry"

	"github.com/morikuni/failure/v2"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseArgFlags(t *testing.T) {
	args, err := parseArgFlags([]string{"uprn=100014033", "address=13 Paddington Street = rear"})
	require.NoError(t, err)
	require.Equal(t, source.Args{
		"uprn":    "100014033",
		"address": "13 Paddington Street = rear",
	}, args)

	_, err = parseArgFlags([]string{"uprn"})
	require.Error(t, err)
	_, err = parseArgFlags([]string{"=1"})
	require.Error(t, err)
}

func TestResolveArgsFlagsWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json5")
	err := os.WriteFile(path, []byte(`{
		lbbd_gov_uk: {uprn: 100014033},
		woollahra_nsw_gov_au: {address: "13 Paddington Street PADDINGTON NSW 2021"},
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := readSourcesConfig(path)
	require.NoError(t, err)

	args, err := resolveArgs(cfg, "lbbd_gov_uk", nil)
	require.NoError(t, err)
	uprn, err := args.String("uprn")
	require.NoError(t, err)
	require.Equal(t, "100014033", uprn)

	args, err = resolveArgs(cfg, "woollahra_nsw_gov_au", []string{"address=22 Oxford Street"})
	require.NoError(t, err)
	require.Equal(t, "22 Oxford Street", args["address"])
}

func TestResolveArgsNormalizesConfigKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json5")
	err := os.WriteFile(path, []byte(`{"LBBD_gov_uk ": {uprn: "100024629"}}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := readSourcesConfig(path)
	require.NoError(t, err)

	args, err := resolveArgs(cfg, "lbbd_gov_uk", nil)
	require.NoError(t, err)
	require.Equal(t, "100024629", args["uprn"])
}

func TestReadSourcesConfigMissing(t *testing.T) {
	cfg, err := readSourcesConfig(filepath.Join(t.TempDir(), "sources.json5"))
	require.NoError(t, err)
	require.Empty(t, cfg)
}

func testEntries() []collection.Collection {
	return []collection.Collection{
		collection.NewCollection(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "General waste", "mdi:trash-can"),
		collection.NewCollection(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "Purple-Textiles", ""),
	}
}

func TestWriteCollectionsJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeCollections(&buf, "json", source.Info{Title: "Test"}, testEntries())
	require.NoError(t, err)

	var out []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, []map[string]string{
		{"date": "2024-01-01", "type": "General waste", "icon": "mdi:trash-can"},
		{"date": "2024-01-03", "type": "Purple-Textiles"},
	}, out)
}

func TestWriteCollectionsTableAndICS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCollections(&buf, "table", source.Info{Title: "Test"}, testEntries()))
	require.Contains(t, buf.String(), "2024-01-03")
	require.Contains(t, buf.String(), "Purple-Textiles")

	buf.Reset()
	require.NoError(t, writeCollections(&buf, "ics", source.Info{Title: "Test"}, testEntries()))
	require.Equal(t, 2, strings.Count(buf.String(), "BEGIN:VEVENT"))

	require.Error(t, writeCollections(&buf, "xml", source.Info{}, testEntries()))
}

// spanNameExporter keeps the names of exported spans past Shutdown.
type spanNameExporter struct {
	mutex sync.Mutex
	names []string
}

func (e *spanNameExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, span := range spans {
		e.names = append(e.names, span.Name())
	}
	return nil
}

func (e *spanNameExporter) Shutdown(ctx context.Context) error {
	return nil
}

func TestFailedCommandFlushesTelemetry(t *testing.T) {
	exporter := &spanNameExporter{}

	previous := setupTelemetry
	setupTelemetry = func(ctx context.Context, serviceName string) (telemetry.Telemetry, error) {
		provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		_, span := provider.Tracer("test").Start(ctx, "Fetch")
		span.End()
		return telemetry.Telemetry{TracerProvider: provider}, nil
	}
	t.Cleanup(func() {
		setupTelemetry = previous
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"fetch", "no_such_council"})
	err := execute(context.Background())
	require.True(t, failure.Is(err, source.ErrUnknownSource))

	exporter.mutex.Lock()
	defer exporter.mutex.Unlock()
	require.Equal(t, []string{"Fetch"}, exporter.names)
}
