// Package lbbd fetches bin collections for the London Borough of Barking and
// Dagenham from the council's REST endpoint, keyed by UPRN.
package lbbd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"wcs-backend/lib/collection"
	"wcs-backend/lib/restyutil"
	"wcs-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/morikuni/failure/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ErrorCode string

const (
	ErrRequestFailed   ErrorCode = "RequestFailed"
	ErrInvalidJSON     ErrorCode = "InvalidJSON"
	ErrInvalidResponse ErrorCode = "InvalidResponse"
	ErrInvalidDate     ErrorCode = "InvalidDate"
)

const (
	DefaultBaseUrl = "https://www.lbbd.gov.uk"
	userAgent      = "Home-Assitant-waste-col-sched/2.11"
	// e.g. "Monday 01 January 2024"
	dateLayout = "Monday 02 January 2006"
)

type wasteType struct {
	Type string
	Icon string
}

var collectionMap = map[string]wasteType{
	"Grey-Household":  {Type: "General waste", Icon: "mdi:trash-can"},
	"Brown-Recycling": {Type: "Recycling", Icon: "mdi:recycle"},
	"Green-Garden":    {Type: "Garden waste", Icon: "mdi:grass"},
}

// classify falls back to the raw bin type without an icon.
func classify(binType string) wasteType {
	t, ok := collectionMap[binType]
	if !ok {
		return wasteType{Type: binType}
	}
	return t
}

type Source struct {
	UPRN    string
	BaseUrl string
}

func New(uprn string) *Source {
	return &Source{UPRN: uprn, BaseUrl: DefaultBaseUrl}
}

func NewFromInt(uprn int64) *Source {
	return New(fmt.Sprint(uprn))
}

func (s *Source) newClient() *resty.Client {
	client := resty.New()
	client.SetTimeout(time.Second * 30)
	client.SetHeader("user-agent", userAgent)

	telemetry.InstrumentResty(client, "wcs.lib.scrapers.lbbd.http", Name)
	restyutil.InstrumentClient(client, restyInstrumentOutput)
	return client
}

// nextCollection is the "nextcollection" field, which the endpoint fills
// with false, null or "" when nothing is scheduled.
type nextCollection string

func (n *nextCollection) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err == nil {
		*n = nextCollection(s)
		return nil
	}
	var b *bool
	if json.Unmarshal(data, &b) == nil && (b == nil || !*b) {
		*n = ""
		return nil
	}
	return fmt.Errorf("unexpected nextcollection value %s", data)
}

type binResult struct {
	BinType           string         `json:"bin_type"`
	NextCollection    nextCollection `json:"nextcollection"`
	FutureCollections []string       `json:"futurecollections"`
}

type binResponse struct {
	Results *[]binResult `json:"results"`
}

// dates lists the next collection (when present) followed by future ones.
func (r binResult) dates() []string {
	var out []string
	if r.NextCollection != "" {
		out = append(out, string(r.NextCollection))
	}
	return append(out, r.FutureCollections...)
}

func (s *Source) Fetch(ctx context.Context) ([]collection.Collection, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("uprn", s.UPRN))

	result, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch collections")
	}
	telemetry.RecordFetch(ctx, Name, len(result), err)
	return result, err
}

func (s *Source) fetch(ctx context.Context) ([]collection.Collection, error) {
	link := fmt.Sprintf("%s/rest/bin/%s", s.BaseUrl, url.PathEscape(s.UPRN))

	res, err := s.newClient().R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, failure.Wrap(
			err,
			failure.WithCode(ErrRequestFailed),
			failure.Message("failed to request bin collections"),
			failure.Context{"url": link},
		)
	}
	slog.DebugContext(ctx, "bin collections response", "uprn", s.UPRN, "status", res.StatusCode())

	return parseCollections(res.Body())
}

func parseCollections(body []byte) ([]collection.Collection, error) {
	var response binResponse
	decoder := json.NewDecoder(bytes.NewReader(body))
	err := decoder.Decode(&response)
	if err != nil {
		return nil, failure.Wrap(
			err,
			failure.WithCode(ErrInvalidJSON),
			failure.Message("bin collections response is not valid json"),
		)
	}
	if response.Results == nil {
		return nil, failure.New(
			ErrInvalidResponse,
			failure.Message(`bin collections response has no "results"`),
		)
	}

	var entries []collection.Collection
	for _, result := range *response.Results {
		wt := classify(result.BinType)
		for _, raw := range result.dates() {
			date, err := time.Parse(dateLayout, raw)
			if err != nil {
				return nil, failure.Wrap(
					err,
					failure.WithCode(ErrInvalidDate),
					failure.Message(fmt.Sprintf("unexpected collection date %q", raw)),
					failure.Context{"bin_type": result.BinType},
				)
			}
			entries = append(entries, collection.NewCollection(date, wt.Type, wt.Icon))
		}
	}
	return entries, nil
}
