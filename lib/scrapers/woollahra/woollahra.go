// Package woollahra fetches rubbish, recycling and clean-up dates from the
// Woollahra Municipal Council website. The address is first resolved to a
// location id through the site search, then the waste services endpoint
// returns an html fragment with one block per service.
package woollahra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"wcs-backend/lib/chrono"
	"wcs-backend/lib/collection"
	"wcs-backend/lib/restyutil"
	"wcs-backend/lib/telemetry"
	"wcs-backend/lib/timezone"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ErrorCode string

const (
	ErrUnexpectedStatus ErrorCode = "UnexpectedStatus"
	ErrNetwork          ErrorCode = "Network"
	ErrMaxRetries       ErrorCode = "MaxRetries"
	ErrAccessDenied     ErrorCode = "AccessDenied"
	ErrInvalidJSON      ErrorCode = "InvalidJSON"
	ErrInvalidResponse  ErrorCode = "InvalidResponse"
	ErrLocationNotFound ErrorCode = "LocationNotFound"
)

const (
	DefaultBaseUrl = "https://www.woollahra.nsw.gov.au"

	findServicePath = "/Services/Rubbish-and-recycling/Find-your-rubbish-and-scheduled-clean-up-service-dates"
	searchPath      = "/api/v1/myarea/search"
	wasteServices   = "/ocapi/Public/myarea/wasteservices"
	pageLink        = "/$b9015858-988c-48a4-9473-7c193df083e4$" + findServicePath

	requestTimeout = time.Second * 30
	warmUpDelay    = time.Second * 2
	politeDelay    = time.Second
)

// the site sits behind bot protection that rejects anything which does not
// look like a browser navigation.
// Accept-Encoding is left to net/http so responses are transparently decoded.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language":           "en-GB,en-US;q=0.9,en;q=0.8",
	"Sec-Ch-Ua":                 `"Chromium";v="140", "Not=A?Brand";v="24", "Google Chrome";v="140"`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        `"Windows"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
	"Priority":                  "u=0, i",
}

func apiHeaders(baseUrl string) map[string]string {
	return lo.Assign(browserHeaders, map[string]string{
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"Referer":          baseUrl + findServicePath,
		"X-Requested-With": "XMLHttpRequest",
		"Sec-Fetch-Dest":   "empty",
		"Sec-Fetch-Mode":   "cors",
		"Sec-Fetch-Site":   "same-origin",
	})
}

type Source struct {
	Address string
	BaseUrl string
	Clock   chrono.API
}

func New(address string) *Source {
	return &Source{
		Address: strings.TrimSpace(address),
		BaseUrl: DefaultBaseUrl,
		Clock:   chrono.NewStandardImpl(),
	}
}

// newSession creates a cookie keeping client, each fetch uses its own.
func newSession() (*resty.Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeaders(browserHeaders)
	client.SetTimeout(requestTimeout)

	telemetry.InstrumentResty(client, "wcs.lib.scrapers.woollahra.http", Name)
	restyutil.InstrumentClient(client, restyInstrumentOutput)
	return client, nil
}

func (s *Source) Fetch(ctx context.Context) ([]collection.Collection, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("address", s.Address))

	result, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch collections")
	}
	telemetry.RecordFetch(ctx, Name, len(result), err)
	return result, err
}

func (s *Source) fetch(ctx context.Context) ([]collection.Collection, error) {
	session, err := newSession()
	if err != nil {
		return nil, err
	}

	err = s.warmUp(ctx, session)
	if err != nil {
		return nil, err
	}

	headers := apiHeaders(s.BaseUrl)

	locationId, err := s.resolveLocation(ctx, session, headers)
	if err != nil {
		return nil, err
	}

	err = s.Clock.Sleep(ctx, politeDelay)
	if err != nil {
		return nil, err
	}

	content, err := s.fetchServices(ctx, session, headers, locationId)
	if err != nil {
		return nil, err
	}

	// dates without a year are read relative to the council's calendar
	return parseServices(ctx, content, s.Clock.Now().In(timezone.Sydney))
}

// warmUp visits the public page once so the session picks up whatever
// cookies the bot protection hands out. It never fails the fetch, only a
// cancelled context is returned.
func (s *Source) warmUp(ctx context.Context, session *resty.Client) error {
	ctx, span := tracer.Start(ctx, "warmUp")
	defer span.End()

	res, err := session.R().
		SetContext(ctx).
		Get(s.BaseUrl + findServicePath)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.DebugContext(ctx, "warm up request failed, continuing", "err", err)
		return nil
	}

	status := res.StatusCode()
	if status != http.StatusOK && status != http.StatusForbidden {
		slog.DebugContext(ctx, "unexpected warm up status", "status", status)
		return s.Clock.Sleep(ctx, warmUpDelay)
	}
	return nil
}

type searchItem struct {
	// the search api has returned both numeric and string ids
	Id any `json:"Id"`
}

func (i searchItem) id() string {
	switch v := i.Id.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

type searchResponse struct {
	Items []searchItem `json:"Items"`
}

func (s *Source) resolveLocation(ctx context.Context, session *resty.Client, headers map[string]string) (string, error) {
	ctx, span := tracer.Start(ctx, "resolveLocation")
	defer span.End()

	link := fmt.Sprintf(
		"%s%s?keywords=%s",
		s.BaseUrl, searchPath,
		strings.ReplaceAll(url.QueryEscape(s.Address), "+", "%20"),
	)
	res, err := requestWithRetry(ctx, session, s.Clock, link, headers, defaultMaxRetries)
	if err != nil {
		span.SetStatus(codes.Error, "address search failed")
		return "", err
	}

	var search searchResponse
	err = decodeResponse(res, "address search", &search)
	if err != nil {
		span.SetStatus(codes.Error, "address search failed")
		return "", err
	}

	locationId := ""
	if len(search.Items) > 0 {
		locationId = search.Items[0].id()
	}
	if locationId == "" {
		span.SetStatus(codes.Error, "location not found")
		return "", failure.New(
			ErrLocationNotFound,
			failure.Message(fmt.Sprintf(
				"unable to find location id for %s, please check your address details are correct",
				s.Address,
			)),
			failure.Context{"address": s.Address},
		)
	}

	span.SetAttributes(attribute.String("location_id", locationId))
	return locationId, nil
}

type servicesResponse struct {
	Success         bool   `json:"success"`
	ResponseContent string `json:"responseContent"`
}

func (s *Source) fetchServices(ctx context.Context, session *resty.Client, headers map[string]string, locationId string) (string, error) {
	ctx, span := tracer.Start(ctx, "fetchServices")
	defer span.End()

	link := fmt.Sprintf(
		"%s%s?geolocationid=%s&ocsvclang=en-AU&pageLink=%s",
		s.BaseUrl, wasteServices, url.QueryEscape(locationId), pageLink,
	)
	res, err := requestWithRetry(ctx, session, s.Clock, link, headers, defaultMaxRetries)
	if err != nil {
		span.SetStatus(codes.Error, "waste services request failed")
		return "", err
	}

	var services servicesResponse
	err = decodeResponse(res, "waste services", &services)
	if err != nil {
		span.SetStatus(codes.Error, "waste services request failed")
		return "", err
	}
	if !services.Success || services.ResponseContent == "" {
		span.SetStatus(codes.Error, "invalid waste services response")
		return "", failure.New(
			ErrInvalidResponse,
			failure.Message("invalid response from waste services api"),
		)
	}
	return services.ResponseContent, nil
}

// decodeResponse checks the status and decodes the json body of an api
// response, naming bot protection when the body is its html block page.
func decodeResponse(res *resty.Response, endpoint string, out any) error {
	if res.StatusCode() != http.StatusOK {
		return failure.New(
			ErrUnexpectedStatus,
			failure.Message(fmt.Sprintf(
				"unable to access woollahra %s api (status: %d), this may be due to bot protection",
				endpoint, res.StatusCode(),
			)),
		)
	}

	err := json.Unmarshal(res.Body(), out)
	if err == nil {
		return nil
	}
	if strings.Contains(res.String(), "Access Denied") {
		return failure.Wrap(
			err,
			failure.WithCode(ErrAccessDenied),
			failure.Message(fmt.Sprintf(
				"access denied by woollahra website during %s, this may be due to bot protection measures",
				endpoint,
			)),
		)
	}
	return failure.Wrap(
		err,
		failure.WithCode(ErrInvalidJSON),
		failure.Message(fmt.Sprintf("invalid json response from %s api", endpoint)),
	)
}
