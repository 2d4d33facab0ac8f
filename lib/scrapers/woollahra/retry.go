package woollahra

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wcs-backend/lib/chrono"
	"wcs-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"github.com/morikuni/failure/v2"
)

const defaultMaxRetries = 3

type retryAction int

const (
	actionReturn retryAction = iota
	actionRetry
	actionFail
)

// backoff is 2^attempt seconds: 1s, 2s, 4s...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// nextAction decides what to do after the 0-based attempt finished with
// either a status or a request error. Only a 403 or a transport error are
// retried, and only while attempts remain.
func nextAction(attempt, maxRetries, status int, reqErr error) (retryAction, time.Duration) {
	lastAttempt := attempt >= maxRetries-1

	if reqErr != nil {
		if lastAttempt {
			return actionFail, 0
		}
		return actionRetry, backoff(attempt)
	}

	switch {
	case status == http.StatusOK:
		return actionReturn, 0
	case status == http.StatusForbidden && !lastAttempt:
		return actionRetry, backoff(attempt)
	default:
		return actionFail, 0
	}
}

func requestWithRetry(
	ctx context.Context,
	client *resty.Client,
	clock chrono.API,
	link string,
	headers map[string]string,
	maxRetries int,
) (*resty.Response, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := client.R().
			SetContext(restyutil.WithAttempt(ctx, attempt+1)).
			SetHeaders(headers).
			Get(link)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		status := 0
		if err == nil {
			status = res.StatusCode()
		}

		action, delay := nextAction(attempt, maxRetries, status, err)
		switch action {
		case actionReturn:
			return res, nil
		case actionFail:
			if err != nil {
				return nil, failure.Wrap(
					err,
					failure.WithCode(ErrNetwork),
					failure.Message(fmt.Sprintf("network error: %s", err.Error())),
					failure.Context{"url": link},
				)
			}
			return nil, failure.New(
				ErrUnexpectedStatus,
				failure.Message(fmt.Sprintf("failed to fetch: %d (attempt %d)", status, attempt+1)),
				failure.Context{"url": link},
			)
		}

		slog.WarnContext(
			ctx, "retrying request",
			"url", link,
			"attempt", attempt+1,
			"status", status,
			"err", err,
			"delay", delay,
		)
		err = clock.Sleep(ctx, delay)
		if err != nil {
			return nil, err
		}
	}

	return nil, failure.New(
		ErrMaxRetries,
		failure.Message("max retries exceeded while fetching url"),
		failure.Context{"url": link},
	)
}
