package minimax

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// PollPolicy bounds the status polling of an asynchronous generation task.
// The wall-clock budget is roughly MaxAttempts * Interval, since the delay
// runs before every attempt.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

type taskStatusResponse struct {
	TaskID   string    `json:"task_id"`
	Status   string    `json:"status"`
	FileID   string    `json:"file_id"`
	BaseResp *BaseResp `json:"base_resp"`
}

// awaitTask polls queryPath until the task reaches a terminal state or the
// attempt ceiling is exhausted. Malformed or unreachable status replies are
// tolerated and count against the ceiling; a provider-declared error or an
// explicit failure status aborts immediately.
func (c *Client) awaitTask(ctx context.Context, apiKey, kind, queryPath, taskID string, policy PollPolicy) (string, error) {
	query := url.Values{"task_id": []string{taskID}}

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := wait(ctx, policy.Interval); err != nil {
			return "", err
		}
		if c.observer != nil {
			c.observer.RecordPollAttempt(kind)
		}

		var status taskStatusResponse
		if err := c.getJSON(ctx, queryPath, apiKey, query, &status); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// Transient glitch (malformed body, upstream hiccup): the attempt
			// is consumed but the task is not abandoned.
			continue
		}
		if err := status.BaseResp.Err(FamilyGeneration); err != nil {
			return "", err
		}

		switch {
		case isSuccessStatus(status.Status) && status.FileID != "":
			return status.FileID, nil
		case isFailedStatus(status.Status):
			return "", ErrTaskFailed
		}
		// Still pending, or success without a file id yet: keep polling.
	}
	return "", ErrTaskTimeout
}

func isSuccessStatus(s string) bool {
	return strings.EqualFold(s, "success")
}

func isFailedStatus(s string) bool {
	return strings.EqualFold(s, "fail") || strings.EqualFold(s, "failed")
}

// wait blocks for d or until ctx is cancelled, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
