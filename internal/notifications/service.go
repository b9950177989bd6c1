package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"syphon/internal/config"
)

const userAgent = "Syphon-Go/0.1.0"

// RunReport summarizes a finished library run.
type RunReport struct {
	RunID     string
	Stages    int
	Processed int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyRunFailed(ctx context.Context, report RunReport, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// NotifyRunCompleted stays quiet for runs that changed nothing.
func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	if report.Processed == 0 && report.Failed == 0 {
		return nil
	}
	title := "Syphon - Library Updated"
	message := fmt.Sprintf("%d items processed in %s", report.Processed, durationText(report.Duration))
	if report.Failed > 0 {
		title = "Syphon - Library Updated (with errors)"
		message = fmt.Sprintf("%d processed, %d failed in %s; failed items retry next run",
			report.Processed, report.Failed, durationText(report.Duration))
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"syphon", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, report RunReport, err error) error {
	var builder strings.Builder
	builder.WriteString("Run failed")
	if report.RunID != "" {
		builder.WriteString(" (")
		builder.WriteString(report.RunID)
		builder.WriteString(")")
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Syphon - Error",
		message:  builder.String(),
		tags:     []string{"syphon", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Syphon - Test",
		message:  "Notification system test",
		tags:     []string{"syphon", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func durationText(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error     { return nil }
func (noopService) NotifyRunFailed(context.Context, RunReport, error) error { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
