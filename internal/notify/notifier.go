// Package notify posts run summaries to configured webhooks. A
// notification failure never changes the run's report or exit code.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/util"
)

const webhookTimeout = 10 * time.Second

// Alert is the payload derived from one finished hardening run
type Alert struct {
	Timestamp string    `json:"timestamp"`
	Hostname  string    `json:"hostname"`
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"` // PASS, WARN, FAIL
	Summary   string    `json:"summary"`
	Pass      int       `json:"pass"`
	Warn      int       `json:"warn"`
	Fail      int       `json:"fail"`
	Applied   int       `json:"applied"`
	Findings  []Finding `json:"findings,omitempty"`
}

// Finding carries one non-passing check in the alert
type Finding struct {
	CheckID string `json:"check_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Outcome string `json:"outcome,omitempty"`
}

// Result records which providers received the alert
type Result struct {
	Success bool        `json:"success"`
	Sent    []string    `json:"sent"`
	Failed  []SendError `json:"failed,omitempty"`
	Skipped string      `json:"skipped,omitempty"`
}

type SendError struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// Notifier sends alerts to every enabled webhook destination
type Notifier struct {
	config *config.NotifyConfig
	client *http.Client
}

// NewNotifier builds a notifier over the notification configuration
func NewNotifier(cfg *config.NotifyConfig) *Notifier {
	return &Notifier{
		config: cfg,
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// ShouldNotify reports whether this run's status warrants an alert
// under the configured policy.
func (n *Notifier) ShouldNotify(status string, hasIssues bool) bool {
	if !n.config.Enabled {
		return false
	}
	if n.config.OnlyOnIssues && !hasIssues {
		return false
	}
	if !n.meetsStatusThreshold(status) {
		return false
	}
	return n.config.Discord.Enabled || n.config.Slack.Enabled || n.config.GenericWebhook.Enabled
}

// meetsStatusThreshold compares the run status against MinStatus:
// "fail" alerts on FAIL only, "warn" on WARN and FAIL.
func (n *Notifier) meetsStatusThreshold(status string) bool {
	rank := map[string]int{"PASS": 0, "WARN": 1, "FAIL": 2}
	level, known := rank[strings.ToUpper(status)]
	if !known || level == 0 {
		return !n.config.OnlyOnIssues
	}

	threshold := 2
	if strings.EqualFold(n.config.MinStatus, "warn") {
		threshold = 1
	}
	return level >= threshold
}

// Send posts the alert to every enabled provider, collecting failures
// instead of aborting on the first one.
func (n *Notifier) Send(ctx context.Context, alert *Alert) *Result {
	result := &Result{Success: true, Sent: []string{}}

	if !n.config.Enabled {
		result.Skipped = "notifications disabled"
		return result
	}

	if n.config.MaskHostname {
		masked := *alert
		masked.Hostname = util.MaskHostname(alert.Hostname)
		alert = &masked
	}

	if n.config.Discord.Enabled && n.config.Discord.WebhookURL != "" {
		if err := n.sendDiscord(ctx, alert); err != nil {
			result.Failed = append(result.Failed, SendError{Provider: "discord", Error: err.Error()})
			result.Success = false
		} else {
			result.Sent = append(result.Sent, "discord")
		}
	}

	if n.config.Slack.Enabled && n.config.Slack.WebhookURL != "" {
		if err := n.sendSlack(ctx, alert); err != nil {
			result.Failed = append(result.Failed, SendError{Provider: "slack", Error: err.Error()})
			result.Success = false
		} else {
			result.Sent = append(result.Sent, "slack")
		}
	}

	if n.config.GenericWebhook.Enabled && n.config.GenericWebhook.URL != "" {
		if err := n.sendGenericWebhook(ctx, alert); err != nil {
			result.Failed = append(result.Failed, SendError{Provider: "webhook", Error: err.Error()})
			result.Success = false
		} else {
			result.Sent = append(result.Sent, "webhook")
		}
	}

	return result
}

// Discord webhook payload
type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

func (n *Notifier) sendDiscord(ctx context.Context, alert *Alert) error {
	color := 0x2ECC71 // green
	switch strings.ToUpper(alert.Status) {
	case "FAIL":
		color = 0xE74C3C // red
	case "WARN":
		color = 0xF1C40F // yellow
	}

	description := alert.Summary
	if len(alert.Findings) > 0 {
		description += "\n\n**Findings:**"
		for i, f := range alert.Findings {
			if i >= 5 {
				description += fmt.Sprintf("\n... and %d more", len(alert.Findings)-5)
				break
			}
			description += fmt.Sprintf("\n• [%s] %s", f.Status, f.Message)
		}
	}

	fields := []discordField{
		{Name: "Status", Value: strings.ToUpper(alert.Status), Inline: true},
		{Name: "Host", Value: alert.Hostname, Inline: true},
		{Name: "Mode", Value: alert.Mode, Inline: true},
		{Name: "Checks", Value: fmt.Sprintf("%d pass / %d warn / %d fail", alert.Pass, alert.Warn, alert.Fail), Inline: false},
	}
	if alert.Applied > 0 {
		fields = append(fields, discordField{Name: "Fixes applied", Value: fmt.Sprintf("%d", alert.Applied), Inline: true})
	}

	payload := discordPayload{
		Username: n.config.Discord.Username,
		Embeds: []discordEmbed{
			{
				Title:       "Hardening Report",
				Description: description,
				Color:       color,
				Timestamp:   alert.Timestamp,
				Fields:      fields,
				Footer:      &discordFooter{Text: "hardhound"},
			},
		},
	}

	return n.postJSON(ctx, n.config.Discord.WebhookURL, payload)
}

// Slack webhook payload
type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (n *Notifier) sendSlack(ctx context.Context, alert *Alert) error {
	color := "good"
	switch strings.ToUpper(alert.Status) {
	case "FAIL":
		color = "danger"
	case "WARN":
		color = "warning"
	}

	text := alert.Summary
	if len(alert.Findings) > 0 {
		text += "\n\n*Findings:*"
		for i, f := range alert.Findings {
			if i >= 5 {
				text += fmt.Sprintf("\n... and %d more", len(alert.Findings)-5)
				break
			}
			text += fmt.Sprintf("\n• [%s] %s", f.Status, f.Message)
		}
	}

	fields := []slackField{
		{Title: "Status", Value: strings.ToUpper(alert.Status), Short: true},
		{Title: "Host", Value: alert.Hostname, Short: true},
		{Title: "Mode", Value: alert.Mode, Short: true},
		{Title: "Checks", Value: fmt.Sprintf("%d pass / %d warn / %d fail", alert.Pass, alert.Warn, alert.Fail), Short: false},
	}

	payload := slackPayload{
		Channel:   n.config.Slack.Channel,
		Username:  n.config.Slack.Username,
		IconEmoji: ":shield:",
		Text:      "*Hardening Report*",
		Attachments: []slackAttachment{
			{
				Color:  color,
				Title:  "Hardening Report",
				Text:   text,
				Fields: fields,
				Footer: "hardhound",
			},
		},
	}

	return n.postJSON(ctx, n.config.Slack.WebhookURL, payload)
}

func (n *Notifier) sendGenericWebhook(ctx context.Context, alert *Alert) error {
	method := n.config.GenericWebhook.Method
	if method == "" {
		method = "POST"
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, n.config.GenericWebhook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.config.GenericWebhook.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) postJSON(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
