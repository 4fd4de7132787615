package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hive-corporation/creditrisk/internal/adapter/httpclient"
	"github.com/hive-corporation/creditrisk/internal/config"
	"github.com/hive-corporation/creditrisk/internal/core/domain"
	"github.com/hive-corporation/creditrisk/internal/core/ports"
)

var _ ports.Notifier = (*SlackNotifier)(nil)

type SlackNotifier struct {
	botToken string
	channel  string
	apiURL   string
	client   *httpclient.ResilientClient
}

func NewSlackNotifier(cfg config.SlackConfig, client *httpclient.ResilientClient) *SlackNotifier {
	return &SlackNotifier{
		botToken: cfg.BotToken,
		channel:  cfg.Channel,
		apiURL:   cfg.APIURL,
		client:   client,
	}
}

// NotifyBatchSummary posts the outcome of a batch run to the risk channel
func (s *SlackNotifier) NotifyBatchSummary(ctx context.Context, summary ports.BatchSummary) error {
	payload := SlackMessage{
		Channel: s.channel,
		Blocks:  s.buildBatchSummaryBlocks(summary),
		Text: fmt.Sprintf("📊 Batch %s scored %d applicants: %d accepted, %d rejected",
			summary.Source, summary.Scored, summary.Accepted, summary.Rejected),
	}

	return s.sendMessage(ctx, payload)
}

// Build Slack blocks for a batch summary
func (s *SlackNotifier) buildBatchSummaryBlocks(summary ports.BatchSummary) []SlackBlock {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{
				Type: "plain_text",
				Text: "📊 Credit Risk Batch Scored",
			},
		},
		{
			Type: "section",
			Fields: []SlackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Source*\n`%s`", summary.Source)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Applicants*\n%d", summary.Scored)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Accepted*\n%d", summary.Accepted)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Rejected*\n%d (%s%%)", summary.Rejected, domain.Percent(summary.RejectRate()).StringFixed(2))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Mean Probability of Default*\n%s%%", domain.Percent(summary.MeanFinal).StringFixed(2))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Duration*\n%s", summary.Duration.Round(time.Millisecond))},
			},
		},
	}

	if summary.Labelled > 0 {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Agreement with observed outcomes*: %s%% (%d of %d labelled rows)",
					domain.Percent(summary.Agreement()).StringFixed(2), summary.Agreed, summary.Labelled),
			},
		})
	}

	blocks = append(blocks,
		SlackBlock{Type: "divider"},
		SlackBlock{
			Type: "context",
			Elements: []SlackText{
				{
					Type: "mrkdwn",
					Text: fmt.Sprintf("Run `%s` | Started %s", summary.RunID, summary.Started.UTC().Format(time.RFC3339)),
				},
			},
		},
	)

	return blocks
}

// Send message to Slack
func (s *SlackNotifier) sendMessage(ctx context.Context, msg SlackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.botToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// chat.postMessage reports failures in the body with a 200 status.
	var result slackResponse
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("failed to read Slack response: %w", err)
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode Slack response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack API error: %s", result.Error)
	}

	return nil
}

// Slack API structures

type SlackMessage struct {
	Channel string       `json:"channel"`
	Blocks  []SlackBlock `json:"blocks"`
	Text    string       `json:"text"` // Fallback text
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
