// Package notify provides a webhook client for announcing event activity to
// a Mattermost-style incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/internal/service/leaderboard"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// Client posts announcements to the configured webhook. When disabled every
// call is a no-op; send failures are logged and never propagate into the
// user-facing operation that triggered them.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotifyConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: http.DefaultClient,
		log:        log,
	}
}

// Message represents a webhook message payload.
type Message struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
}

// SendMessage posts a message to the webhook.
func (c *Client) SendMessage(msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = "Event Pool Bot"
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent webhook message")

	return nil
}

// PredictionReceived announces a new pool submission.
func (c *Client) PredictionReceived(name string) {
	text := fmt.Sprintf("🎉 **%s** just submitted their predictions!", name)
	if err := c.SendMessage(&Message{Text: text}); err != nil {
		c.log.Warn().Err(err).Msg("Failed to announce prediction")
	}
}

// AchievementUnlocked announces a newly awarded achievement.
func (c *Client) AchievementUnlocked(participant string, achievement models.Achievement) {
	text := fmt.Sprintf("🏆 **%s** unlocked **%s** (+%d points) - %s",
		participant, achievement.Name, achievement.Points, achievement.Description)
	if err := c.SendMessage(&Message{Text: text}); err != nil {
		c.log.Warn().Err(err).Msg("Failed to announce achievement")
	}
}

// CrawlFinished announces a participant completing the full crawl.
func (c *Client) CrawlFinished(participant string) {
	text := fmt.Sprintf("🍻 **%s** has finished the crawl! Legend.", participant)
	if err := c.SendMessage(&Message{Text: text}); err != nil {
		c.log.Warn().Err(err).Msg("Failed to announce crawl finish")
	}
}

// LeaderboardDigest posts the current standings.
func (c *Client) LeaderboardDigest(entries []leaderboard.Entry) error {
	if len(entries) == 0 {
		c.log.Debug().Msg("No participants, skipping digest")
		return nil
	}

	text := "### 🍺 Crawl Standings\n\n"
	for _, e := range entries {
		medal := "•"
		switch e.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		text += fmt.Sprintf("%s **%s** - %d points, %d pubs", medal, e.Name, e.Points, e.Completed)
		if e.Finished {
			text += " ✅"
		}
		text += "\n"
	}

	return c.SendMessage(&Message{Text: text})
}
