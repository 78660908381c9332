package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultAPIURL is the chat.postMessage endpoint
const DefaultAPIURL = "https://slack.com/api/chat.postMessage"

// Client handles Slack notifications
type Client struct {
	botToken   string
	channel    string
	apiURL     string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new Slack client
func NewClient(botToken, channel string) *Client {
	return &Client{
		botToken: botToken,
		channel:  channel,
		apiURL:   DefaultAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// DocumentEvent describes a generated document
type DocumentEvent struct {
	Title    string
	Author   string
	Template string
	Filename string
	Size     int64
	Duration time.Duration
	UsedAI   bool
}

// ChatPostMessageRequest represents a Slack chat.postMessage request
type ChatPostMessageRequest struct {
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// SendDocumentGenerated announces a generated document
func (c *Client) SendDocumentGenerated(ctx context.Context, event DocumentEvent) error {
	return c.sendMessage(ctx, c.formatDocumentMessage(event), c.channel)
}

// SendCleanupReport announces a cleanup that deleted files
func (c *Client) SendCleanupReport(ctx context.Context, deleted int, maxAge time.Duration) error {
	return c.sendMessage(ctx, c.formatCleanupMessage(deleted, maxAge), c.channel)
}

// formatDocumentMessage creates a Slack message for a generated document
func (c *Client) formatDocumentMessage(event DocumentEvent) string {
	timestamp := c.now().Format("02/01/2006 15:04:05")

	source := "points clés"
	if event.UsedAI {
		source = "IA (Perplexity)"
	}

	return fmt.Sprintf(`📄 *Nouveau document généré*

*%s*
✍️ Auteur: %s
🧩 Template: %s
🤖 Contenu: %s
📎 Fichier: %s (%d octets)

⏱️ Durée: %.2fs
⏰ Heure: %s`,
		event.Title,
		event.Author,
		event.Template,
		source,
		event.Filename,
		event.Size,
		event.Duration.Seconds(),
		timestamp)
}

// formatCleanupMessage creates a Slack message for a cleanup run
func (c *Client) formatCleanupMessage(deleted int, maxAge time.Duration) string {
	timestamp := c.now().Format("02/01/2006 15:04:05")

	return fmt.Sprintf(`🧹 *Nettoyage des documents*

%d fichiers de plus de %s supprimés

⏰ Heure: %s`,
		deleted,
		formatAge(maxAge),
		timestamp)
}

// formatAge renders whole days as "N jours", anything else in hours
func formatAge(d time.Duration) string {
	if d == 24*time.Hour {
		return "1 jour"
	}
	if d > 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d jours", int(d/(24*time.Hour)))
	}
	return fmt.Sprintf("%d heures", int(d/time.Hour))
}

// sendMessage sends a message to the specified Slack channel
func (c *Client) sendMessage(ctx context.Context, text string, channel string) error {
	req := ChatPostMessageRequest{
		Channel:   channel,
		Text:      text,
		Username:  "PDF Generator",
		IconEmoji: ":page_facing_up:",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.botToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&slackResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !slackResp.OK {
		return fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return nil
}
