package webhook

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	PlatformYouTube   = "youtube"
	PlatformTikTok    = "tiktok"
	PlatformInstagram = "instagram"
	PlatformUnknown   = "unknown"
)

// Matches schemed URLs or bare platform hosts (youtube/youtu.be/tiktok/
// instagram) so users can paste links without the protocol.
var urlPattern = regexp.MustCompile(`(?i)(https?://[^\s]+)|((?:youtube\.com/watch\?v=|youtu\.be/|tiktok\.com/|instagram\.com/)[^\s]+)`)

var trailingPunctuation = regexp.MustCompile(`[.,;!?]+$`)

// ExtractURLFromMessage returns the first URL-shaped token in the chat
// message, normalized to carry an https scheme and stripped of trailing
// punctuation. Empty string when the message has no URL.
func ExtractURLFromMessage(message string) string {
	match := urlPattern.FindString(message)
	if match == "" {
		return ""
	}
	if !strings.HasPrefix(match, "http") {
		match = "https://" + match
	}
	return trailingPunctuation.ReplaceAllString(match, "")
}

// DetectPlatform classifies a URL by substring match, youtube first.
func DetectPlatform(rawURL string) string {
	switch {
	case strings.Contains(rawURL, "youtube.com") || strings.Contains(rawURL, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(rawURL, "tiktok.com"):
		return PlatformTikTok
	case strings.Contains(rawURL, "instagram.com"):
		return PlatformInstagram
	default:
		return PlatformUnknown
	}
}

// SendResult reports what happened to one forwarded message.
type SendResult struct {
	Success  bool   `json:"success"`
	Platform string `json:"platform,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Gateway forwards extracted video URLs to the external analysis
// workflow (n8n). The workflow answers asynchronously through the
// inbound webhook endpoints, so the forward itself is fire-and-forget:
// no retries, and transport errors are reported as a failed result
// rather than propagated.
type Gateway struct {
	webhookURL string
	client     *http.Client
}

func NewGateway(webhookURL string) *Gateway {
	return &Gateway{
		webhookURL: webhookURL,
		// The source had no timeout here; a hung workflow endpoint
		// stalled the request forever. 15s bounds it.
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendURLToWebhook extracts the URL from the message and forwards it.
// The workflow expects a GET with the payload as query parameters.
func (g *Gateway) SendURLToWebhook(ctx context.Context, message string) SendResult {
	extracted := ExtractURLFromMessage(message)
	if extracted == "" {
		log.Printf("No URL found in message: %.50s...", message)
		return SendResult{Success: false}
	}

	platform := DetectPlatform(extracted)
	if platform == PlatformUnknown {
		log.Printf("Unknown platform for URL: %s", extracted)
		return SendResult{Success: false, URL: extracted}
	}

	params := url.Values{}
	params.Set("url", extracted)
	params.Set("platform", platform)
	params.Set("timestamp", time.Now().UTC().Format(time.RFC3339))
	params.Set("originalMessage", message)

	log.Printf("Sending %s URL to webhook: %s", platform, extracted)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.webhookURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("💥 Failed to build webhook request: %v", err)
		return SendResult{Success: false, Platform: platform, URL: extracted}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("💥 Webhook request failed: %v", err)
		return SendResult{Success: false, Platform: platform, URL: extracted}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Printf("%s webhook sent successfully", platform)
		return SendResult{Success: true, Platform: platform, URL: extracted}
	}

	log.Printf("%s webhook failed with status: %d", platform, resp.StatusCode)
	return SendResult{Success: false, Platform: platform, URL: extracted}
}
