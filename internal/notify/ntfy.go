package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

const userAgent = "focusdeck/0.1"

// Ntfy pushes notifications to an ntfy topic URL.
type Ntfy struct {
	endpoint string
	client   *http.Client
}

// NewNtfy returns nil when topic is empty.
func NewNtfy(topic string, timeout time.Duration) *Ntfy {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Ntfy{endpoint: topic, client: &http.Client{Timeout: timeout}}
}

func (n *Ntfy) Send(ctx context.Context, notif model.Notification) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(notif.Message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if notif.Title != "" {
		req.Header.Set("Title", notif.Title)
	}
	req.Header.Set("Tags", strings.Join(ntfyTags(notif.Type), ","))
	if notif.Type == model.NotificationAlarm {
		req.Header.Set("Priority", "high")
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

func ntfyTags(t model.NotificationType) []string {
	switch t {
	case model.NotificationAlarm:
		return []string{"focusdeck", "alarm_clock"}
	case model.NotificationSuccess:
		return []string{"focusdeck", "white_check_mark"}
	case model.NotificationWarning:
		return []string{"focusdeck", "warning"}
	default:
		return []string{"focusdeck", string(t)}
	}
}
