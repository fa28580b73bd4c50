package telegram

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/infrastructure/email"
	"FundingScanner/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	maxMessageLen  = 4096
)

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty apiBase selects the public API.
func NewNotifier(botToken, chatID, apiBase string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  strings.TrimRight(apiBase, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest posts the digest as one or more HTML-formatted messages.
func (n *Notifier) PublishDigest(ctx context.Context, digest domain.Digest) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	for i, chunk := range splitMessage(FormatDigest(digest), maxMessageLen) {
		if err := n.send(ctx, chunk); err != nil {
			return fmt.Errorf("message %d: %w", i+1, err)
		}
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// FormatDigest renders the digest as Telegram HTML.
func FormatDigest(d domain.Digest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n\n", html.EscapeString(email.Subject(d)))

	if len(d.Announcements) == 0 {
		sb.WriteString("No new funding announcements matching your criteria were found in this period.\n")
		return sb.String()
	}

	for i, a := range d.Announcements {
		fmt.Fprintf(&sb, "%d. <b>%s</b> (%d)\n", i+1, html.EscapeString(a.DisplayCompany()), a.Score)
		fmt.Fprintf(&sb, "%s · %s · %s · %s\n",
			html.EscapeString(a.DisplayStage()),
			html.EscapeString(a.DisplayAmount()),
			html.EscapeString(a.DisplayLocation()),
			html.EscapeString(a.DisplayIndustry()),
		)
		fmt.Fprintf(&sb, "<a href=\"%s\">%s</a>\n\n", html.EscapeString(a.URL), html.EscapeString(a.Title))
	}
	return sb.String()
}

// splitMessage cuts text on line boundaries into chunks of at most limit bytes.
// A single oversized line is hard-split at the last point that keeps the HTML valid.
func splitMessage(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			n := cutPoint(line, limit)
			chunks = append(chunks, line[:n])
			line = line[n:]
		}
		if cur.Len()+len(line) > limit {
			flush()
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

// cutPoint returns the length of the head to split off an oversized line. The head
// ends on a rune boundary and, when possible, leaves no tag, element or entity open.
func cutPoint(line string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(line)
		return size
	}
	if safe := markupBoundary(line[:cut]); safe > 0 {
		return safe
	}
	return cut
}

// markupBoundary returns the longest prefix of head that closes every element and
// entity it opens.
func markupBoundary(head string) int {
	var (
		depth, open, tagStart int
		inTag, closing        bool
		entity                = -1
	)
	for i := 0; i < len(head); i++ {
		switch c := head[i]; {
		case c == '<':
			inTag, tagStart = true, i
			closing = i+1 < len(head) && head[i+1] == '/'
		case c == '>' && inTag:
			inTag = false
			switch {
			case closing && depth > 0:
				depth--
			case !closing:
				if depth == 0 {
					open = tagStart
				}
				depth++
			}
		case c == '&' && !inTag:
			entity = i
		case c == ';':
			entity = -1
		}
	}

	safe := len(head)
	switch {
	case depth > 0:
		safe = open
	case inTag:
		safe = tagStart
	}
	if entity >= 0 && entity < safe {
		safe = entity
	}
	return safe
}
