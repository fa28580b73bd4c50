package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Article is a core entity describing one feed entry fetched from a source.
type Article struct {
	ID          string
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Text joins title and description; the title comes first so title heuristics see it before the body.
func (a Article) Text() string {
	title := strings.TrimSpace(a.Title)
	description := strings.TrimSpace(a.Description)
	switch {
	case title == "":
		return description
	case description == "":
		return title
	default:
		return title + ". " + description
	}
}

// ArticleID picks a stable identifier: feed GUID, then link, then a hash of source and title.
func ArticleID(guid, link, source, title string) string {
	if id := strings.TrimSpace(guid); id != "" {
		return id
	}
	if id := strings.TrimSpace(link); id != "" {
		return id
	}
	sum := sha256.Sum256([]byte(strings.TrimSpace(source) + "\x00" + strings.TrimSpace(title)))
	return "sha256:" + hex.EncodeToString(sum[:])
}
