package messaging

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/satenders/tender-indexer/internal/domain"
)

const (
	// subjectLineLimit caps the human-readable subject line
	subjectLineLimit = 95
	// descriptionLimit caps the description carried in the message body
	descriptionLimit = 300
)

// BuildNotification assembles the per-tender message for a committed tender
// row
func BuildNotification(tenderID int64, tender domain.Tender, source domain.Source) domain.TenderNotification {
	category := CategoryAttribute(tender.Category, source)

	title := ""
	if tender.Title != nil {
		title = *tender.Title
	}
	description := ""
	if tender.Description != nil {
		description = *tender.Description
	}

	return domain.TenderNotification{
		MessageID:   uuid.New().String(),
		Subject:     truncateRunes(fmt.Sprintf("New %s tender: %s", category, title), subjectLineLimit),
		TenderID:    tenderID,
		Title:       title,
		Category:    category,
		Source:      source.String(),
		PublishedAt: tender.PublishedAt,
		ClosingAt:   tender.ClosingAt,
		URL:         tender.URL,
		Description: truncateRunes(description, descriptionLimit),
	}
}

// CategoryAttribute is the lowercased category carried as the message
// attribute subscribers filter on. Falls back to the source name, then to
// "general".
func CategoryAttribute(category *string, source domain.Source) string {
	if category != nil {
		if c := strings.TrimSpace(*category); c != "" {
			return strings.ToLower(c)
		}
	}
	if source != "" {
		return strings.ToLower(source.String())
	}
	return "general"
}

var tokenInvalidRe = regexp.MustCompile(`[^a-z0-9_\s-]+`)

// CategoryToken renders a category attribute as a single broker subject
// token: lowercase, anything outside [a-z0-9_-] removed, whitespace
// collapsed to dashes
func CategoryToken(category string) string {
	token := strings.ToLower(category)
	token = tokenInvalidRe.ReplaceAllString(token, "")
	token = strings.Join(strings.Fields(token), "-")
	if token == "" {
		return "general"
	}
	return token
}

// NotifySubject is the broker subject a notification is published on
func NotifySubject(category string) string {
	return "tenders.notify." + CategoryToken(category)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
