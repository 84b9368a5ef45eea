package notify

import (
	"strings"
	"unicode/utf8"
)

// maxQuoteRunes bounds the comment text quoted in a notification message.
const maxQuoteRunes = 100

func LikeMessage(actor string) string {
	return actor + " liked your photo"
}

func CommentMessage(actor, text string) string {
	return actor + " commented on your photo: " + Quote(text)
}

func ReplyMessage(actor, text string) string {
	return actor + " replied to your comment: " + Quote(text)
}

func FollowMessage(actor string) string {
	return actor + " started following you"
}

func MentionMessage(actor string) string {
	return actor + " mentioned you in a comment"
}

// Quote trims text and cuts it to maxQuoteRunes, appending an ellipsis when cut.
func Quote(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxQuoteRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxQuoteRunes]) + "..."
}

// ExtractMentions returns the unique @usernames in content, lowercased and without
// the @ prefix. Tokens shorter than 3 or longer than 30 characters are ignored.
func ExtractMentions(content string) []string {
	var mentions []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(content) {
		if !strings.HasPrefix(word, "@") || len(word) < 2 {
			continue
		}
		username := strings.TrimPrefix(word, "@")
		username = strings.TrimRight(username, ".,!?;:)'\"")
		username = strings.ToLower(username)

		n := utf8.RuneCountInString(username)
		if seen[username] || n < 3 || n > 30 {
			continue
		}
		seen[username] = true
		mentions = append(mentions, username)
	}
	return mentions
}
