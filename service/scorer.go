package service

import (
	"strings"

	"replyboost-backend/models"
)

const (
	scoreBase        = 50
	minReplyWords    = 50
	maxReplyWords    = 150
	minKeywordLength = 6
)

// ScoreReply derives a heuristic reply strength estimate from a generated
// reply and the job description it answers. Deterministic and pure.
func ScoreReply(reply, jobDescription string) models.ReplyScore {
	score := scoreBase
	breakdown := make([]string, 0)

	// Length
	wordCount := len(strings.Fields(reply))
	switch {
	case wordCount >= minReplyWords && wordCount <= maxReplyWords:
		score += 10
		breakdown = append(breakdown, "Perfect Length")
	case wordCount < minReplyWords:
		breakdown = append(breakdown, "Too Short")
	default:
		score -= 5
		breakdown = append(breakdown, "Too Long")
	}

	// Keyword overlap with the job description
	matches := countKeywordMatches(reply, jobDescription)
	switch {
	case matches > 2:
		score += 15
		breakdown = append(breakdown, "Good Keyword Usage")
	case matches > 0:
		score += 5
	default:
		breakdown = append(breakdown, "Missed Keywords")
	}

	// A question anywhere reads as a call to action
	if strings.Contains(reply, "?") {
		score += 15
		breakdown = append(breakdown, "Clear CTA")
	} else {
		score -= 10
		breakdown = append(breakdown, "Missing Question")
	}

	// Paragraph structure
	if strings.Contains(reply, "\n") {
		score += 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.ReplyScore{
		Score:     score,
		Breakdown: breakdown,
		Label:     scoreLabel(score),
	}
}

// countKeywordMatches counts job description tokens longer than five
// characters that appear as substrings in the reply, case-insensitive
func countKeywordMatches(reply, jobDescription string) int {
	replyLower := strings.ToLower(reply)

	matches := 0
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(jobDescription)) {
		if len(token) < minKeywordLength {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}

		if strings.Contains(replyLower, token) {
			matches++
		}
	}

	return matches
}

func scoreLabel(score int) string {
	switch {
	case score > 80:
		return "Strong"
	case score > 60:
		return "Average"
	default:
		return "Weak"
	}
}
