package service

import (
	"strings"

	"replyboost-backend/models"
)

// signalRule pairs a badge with the keywords that trigger it
type signalRule struct {
	signal   models.Signal
	keywords []string
}

// signalRules is the fixed, ordered vocabulary for job signal detection
var signalRules = []signalRule{
	{
		signal:   models.Signal{Label: "Urgent", Code: "urgent", Color: "red"},
		keywords: []string{"urgent", "asap", "immediately", "right away"},
	},
	{
		signal:   models.Signal{Label: "Budget Mentioned", Code: "budget", Color: "green"},
		keywords: []string{"$", "budget", "pay", "rate", "price"},
	},
	{
		signal:   models.Signal{Label: "Long Term", Code: "long_term", Color: "blue"},
		keywords: []string{"long term", "long-term", "ongoing", "monthly", "full time", "full-time"},
	},
	{
		signal:   models.Signal{Label: "High Intent", Code: "high_intent", Color: "purple"},
		keywords: []string{"need", "expert", "hire", "looking for", "start"},
	},
}

// AnalyzeSignals matches a job description against the fixed vocabularies
// and returns the badges that fire, in rule order. Each badge fires at most
// once; no matches yields an empty list.
func AnalyzeSignals(jobDescription string) models.SignalList {
	lower := strings.ToLower(jobDescription)

	signals := make(models.SignalList, 0)
	for _, rule := range signalRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				signals = append(signals, rule.signal)
				break
			}
		}
	}

	return signals
}
