package detectors

import (
	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/core"
)

const (
	OutlookEmptyHeaderName     = "outlook-empty-header"
	OutlookEmptyHeaderPriority = 5

	OutlookReverseFRName     = "outlook-reverse-fr"
	OutlookReverseFRPriority = 6

	OutlookFRName     = "outlook-fr"
	OutlookFRPriority = 10

	NewOutlookName     = "new-outlook"
	NewOutlookPriority = 10
)

var outlookAliases = map[string]headerField{
	"from":    fieldFrom,
	"sent":    fieldDate,
	"date":    fieldDate,
	"to":      fieldTo,
	"cc":      fieldCc,
	"subject": fieldSubject,
}

var outlookFRAliases = map[string]headerField{
	"de":        fieldFrom,
	"envoyé":    fieldDate,
	"envoyé le": fieldDate,
	"date":      fieldDate,
	"à":         fieldTo,
	"a":         fieldTo,
	"cc":        fieldCc,
	"objet":     fieldSubject,
}

// NewOutlookDetector recognizes the separator-less header block that the
// new Outlook client writes above the original message:
//
//	From: Jane Doe <jane@example.com>
//	Sent: Monday, January 1, 2024 10:00 AM
//	To: ...
//	Subject: ...
func NewOutlookDetector(n *cleaner.Normalizer) core.Detector {
	return &blockDetector{
		name:       NewOutlookName,
		priority:   NewOutlookPriority,
		confidence: core.ConfidenceMedium,
		normalizer: orDefault(n),
		aliases:    outlookAliases,
		accept: func(b headerBlock) bool {
			return b.startsWith(fieldFrom) && b.has(fieldDate) && b.has(fieldSubject)
		},
	}
}

// NewOutlookFRDetector is the French Outlook form ("De :", "Envoyé :",
// "Objet :").
func NewOutlookFRDetector(n *cleaner.Normalizer) core.Detector {
	return &blockDetector{
		name:       OutlookFRName,
		priority:   OutlookFRPriority,
		confidence: core.ConfidenceMedium,
		normalizer: orDefault(n),
		aliases:    outlookFRAliases,
		accept: func(b headerBlock) bool {
			return b.startsWith(fieldFrom) && b.has(fieldDate) && b.has(fieldSubject)
		},
	}
}

// NewOutlookReverseFRDetector handles French blocks where the date line
// comes before "De :".
func NewOutlookReverseFRDetector(n *cleaner.Normalizer) core.Detector {
	return &blockDetector{
		name:       OutlookReverseFRName,
		priority:   OutlookReverseFRPriority,
		confidence: core.ConfidenceMedium,
		normalizer: orDefault(n),
		aliases:    outlookFRAliases,
		accept: func(b headerBlock) bool {
			return b.startsWith(fieldDate) && b.has(fieldFrom) && b.has(fieldSubject)
		},
	}
}

// NewOutlookEmptyHeaderDetector handles blocks whose "From:" value is empty
// because the client wrapped the sender onto the next line.
func NewOutlookEmptyHeaderDetector(n *cleaner.Normalizer) core.Detector {
	return &blockDetector{
		name:       OutlookEmptyHeaderName,
		priority:   OutlookEmptyHeaderPriority,
		confidence: core.ConfidenceMedium,
		normalizer: orDefault(n),
		aliases:    mergeAliases(outlookAliases, outlookFRAliases),
		wrapEmpty:  true,
		accept: func(b headerBlock) bool {
			return b.startsWith(fieldFrom) && b.wrapped[fieldFrom] && (b.has(fieldDate) || b.has(fieldSubject))
		},
	}
}
