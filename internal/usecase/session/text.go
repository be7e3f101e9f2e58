package session

import (
	"errors"
	"fmt"

	"textgen/internal/domain"
)

// Text is the user-facing copy the controller produces. ServerRejected is a
// format string taking the server's detail message.
type Text struct {
	EmptyPrompt    string
	Cancelled      string
	ServerRejected string
	Unreachable    string
	Malformed      string
	EmptyResult    string
}

// EnglishText is the English catalog.
var EnglishText = Text{
	EmptyPrompt:    "Generate text",
	Cancelled:      "Generation cancelled",
	ServerRejected: "Error: %s",
	Unreachable:    "Could not reach the server. Please make sure the API is running.",
	Malformed:      "Error: received an invalid response from the server",
	EmptyResult:    "Error: received an empty response",
}

// UrduText is the Urdu catalog.
var UrduText = Text{
	EmptyPrompt:    "متن بنائیں",
	Cancelled:      "تخلیق منسوخ کر دی گئی",
	ServerRejected: "خرابی: %s",
	Unreachable:    "سرور سے رابطہ نہیں ہو سکا۔ براہ کرم یقینی بنائیں کہ API چل رہا ہے۔",
	Malformed:      "خرابی: سرور سے غلط جواب موصول ہوا",
	EmptyResult:    "خرابی: خالی جواب موصول ہوا",
}

// TextFor returns the catalog for locale ("ur" or "en"). Unknown locales get
// Urdu.
func TextFor(locale string) Text {
	if locale == "en" {
		return EnglishText
	}
	return UrduText
}

// Describe classifies err and renders its message.
func (t Text) Describe(err error) (domain.ErrorKind, string) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindCancelled:
		return kind, t.Cancelled
	case domain.KindServerRejected:
		detail := err.Error()
		var re *domain.RequestError
		if errors.As(err, &re) && re.Detail != "" {
			detail = re.Detail
		}
		return kind, fmt.Sprintf(t.ServerRejected, detail)
	case domain.KindMalformed:
		return kind, t.Malformed
	case domain.KindEmptyResult:
		return kind, t.EmptyResult
	default:
		return domain.KindUnreachable, t.Unreachable
	}
}
