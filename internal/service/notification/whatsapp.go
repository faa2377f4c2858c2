package notification

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/jwalitptl/mediqueue/internal/model"
)

const waBaseURL = "https://wa.me/"

// LinkBuilder renders wa.me deep links that open a prefilled chat with the
// patient. Delivery itself happens on the staff member's device.
type LinkBuilder struct {
	countryCode string
}

func NewLinkBuilder(countryCode string) LinkBuilder {
	countryCode = digitsOnly(countryCode)
	if countryCode == "" {
		countryCode = "91"
	}
	return LinkBuilder{countryCode: countryCode}
}

// Phone keeps digits only and prefixes the country code unless present.
func (b LinkBuilder) Phone(raw string) string {
	phone := digitsOnly(raw)
	if strings.HasPrefix(phone, b.countryCode) {
		return phone
	}
	return b.countryCode + phone
}

func (b LinkBuilder) Confirmation(token *model.Token, clinicName string) string {
	return b.link(token.PatientPhone, ConfirmationText(token, clinicName))
}

func (b LinkBuilder) Cancellation(token *model.Token, reason, clinicName string) string {
	return b.link(token.PatientPhone, CancellationText(token, reason, clinicName))
}

func (b LinkBuilder) link(phone, text string) string {
	return waBaseURL + b.Phone(phone) + "?text=" + encodeComponent(text)
}

// doctorEmoji is the man health worker ZWJ sequence.
const doctorEmoji = "\U0001F468\u200D\u2695\uFE0F"

func ConfirmationText(token *model.Token, clinicName string) string {
	var sb strings.Builder
	sb.WriteString("🏥 *MediQueue - Token Confirmation*\n\n")
	sb.WriteString("✅ Your token has been booked successfully!\n\n")
	fmt.Fprintf(&sb, "🎫 Token: *%s*\n", token.TokenNumber)
	fmt.Fprintf(&sb, "%s Doctor: *%s*\n", doctorEmoji, token.DoctorName)
	fmt.Fprintf(&sb, "🏢 Department: *%s*\n", token.Department)
	fmt.Fprintf(&sb, "🕐 Time: *%s*\n", token.TimeSlot)
	fmt.Fprintf(&sb, "📅 Date: *%s*\n\n", token.Date)
	sb.WriteString("Please arrive 10 minutes before your slot.\n")
	sb.WriteString("Track your queue live at our display board.\n\n")
	fmt.Fprintf(&sb, "\u2014 %s", clinicName)
	return sb.String()
}

func CancellationText(token *model.Token, reason, clinicName string) string {
	doctor := token.DoctorName
	if doctor == "" {
		doctor = "N/A"
	}
	var sb strings.Builder
	sb.WriteString("🏥 *MediQueue - Appointment Update*\n\n")
	fmt.Fprintf(&sb, "❌ Your token *%s* has been cancelled.\n\n", token.TokenNumber)
	fmt.Fprintf(&sb, "%s Doctor: *%s*\n", doctorEmoji, doctor)
	fmt.Fprintf(&sb, "📅 Date: *%s*\n", token.Date)
	fmt.Fprintf(&sb, "📝 Reason: %s\n\n", reason)
	sb.WriteString("Please rebook your appointment.\n\n")
	fmt.Fprintf(&sb, "\u2014 %s", clinicName)
	return sb.String()
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// componentUnescaper restores the marks a URI component leaves alone.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes a URI component the way browsers do: letters,
// digits and -_.!~*'() stay literal and everything else is percent-encoded
// UTF-8.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
