// Package antispam rejects contact form submissions that look like spam.
package antispam

import (
	"strings"
	"unicode"
)

// Reason identifies which family of rule rejected a submission.
type Reason string

const (
	ReasonDisposableEmail Reason = "disposable_email"
	ReasonSpamKeyword     Reason = "spam_keyword"
	ReasonRepeatedChars   Reason = "repeated_chars"
	ReasonExcessiveLinks  Reason = "excessive_links"
	ReasonExcessiveCaps   Reason = "excessive_caps"
)

// Message returns the user facing text for a rejection reason.
func (r Reason) Message() string {
	switch r {
	case ReasonDisposableEmail:
		return "Please use a permanent email address. Temporary email services are not allowed."
	case ReasonSpamKeyword:
		return "Your message contains prohibited content. Please revise and try again."
	default:
		return "Your message appears to be spam. Please write a genuine inquiry."
	}
}

// Input is the subset of form fields the filter inspects.
type Input struct {
	FirstName string
	LastName  string
	Email     string
	Subject   string
	Message   string
}

// Filter applies Rules in a fixed order; the first matching rule wins.
type Filter struct {
	rules Rules
}

// New creates a Filter.
func New(rules Rules) *Filter {
	return &Filter{rules: rules}
}

// Check returns the reason the input is rejected, or "" and false when it passes.
func (f *Filter) Check(in Input) (Reason, bool) {
	switch {
	case f.isDisposable(in.Email):
		return ReasonDisposableEmail, true
	case f.hasSpamKeyword(in.Message, in.Subject, in.FirstName, in.LastName):
		return ReasonSpamKeyword, true
	case hasRepeatedRun(in.Message, f.rules.MaxRepeatedRun):
		return ReasonRepeatedChars, true
	case strings.Count(strings.ToLower(in.Message), "http") > f.rules.MaxLinks:
		return ReasonExcessiveLinks, true
	case capsRatio(in.Message) > f.rules.MaxCapsRatio:
		return ReasonExcessiveCaps, true
	}
	return "", false
}

func (f *Filter) isDisposable(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range f.rules.DisposableDomains {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}

func (f *Filter) hasSpamKeyword(fields ...string) bool {
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, kw := range f.rules.SpamKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// hasRepeatedRun reports whether s holds n or more identical runes in a row.
// Line terminators never start or extend a run, so blank lines are allowed.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if isLineTerminator(r) {
			run = 0
			continue
		}
		if run > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

// capsRatio is the share of letters in s that are uppercase.
func capsRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
