package services

import (
	"regexp"
	"strings"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nudes",
	"scam", "scammer", "phishing", "malware",
}

const (
	RejectLanguage = "inappropriate_language"
	RejectSpam     = "spam_detected"
	RejectCaps     = "excessive_caps"
	RejectTooLong  = "too_long"
)

var rejectionMessages = map[string]string{
	RejectLanguage: "Your text contains inappropriate language.",
	RejectSpam:     "Your text appears to be spam.",
	RejectCaps:     "Please avoid using excessive capital letters.",
	RejectTooLong:  "Your text is too long.",
}

// ContentFilter screens user-written text for posts and comments. Links are
// allowed since posts routinely share them.
type ContentFilter struct {
	bannedWords  []*regexp.Regexp
	repeatedChar *regexp.Regexp
	allCaps      *regexp.Regexp
	maxLength    int
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWords: make([]*regexp.Regexp, 0, len(BannedWords)),
		// RE2 has no backreferences, so runs are spelled out per character class.
		repeatedChar: regexp.MustCompile(`(?i)(a{6,}|b{6,}|c{6,}|d{6,}|e{6,}|f{6,}|g{6,}|h{6,}|i{6,}|j{6,}|k{6,}|l{6,}|m{6,}|n{6,}|o{6,}|p{6,}|q{6,}|r{6,}|s{6,}|t{6,}|u{6,}|v{6,}|w{6,}|x{6,}|y{6,}|z{6,}|!{6,}|\?{6,}|\.{6,})`),
		allCaps:      regexp.MustCompile(`\b[A-Z]{5,}\b`),
		maxLength:    5000,
	}
	for _, word := range BannedWords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err == nil {
			f.bannedWords = append(f.bannedWords, re)
		}
	}
	return f
}

// Check returns nil when text is acceptable, otherwise a *ContentRejectedError.
func (f *ContentFilter) Check(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) > f.maxLength {
		return reject(RejectTooLong)
	}
	for _, re := range f.bannedWords {
		if re.MatchString(text) {
			return reject(RejectLanguage)
		}
	}
	if f.repeatedChar.MatchString(text) {
		return reject(RejectSpam)
	}
	if len(f.allCaps.FindAllString(text, -1)) > 2 {
		return reject(RejectCaps)
	}
	return nil
}

func (f *ContentFilter) ContainsProfanity(text string) bool {
	for _, re := range f.bannedWords {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func reject(reason string) error {
	msg, ok := rejectionMessages[reason]
	if !ok {
		msg = "Your text does not meet our content guidelines."
	}
	return &ContentRejectedError{Reason: reason, Message: msg}
}
