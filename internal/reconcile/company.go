package reconcile

import (
	"regexp"
	"strings"
)

var (
	companyRunRe   = regexp.MustCompile(`([A-Z][A-Za-z0-9&-]*(?: [A-Z][A-Za-z0-9&-]*)+)`)
	subjectWordRe  = regexp.MustCompile(`\b([A-Z][A-Za-z-]{2,})\b`)
	senderDomainRe = regexp.MustCompile(`@([A-Za-z0-9-]+)\.`)
)

// MatchCompany finds the stored company whose name appears in the email
// text. Matching is case-insensitive substring containment of the company
// name within the text; when several companies match, the longest name wins
// so that "Acme Robotics" beats "Acme".
func MatchCompany(text string, companies []string) (string, bool) {
	lowered := strings.ToLower(text)
	best := ""
	bestLen := 0
	for _, company := range companies {
		name := strings.ToLower(strings.TrimSpace(company))
		if name == "" {
			continue
		}
		if strings.Contains(lowered, name) && len(name) > bestLen {
			best = company
			bestLen = len(name)
		}
	}
	return best, bestLen > 0
}

// InferCompany guesses a company name for an email that matched no stored
// application. It prefers a run of capitalized words in the text ("Beta
// Inc"), then a capitalized subject token, then the sender's domain label.
// Returns "" when nothing plausible is found.
func InferCompany(sender, subject, body string) string {
	if m := companyRunRe.FindStringSubmatch(subject + "\n" + body); m != nil {
		return m[1]
	}
	if m := subjectWordRe.FindStringSubmatch(subject); m != nil {
		return m[1]
	}
	if m := senderDomainRe.FindStringSubmatch(sender); m != nil {
		label := strings.ToLower(m[1])
		return strings.ToUpper(label[:1]) + label[1:]
	}
	return ""
}
