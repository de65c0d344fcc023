package reconcile

import (
	"strings"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

// Rule maps a keyword set to a status. Rules are evaluated in order, so the
// position in the rule list is the priority: the first rule with any keyword
// present in the email wins.
type Rule struct {
	Status   domain.Status
	Keywords []string
}

// DefaultRules covers English and French hiring mail. Rejected is checked
// before Accepted: rejection wording is more specific, and a false accept is
// the costlier mistake.
func DefaultRules() []Rule {
	return []Rule{
		{domain.StatusRejected, []string{
			"reject", "refus", "unfortunately", "not selected", "regret",
		}},
		{domain.StatusAccepted, []string{
			"accept", "congratulations", "félicitations", "congrats",
			"pleased to offer", "offer", "offre",
		}},
		{domain.StatusInterview, []string{
			"interview", "entretien", "convocation", "shortlist",
			"schedule a call", "meet",
		}},
		{domain.StatusPending, []string{
			"received your application", "application received",
			"under review", "thank you for applying",
			"merci pour votre candidature",
		}},
	}
}

// Classifier infers an application status from email text.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify scans the case-folded text against the rule table. The second
// return value is false when no keyword set matches; such emails are scanned
// but produce no status change.
func (c *Classifier) Classify(text string) (domain.Status, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Status, true
			}
		}
	}
	return domain.StatusPending, false
}
