package reconcile

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

// Options tunes engine policy.
type Options struct {
	// AllowDowngrade lets a later email overwrite a terminal status
	// (Accepted/Rejected). Off by default: a stray "under review" mail must
	// not revert a resolved outcome.
	AllowDowngrade bool

	// NewCode generates codes for applications created by sync. Defaults to
	// a short uuid-derived code.
	NewCode func() string
}

// Engine performs the email-to-application reconciliation pass. It is pure
// with respect to its inputs: no I/O, no hidden state. The caller owns the
// load/save boundary around it.
type Engine struct {
	classifier     *Classifier
	allowDowngrade bool
	newCode        func() string
}

func NewEngine(classifier *Classifier, opts Options) *Engine {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	newCode := opts.NewCode
	if newCode == nil {
		newCode = defaultCode
	}
	return &Engine{
		classifier:     classifier,
		allowDowngrade: opts.AllowDowngrade,
		newCode:        newCode,
	}
}

func defaultCode() string {
	return "CW-" + strings.ToUpper(uuid.NewString()[:8])
}

// Reconcile processes emails in ascending timestamp order against a snapshot
// of the applications table and returns the mutated snapshot plus a summary.
// Input slices are not modified. A single email never aborts the pass:
// malformed records are counted and skipped.
func (e *Engine) Reconcile(emails []domain.EmailRecord, apps []domain.Application) ([]domain.Application, domain.SyncSummary) {
	result := make([]domain.Application, len(apps))
	copy(result, apps)

	ordered := make([]domain.EmailRecord, len(emails))
	copy(ordered, emails)
	// Stable sort: ties keep input order, and lastEmail ends up holding the
	// chronologically latest processed timestamp.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Received.Before(ordered[j].Received)
	})

	var summary domain.SyncSummary
	for _, email := range ordered {
		summary.Scanned++

		if email.Received.IsZero() {
			summary.Skipped++
			summary.Errors++
			continue
		}

		text := email.Subject + "\n" + email.Body
		companies := lo.Map(result, func(app domain.Application, _ int) string { return app.Company })

		idx := -1
		if name, ok := MatchCompany(text, companies); ok {
			_, idx, _ = lo.FindIndexOf(result, func(app domain.Application) bool { return app.Company == name })
		}

		if idx < 0 {
			result = append(result, e.create(email, text))
			summary.Created++
			continue
		}

		app := &result[idx]
		if app.LastEmail != nil && !app.LastEmail.Before(email.Received) {
			// Already processed an email at or after this timestamp.
			summary.Skipped++
			continue
		}

		statusChanged := false
		if status, ok := e.classifier.Classify(text); ok && status != app.Status {
			if e.allowDowngrade || !app.Status.Terminal() {
				app.Status = status
				statusChanged = true
			}
		}

		received := email.Received
		app.LastEmail = &received
		app.Source = domain.SourceEmail
		if statusChanged {
			summary.Updated++
		}
	}

	return result, summary
}

func (e *Engine) create(email domain.EmailRecord, text string) domain.Application {
	company := InferCompany(email.Sender, email.Subject, email.Body)
	if company == "" {
		// Flagged for manual review: the dashboard surfaces the placeholder.
		company = "Unknown"
	}
	status := domain.StatusPending
	if inferred, ok := e.classifier.Classify(text); ok {
		status = inferred
	}
	received := email.Received
	return domain.Application{
		Code:      e.newCode(),
		Company:   company,
		Status:    status,
		LastEmail: &received,
		Source:    domain.SourceEmail,
	}
}
