package reconcile

import (
	"testing"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier(nil)

	tests := []struct {
		name    string
		text    string
		want    domain.Status
		matched bool
	}{
		{"rejection", "We regret to inform you", domain.StatusRejected, true},
		{"rejection french", "Suite à votre candidature, refus", domain.StatusRejected, true},
		{"offer", "Congratulations! We are pleased to offer you the position", domain.StatusAccepted, true},
		{"offer french", "Félicitations pour votre parcours", domain.StatusAccepted, true},
		{"interview", "Can we schedule a call next week?", domain.StatusInterview, true},
		{"interview french", "Convocation à un entretien", domain.StatusInterview, true},
		{"acknowledgement", "We have received your application", domain.StatusPending, true},
		{"under review", "Your file is under review", domain.StatusPending, true},
		{"case folded", "UNFORTUNATELY we went with someone else", domain.StatusRejected, true},
		{"no keyword", "Newsletter: 10 tips for your resume", domain.StatusPending, false},
		{"empty", "", domain.StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classifier.Classify(tt.text)
			if ok != tt.matched {
				t.Fatalf("Classify(%q) matched = %v, want %v", tt.text, ok, tt.matched)
			}
			if ok && got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	classifier := NewClassifier(nil)

	// Rejected and Accepted keywords in the same email: Rejected wins.
	got, ok := classifier.Classify("Congratulations on reaching the final round, but unfortunately...")
	if !ok || got != domain.StatusRejected {
		t.Fatalf("got (%v, %v), want (Rejected, true)", got, ok)
	}
}

func TestClassifyCustomRules(t *testing.T) {
	classifier := NewClassifier([]Rule{
		{domain.StatusInterview, []string{"videocall"}},
	})

	if _, ok := classifier.Classify("unfortunately"); ok {
		t.Fatal("custom rule set should replace the defaults entirely")
	}
	got, ok := classifier.Classify("Invitation: videocall on Friday")
	if !ok || got != domain.StatusInterview {
		t.Fatalf("got (%v, %v), want (Interview, true)", got, ok)
	}
}
