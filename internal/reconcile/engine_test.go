package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testEngine(opts Options) *Engine {
	if opts.NewCode == nil {
		n := 0
		opts.NewCode = func() string {
			n++
			return fmt.Sprintf("T-%d", n)
		}
	}
	return NewEngine(NewClassifier(nil), opts)
}

func ts(offset time.Duration) time.Time { return t0.Add(offset) }

func tsp(offset time.Duration) *time.Time {
	t := ts(offset)
	return &t
}

func TestReconcileRejectionUpdatesMatch(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusPending, Source: domain.SourceManual},
	}
	emails := []domain.EmailRecord{
		{Sender: "hr@acme.com", Body: "We regret to inform you, Acme", Received: ts(0)},
	}

	result, summary := engine.Reconcile(emails, apps)

	if summary != (domain.SyncSummary{Scanned: 1, Updated: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
	app := result[0]
	if app.Status != domain.StatusRejected {
		t.Fatalf("status = %v, want Rejected", app.Status)
	}
	if app.LastEmail == nil || !app.LastEmail.Equal(ts(0)) {
		t.Fatalf("lastEmail = %v, want %v", app.LastEmail, ts(0))
	}
	if app.Source != domain.SourceEmail {
		t.Fatalf("source = %v, want email", app.Source)
	}
	// Input snapshot untouched.
	if apps[0].Status != domain.StatusPending || apps[0].LastEmail != nil {
		t.Fatal("input slice was mutated")
	}
}

func TestReconcileCreatesFromUnmatchedEmail(t *testing.T) {
	engine := testEngine(Options{})
	emails := []domain.EmailRecord{
		{Sender: "hr@beta.io", Body: "Thank you for applying to Beta Inc, under review", Received: ts(0)},
	}

	result, summary := engine.Reconcile(emails, nil)

	if summary != (domain.SyncSummary{Scanned: 1, Created: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
	if len(result) != 1 {
		t.Fatalf("len(result) = %d", len(result))
	}
	app := result[0]
	if app.Company != "Beta Inc" {
		t.Fatalf("company = %q, want Beta Inc", app.Company)
	}
	if app.Status != domain.StatusPending {
		t.Fatalf("status = %v, want Pending", app.Status)
	}
	if app.Source != domain.SourceEmail || app.Code == "" {
		t.Fatalf("source/code = %v/%q", app.Source, app.Code)
	}
}

func TestReconcileUnknownCompanyPlaceholder(t *testing.T) {
	engine := testEngine(Options{})
	emails := []domain.EmailRecord{
		{Sender: "", Subject: "", Body: "no clues here", Received: ts(0)},
	}

	result, _ := engine.Reconcile(emails, nil)

	if result[0].Company != "Unknown" {
		t.Fatalf("company = %q, want Unknown", result[0].Company)
	}
}

func TestReconcileStaleEmailSkipped(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusPending, LastEmail: tsp(time.Hour)},
	}
	emails := []domain.EmailRecord{
		{Body: "interview at Acme", Received: ts(0)},         // older
		{Body: "interview at Acme", Received: ts(time.Hour)}, // equal
	}

	result, summary := engine.Reconcile(emails, apps)

	if summary != (domain.SyncSummary{Scanned: 2, Skipped: 2}) {
		t.Fatalf("summary = %+v", summary)
	}
	if result[0].Status != domain.StatusPending {
		t.Fatalf("status = %v, want Pending", result[0].Status)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusPending},
	}
	emails := []domain.EmailRecord{
		{Body: "entretien chez Acme", Received: ts(0)},
	}

	once, first := engine.Reconcile(emails, apps)
	if first.Updated != 1 {
		t.Fatalf("first pass updated = %d, want 1", first.Updated)
	}

	twice, second := engine.Reconcile(emails, once)
	if second != (domain.SyncSummary{Scanned: 1, Skipped: 1}) {
		t.Fatalf("second pass summary = %+v", second)
	}
	if twice[0].Status != once[0].Status || !twice[0].LastEmail.Equal(*once[0].LastEmail) {
		t.Fatal("second pass changed the snapshot")
	}
}

func TestReconcileTerminalStatusProtected(t *testing.T) {
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusAccepted, LastEmail: tsp(0)},
	}
	emails := []domain.EmailRecord{
		{Body: "Acme: your application is under review", Received: ts(time.Hour)},
	}

	result, summary := testEngine(Options{}).Reconcile(emails, apps)

	if result[0].Status != domain.StatusAccepted {
		t.Fatalf("status = %v, want Accepted kept", result[0].Status)
	}
	if !result[0].LastEmail.Equal(ts(time.Hour)) {
		t.Fatalf("lastEmail = %v, want advanced to %v", result[0].LastEmail, ts(time.Hour))
	}
	if summary.Updated != 0 {
		t.Fatalf("updated = %d, want 0", summary.Updated)
	}

	// Same inputs with downgrades allowed.
	result, summary = testEngine(Options{AllowDowngrade: true}).Reconcile(emails, apps)
	if result[0].Status != domain.StatusPending || summary.Updated != 1 {
		t.Fatalf("with AllowDowngrade: status = %v, updated = %d", result[0].Status, summary.Updated)
	}
}

func TestReconcileLongestCompanyWins(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme"},
		{Code: "A2", Company: "Acme Robotics"},
	}
	emails := []domain.EmailRecord{
		{Body: "Update from Acme Robotics", Received: ts(0)},
	}

	result, _ := engine.Reconcile(emails, apps)

	if result[1].LastEmail == nil {
		t.Fatal("Acme Robotics should have been matched")
	}
	if result[0].LastEmail != nil {
		t.Fatal("Acme should not have been touched")
	}
}

func TestReconcileProcessesInTimestampOrder(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusPending},
	}
	// Out-of-order input: the later interview mail must win and lastEmail
	// must hold the chronologically latest timestamp.
	emails := []domain.EmailRecord{
		{Body: "Acme entretien", Received: ts(2 * time.Hour)},
		{Body: "Acme application received", Received: ts(time.Hour)},
	}

	result, summary := engine.Reconcile(emails, apps)

	if result[0].Status != domain.StatusInterview {
		t.Fatalf("status = %v, want Interview", result[0].Status)
	}
	if !result[0].LastEmail.Equal(ts(2 * time.Hour)) {
		t.Fatalf("lastEmail = %v, want %v", result[0].LastEmail, ts(2*time.Hour))
	}
	if summary.Updated != 1 {
		t.Fatalf("updated = %d, want 1", summary.Updated)
	}
}

func TestReconcileMalformedEmailDoesNotAbort(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusPending},
	}
	emails := []domain.EmailRecord{
		{Body: "Acme interview"}, // zero timestamp
		{Body: "Acme interview", Received: ts(0)},
	}

	result, summary := engine.Reconcile(emails, apps)

	if summary != (domain.SyncSummary{Scanned: 2, Updated: 1, Skipped: 1, Errors: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
	if result[0].Status != domain.StatusInterview {
		t.Fatalf("status = %v, want Interview", result[0].Status)
	}
}

func TestReconcileNoStatusChangeStillAdvancesLastEmail(t *testing.T) {
	engine := testEngine(Options{})
	apps := []domain.Application{
		{Code: "A1", Company: "Acme", Status: domain.StatusInterview},
	}
	emails := []domain.EmailRecord{
		{Body: "Acme: see attached directions to our office", Received: ts(0)},
	}

	result, summary := engine.Reconcile(emails, apps)

	if summary != (domain.SyncSummary{Scanned: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
	app := result[0]
	if app.LastEmail == nil || !app.LastEmail.Equal(ts(0)) || app.Source != domain.SourceEmail {
		t.Fatalf("lastEmail/source = %v/%v", app.LastEmail, app.Source)
	}
	if app.Status != domain.StatusInterview {
		t.Fatalf("status = %v, want unchanged Interview", app.Status)
	}
}
