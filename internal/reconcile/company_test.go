package reconcile

import "testing"

func TestMatchCompany(t *testing.T) {
	companies := []string{"Acme", "Acme Robotics", "Beta Inc", ""}

	tests := []struct {
		name    string
		text    string
		want    string
		matched bool
	}{
		{"exact", "Your application at Acme", "Acme", true},
		{"case insensitive", "news from ACME CORP", "Acme", true},
		{"longest wins", "Update from Acme Robotics hiring team", "Acme Robotics", true},
		{"no match", "Hello from Gamma LLC", "", false},
		{"empty text", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchCompany(tt.text, companies)
			if ok != tt.matched || got != tt.want {
				t.Fatalf("MatchCompany(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.matched)
			}
		})
	}
}

func TestInferCompany(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		subject string
		body    string
		want    string
	}{
		{"capitalized run in body", "hr@beta.io", "", "Thank you for applying to Beta Inc, under review", "Beta Inc"},
		{"capitalized run in subject", "noreply@jobs.example", "Welcome to Gamma Labs", "", "Gamma Labs"},
		{"subject token", "", "candidature chez Acme", "", "Acme"},
		{"sender domain", "recruiting@initech.com", "", "hello there", "Initech"},
		{"nothing plausible", "", "", "hello there", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCompany(tt.sender, tt.subject, tt.body); got != tt.want {
				t.Fatalf("InferCompany(%q, %q, %q) = %q, want %q", tt.sender, tt.subject, tt.body, got, tt.want)
			}
		})
	}
}
