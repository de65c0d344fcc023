package domain

import "strings"

// Status is the lifecycle state of an application. It is an internal enum;
// the spreadsheet stores localized labels, mapped at the store boundary.
type Status int

const (
	StatusPending Status = iota
	StatusInterview
	StatusAccepted
	StatusRejected
)

var AllStatuses = []Status{StatusPending, StatusInterview, StatusAccepted, StatusRejected}

// Terminal reports whether the status is a resolved outcome. Terminal
// statuses are never overwritten by a later email unless downgrades are
// explicitly allowed.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

func (s Status) String() string {
	return LabelsEN[s]
}

// LabelSet maps statuses to the literal strings used in the persisted table.
type LabelSet map[Status]string

var (
	LabelsFR = LabelSet{
		StatusPending:   "En attente",
		StatusInterview: "Entretien",
		StatusAccepted:  "Acceptée",
		StatusRejected:  "Refusée",
	}
	LabelsEN = LabelSet{
		StatusPending:   "Pending",
		StatusInterview: "Interview",
		StatusAccepted:  "Accepted",
		StatusRejected:  "Rejected",
	}
)

// Labels returns the label set for a language tag, defaulting to French,
// which is the storage format of pre-existing spreadsheets.
func Labels(lang string) LabelSet {
	if strings.EqualFold(lang, "en") {
		return LabelsEN
	}
	return LabelsFR
}

// ParseStatus accepts a label from either language set, case-insensitively.
func ParseStatus(label string) (Status, bool) {
	needle := strings.ToLower(strings.TrimSpace(label))
	for _, set := range []LabelSet{LabelsFR, LabelsEN} {
		for status, l := range set {
			if strings.ToLower(l) == needle {
				return status, true
			}
		}
	}
	return StatusPending, false
}
