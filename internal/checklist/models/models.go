// Package models defines the rule catalog entities and the resolved checklist
// shapes shared by the rule engine, its stores, and the submission gate.
package models

import (
	id "intake/pkg/domain"
)

// Document type vocabulary. The catalog may carry additional types; these are
// the ones the rule engine treats specially.
const (
	DocTypePassport          = "passport"
	DocTypeNationalID        = "national_id"
	DocTypeBirthCertificate  = "birth_certificate"
	DocTypeGateApproval      = "gate_approval"
	DocTypePersonalStatement = "personal_statement"
)

// NationalityTT is the nationality value that switches the identity-document
// requirement from passport to national id and birth certificate.
const NationalityTT = "TT National"

// ChecklistRule is one row of the rule catalog. Rules are reference data, not
// per-submission snapshots: the required set is recomputed from current rules
// on every resolve, so catalog edits affect in-flight submissions.
type ChecklistRule struct {
	ID         int64
	Programme  string
	IntakeTerm string
	Campus     string
	Dept       id.Dept
	DocType    string
	Required   bool
	Active     bool
}

// ChecklistItem is one resolved entry of a student's checklist.
type ChecklistItem struct {
	DocType     string `json:"doc_type"`
	DisplayName string `json:"display_name"`
	Required    bool   `json:"required"`
}

// Query carries the student attributes a checklist is resolved for.
// Nationality is optional; nil skips the nationality filter entirely.
type Query struct {
	Programme   string
	IntakeTerm  string
	Campus      string
	Dept        id.Dept
	FundingType id.FundingType
	Nationality *string
}

var displayNames = map[string]string{
	DocTypePassport:          "Passport",
	DocTypeNationalID:        "National ID",
	DocTypeBirthCertificate:  "Birth Certificate",
	DocTypeGateApproval:      "GATE Approval Letter",
	DocTypePersonalStatement: "Personal Statement",
	"academic_transcript":    "Academic Transcript",
	"medical_certificate":    "Medical Certificate",
	"recommendation_letter":  "Recommendation Letter",
	"proof_of_address":       "Proof of Address",
	"passport_photo":         "Passport-sized Photo",
}

// DisplayName returns the human-readable label for a doc type, deriving one
// from the key when the type is not in the known vocabulary.
func DisplayName(docType string) string {
	if name, ok := displayNames[docType]; ok {
		return name
	}
	return titleFromKey(docType)
}

func titleFromKey(key string) string {
	out := make([]byte, 0, len(key))
	upper := true
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
