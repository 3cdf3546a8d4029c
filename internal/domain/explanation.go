package domain

// ExplanationRequest carries the context for a drug/phenotype explanation.
// RiskLabel is produced by the risk assessment collaborator and passed through verbatim.
type ExplanationRequest struct {
	Drug      string             `json:"drug"`
	Phenotype string             `json:"phenotype"`
	RiskLabel string             `json:"risk_label"`
	Gene      string             `json:"gene"`
	Variants  []AnnotatedVariant `json:"variants,omitempty"`
}

// ExplanationSections is the four-part clinical narrative.
// All four keys are always serialized, empty sections as "".
type ExplanationSections struct {
	Summary         string `json:"summary"`
	Mechanism       string `json:"mechanism"`
	RiskRationale   string `json:"risk_rationale"`
	PatientFriendly string `json:"patient_friendly"`
}

// IsComplete reports whether every section carries text
func (s ExplanationSections) IsComplete() bool {
	return s.Summary != "" && s.Mechanism != "" && s.RiskRationale != "" && s.PatientFriendly != ""
}

// IsEmpty reports whether no section carries text
func (s ExplanationSections) IsEmpty() bool {
	return s.Summary == "" && s.Mechanism == "" && s.RiskRationale == "" && s.PatientFriendly == ""
}

// ExplanationSource records where an explanation came from
type ExplanationSource string

const (
	SourceLLM      ExplanationSource = "llm"
	SourceCache    ExplanationSource = "cache"
	SourceFallback ExplanationSource = "fallback"
)

// Explanation pairs generated sections with their source
type Explanation struct {
	Sections ExplanationSections `json:"explanation"`
	Source   ExplanationSource   `json:"source"`
}
