package dnc

import "encoding/json"

// Source identifies an external DNC lookup service
type Source string

const (
	SourceTCPA    Source = "TCPA_V1"
	SourcePerson  Source = "PERSON_V3"
	SourcePremium Source = "PREMIUM"
)

const (
	// CleanDetails is reported when no source flags a number
	CleanDetails = "Clean - Not in any DNC list"
	// ErrorDetails is reported when consensus resolution itself fails
	ErrorDetails = "Error checking DNC status"
)

// Verdict is the outcome of one DNC check. It is never mutated after creation.
type Verdict struct {
	IsDNC   bool            `json:"is_dnc"`
	Details string          `json:"details"`
	Source  Source          `json:"source,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// CleanVerdict is the synthesized result when every source reports negative
func CleanVerdict() Verdict {
	return Verdict{IsDNC: false, Details: CleanDetails}
}

// ErrorVerdict degrades an unexpected failure to a negative result
func ErrorVerdict() Verdict {
	return Verdict{IsDNC: false, Details: ErrorDetails}
}

// Status maps the verdict to the record status it produces
func (v Verdict) Status() Status {
	if v.IsDNC {
		return StatusDNC
	}
	return StatusClean
}

// LookupOutcome classifies a single source lookup
type LookupOutcome string

const (
	OutcomeListed LookupOutcome = "listed"
	OutcomeClear  LookupOutcome = "clear"
	OutcomeFailed LookupOutcome = "failed"
)
