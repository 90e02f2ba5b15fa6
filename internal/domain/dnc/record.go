package dnc

import (
	"errors"
	"strings"

	"github.com/davidleathers/dnc-scrubber/internal/domain/values"
)

// Status tracks a record through the check phase
type Status string

const (
	StatusPending  Status = "pending"
	StatusChecking Status = "checking"
	StatusClean    Status = "clean"
	StatusDNC      Status = "dnc"
	StatusInvalid  Status = "invalid"
)

// IsTerminal reports whether the record has been fully processed
func (s Status) IsTerminal() bool {
	return s == StatusClean || s == StatusDNC || s == StatusInvalid
}

// PhoneRecord is one candidate number parsed from an input line
type PhoneRecord struct {
	Original string `json:"original"`
	Cleaned  string `json:"cleaned"`
	AreaCode string `json:"area_code"`
	State    string `json:"state"`
	IsValid  bool   `json:"is_valid"`
	Status   Status `json:"dnc_status"`
	Details  string `json:"dnc_details,omitempty"`
	// Reason explains why an invalid record failed validation
	Reason string `json:"invalid_reason,omitempty"`
}

// NewPhoneRecord normalizes and validates a single trimmed line
func NewPhoneRecord(line string) *PhoneRecord {
	phone, err := values.NewPhoneNumber(line)
	if err == nil {
		return &PhoneRecord{
			Original: line,
			Cleaned:  phone.String(),
			AreaCode: phone.AreaCode(),
			State:    phone.State(),
			IsValid:  true,
			Status:   StatusPending,
		}
	}

	// invalid lines still carry whatever digits and region they have
	cleaned := values.Normalize(line)
	areaCode := values.AreaCodeOf(cleaned)
	record := &PhoneRecord{
		Original: line,
		Cleaned:  cleaned,
		AreaCode: areaCode,
		State:    values.StateForAreaCode(areaCode),
		Status:   StatusPending,
	}
	var validationErr values.PhoneValidationError
	if errors.As(err, &validationErr) {
		record.Reason = validationErr.Reason
	}
	return record
}

// ParseRecords builds one record per non-empty line of raw file content
func ParseRecords(content string) []*PhoneRecord {
	lines := strings.Split(content, "\n")
	records := make([]*PhoneRecord, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		records = append(records, NewPhoneRecord(line))
	}
	return records
}

// ValidationSummary reports the outcome of basic validation
type ValidationSummary struct {
	Total int `json:"total"`
	Valid int `json:"valid"`
}

// Summarize counts total and format-valid records
func Summarize(records []*PhoneRecord) ValidationSummary {
	summary := ValidationSummary{Total: len(records)}
	for _, r := range records {
		if r.IsValid {
			summary.Valid++
		}
	}
	return summary
}

// IsTextFile reports whether an uploaded file name is accepted as a number list
func IsTextFile(name string) bool {
	return strings.HasSuffix(name, ".txt")
}
