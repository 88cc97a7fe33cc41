package normalizer

import "fmt"

// ValidationError reports a raw record missing a required field or carrying
// a value that cannot be interpreted. The record is dropped; the batch
// continues.
type ValidationError struct {
	RecordID string // Raw record id when present, may be empty
	Field    string // Offending field name
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("record %s: invalid %s: %s", e.RecordID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnknownCategoryError reports a record whose every supplied category code is
// absent from the taxonomy. Individual unknown codes among valid ones are
// dropped and counted instead.
type UnknownCategoryError struct {
	RecordID string
	Codes    []string // The rejected codes
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("record %s: no valid category among %v", e.RecordID, e.Codes)
}
