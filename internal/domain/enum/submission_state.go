package enum

import (
	"encoding/json"
)

// SubmissionState tracks one checkout through submit and print.
//
//	Idle -> Submitting -> Succeeded -> Printing -> PrintSucceeded | PrintFailed
//	                   -> Failed
type SubmissionState int

const (
	SubmissionIdle           SubmissionState = 0
	SubmissionSubmitting     SubmissionState = 1
	SubmissionSucceeded      SubmissionState = 2
	SubmissionFailed         SubmissionState = 3
	SubmissionPrinting       SubmissionState = 4
	SubmissionPrintSucceeded SubmissionState = 5
	SubmissionPrintFailed    SubmissionState = 6
)

func (s SubmissionState) String() string {
	names := [...]string{"idle", "submitting", "succeeded", "failed", "printing", "print_succeeded", "print_failed"}
	if int(s) < 0 || int(s) >= len(names) {
		return "idle"
	}
	return names[s]
}

func (s SubmissionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Busy reports whether a submission or print is in flight.
func (s SubmissionState) Busy() bool {
	return s == SubmissionSubmitting || s == SubmissionPrinting
}

// CanRetryPrint reports whether the last payload may be printed again.
func (s SubmissionState) CanRetryPrint() bool {
	return s == SubmissionPrintFailed || s == SubmissionPrintSucceeded
}
