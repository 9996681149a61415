package core

// Notice is a non-failure remark attached to a successful decision.
type Notice string

const (
	NoNotice Notice = ""

	// NoticeBookInactiveNotRestocked means a loan was returned for a deactivated book,
	// so the copy did not go back into the inventory.
	NoticeBookInactiveNotRestocked Notice = "book_inactive_not_restocked"
)

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// SuccessDecision(), SuccessDecisionWithNotice(notice), IdempotentDecision() or RejectedDecision(rejection).
type DecisionResult struct {
	Outcome   string // "success", "idempotent", or "rejected"
	Rejection *Rejection
	Notice    Notice
}

const (
	successOutcome    = "success"
	idempotentOutcome = "idempotent"
	rejectedOutcome   = "rejected"
)

// SuccessDecision creates a DecisionResult indicating that the handler must write.
func SuccessDecision() DecisionResult {
	return DecisionResult{Outcome: successOutcome}
}

// SuccessDecisionWithNotice creates a successful DecisionResult that carries a notice for the caller.
func SuccessDecisionWithNotice(notice Notice) DecisionResult {
	return DecisionResult{Outcome: successOutcome, Notice: notice}
}

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision() DecisionResult {
	return DecisionResult{Outcome: idempotentOutcome}
}

// RejectedDecision creates a DecisionResult for a violated business rule. Nothing is written.
func RejectedDecision(rejection Rejection) DecisionResult {
	return DecisionResult{Outcome: rejectedOutcome, Rejection: &rejection}
}

// HasChangesToWrite returns true if the handler has to apply the decision to the record store.
func (r DecisionResult) HasChangesToWrite() bool {
	return r.Outcome == successOutcome
}

func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

func (r DecisionResult) IsRejected() bool {
	return r.Outcome == rejectedOutcome
}
