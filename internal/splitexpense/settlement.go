package splitexpense

import "time"

// CalculateStatus derives the aggregate settlement status from the
// participants' payment states: no one paid means pending, everyone paid
// means settled, anything in between is partial. A declined participant
// counts as not paid, so a split cannot settle while anyone has declined.
//
// The function is total: a nil split or missing participant list yields
// pending rather than an error. The result is never cached, so reverting a
// participant away from paid moves a settled split back to partial.
func CalculateStatus(se *SplitExpense) SplitStatus {
	if se == nil || len(se.Participants) == 0 {
		return SplitPending
	}

	paid := 0
	for _, p := range se.Participants {
		if p.Status == ParticipantPaid {
			paid++
		}
	}

	switch {
	case paid == 0:
		return SplitPending
	case paid == len(se.Participants):
		return SplitSettled
	default:
		return SplitPartial
	}
}

// ApplyStatus returns a copy of the participant with the new payment status.
// Transitioning to paid stamps the paid date and records the payment method;
// any other transition leaves the paid date untouched (there is no un-paid
// reset). An empty payment method keeps whatever was recorded before.
func ApplyStatus(p Participant, status ParticipantStatus, paymentMethod string) Participant {
	p.Status = status
	if paymentMethod != "" {
		p.PaymentMethod = paymentMethod
	}
	if status == ParticipantPaid {
		now := time.Now().UTC()
		p.PaidDate = &now
	}
	return p
}
