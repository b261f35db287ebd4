package share

// =============================================================================
// AMOUNT ALLOCATION STRATEGY
// Explicit amounts stand; the remaining amount is divided equally among
// participants that did not specify one, and percentages are back-computed
// =============================================================================

// AmountStrategy implements the Strategy interface for fixed-amount splits
type AmountStrategy struct{}

// Method returns the allocation method identifier
func (s *AmountStrategy) Method() Method {
	return MethodAmount
}

// Validate checks if the inputs are valid for a fixed-amount split
func (s *AmountStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}

	for _, p := range participants {
		if p.Amount != nil && *p.Amount < 0 {
			return ErrNegativeShare
		}
	}
	return nil
}

// Calculate keeps explicit amounts, splits the remaining amount equally among
// unassigned participants, and back-computes each percentage from its amount
func (s *AmountStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	var explicitTotal float64
	unassigned := 0
	for _, p := range participants {
		if p.Amount != nil {
			explicitTotal += *p.Amount
		} else {
			unassigned++
		}
	}

	remainderShare := 0.0
	if unassigned > 0 && explicitTotal < totalAmount {
		remainderShare = (totalAmount - explicitTotal) / float64(unassigned)
	}

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		amount := remainderShare
		if p.Amount != nil {
			amount = *p.Amount
		}
		outputs[i].Amount = roundToCents(amount)
	}

	if err := settleRemainder(totalAmount, outputs); err != nil {
		return nil, err
	}

	for i := range outputs {
		outputs[i].Percentage = outputs[i].Amount / totalAmount * 100
	}

	return outputs, nil
}
