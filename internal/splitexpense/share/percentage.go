package share

// =============================================================================
// PERCENTAGE ALLOCATION STRATEGY
// Explicit percentages stand; the remaining percentage is divided equally
// among participants that did not specify one
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage splits
type PercentageStrategy struct{}

// Method returns the allocation method identifier
func (s *PercentageStrategy) Method() Method {
	return MethodPercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}

	for _, p := range participants {
		if p.Percentage != nil && (*p.Percentage < 0 || *p.Percentage > 100) {
			return ErrPercentageOutOfRange
		}
	}
	return nil
}

// Calculate keeps explicit percentages and distributes the remainder equally
// among unassigned participants. If the explicit percentages already total
// 100 or more, unassigned participants receive 0.
func (s *PercentageStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	var explicitTotal float64
	unassigned := 0
	for _, p := range participants {
		if p.Percentage != nil {
			explicitTotal += *p.Percentage
		} else {
			unassigned++
		}
	}

	remainderShare := 0.0
	if unassigned > 0 && explicitTotal < 100 {
		remainderShare = (100 - explicitTotal) / float64(unassigned)
	}

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		percentage := remainderShare
		if p.Percentage != nil {
			percentage = *p.Percentage
		}
		outputs[i] = Output{
			Percentage: percentage,
			Amount:     roundToCents(totalAmount * percentage / 100),
		}
	}

	if err := settleRemainder(totalAmount, outputs); err != nil {
		return nil, err
	}

	return outputs, nil
}
