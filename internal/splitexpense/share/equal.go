package share

// =============================================================================
// EQUAL ALLOCATION STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Method returns the allocation method identifier
func (s *EqualStrategy) Method() Method {
	return MethodEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// Calculate gives every participant an equal percentage and derives the
// amounts from it, so percentages and amounts always agree
func (s *EqualStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	n := len(participants)
	percentage := 100 / float64(n)

	outputs := make([]Output, n)
	for i := range outputs {
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
