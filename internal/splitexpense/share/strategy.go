// Package share computes how a split expense's total is divided among its
// participants. Allocation is pure: no I/O, deterministic, and participant
// order is preserved.
package share

import (
	"errors"
	"fmt"
	"math"
)

// Method defines the type of share allocation strategy
type Method string

const (
	MethodEqual      Method = "equal"
	MethodPercentage Method = "percentage"
	MethodAmount     Method = "amount"
)

// Input represents one participant going into an allocation, with optional
// pre-supplied values depending on the method
type Input struct {
	Percentage *float64 // for percentage allocation
	Amount     *float64 // for amount allocation
}

// Output represents the computed share for a single participant
type Output struct {
	Percentage float64
	Amount     float64
}

// Strategy is the interface that all allocation strategies implement
type Strategy interface {
	// Calculate computes the share for every participant, in input order.
	// The amounts always sum to exactly the total (remainder cents are
	// assigned to the last participant); inputs for which that cannot hold
	// are rejected with a validation error.
	Calculate(totalAmount float64, participants []Input) ([]Output, error)

	// Method returns the identifier for this strategy
	Method() Method

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, participants []Input) error
}

// Factory creates allocation strategies based on the requested method
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation for the method
func (f *Factory) Create(method Method) (Strategy, error) {
	switch method {
	case MethodEqual:
		return &EqualStrategy{}, nil
	case MethodPercentage:
		return &PercentageStrategy{}, nil
	case MethodAmount:
		return &AmountStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split method: %s", method)
	}
}

// CreateFromString creates a strategy from a string method (useful for API requests)
func (f *Factory) CreateFromString(method string) (Strategy, error) {
	return f.Create(Method(method))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNonPositiveAmount    = errors.New("total amount must be positive")
	ErrNegativeShare        = errors.New("share amounts cannot be negative")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrShareSumMismatch     = errors.New("share amounts do not sum to the total amount")
)

// SumTolerance is the accepted drift between the total and the sum of the
// allocated amounts, in currency units.
const SumTolerance = 0.01

// roundToCents rounds a float to 2 decimal places
func roundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// settleRemainder assigns the leftover cents to the last participant so the
// amounts sum to exactly the total. Rounding each of n shares to cents can
// drift by up to half a cent per participant; a difference beyond that means
// the inputs themselves were inconsistent.
func settleRemainder(totalAmount float64, outputs []Output) error {
	var sum float64
	for _, o := range outputs {
		sum += o.Amount
	}

	difference := roundToCents(totalAmount - sum)
	allowed := SumTolerance + 0.005*float64(len(outputs))
	if math.Abs(difference) > allowed+1e-9 {
		return ErrShareSumMismatch
	}
	if difference != 0 && len(outputs) > 0 {
		outputs[len(outputs)-1].Amount = roundToCents(outputs[len(outputs)-1].Amount + difference)
	}
	return nil
}
