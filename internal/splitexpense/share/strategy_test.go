package share

import (
	"errors"
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestEqualStrategy(t *testing.T) {
	tests := []struct {
		name         string
		totalAmount  float64
		participants []Input
		wantErr      error
		validateFunc func(t *testing.T, outputs []Output)
	}{
		{
			name:         "four-way even split",
			totalAmount:  100.0,
			participants: make([]Input, 4),
			validateFunc: func(t *testing.T, outputs []Output) {
				for i, o := range outputs {
					if math.Abs(o.Amount-25.0) > 0.001 {
						t.Errorf("participant %d amount = %v, want 25.0", i, o.Amount)
					}
					if math.Abs(o.Percentage-25.0) > 0.001 {
						t.Errorf("participant %d percentage = %v, want 25.0", i, o.Percentage)
					}
				}
			},
		},
		{
			name:         "three-way split assigns remainder cent to the last participant",
			totalAmount:  100.0,
			participants: make([]Input, 3),
			validateFunc: func(t *testing.T, outputs []Output) {
				if math.Abs(outputs[0].Amount-33.33) > 0.001 {
					t.Errorf("first amount = %v, want 33.33", outputs[0].Amount)
				}
				if math.Abs(outputs[1].Amount-33.33) > 0.001 {
					t.Errorf("second amount = %v, want 33.33", outputs[1].Amount)
				}
				if math.Abs(outputs[2].Amount-33.34) > 0.001 {
					t.Errorf("last amount = %v, want 33.34", outputs[2].Amount)
				}
			},
		},
		{
			name:         "single participant takes the full amount",
			totalAmount:  42.5,
			participants: make([]Input, 1),
			validateFunc: func(t *testing.T, outputs []Output) {
				if math.Abs(outputs[0].Amount-42.5) > 0.001 {
					t.Errorf("amount = %v, want 42.5", outputs[0].Amount)
				}
				if math.Abs(outputs[0].Percentage-100.0) > 0.001 {
					t.Errorf("percentage = %v, want 100", outputs[0].Percentage)
				}
			},
		},
		{
			name:         "no participants",
			totalAmount:  100.0,
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "zero amount",
			totalAmount:  0,
			participants: make([]Input, 2),
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "negative amount",
			totalAmount:  -10,
			participants: make([]Input, 2),
			wantErr:      ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := (&EqualStrategy{}).Calculate(tt.totalAmount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error = %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, outputs)
			}
		})
	}
}

func TestPercentageStrategy(t *testing.T) {
	tests := []struct {
		name         string
		totalAmount  float64
		participants []Input
		wantErr      error
		validateFunc func(t *testing.T, outputs []Output)
	}{
		{
			name:        "explicit percentages",
			totalAmount: 200.0,
			participants: []Input{
				{Percentage: fptr(60)},
				{Percentage: fptr(20)},
				{Percentage: fptr(20)},
			},
			validateFunc: func(t *testing.T, outputs []Output) {
				want := []float64{120, 40, 40}
				for i, o := range outputs {
					if math.Abs(o.Amount-want[i]) > 0.001 {
						t.Errorf("participant %d amount = %v, want %v", i, o.Amount, want[i])
					}
				}
			},
		},
		{
			name:        "remainder divided among unassigned participants",
			totalAmount: 100.0,
			participants: []Input{
				{Percentage: fptr(50)},
				{},
				{},
			},
			validateFunc: func(t *testing.T, outputs []Output) {
				if math.Abs(outputs[0].Amount-50.0) > 0.001 {
					t.Errorf("explicit amount = %v, want 50", outputs[0].Amount)
				}
				for i := 1; i < 3; i++ {
					if math.Abs(outputs[i].Percentage-25.0) > 0.001 {
						t.Errorf("participant %d percentage = %v, want 25", i, outputs[i].Percentage)
					}
					if math.Abs(outputs[i].Amount-25.0) > 0.001 {
						t.Errorf("participant %d amount = %v, want 25", i, outputs[i].Amount)
					}
				}
			},
		},
		{
			name:        "unassigned get zero once explicit percentages reach 100",
			totalAmount: 80.0,
			participants: []Input{
				{Percentage: fptr(100)},
				{},
			},
			validateFunc: func(t *testing.T, outputs []Output) {
				if math.Abs(outputs[0].Amount-80.0) > 0.001 {
					t.Errorf("explicit amount = %v, want 80", outputs[0].Amount)
				}
				if outputs[1].Amount != 0 || outputs[1].Percentage != 0 {
					t.Errorf("unassigned share = %+v, want zero", outputs[1])
				}
			},
		},
		{
			name:        "percentage above 100",
			totalAmount: 100.0,
			participants: []Input{
				{Percentage: fptr(120)},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:        "negative percentage",
			totalAmount: 100.0,
			participants: []Input{
				{Percentage: fptr(-5)},
				{Percentage: fptr(105)},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:        "explicit percentages exceeding 100 in total",
			totalAmount: 100.0,
			participants: []Input{
				{Percentage: fptr(80)},
				{Percentage: fptr(80)},
			},
			wantErr: ErrShareSumMismatch,
		},
		{
			name:         "no participants",
			totalAmount:  100.0,
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := (&PercentageStrategy{}).Calculate(tt.totalAmount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error = %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, outputs)
			}
		})
	}
}

func TestAmountStrategy(t *testing.T) {
	tests := []struct {
		name         string
		totalAmount  float64
		participants []Input
		wantErr      error
		validateFunc func(t *testing.T, outputs []Output)
	}{
		{
			name:        "explicit amounts summing to the total",
			totalAmount: 100.0,
			participants: []Input{
				{Amount: fptr(70)},
				{Amount: fptr(30)},
			},
			validateFunc: func(t *testing.T, outputs []Output) {
				if math.Abs(outputs[0].Amount-70.0) > 0.001 || math.Abs(outputs[1].Amount-30.0) > 0.001 {
					t.Errorf("amounts = %v/%v, want 70/30", outputs[0].Amount, outputs[1].Amount)
				}
				if math.Abs(outputs[0].Percentage-70.0) > 0.001 {
					t.Errorf("back-computed percentage = %v, want 70", outputs[0].Percentage)
				}
			},
		},
		{
			name:        "remaining amount divided among unassigned participants",
			totalAmount: 100.0,
			participants: []Input{
				{Amount: fptr(30)},
				{},
				{},
			},
			validateFunc: func(t *testing.T, outputs []Output) {
				if math.Abs(outputs[1].Amount-35.0) > 0.001 || math.Abs(outputs[2].Amount-35.0) > 0.001 {
					t.Errorf("unassigned amounts = %v/%v, want 35/35", outputs[1].Amount, outputs[2].Amount)
				}
				if math.Abs(outputs[1].Percentage-35.0) > 0.001 {
					t.Errorf("back-computed percentage = %v, want 35", outputs[1].Percentage)
				}
			},
		},
		{
			name:        "explicit amounts exceeding the total",
			totalAmount: 100.0,
			participants: []Input{
				{Amount: fptr(60)},
				{Amount: fptr(60)},
			},
			wantErr: ErrShareSumMismatch,
		},
		{
			name:        "negative explicit amount",
			totalAmount: 100.0,
			participants: []Input{
				{Amount: fptr(-10)},
				{Amount: fptr(110)},
			},
			wantErr: ErrNegativeShare,
		},
		{
			name:         "no participants",
			totalAmount:  100.0,
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := (&AmountStrategy{}).Calculate(tt.totalAmount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error = %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, outputs)
			}
		})
	}
}

// TestAmountsSumToTotal checks the core allocation guarantee across every
// method and a range of participant counts: rounded shares always sum back to
// exactly the total.
func TestAmountsSumToTotal(t *testing.T) {
	totals := []float64{0.01, 1.0, 99.99, 100.0, 123.45, 1000.37}
	factory := NewFactory()

	for _, method := range []Method{MethodEqual, MethodPercentage, MethodAmount} {
		strategy, err := factory.Create(method)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", method, err)
		}

		for _, total := range totals {
			for n := 1; n <= 20; n++ {
				outputs, err := strategy.Calculate(total, make([]Input, n))
				if err != nil {
					t.Fatalf("%s: Calculate(%v, %d participants) error = %v", method, total, n, err)
				}

				var sum float64
				for _, o := range outputs {
					sum += o.Amount
				}
				if math.Abs(sum-total) > 0.001 {
					t.Errorf("%s: %d participants of %v sum to %v", method, n, total, sum)
				}
			}
		}
	}
}

func TestFactoryCreateFromString(t *testing.T) {
	factory := NewFactory()

	for _, method := range []string{"equal", "percentage", "amount"} {
		strategy, err := factory.CreateFromString(method)
		if err != nil {
			t.Errorf("CreateFromString(%q) error = %v", method, err)
			continue
		}
		if string(strategy.Method()) != method {
			t.Errorf("CreateFromString(%q).Method() = %q", method, strategy.Method())
		}
	}

	if _, err := factory.CreateFromString("random"); err == nil {
		t.Error("CreateFromString(\"random\") expected error, got nil")
	}
}
