package bids

const (
	DefaultStep      int64 = 100_000
	DefaultHighStep  int64 = 200_000
	DefaultThreshold int64 = 3_000_000
)

// IncrementPolicy maps the current price to the next valid bid amount.
type IncrementPolicy struct {
	Step      int64 `yaml:"step"`      // below Threshold
	HighStep  int64 `yaml:"high_step"` // at or above Threshold
	Threshold int64 `yaml:"threshold"`
}

// DefaultIncrementPolicy returns 100,000 steps below 3,000,000 and 200,000 from there on
func DefaultIncrementPolicy() IncrementPolicy {
	return IncrementPolicy{
		Step:      DefaultStep,
		HighStep:  DefaultHighStep,
		Threshold: DefaultThreshold,
	}
}

// NextAmount returns what the next bid on l must be. The opening bid is
// always the base price.
func (p IncrementPolicy) NextAmount(l *Ledger) int64 {
	if l.Len() == 0 {
		return l.BasePrice()
	}
	price := l.CurrentPrice()
	if price >= p.Threshold {
		return price + p.HighStep
	}
	return price + p.Step
}
