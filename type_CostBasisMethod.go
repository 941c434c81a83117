package costfolio

import "fmt"

// CostBasisMethod selects how disposals consume acquisition lots.
type CostBasisMethod string

const (
	// FIFO consumes the oldest open lots first.
	FIFO CostBasisMethod = "fifo"
	// AverageCost pools all open lots into one blended unit cost.
	AverageCost CostBasisMethod = "average"
)

// ParseCostBasisMethod parses a method name as found in configuration.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch CostBasisMethod(s) {
	case FIFO, AverageCost:
		return CostBasisMethod(s), nil
	default:
		return "", fmt.Errorf("unknown cost basis method: %q", s)
	}
}
