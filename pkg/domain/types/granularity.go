package types

import "github.com/m-mizutani/goerr/v2"

// Granularity defines the time grouping for trend analytics
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityWeekly  Granularity = "weekly"
)

// ParseGranularity parses s, treating an empty string as monthly
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "", GranularityMonthly:
		return GranularityMonthly, nil
	case GranularityWeekly:
		return GranularityWeekly, nil
	default:
		return "", goerr.New("invalid granularity", goerr.V("granularity", s))
	}
}

func (g Granularity) String() string {
	return string(g)
}
