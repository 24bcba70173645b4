package models

// ReprintRisk estimates how likely a printing is to lose value to a reprint.
// Reserved-list cards cannot be reprinted; beyond that, older printings are
// safer than recent ones. The year cutoffs are a judgment call, not market
// science.
func ReprintRisk(reservedList bool, releasedYear *int) string {
	if reservedList {
		return "Very Low (RL)"
	}
	if releasedYear == nil {
		return "Unknown"
	}
	switch {
	case *releasedYear <= 2003:
		return "Low (Older printing)"
	case *releasedYear <= 2015:
		return "Medium"
	default:
		return "Medium/High"
	}
}
