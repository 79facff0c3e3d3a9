package domain

// ActivityType classifies an entry as scheduled work or an interruption.
type ActivityType string

const (
	TypePlanned  ActivityType = "planned"
	TypeReactive ActivityType = "reactive"
)

// Valid reports whether t is one of the closed set of activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case TypePlanned, TypeReactive:
		return true
	}
	return false
}

// EnergyImpact records how an activity block left the user feeling.
type EnergyImpact string

const (
	EnergyEnergised EnergyImpact = "energised"
	EnergyNeutral   EnergyImpact = "neutral"
	EnergyDrained   EnergyImpact = "drained"
)

// Valid reports whether e is one of the closed set of energy impacts.
func (e EnergyImpact) Valid() bool {
	switch e {
	case EnergyEnergised, EnergyNeutral, EnergyDrained:
		return true
	}
	return false
}

// EnergyImpacts lists all impacts in declaration order. Aggregation code
// iterates this so rendered distributions are deterministic.
var EnergyImpacts = []EnergyImpact{EnergyEnergised, EnergyNeutral, EnergyDrained}

// MaxActivityLength bounds the free-text activity label.
const MaxActivityLength = 200
