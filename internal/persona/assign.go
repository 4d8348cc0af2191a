package persona

import (
	"sort"

	"github.com/dvloznov/spendsense/internal/signals"
)

// Assignment is the outcome of classifying one signal bundle.
type Assignment struct {
	PrimaryPersona  ID          `json:"primary_persona"`
	MatchedPersonas []ID        `json:"matched_personas"`
	PersonaName     string      `json:"persona_name"`
	PrimaryFocus    string      `json:"primary_focus"`
	Rationale       string      `json:"rationale"`
	Details         *Definition `json:"persona_details,omitempty"`
}

// Assigned reports whether any persona matched.
func (a Assignment) Assigned() bool {
	return a.PrimaryPersona != None && a.PrimaryPersona != ""
}

type predicate func(signals.Bundle) bool

var predicates = map[ID]predicate{
	HighUtilization:      isHighUtilization,
	VariableIncome:       isVariableIncome,
	SubscriptionHeavy:    isSubscriptionHeavy,
	EmergencyFundStarter: isEmergencyFundStarter,
	SavingsBuilder:       isSavingsBuilder,
}

// Match returns every persona whose criteria the bundle satisfies, most
// urgent first.
func Match(b signals.Bundle) []ID {
	matched := []ID{}
	for _, d := range definitions {
		if predicates[d.ID](b) {
			matched = append(matched, d.ID)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return priority(matched[i]) < priority(matched[j])
	})
	return matched
}

// Assign classifies the bundle. The matched persona with the lowest priority
// number becomes primary.
func Assign(b signals.Bundle) Assignment {
	matched := Match(b)
	if len(matched) == 0 {
		return Assignment{
			PrimaryPersona:  None,
			MatchedPersonas: matched,
			PersonaName:     unassignedName,
			PrimaryFocus:    unassignedFocus,
			Rationale:       Rationale(None, b),
		}
	}

	def, _ := Lookup(matched[0])
	return Assignment{
		PrimaryPersona:  def.ID,
		MatchedPersonas: matched,
		PersonaName:     def.Name,
		PrimaryFocus:    def.PrimaryFocus,
		Rationale:       Rationale(def.ID, b),
		Details:         &def,
	}
}

func priority(id ID) int {
	if d, ok := Lookup(id); ok {
		return d.Priority
	}
	return len(definitions) + 1
}

func isHighUtilization(b signals.Bundle) bool {
	c := b.Credit
	if !c.HasCreditCard {
		return false
	}
	return c.MaxUtilization >= 50 || c.HasInterestCharges || c.MinimumPaymentOnly || c.IsOverdue
}

func isVariableIncome(b signals.Bundle) bool {
	i := b.Income
	return i.HasPayroll && i.MedianPayGap > 45 && i.CashFlowBuffer < 1
}

func isSubscriptionHeavy(b signals.Bundle) bool {
	s := b.Subscriptions
	return s.NumRecurringMerchants >= 3 && (s.MonthlyRecurringSpend >= 50 || s.SubscriptionShare >= 10)
}

// hasStableIncome means paid at least monthly with little variation.
func hasStableIncome(b signals.Bundle) bool {
	i := b.Income
	return i.HasPayroll && i.MedianPayGap <= 31 && i.PayVariability < 7
}

func isEmergencyFundStarter(b signals.Bundle) bool {
	c := b.Credit
	noCreditIssues := !c.HasCreditCard || c.MaxUtilization < 50
	return hasStableIncome(b) && b.Savings.EmergencyFundCoverage < 1 && noCreditIssues
}

func isSavingsBuilder(b signals.Bundle) bool {
	c := b.Credit
	if c.HasCreditCard && c.MaxUtilization >= 30 {
		return false
	}
	s := b.Savings
	return s.SavingsGrowthRate >= 2 || s.MonthlySavingsInflow >= 200
}
