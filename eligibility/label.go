package eligibility

// Label is the categorical reading of a score
type Label string

const (
	LabelExcellent Label = "Excellent — high likelihood of viability"
	LabelGood      Label = "Good — viable with possible adjustments"
	LabelFair      Label = "Fair — incomplete documents/lineage"
	LabelLow       Label = "Low — critical issues to resolve"
)

const (
	MinScore = 0
	MaxScore = 100
)

// labelThresholds is checked high to low, first match wins
var labelThresholds = []struct {
	min   int
	label Label
}{
	{80, LabelExcellent},
	{60, LabelGood},
	{40, LabelFair},
}

// LabelFor returns the label for score
func LabelFor(score int) Label {
	for _, t := range labelThresholds {
		if score >= t.min {
			return t.label
		}
	}
	return LabelLow
}

func clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}
