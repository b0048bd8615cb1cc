package cadence

import (
	"strings"
	"time"
)

// Tier is the coarse priority label shown on lead table rows. It is
// derived from the same score the insights view uses, so the two can
// never disagree.
type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
	TierDormant Tier = "dormant"
)

// ScoreWeights holds every tunable constant of the priority scorer.
type ScoreWeights struct {
	StatusBase map[CanonicalStatus]int

	// Engagement bonus by call/email note count.
	EngagementOne   int
	EngagementTwo   int
	EngagementThree int

	// Recency bonus by days since the most recent note.
	RecencyDay   int
	RecencyThree int
	RecencyWeek  int

	// Overdue penalty by days since the most recent note (negative).
	OverdueWeek      int
	OverdueFortnight int
	OverdueMonth     int

	// Data completeness.
	Completeness int
	Company      int

	MaxScore int

	// Tier thresholds. A lead with no contact inside DormantAfterDays is
	// dormant regardless of score.
	DormantAfterDays int
	TierHighAt       int
	TierMediumAt     int
}

// DefaultWeights returns the production scoring configuration.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		StatusBase: map[CanonicalStatus]int{
			StatusInterested:    100,
			StatusContacted:     80,
			StatusVoicemail:     60,
			StatusClosed:        40,
			StatusNotInterested: 0,
		},
		EngagementOne:   10,
		EngagementTwo:   20,
		EngagementThree: 30,

		RecencyDay:   30,
		RecencyThree: 20,
		RecencyWeek:  10,

		OverdueWeek:      -15,
		OverdueFortnight: -30,
		OverdueMonth:     -50,

		Completeness: 20,
		Company:      10,

		MaxScore: 200,

		DormantAfterDays: 30,
		TierHighAt:       120,
		TierMediumAt:     70,
	}
}

// LeadFacts is the slice of a lead the scorer reads. Status is the raw
// pre-normalization string.
type LeadFacts struct {
	Status  string
	Name    string
	Address string
	Company string
	Notes   []Note
}

// ScoreResult is the derived priority of a lead. DaysSinceContact is -1
// for a lead that has never been contacted.
type ScoreResult struct {
	Score            int            `json:"score"`
	Tier             Tier           `json:"tier"`
	DaysSinceContact int            `json:"days_since_contact"`
	Breakdown        map[string]int `json:"breakdown"`
}

// Scorer computes follow-up priority scores from a fixed weight set.
type Scorer struct {
	weights ScoreWeights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w ScoreWeights) *Scorer {
	return &Scorer{weights: w}
}

// Weights returns the scorer's configuration.
func (s *Scorer) Weights() ScoreWeights {
	return s.weights
}

// placeholderValues are field contents that count as "no data" for the
// completeness bonus.
var placeholderValues = map[string]bool{
	"":         true,
	"-":        true,
	"n/a":      true,
	"na":       true,
	"unknown":  true,
	"new lead": true,
	"tbd":      true,
}

func isPlaceholder(v string) bool {
	return placeholderValues[strings.ToLower(strings.TrimSpace(v))]
}

// Score computes the 0..MaxScore priority of a lead at the given instant.
// Same facts and now in, same result out: no hidden clock reads.
func (s *Scorer) Score(lead LeadFacts, now time.Time) ScoreResult {
	w := s.weights
	breakdown := make(map[string]int)

	status := Normalize(lead.Status)
	base := w.StatusBase[status]
	breakdown["status_base"] = base
	total := base

	// Engagement: calls and emails are the outreach that counts.
	engaged := 0
	for _, n := range lead.Notes {
		if n.Type == NoteCall || n.Type == NoteEmail {
			engaged++
		}
	}
	var engagement int
	switch {
	case engaged >= 3:
		engagement = w.EngagementThree
	case engaged >= 2:
		engagement = w.EngagementTwo
	case engaged >= 1:
		engagement = w.EngagementOne
	}
	if engagement != 0 {
		breakdown["engagement"] = engagement
		total += engagement
	}

	// Recency and overdue both key off the most recent note of any type.
	// Never contacted counts as very old: no bonus, full penalty.
	days := -1
	if latest, ok := latestNote(lead.Notes); ok {
		days = daysBetween(latest.Timestamp, now)
	}

	var recency int
	switch {
	case days < 0:
		recency = 0
	case days <= 1:
		recency = w.RecencyDay
	case days <= 3:
		recency = w.RecencyThree
	case days <= 7:
		recency = w.RecencyWeek
	}
	if recency != 0 {
		breakdown["recency"] = recency
		total += recency
	}

	var overdue int
	switch {
	case days < 0 || days > 30:
		overdue = w.OverdueMonth
	case days > 14:
		overdue = w.OverdueFortnight
	case days > 7:
		overdue = w.OverdueWeek
	}
	if overdue != 0 {
		breakdown["overdue"] = overdue
		total += overdue
	}

	if !isPlaceholder(lead.Name) && !isPlaceholder(lead.Address) {
		breakdown["completeness"] = w.Completeness
		total += w.Completeness
	}
	if !isPlaceholder(lead.Company) {
		breakdown["company"] = w.Company
		total += w.Company
	}

	if total < 0 {
		total = 0
	}
	if total > w.MaxScore {
		total = w.MaxScore
	}

	return ScoreResult{
		Score:            total,
		Tier:             s.tier(total, days),
		DaysSinceContact: days,
		Breakdown:        breakdown,
	}
}

// tier maps a score and contact recency onto the row label.
func (s *Scorer) tier(score, daysSinceContact int) Tier {
	if daysSinceContact < 0 || daysSinceContact >= s.weights.DormantAfterDays {
		return TierDormant
	}
	switch {
	case score >= s.weights.TierHighAt:
		return TierHigh
	case score >= s.weights.TierMediumAt:
		return TierMedium
	default:
		return TierLow
	}
}
