package cadence

import (
	"sort"
	"time"
)

// FollowUpLead is the input to the ranker: identity plus the note log.
type FollowUpLead struct {
	ID     int
	Name   string
	Status string
	Notes  []Note
}

// RankedLead is a follow-up candidate with derived ordering facts.
type RankedLead struct {
	FollowUpLead
	Canonical      CanonicalStatus `json:"canonical_status"`
	LastContact    time.Time       `json:"last_contact"`
	NeverContacted bool            `json:"never_contacted"`
}

// FollowUpGroup is one display bucket of the priority follow-ups view.
type FollowUpGroup struct {
	Label string       `json:"label"`
	Leads []RankedLead `json:"leads"`
}

// RankOptions tunes the follow-up ranker.
type RankOptions struct {
	// WindowDays excludes leads whose last contact is older than this.
	// Leads with no notes at all are always included.
	WindowDays int
	// Cap limits the ranked list length.
	Cap int
}

// DefaultRankOptions matches the priority follow-ups card: 30-day window,
// top 8.
func DefaultRankOptions() RankOptions {
	return RankOptions{WindowDays: 30, Cap: 8}
}

// statusRank is the coarse ordering tier: INTERESTED ahead of active
// outreach (CONTACTED, VOICEMAIL), ahead of everything else.
func statusRank(s CanonicalStatus) int {
	switch s {
	case StatusInterested:
		return 2
	case StatusContacted, StatusVoicemail:
		return 1
	default:
		return 0
	}
}

// RankForFollowUp filters, sorts and caps leads for the priority
// follow-ups view. Sorting is stable on (status tier desc, last contact
// desc), so running the ranker over an already ranked, already capped
// list returns it unchanged.
func RankForFollowUp(leads []FollowUpLead, now time.Time, opts RankOptions) []RankedLead {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}
	if opts.Cap <= 0 {
		opts.Cap = 8
	}

	candidates := make([]RankedLead, 0, len(leads))
	for _, l := range leads {
		ranked := RankedLead{
			FollowUpLead: l,
			Canonical:    Normalize(l.Status),
		}
		if latest, ok := latestNote(l.Notes); ok {
			ranked.LastContact = latest.Timestamp
			if daysBetween(latest.Timestamp, now) > opts.WindowDays {
				continue
			}
		} else {
			// Never-contacted leads always make the list.
			ranked.NeverContacted = true
		}
		candidates = append(candidates, ranked)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := statusRank(candidates[i].Canonical), statusRank(candidates[j].Canonical)
		if ri != rj {
			return ri > rj
		}
		return candidates[i].LastContact.After(candidates[j].LastContact)
	})

	if len(candidates) > opts.Cap {
		candidates = candidates[:opts.Cap]
	}
	return candidates
}

// GroupFollowUps buckets a ranked list by status tier for display,
// preserving rank order inside each bucket.
func GroupFollowUps(ranked []RankedLead) []FollowUpGroup {
	labels := map[int]string{2: "interested", 1: "in outreach", 0: "other"}
	groups := make([]FollowUpGroup, 0, 3)

	for _, tier := range []int{2, 1, 0} {
		group := FollowUpGroup{Label: labels[tier]}
		for _, l := range ranked {
			if statusRank(l.Canonical) == tier {
				group.Leads = append(group.Leads, l)
			}
		}
		if len(group.Leads) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}
