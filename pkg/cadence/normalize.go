package cadence

import "strings"

// statusAliases maps legacy and free-form status spellings to canonical
// statuses. Canonical values map to themselves, which makes Normalize
// idempotent.
var statusAliases = map[string]CanonicalStatus{
	"voicemail":      StatusVoicemail,
	"left voicemail": StatusVoicemail,
	"cold":           StatusVoicemail,
	"no answer":      StatusVoicemail,

	"contacted":  StatusContacted,
	"in contact": StatusContacted,
	"dormant":    StatusContacted,

	"interested": StatusInterested,
	"hot":        StatusInterested,

	"not interested": StatusNotInterested,
	"lost":           StatusNotInterested,

	"closed":      StatusClosed,
	"closed deal": StatusClosed,
	"won":         StatusClosed,
}

// Normalize maps a raw status string to a canonical status. Unknown input
// defaults to CONTACTED: for a lead whose state we cannot place, the
// mixed call/email cadence is the sensible restart point, not the
// voicemail chase. Normalize never writes anything; persisting the
// canonical value is an explicit migration step (leads.MigrateStatuses).
func Normalize(raw string) CanonicalStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusAliases[key]; ok {
		return status
	}
	return StatusContacted
}

// IsCanonical reports whether raw is already one of the five canonical
// status values, byte for byte.
func IsCanonical(raw string) bool {
	for _, s := range AllStatuses() {
		if raw == string(s) {
			return true
		}
	}
	return false
}
