package cadence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	t.Run("answered moves voicemail to contacted", func(t *testing.T) {
		to, moved := Transition(StatusVoicemail, OutcomeAnswered)
		assert.True(t, moved)
		assert.Equal(t, StatusContacted, to)
	})

	t.Run("answered means nothing once contacted", func(t *testing.T) {
		to, moved := Transition(StatusContacted, OutcomeAnswered)
		assert.False(t, moved)
		assert.Equal(t, StatusContacted, to)
	})

	t.Run("interested moves contacted forward", func(t *testing.T) {
		to, moved := Transition(StatusContacted, OutcomeInterested)
		assert.True(t, moved)
		assert.Equal(t, StatusInterested, to)
	})

	t.Run("declined works from any non-terminal status", func(t *testing.T) {
		for _, from := range []CanonicalStatus{StatusVoicemail, StatusContacted, StatusInterested, StatusClosed} {
			to, moved := Transition(from, OutcomeDeclined)
			assert.True(t, moved, "from=%s", from)
			assert.Equal(t, StatusNotInterested, to, "from=%s", from)
		}
	})

	t.Run("closed deal works from active statuses", func(t *testing.T) {
		for _, from := range []CanonicalStatus{StatusVoicemail, StatusContacted, StatusInterested} {
			to, moved := Transition(from, OutcomeClosed)
			assert.True(t, moved, "from=%s", from)
			assert.Equal(t, StatusClosed, to, "from=%s", from)
		}
	})

	t.Run("declined lead can come back", func(t *testing.T) {
		to, moved := Transition(StatusNotInterested, OutcomeInterested)
		assert.True(t, moved)
		assert.Equal(t, StatusInterested, to)
	})

	t.Run("table is total: every outcome resolves without panic", func(t *testing.T) {
		outcomes := []Outcome{OutcomeNone, OutcomeAnswered, OutcomeVoicemail, OutcomeInterested, OutcomeDeclined, OutcomeClosed}
		for _, from := range AllStatuses() {
			for _, out := range outcomes {
				to, _ := Transition(from, out)
				assert.True(t, IsCanonical(string(to)), "from=%s outcome=%s", from, out)
			}
		}
	})

	t.Run("none never moves", func(t *testing.T) {
		for _, from := range AllStatuses() {
			to, moved := Transition(from, OutcomeNone)
			assert.False(t, moved)
			assert.Equal(t, from, to)
		}
	})
}

func TestApplyQuickAction(t *testing.T) {
	vmAction, ok := FindAction(StatusVoicemail, "vm-attempt-1")
	require.True(t, ok)

	t.Run("note embeds action and choice", func(t *testing.T) {
		res := ApplyQuickAction(StatusVoicemail, vmAction, QuickAction{Label: "Left Voicemail", Outcome: OutcomeVoicemail}, "mentioned open house", now)

		assert.Equal(t, NoteCall, res.Note.Type)
		assert.Equal(t, "First Voicemail: Left Voicemail. mentioned open house", res.Note.Text)
		assert.Equal(t, now, res.Note.Timestamp)
		assert.False(t, res.Transitioned)
		assert.Equal(t, StatusVoicemail, res.NewStatus)
	})

	t.Run("voicemail note feeds back into progress", func(t *testing.T) {
		res := ApplyQuickAction(StatusVoicemail, vmAction, QuickAction{Label: "Left Voicemail", Outcome: OutcomeVoicemail}, "", now)

		p := Progress("VOICEMAIL", []Note{res.Note}, now, now)
		assert.Len(t, p.CompletedActions, 1)
	})

	t.Run("answered transitions to contacted", func(t *testing.T) {
		res := ApplyQuickAction(StatusVoicemail, vmAction, QuickAction{Label: "Phone Answered", Outcome: OutcomeAnswered}, "", now)

		assert.True(t, res.Transitioned)
		assert.Equal(t, StatusContacted, res.NewStatus)
	})

	t.Run("auto transition wins over outcome table", func(t *testing.T) {
		action := Action{
			ID: "x", Label: "Hand-off Call", Type: NoteCall,
			Priority: PriorityHigh, AutoTransition: StatusInterested,
		}
		res := ApplyQuickAction(StatusContacted, action, QuickAction{Label: "Done", Outcome: OutcomeNone}, "", now)

		assert.True(t, res.Transitioned)
		assert.Equal(t, StatusInterested, res.NewStatus)
	})

	t.Run("no transition leaves status alone", func(t *testing.T) {
		emailAction, ok := FindAction(StatusContacted, "ct-demo-email")
		require.True(t, ok)
		res := ApplyQuickAction(StatusContacted, emailAction, QuickAction{Label: "Email Sent", Outcome: OutcomeNone}, "", now)

		assert.False(t, res.Transitioned)
		assert.Equal(t, StatusContacted, res.NewStatus)
	})
}
