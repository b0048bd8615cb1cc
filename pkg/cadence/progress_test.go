package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressVoicemailScenario(t *testing.T) {
	t0 := daysAgo(6)
	notes := []Note{
		{Type: NoteCall, Text: "left voicemail #1", Timestamp: t0},
	}

	p := Progress("left voicemail", notes, t0, now)

	assert.Equal(t, StatusVoicemail, p.Status)
	require.Len(t, p.CompletedActions, 1)
	assert.Equal(t, "vm-attempt-1", p.CompletedActions[0].ID)
	require.Len(t, p.AvailableActions, 3)
	assert.Equal(t, "vm-attempt-2", p.AvailableActions[0].ID)
	assert.Equal(t, 6, p.DaysInStatus)
	assert.False(t, p.Terminal)

	next, ok := p.NextAction()
	require.True(t, ok)
	assert.Equal(t, "Second Voicemail", next.Label)
}

func TestProgressContactedScenario(t *testing.T) {
	t0 := daysAgo(10)
	notes := []Note{
		{Type: NoteCall, Text: "intro call, good chat", Timestamp: t0},
		{Type: NoteEmail, Text: "sent listings", Timestamp: t0.AddDate(0, 0, 5)},
	}

	p := Progress("Contacted", notes, t0, now)

	require.Len(t, p.CompletedActions, 2)
	assert.Equal(t, "ct-intro-call", p.CompletedActions[0].ID)
	assert.Equal(t, "ct-demo-email", p.CompletedActions[1].ID)

	next, ok := p.NextAction()
	require.True(t, ok)
	assert.Equal(t, "Follow-up Call", next.Label)
}

func TestProgressLinearNoSkip(t *testing.T) {
	// An email note alone cannot complete the CONTACTED workflow's second
	// step while the first (a call) is outstanding.
	t0 := daysAgo(4)
	notes := []Note{
		{Type: NoteEmail, Text: "sent listings", Timestamp: t0},
	}

	p := Progress("CONTACTED", notes, t0, now)

	assert.Empty(t, p.CompletedActions)
	require.NotEmpty(t, p.AvailableActions)
	assert.Equal(t, "ct-intro-call", p.AvailableActions[0].ID)
}

func TestProgressVoicemailStrictTextMatch(t *testing.T) {
	t0 := daysAgo(3)

	t.Run("answered call does not tick a voicemail step", func(t *testing.T) {
		notes := []Note{
			{Type: NoteCall, Text: "great conversation, wants a showing", Timestamp: t0},
		}
		p := Progress("VOICEMAIL", notes, t0, now)
		assert.Empty(t, p.CompletedActions)
	})

	t.Run("voicemail markers count", func(t *testing.T) {
		for _, text := range []string{"left voicemail", "Left message with intro", "no answer, will retry"} {
			notes := []Note{{Type: NoteCall, Text: text, Timestamp: t0}}
			p := Progress("VOICEMAIL", notes, t0, now)
			assert.Len(t, p.CompletedActions, 1, "text=%q", text)
		}
	})
}

func TestProgressEachNoteCountsOnce(t *testing.T) {
	// One call note cannot satisfy both call steps of the CONTACTED
	// workflow; the second call step needs its own note.
	t0 := daysAgo(8)
	notes := []Note{
		{Type: NoteCall, Text: "intro call", Timestamp: t0},
		{Type: NoteEmail, Text: "listings email", Timestamp: t0.AddDate(0, 0, 1)},
	}

	p := Progress("CONTACTED", notes, t0, now)
	require.Len(t, p.CompletedActions, 2)

	notes = append(notes, Note{Type: NoteCall, Text: "follow-up call", Timestamp: t0.AddDate(0, 0, 2)})
	p = Progress("CONTACTED", notes, t0, now)
	assert.Len(t, p.CompletedActions, 3)
}

func TestProgressIgnoresNotesBeforeStatusStart(t *testing.T) {
	start := daysAgo(5)
	notes := []Note{
		{Type: NoteCall, Text: "old call from previous status", Timestamp: daysAgo(20)},
		{Type: NotePlain, Text: "Status changed to CONTACTED", Timestamp: start},
		{Type: NoteCall, Text: "intro call", Timestamp: daysAgo(4)},
	}

	p := Progress("CONTACTED", notes, daysAgo(30), now)

	assert.Equal(t, start, p.StatusStartDate)
	require.Len(t, p.CompletedActions, 1)
	assert.Equal(t, "ct-intro-call", p.CompletedActions[0].ID)
}

func TestProgressTerminalStatus(t *testing.T) {
	p := Progress("NOT INTERESTED", []Note{{Type: NoteCall, Text: "no answer", Timestamp: daysAgo(1)}}, daysAgo(2), now)

	assert.True(t, p.Terminal)
	assert.Empty(t, p.CompletedActions)
	assert.Empty(t, p.AvailableActions)
	_, ok := p.NextAction()
	assert.False(t, ok)
}

func TestProgressEmptyNotes(t *testing.T) {
	p := Progress("Interested", nil, daysAgo(12), now)

	assert.Equal(t, 12, p.DaysInStatus)
	assert.Empty(t, p.CompletedActions)
	assert.Len(t, p.AvailableActions, len(WorkflowFor(StatusInterested)))
}

func TestProgressUnorderedTimestamps(t *testing.T) {
	// Notes arrive out of timestamp order; the walk must sort first.
	t0 := daysAgo(9)
	notes := []Note{
		{Type: NoteEmail, Text: "listings email", Timestamp: t0.AddDate(0, 0, 3)},
		{Type: NoteCall, Text: "intro call", Timestamp: t0},
	}

	p := Progress("CONTACTED", notes, t0, now)
	assert.Len(t, p.CompletedActions, 2)
}

// TestProgressPrefixComplement checks the core invariant: the completed
// set is always a contiguous prefix of the workflow, for every status and
// a spread of note mixes.
func TestProgressPrefixComplement(t *testing.T) {
	t0 := daysAgo(15)
	noteMixes := [][]Note{
		nil,
		{{Type: NoteCall, Text: "left voicemail", Timestamp: t0}},
		{{Type: NoteEmail, Text: "email", Timestamp: t0}},
		{
			{Type: NoteCall, Text: "left voicemail", Timestamp: t0},
			{Type: NoteCall, Text: "no answer", Timestamp: t0.AddDate(0, 0, 2)},
			{Type: NoteEmail, Text: "email", Timestamp: t0.AddDate(0, 0, 3)},
		},
		{
			{Type: NoteEmail, Text: "a", Timestamp: t0},
			{Type: NoteEmail, Text: "b", Timestamp: t0.AddDate(0, 0, 1)},
			{Type: NoteCall, Text: "left voicemail", Timestamp: t0.AddDate(0, 0, 2)},
			{Type: NoteVideo, Text: "video tour", Timestamp: t0.AddDate(0, 0, 4)},
		},
	}

	for _, status := range AllStatuses() {
		for i, notes := range noteMixes {
			p := Progress(string(status), notes, t0, now)

			workflow := WorkflowFor(p.Status)
			require.Equal(t, len(workflow), len(p.CompletedActions)+len(p.AvailableActions),
				"status=%s mix=%d", status, i)

			// Completed must be exactly the leading slice of the workflow.
			for j, a := range p.CompletedActions {
				assert.Equal(t, workflow[j].ID, a.ID, "status=%s mix=%d", status, i)
			}
			for j, a := range p.AvailableActions {
				assert.Equal(t, workflow[len(p.CompletedActions)+j].ID, a.ID, "status=%s mix=%d", status, i)
			}
		}
	}
}

func TestProgressIsDeterministic(t *testing.T) {
	t0 := daysAgo(7)
	notes := []Note{
		{Type: NoteCall, Text: "left voicemail", Timestamp: t0},
		{Type: NoteEmail, Text: "email", Timestamp: t0.AddDate(0, 0, 1)},
	}

	first := Progress("cold", notes, t0, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Progress("cold", notes, t0, now))
	}
}

func TestWorkflowForUnknownStatus(t *testing.T) {
	assert.Nil(t, WorkflowFor(CanonicalStatus("SOMETHING ELSE")))
}

func TestWorkflowForReturnsCopy(t *testing.T) {
	w := WorkflowFor(StatusVoicemail)
	require.NotEmpty(t, w)
	w[0].Label = "mutated"

	fresh := WorkflowFor(StatusVoicemail)
	assert.Equal(t, "First Voicemail", fresh[0].Label)
}

func TestDaysBetweenNeverNegative(t *testing.T) {
	assert.Equal(t, 0, daysBetween(now, now.Add(-time.Hour)))
}
