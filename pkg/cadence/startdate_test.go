package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
)

func daysAgo(d int) time.Time {
	return now.AddDate(0, 0, -d)
}

func TestResolveStatusStartDate(t *testing.T) {
	t.Run("status change note wins", func(t *testing.T) {
		notes := []Note{
			{Type: NotePlain, Text: "Status changed to CONTACTED", Timestamp: daysAgo(10)},
			{Type: NoteCall, Text: "intro call", Timestamp: daysAgo(5)},
		}
		got := ResolveStatusStartDate(StatusContacted, notes, daysAgo(1), now)
		assert.Equal(t, daysAgo(10), got)
	})

	t.Run("most recent status change note wins over older one", func(t *testing.T) {
		notes := []Note{
			{Type: NotePlain, Text: "status changed to INTERESTED", Timestamp: daysAgo(20)},
			{Type: NotePlain, Text: "moved to INTERESTED", Timestamp: daysAgo(4)},
		}
		got := ResolveStatusStartDate(StatusInterested, notes, time.Time{}, now)
		assert.Equal(t, daysAgo(4), got)
	})

	t.Run("alternate phrasings match", func(t *testing.T) {
		for _, text := range []string{
			"Moved to CLOSED after signing",
			"set to closed",
			"Lead status changed to CLOSED by agent",
		} {
			notes := []Note{{Type: NotePlain, Text: text, Timestamp: daysAgo(3)}}
			got := ResolveStatusStartDate(StatusClosed, notes, daysAgo(1), now)
			assert.Equal(t, daysAgo(3), got, "text=%q", text)
		}
	})

	t.Run("change note for other status does not match", func(t *testing.T) {
		notes := []Note{{Type: NotePlain, Text: "Status changed to CONTACTED", Timestamp: daysAgo(3)}}
		got := ResolveStatusStartDate(StatusInterested, notes, daysAgo(1), now)
		assert.Equal(t, daysAgo(1), got)
	})

	t.Run("falls back to updatedAt", func(t *testing.T) {
		notes := []Note{{Type: NoteCall, Text: "call", Timestamp: daysAgo(9)}}
		got := ResolveStatusStartDate(StatusContacted, notes, daysAgo(2), now)
		assert.Equal(t, daysAgo(2), got)
	})

	t.Run("falls back to latest note without updatedAt", func(t *testing.T) {
		notes := []Note{
			{Type: NoteCall, Text: "first", Timestamp: daysAgo(9)},
			{Type: NoteEmail, Text: "latest", Timestamp: daysAgo(4)},
		}
		got := ResolveStatusStartDate(StatusContacted, notes, time.Time{}, now)
		assert.Equal(t, daysAgo(4), got)
	})

	t.Run("falls back to now with nothing else", func(t *testing.T) {
		got := ResolveStatusStartDate(StatusContacted, nil, time.Time{}, now)
		assert.Equal(t, now, got)
	})
}

func TestStatusChangeNoteText(t *testing.T) {
	text := StatusChangeNoteText(StatusInterested)
	notes := []Note{{Type: NotePlain, Text: text, Timestamp: daysAgo(2)}}

	// Round trip: the text we write is the text the resolver finds.
	got := ResolveStatusStartDate(StatusInterested, notes, daysAgo(30), now)
	assert.Equal(t, daysAgo(2), got)
}

func TestParseTime(t *testing.T) {
	t.Run("accepts RFC3339", func(t *testing.T) {
		got := ParseTime("2026-08-30T10:00:00Z")
		assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), got)
	})

	t.Run("accepts date only", func(t *testing.T) {
		got := ParseTime("2026-08-30")
		assert.False(t, got.IsZero())
	})

	t.Run("malformed input is zero time, not NaN-ish garbage", func(t *testing.T) {
		for _, s := range []string{"", "yesterday", "13/45/2026"} {
			assert.True(t, ParseTime(s).IsZero(), "input=%q", s)
		}
	})
}
