package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventTailerReadsAppendedLinesIncrementally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"event_id":"evt_1","event_type":"movement"}`+"\n"), 0o644))

	tailer := NewEventTailer(path, nil)
	first, err := tailer.Poll()
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, "evt_1", first[0].EventID)

	second, err := tailer.Poll()
	require.NoError(t, err)
	require.Empty(t, second)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"event_id":"evt_2","event_type":"betrayal"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	third, err := tailer.Poll()
	require.NoError(t, err)
	require.Len(t, third, 1)
	require.Equal(t, "evt_2", third[0].EventID)
}

func TestEventTailerIgnoresTrailingPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"event_id":"evt_1","event_type":"movement"}`+"\n"+`{"event_id":"evt_2"`), 0o644))

	tailer := NewEventTailer(path, nil)
	events, err := tailer.Poll()
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "evt_1", events[0].EventID)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`,"event_type":"death"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	more, err := tailer.Poll()
	require.NoError(t, err)
	require.Len(t, more, 1)
	require.Equal(t, "evt_2", more[0].EventID)
}

func TestEventTailerDetectsTruncationAsReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"event_id":"evt_1","event_type":"movement"}`+"\n"), 0o644))

	tailer := NewEventTailer(path, nil)
	_, err := tailer.Poll()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"event_id":"e2"}`+"\n"), 0o644))

	events, err := tailer.Poll()
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "e2", events[0].EventID)
}

func TestEventTailerSkipsMalformedLineWithoutDroppingLaterOnes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"event_id":"evt_1","event_type":"movement"}` + "\n" +
		`{not valid json` + "\n" +
		`{"event_id":"evt_3","event_type":"betrayal"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tailer := NewEventTailer(path, nil)
	events, err := tailer.Poll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "evt_1", events[0].EventID)
	require.Equal(t, "evt_3", events[1].EventID)
}

func TestEventTailerMissingFileIsNotAnError(t *testing.T) {
	tailer := NewEventTailer(filepath.Join(t.TempDir(), "missing.jsonl"), nil)
	events, err := tailer.Poll()
	require.NoError(t, err)
	require.Empty(t, events)
}
