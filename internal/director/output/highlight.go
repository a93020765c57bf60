package output

// highlightClipFraction resolves spec §9's open question on the highlight
// clip window: a symmetric window of foresightTicks/highlightClipFraction
// ticks on either side of the triggering event's tick.
const highlightClipFraction = 10

// ClipWindow computes the symmetric suggested clip start/end around
// eventTick given the configured foresight window.
func ClipWindow(eventTick, foresightTicks int64) (start, end int64) {
	half := foresightTicks / highlightClipFraction
	start = eventTick - half
	if start < 0 {
		start = 0
	}
	end = eventTick + half
	return start, end
}

// NewHighlight builds a HighlightMarker for a scored event, computing its
// clip window from the event's tick and the configured foresight window.
func NewHighlight(id, eventID, kind string, score float64, eventTick, foresightTicks int64) HighlightMarker {
	start, end := ClipWindow(eventTick, foresightTicks)
	return HighlightMarker{
		ID:                 id,
		EventID:            eventID,
		Kind:               kind,
		Score:              score,
		SuggestedClipStart: start,
		SuggestedClipEnd:   end,
	}
}
