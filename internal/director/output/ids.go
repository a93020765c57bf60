package output

import "fmt"

// Object ids are derived deterministically from tick (and, where more than
// one item of a kind can be emitted in the same tick, a sequence number or
// the triggering event's own id) rather than randomly generated, so that
// identical inputs and seed reproduce bit-identical output (spec §9).
// The sprintf shape mirrors the simulator's own generate_tension_id /
// generate_snapshot_id convention.

// CameraInstructionID names the single camera instruction emitted for tick.
func CameraInstructionID(tick int64) string {
	return fmt.Sprintf("ci_%08d", tick)
}

// CommentaryItemID names the seq-th commentary item queued during tick.
func CommentaryItemID(tick int64, seq int) string {
	return fmt.Sprintf("cmt_%08d_%02d", tick, seq)
}

// HighlightID names the highlight raised for eventID during tick.
func HighlightID(tick int64, eventID string) string {
	return fmt.Sprintf("hl_%08d_%s", tick, eventID)
}
