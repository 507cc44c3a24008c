package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadSongbooks Phase = iota
	ExportSongbook
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadSongbooks:
		return "load_songbooks"
	case ExportSongbook:
		return "export_songbook"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func loadingSongbooksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSongbooks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Loading %d songbooks...", total),
	}
}

func exportingSongbookUpdate(step, total int, sessionKey string, requests int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSongbooks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loaded %s (%d requests)", step, total, sessionKey, requests),
		Data:    sessionKey,
	}
}

func exportCompletedUpdate(step, total int, sessionKey string, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongbook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, sessionKey, files),
		Data:    sessionKey,
	}
}

func exportFailedUpdate(step, total int, sessionKey string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongbook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, sessionKey, err),
		Data:    sessionKey,
	}
}

func writingManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Writing manifest " + path,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// full; drop it
	}
}
