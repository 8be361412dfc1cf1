package tasks

import (
	"fmt"
)

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
	DeleteCommentsPhase Phase = iota
	RemoveLikesPhase
	UploadPhase
)

func (p Phase) String() string {
	switch p {
	case DeleteCommentsPhase:
		return "delete_comments"
	case RemoveLikesPhase:
		return "remove_likes"
	case UploadPhase:
		return "upload"
	default:
		return ""
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
	}
}

func selectionUpdate(phase Phase, step, total int, id string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   phase,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
			Data:    err,
		}
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, id),
	}
}

// uploadUpdate reports upload progress as a percentage.
func uploadUpdate(current, total int64, title string) ProgressUpdate {
	pct := 0
	if total > 0 {
		pct = int(current * 100 / total)
	}
	return ProgressUpdate{
		Phase:   UploadPhase,
		Step:    pct,
		Total:   100,
		Message: fmt.Sprintf("Uploading %s... %d%%", title, pct),
		Data:    current,
	}
}
