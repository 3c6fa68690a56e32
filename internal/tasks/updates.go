package tasks

import (
	"fmt"

	"github.com/desertthunder/watchlog/internal/models"
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
	FetchGenres Phase = iota
	FetchItems
	RenderExport
	ValidateRows
	CreateItems
)

func (p Phase) String() string {
	switch p {
	case FetchGenres:
		return "fetch_genres"
	case FetchItems:
		return "fetch_items"
	case RenderExport:
		return "render_export"
	case ValidateRows:
		return "validate_rows"
	case CreateItems:
		return "create_items"
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

func fetchGenresUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGenres,
		Step:    1,
		Total:   1,
		Message: "Fetching genres...",
	}
}

func fetchedItemsUpdate(step, total int, kind models.Kind, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetched %d %s", step, total, count, kind.Plural()),
		Data:    kind,
	}
}

func renderUpdate(format string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Rendering %s export...", format),
	}
}

func invalidRowUpdate(step, total int, row RowResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateRows,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ line %d %s: %v", step, total, row.Line, row.Title, row.Err),
		Data:    row,
	}
}

func createdUpdate(step, total int, row RowResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, row.Title),
		Data:    row,
	}
}

func createFailedUpdate(step, total int, row RowResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, row.Title, row.Err),
		Data:    row,
	}
}
