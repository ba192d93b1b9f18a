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
	FetchGenres Phase = iota
	FetchList
	ExportList
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchGenres:
		return "fetch_genres"
	case FetchList:
		return "fetch_list"
	case ExportList:
		return "export_list"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingGenresUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGenres,
		Step:    1,
		Total:   1,
		Message: "Fetching genre catalog...",
	}
}

func fetchingListUpdate(step, total int, target Target) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s (%d/%d)", target.Slug(), step, total),
		Data:    target,
	}
}

func exportCompletedUpdate(step, total int, res ListExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ Exported %q (%d movies, %d files)", res.Title, res.Movies, len(res.Files)),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res ListExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ Failed %q: %v", res.Title, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Wrote " + path,
	}
}
