package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase   // Operation phase
	Section Section // Section the update refers to, if any
	Step    int     // Current step number within phase
	Total   int     // Total steps in this phase
	Message string  // Human-readable message for display
	Err     error   // Set when the step failed
}

// Operation phase enumeration
type Phase int

const (
	FetchSection Phase = iota
	SectionLoaded
	SectionFailed
	HomeReady
)

func (p Phase) String() string {
	switch p {
	case FetchSection:
		return "fetch_section"
	case SectionLoaded:
		return "section_loaded"
	case SectionFailed:
		return "section_failed"
	case HomeReady:
		return "home_ready"
	default:
		return ""
	}
}

func fetchingSectionUpdate(step, total int, s Section) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSection,
		Section: s,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", s.Title()),
	}
}

func sectionLoadedUpdate(step, total int, s Section, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SectionLoaded,
		Section: s,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loaded %d titles for %s", count, s.Title()),
	}
}

func sectionFailedUpdate(step, total int, s Section, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SectionFailed,
		Section: s,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to load %s", s.Title()),
		Err:     err,
	}
}

func homeReadyUpdate(total, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   HomeReady,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Home ready (%d of %d sections loaded)", total-failed, total),
	}
}

// sendProgress delivers u without blocking; updates are dropped when nobody is listening.
func sendProgress(prog chan<- ProgressUpdate, u ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- u:
	default:
	}
}
