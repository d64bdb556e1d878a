package tasks

import (
	"fmt"

	"github.com/desertthunder/tvtrack/internal/models"
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
	ResolveShow Phase = iota
	FetchSeasons
	FetchEpisodes
	InsertShow
	PullRemote
	PushRemote
)

func (p Phase) String() string {
	switch p {
	case ResolveShow:
		return "resolve_show"
	case FetchSeasons:
		return "fetch_seasons"
	case FetchEpisodes:
		return "fetch_episodes"
	case InsertShow:
		return "insert_show"
	case PullRemote:
		return "pull_remote"
	case PushRemote:
		return "push_remote"
	default:
		return ""
	}
}

func resolveShowUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveShow,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Resolving %q in the catalog...", title),
	}
}

func fetchDetailsUpdate(show int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEpisodes,
		Step:    2,
		Total:   3,
		Message: fmt.Sprintf("Fetching seasons and episodes for show #%d...", show),
	}
}

func insertShowUpdate(show models.TrackedShow) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertShow,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Tracking %s (%d seasons)", show.Title, show.SeasonCount),
		Data:    show,
	}
}

func pullRemoteUpdate(uid string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PullRemote,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading shows for %s...", uid),
	}
}

func pushRemoteUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PushRemote,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d shows remotely...", count),
	}
}

// AlertKind distinguishes the two notification sweeps.
type AlertKind int

const (
	EpisodeToday AlertKind = iota
	SeasonPremiere
)

func (k AlertKind) String() string {
	switch k {
	case EpisodeToday:
		return "episode"
	case SeasonPremiere:
		return "season"
	default:
		return ""
	}
}

// Alert is a single notification produced by a sweep.
type Alert struct {
	Kind    AlertKind
	ShowID  int
	Title   string // show title
	Image   string
	Date    string // YYYY-MM-DD
	Subject string // episode name or season label
	Message string
}

// EpisodeAlertTitle is the title of desktop notifications for new episodes.
const EpisodeAlertTitle = "New Episode Alert!"

func episodeAlert(show models.TrackedShow, name, date string) Alert {
	return Alert{
		Kind:    EpisodeToday,
		ShowID:  show.ID,
		Title:   show.Title,
		Image:   show.Image,
		Date:    date,
		Subject: name,
		Message: fmt.Sprintf("📺 New episode of \"%s\" airs today: \"%s\"", show.Title, name),
	}
}

func seasonAlert(show models.TrackedShow, season int, date string) Alert {
	return Alert{
		Kind:    SeasonPremiere,
		ShowID:  show.ID,
		Title:   show.Title,
		Image:   show.Image,
		Date:    date,
		Subject: fmt.Sprintf("Season %d", season),
		Message: fmt.Sprintf("📢 New season of \"%s\" premieres on %s!", show.Title, date),
	}
}
