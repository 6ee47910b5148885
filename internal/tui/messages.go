package tui

import "github.com/chukul/cloudtop/internal/dispatch"

// fetchResultMsg carries a completed dispatch.Fetch back to Update. generation ties
// the result to the view transition that started it, so a result arriving after the
// user has moved on is dropped rather than applied to the wrong view.
type fetchResultMsg struct {
	generation int
	page       dispatch.Page
	err        error
}

// actionResultMsg carries the outcome of an action.Execute call.
type actionResultMsg struct {
	generation int
	err        error
}

// credentialResolvedMsg signals that a region/profile switch finished re-resolving
// credentials (and possibly invalidating the cache), clearing the way for a refetch.
type credentialResolvedMsg struct {
	generation int
	err        error
}
