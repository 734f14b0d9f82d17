// Package entitlement decides how much of a piece of content a viewer may see.
// Decisions are recomputed on every render from the content's visibility flags
// and the viewer's session; nothing here is stored or mutated.
package entitlement

// Decision is the reveal level for a single render.
type Decision int

const (
	// Full reveals the whole body.
	Full Decision = iota
	// TeaserLocked reveals a single block or the excerpt plus a call to action.
	TeaserLocked
	// FullyLocked reveals nothing but the locked panel.
	FullyLocked
)

func (d Decision) String() string {
	switch d {
	case Full:
		return "full"
	case TeaserLocked:
		return "teaser"
	case FullyLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// ViewerSession is the per-request view of who is looking at the content.
// A nil *ViewerSession is the anonymous viewer.
type ViewerSession struct {
	IsAuthenticated bool
	IsSubscribed    bool
}

// Anonymous is the session used when no valid credential is present.
var Anonymous = ViewerSession{}

func (s *ViewerSession) entitled() bool {
	return s != nil && s.IsAuthenticated && s.IsSubscribed
}

// Decide maps an article's visibility flags and the viewer's session to a
// reveal level. The flags are independent, so the order of the checks matters.
func Decide(isPublic, isSubscriberOnly bool, s *ViewerSession) Decision {
	if isPublic && !isSubscriberOnly {
		return Full
	}
	// Subscriber-only content and plain drafts share the same rule; they differ
	// only in what the teaser is built from (first block vs. stored excerpt).
	// TODO: confirm with product whether subscribers should preview drafts at all.
	if s.entitled() {
		return Full
	}
	return TeaserLocked
}

// TeaserFromExcerpt reports whether a TeaserLocked render for these flags must
// use the author-supplied excerpt instead of the first block of the body.
func TeaserFromExcerpt(isPublic, isSubscriberOnly bool) bool {
	return !isPublic && !isSubscriberOnly
}

// DecideBook is the binary gate used by the club library PDF viewer.
func DecideBook(s *ViewerSession) Decision {
	if s.entitled() {
		return Full
	}
	return FullyLocked
}

// LockReason selects the call to action shown on a locked panel.
type LockReason int

const (
	// NotLocked is returned for entitled viewers.
	NotLocked LockReason = iota
	// NeedsLogin asks an anonymous viewer to log in.
	NeedsLogin
	// NeedsSubscription asks a signed-in viewer to join the club.
	NeedsSubscription
)

func (r LockReason) String() string {
	switch r {
	case NeedsLogin:
		return "login"
	case NeedsSubscription:
		return "subscribe"
	default:
		return ""
	}
}

// LockReasonFor returns the call to action for the given viewer.
func LockReasonFor(s *ViewerSession) LockReason {
	switch {
	case s.entitled():
		return NotLocked
	case s != nil && s.IsAuthenticated:
		return NeedsSubscription
	default:
		return NeedsLogin
	}
}
