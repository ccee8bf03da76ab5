package engine

import "errors"

// Rejections. A command that returns one of these left the engine untouched.
var (
	ErrNotRunning         = errors.New("auction is not running")
	ErrNoActiveLot        = errors.New("no live lot")
	ErrAlreadyLeading     = errors.New("team already holds the top bid")
	ErrInsufficientBudget = errors.New("team cannot afford the next bid")
	ErrTimerExpired       = errors.New("bidding time has expired")
	ErrNoBidToUndo        = errors.New("no bid to undo")
	ErrNoLeaderToSell     = errors.New("no leading bid to sell to")
	ErrUnknownTeam        = errors.New("unknown team")
	ErrAlreadyRunning     = errors.New("auction is already running")
	ErrAuctionComplete    = errors.New("auction is complete")
	ErrLotResolving       = errors.New("lot is being resolved")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotRunning, "not_running"},
	{ErrNoActiveLot, "no_active_lot"},
	{ErrAlreadyLeading, "already_leading"},
	{ErrInsufficientBudget, "insufficient_budget"},
	{ErrTimerExpired, "timer_expired"},
	{ErrNoBidToUndo, "no_bid_to_undo"},
	{ErrNoLeaderToSell, "no_leader_to_sell"},
	{ErrUnknownTeam, "unknown_team"},
	{ErrAlreadyRunning, "already_running"},
	{ErrAuctionComplete, "auction_complete"},
	{ErrLotResolving, "lot_resolving"},
}

// Code returns the stable machine code for a rejection, "accepted" for nil
// and "internal" for anything else.
func Code(err error) string {
	if err == nil {
		return "accepted"
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// IsRejection reports whether err is one of the soft rejections above
func IsRejection(err error) bool {
	c := Code(err)
	return c != "accepted" && c != "internal"
}
