package events

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestEventType_Subject(t *testing.T) {
	check.Equal(t, "auction.events.bid_placed", EventTypeBidPlaced.Subject("auction.events"))
	check.Equal(t, "auction.events.lot_sold", EventTypeLotSold.Subject("auction.events"))
	check.Equal(t, "x.timer_tick", EventTypeTimerTick.Subject("x"))
}
