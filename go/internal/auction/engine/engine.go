// Package engine runs a live auction: one lot at a time, countdown per lot,
// round-robin re-auction of unsold players.
//
// All commands and every countdown or delayed callback run under one mutex,
// so a manual Sell racing an expiring countdown resolves the lot exactly once.
// Each accepted transition produces a new immutable Snapshot that is stored
// for readers and handed to a Publisher.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveauction/go/internal/auction/bids"
	"github.com/mcdev12/liveauction/go/internal/auction/countdown"
	"github.com/mcdev12/liveauction/go/internal/auction/events"
	"github.com/mcdev12/liveauction/go/internal/auction/ledger"
	"github.com/mcdev12/liveauction/go/internal/auction/metrics"
	"github.com/mcdev12/liveauction/go/internal/auction/queue"
	"github.com/mcdev12/liveauction/go/internal/catalog"
	"github.com/mcdev12/liveauction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Publisher receives every committed snapshot, in version order. Publish is
// called with the engine locked and must not block.
type Publisher interface {
	Publish(s *Snapshot)
}

type nopPublisher struct{}

func (nopPublisher) Publish(*Snapshot) {}

type pendingKind string

const (
	pendingSale     pendingKind = "sale_display"
	pendingCooldown pendingKind = "unsold_cooldown"
)

// lot is the live player with its bids
type lot struct {
	id       uuid.UUID
	player   *models.Player
	bids     *bids.Ledger
	resolved bool
}

type Engine struct {
	cfg       Config
	clock     clockwork.Clock
	seed      catalog.Seed
	publisher Publisher
	metrics   metrics.Collector

	mu      sync.Mutex
	teams   *ledger.Ledger
	players []*models.Player
	queue   *queue.Queue
	timer   *countdown.Timer
	lot     *lot
	phase   Phase
	running bool
	version uint64

	lastSale *models.SaleNotice

	// at most one delayed resolution step is pending; pendingGen invalidates
	// callbacks that were already on their way when it got cancelled
	pending     clockwork.Timer
	pendingKind pendingKind
	pendingGen  uint64

	current atomic.Pointer[Snapshot]
}

// New creates an engine over a private copy of seed. It starts Idle; call
// Start to load the first lot. publisher and collector may be nil.
func New(cfg Config, seed catalog.Seed, clock clockwork.Clock, publisher Publisher, collector metrics.Collector) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	e := &Engine{
		cfg:       cfg,
		clock:     clock,
		seed:      seed.Clone(),
		publisher: publisher,
		metrics:   collector,
	}
	e.timer = countdown.New(clock, cfg.BidDuration, cfg.Tick, e.onTick)
	e.reseed()
	if e.queue.Exhausted() {
		e.phase = PhaseComplete
	}
	e.current.Store(e.snapshot(""))
	return e, nil
}

// Snapshot returns the latest committed snapshot. It never blocks on the
// engine lock.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Teams returns the seeded teams, for resolving bidders by name
func (e *Engine) Teams() []models.Team {
	return e.seed.Clone().Teams
}

// Start loads the next lot when Idle, or resumes a paused lot. A paused lot
// with bids continues its countdown from the time it had left.
func (e *Engine) Start() error {
	return e.exec("start", e.start)
}

// Pause stops the countdown and clears the running flag. Pausing while a
// sale is on display drops the display and leaves the engine Idle; the next
// Start loads the next lot.
func (e *Engine) Pause() error {
	return e.exec("pause", e.pause)
}

// PlaceBid places the next valid bid for teamID on the live lot.
func (e *Engine) PlaceBid(teamID int) error {
	return e.exec("place_bid", func() (events.EventType, error) {
		return e.placeBid(teamID)
	})
}

// UndoBid removes the most recent bid. The previous leader gets a fresh
// countdown; undoing the only bid leaves the lot waiting for a first bid.
func (e *Engine) UndoBid() error {
	return e.exec("undo_bid", e.undoBid)
}

// Sell sells the live lot to the leading team at the current price.
func (e *Engine) Sell() error {
	return e.exec("sell", e.sell)
}

// MarkUnsold parks the live lot for the next round and loads the next one.
func (e *Engine) MarkUnsold() error {
	return e.exec("mark_unsold", func() (events.EventType, error) {
		return e.requeueLive(events.EventTypeLotUnsold)
	})
}

// Skip is MarkUnsold as an operator override, whatever the bid state.
func (e *Engine) Skip() error {
	return e.exec("skip", func() (events.EventType, error) {
		return e.requeueLive(events.EventTypeLotSkipped)
	})
}

// Reset discards all progress, reseeds from the catalog and loads the first
// lot with the auction running. It always succeeds.
func (e *Engine) Reset() error {
	return e.exec("reset", e.reset)
}

// Close cancels the countdown and any pending resolution step
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
	e.timer.Stop()
}

// Verify checks the team budget invariants against the catalog
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	byID := make(map[int]*models.Player, len(e.players))
	for _, p := range e.players {
		byID[p.ID] = p
	}
	return e.teams.Verify(byID)
}

func (e *Engine) exec(command string, fn func() (events.EventType, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, err := fn()
	e.metrics.RecordCommand(command, Code(err))
	if err != nil {
		log.Debug().
			Str("command", command).
			Str("code", Code(err)).
			Err(err).
			Msg("command rejected")
		return err
	}

	e.commit(event)
	log.Info().
		Str("command", command).
		Str("event", string(event)).
		Str("phase", string(e.phase)).
		Uint64("version", e.version).
		Msg("command accepted")
	return nil
}

// commit must be called with e.mu held
func (e *Engine) commit(event events.EventType) {
	e.version++
	s := e.snapshot(event)
	e.current.Store(s)
	e.publisher.Publish(s)
}

func (e *Engine) reseed() {
	seed := e.seed.Clone()
	e.teams = ledger.New(seed.Teams)
	e.players = make([]*models.Player, len(seed.Players))
	for i := range seed.Players {
		e.players[i] = &seed.Players[i]
	}
	e.queue = queue.New(e.players, e.cfg.MaxRounds)
	e.lot = nil
	e.lastSale = nil
	e.running = false
	e.phase = PhaseIdle
	e.timer.Arm()
}

// loadNext makes the head of the queue the live lot, or completes the
// auction when nothing is left.
func (e *Engine) loadNext() bool {
	p, promoted, err := e.queue.Next()
	if errors.Is(err, queue.ErrQueueExhausted) {
		e.lot = nil
		e.phase = PhaseComplete
		e.running = false
		e.timer.Arm()
		log.Info().Int("round", e.queue.Round()).Int("unsold", e.queue.Unsold()).Msg("auction complete")
		return false
	}
	if promoted {
		log.Info().Int("round", e.queue.Round()).Int("players", e.queue.Pending()+1).Msg("new round started")
	}

	p.Status = models.PlayerStatusLive
	e.lot = &lot{
		id:     uuid.New(),
		player: p,
		bids:   bids.NewLedger(p.BasePrice),
	}
	e.phase = PhaseLotWaiting
	e.timer.Arm()

	log.Info().
		Str("lot_id", e.lot.id.String()).
		Int("player_id", p.ID).
		Str("player", p.Name).
		Int64("base_price", p.BasePrice).
		Int("round", e.queue.Round()).
		Msg("lot opened")
	return true
}

func (e *Engine) start() (events.EventType, error) {
	switch {
	case e.phase == PhaseComplete:
		return "", ErrAuctionComplete
	case e.phase == PhaseResolving:
		return "", ErrLotResolving
	case e.running:
		return "", ErrAlreadyRunning
	}

	if e.lot == nil {
		if !e.loadNext() {
			return events.EventTypeAuctionCompleted, nil
		}
		e.running = true
		return events.EventTypeAuctionStarted, nil
	}

	e.running = true
	if e.lot.bids.Len() == 0 {
		e.timer.Arm()
		e.phase = PhaseLotWaiting
	} else if !e.timer.Resume() {
		e.timer.Restart()
	}
	return events.EventTypeAuctionResumed, nil
}

func (e *Engine) pause() (events.EventType, error) {
	if e.phase == PhaseResolving {
		kind := e.pendingKind
		e.cancelPending()
		switch kind {
		case pendingSale:
			e.lastSale = nil
			e.lot = nil
			e.phase = PhaseIdle
			if e.queue.Exhausted() {
				e.phase = PhaseComplete
			}
		default:
			e.phase = PhaseLotWaiting
			e.timer.Stop()
		}
		e.running = false
		return events.EventTypeAuctionPaused, nil
	}
	if !e.running {
		return "", ErrNotRunning
	}

	e.running = false
	e.timer.Stop()
	return events.EventTypeAuctionPaused, nil
}

func (e *Engine) placeBid(teamID int) (events.EventType, error) {
	switch {
	case e.phase == PhaseComplete:
		return "", ErrAuctionComplete
	case e.phase == PhaseResolving:
		return "", ErrLotResolving
	case !e.running:
		return "", ErrNotRunning
	case e.lot == nil:
		return "", ErrNoActiveLot
	case e.timer.State() == countdown.StateExpired:
		return "", ErrTimerExpired
	}
	if _, ok := e.teams.Team(teamID); !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownTeam, teamID)
	}

	l := e.lot
	if leader, ok := l.bids.Leader(); ok && leader == teamID {
		return "", ErrAlreadyLeading
	}
	amount := e.cfg.Increments.NextAmount(l.bids)
	if !e.teams.CanAfford(teamID, amount) {
		remaining, _ := e.teams.Remaining(teamID)
		return "", fmt.Errorf("%w: team %d has %d, needs %d", ErrInsufficientBudget, teamID, remaining, amount)
	}

	if err := l.bids.Place(teamID, amount, e.clock.Now()); err != nil {
		if errors.Is(err, bids.ErrAlreadyLeading) {
			return "", ErrAlreadyLeading
		}
		return "", fmt.Errorf("place bid: %w", err)
	}
	e.timer.Restart()
	e.phase = PhaseLotActive

	log.Info().
		Str("lot_id", l.id.String()).
		Int("team_id", teamID).
		Int64("amount", amount).
		Int("bids", l.bids.Len()).
		Msg("bid placed")
	return events.EventTypeBidPlaced, nil
}

func (e *Engine) undoBid() (events.EventType, error) {
	switch {
	case e.phase == PhaseComplete:
		return "", ErrAuctionComplete
	case e.phase == PhaseResolving:
		return "", ErrLotResolving
	case e.lot == nil:
		return "", ErrNoActiveLot
	}

	l := e.lot
	if _, err := l.bids.UndoLast(); err != nil {
		return "", ErrNoBidToUndo
	}
	if l.bids.Len() == 0 {
		e.timer.Arm()
		e.phase = PhaseLotWaiting
	} else {
		e.timer.Reset(e.running)
	}
	return events.EventTypeBidUndone, nil
}

func (e *Engine) sell() (events.EventType, error) {
	switch {
	case e.phase == PhaseComplete:
		return "", ErrAuctionComplete
	case e.phase == PhaseResolving:
		return "", ErrLotResolving
	case e.lot == nil:
		return "", ErrNoActiveLot
	}
	leader, ok := e.lot.bids.Leader()
	if !ok {
		return "", ErrNoLeaderToSell
	}
	return e.resolveSale(leader)
}

func (e *Engine) resolveSale(teamID int) (events.EventType, error) {
	l := e.lot
	price := l.bids.CurrentPrice()
	if err := e.teams.Commit(teamID, l.player, price); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBudget) {
			return "", fmt.Errorf("%w: %v", ErrInsufficientBudget, err)
		}
		return "", fmt.Errorf("commit sale: %w", err)
	}
	team, _ := e.teams.Team(teamID)

	l.resolved = true
	e.timer.Stop()
	e.lastSale = &models.SaleNotice{
		ID:         uuid.New(),
		PlayerID:   l.player.ID,
		PlayerName: l.player.Name,
		Avatar:     l.player.Avatar,
		TeamID:     team.ID,
		TeamName:   team.Name,
		TeamLogo:   team.Logo,
		TeamColor:  team.Color,
		SoldPrice:  price,
		SoldAt:     e.clock.Now(),
	}
	e.metrics.RecordSale(price)
	log.Info().
		Str("lot_id", l.id.String()).
		Int("player_id", l.player.ID).
		Int("team_id", team.ID).
		Int64("price", price).
		Msg("player sold")

	e.running = false
	e.phase = PhaseResolving
	e.after(pendingSale, e.cfg.SaleDisplay, e.finishSale)
	return events.EventTypeLotSold, nil
}

func (e *Engine) finishSale() events.EventType {
	e.lastSale = nil
	if !e.loadNext() {
		return events.EventTypeAuctionCompleted
	}
	e.running = true
	return events.EventTypeLotOpened
}

func (e *Engine) requeueLive(event events.EventType) (events.EventType, error) {
	switch {
	case e.phase == PhaseComplete:
		return "", ErrAuctionComplete
	case e.phase == PhaseResolving:
		return "", ErrLotResolving
	case e.lot == nil:
		return "", ErrNoActiveLot
	}
	e.resolveUnsold()
	return event, nil
}

func (e *Engine) resolveUnsold() {
	l := e.lot
	l.resolved = true
	e.timer.Stop()
	e.queue.RequeueAsUnsold(l.player)
	log.Info().
		Str("lot_id", l.id.String()).
		Int("player_id", l.player.ID).
		Int("round", e.queue.Round()).
		Msg("player unsold")

	if !e.loadNext() {
		return
	}
	e.running = false
	e.phase = PhaseResolving
	e.after(pendingCooldown, e.cfg.UnsoldCooldown, e.reopenBidding)
}

func (e *Engine) reopenBidding() events.EventType {
	e.running = true
	e.phase = PhaseLotWaiting
	return events.EventTypeBiddingReopened
}

func (e *Engine) reset() (events.EventType, error) {
	e.cancelPending()
	e.reseed()
	if e.loadNext() {
		e.running = true
	}
	return events.EventTypeAuctionReset, nil
}

// onTick runs on the clock's goroutine for every countdown tick.
func (e *Engine) onTick(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	expired, ok := e.timer.Tick(epoch)
	if !ok {
		log.Debug().Uint64("epoch", epoch).Msg("stale countdown tick ignored")
		return
	}
	if !expired {
		e.commit(events.EventTypeTimerTick)
		return
	}

	l := e.lot
	if l == nil || l.resolved || !e.running || e.phase != PhaseLotActive {
		e.commit(events.EventTypeTimerTick)
		return
	}
	log.Info().Str("lot_id", l.id.String()).Msg("countdown expired")

	if leader, ok := l.bids.Leader(); ok {
		event, err := e.resolveSale(leader)
		if err == nil {
			e.metrics.RecordAutoResolution("sold")
			e.commit(event)
			return
		}
		log.Error().Err(err).Str("lot_id", l.id.String()).Msg("auto-sale failed, marking unsold")
	}
	e.resolveUnsold()
	e.metrics.RecordAutoResolution("unsold")
	e.commit(events.EventTypeLotUnsold)
}

// after runs fn once d has elapsed, under the engine lock, and commits the
// event it returns. A zero delay runs fn inline as part of the current
// transition.
func (e *Engine) after(kind pendingKind, d time.Duration, fn func() events.EventType) {
	e.cancelPending()
	if d <= 0 {
		fn()
		return
	}

	gen := e.pendingGen
	e.pendingKind = kind
	e.pending = e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.pendingGen {
			log.Debug().Str("kind", string(kind)).Msg("stale resolution callback ignored")
			return
		}
		e.pending = nil
		e.pendingKind = ""
		e.commit(fn())
	})
}

func (e *Engine) cancelPending() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.pendingKind = ""
	e.pendingGen++
}
