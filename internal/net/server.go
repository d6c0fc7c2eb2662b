package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"atomicpiglets/internal/game"
	"atomicpiglets/internal/log"
)

// eventPollInterval is how often each connection checks the match log for
// events it has not pushed yet. Resolution happens on the match's own
// timer, so new events appear without any client sending anything.
const eventPollInterval = 250 * time.Millisecond

// Server hosts one networked match. Players connect to /ws, join by name,
// and the match deals as soon as every seat is taken.
type Server struct {
	Addr      string
	Seats     int
	Seed      int64 // 0 means time-seeded
	PlayDelay time.Duration
	Deal      *game.DealConfig // nil means the standard deck

	mu      sync.Mutex
	players []*game.Player
	match   *game.Match
	rules   *game.Rules
	started chan struct{}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.Seats < game.MinPlayers || s.Seats > game.MaxPlayers {
		return fmt.Errorf("seat count %d out of range", s.Seats)
	}
	if s.PlayDelay == 0 {
		s.PlayDelay = game.DefaultPlayDelay
	}
	s.started = make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	srv := &http.Server{Addr: s.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	stdlog.Printf("hosting %d-seat match on %s", s.Seats, s.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Match returns the hosted match, nil until the table fills.
func (s *Server) Match() *game.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // clients join from any origin
	})
	if err != nil {
		stdlog.Printf("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	player, seat, err := s.join(ctx, conn)
	if err != nil {
		stdlog.Printf("join: %v", err)
		return
	}
	welcome := ServerMessage{Type: "welcome", PlayerID: player.ID.String(), Seat: seat}
	if err := writeMsg(ctx, conn, welcome); err != nil {
		return
	}

	// Hold the client until the table fills and the match deals.
	select {
	case <-s.started:
	case <-ctx.Done():
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.pushLoop(ctx, conn, player)
	}()
	s.readLoop(ctx, conn, player)
	<-done
	conn.Close(websocket.StatusNormalClosure, "goodbye")
}

// join reads the handshake, seats the player, and deals the match once the
// table is full.
func (s *Server) join(ctx context.Context, conn *websocket.Conn) (*game.Player, int, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, 0, err
	}
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "join" {
		conn.Close(websocket.StatusPolicyViolation, "expected join message")
		return nil, 0, errors.New("expected join message")
	}

	player, seat, err := s.seatPlayer(msg.Name)
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return nil, 0, err
	}
	return player, seat, nil
}

// seatPlayer adds a player to the table, dealing the match once it fills.
// An empty name gets a seat-numbered default.
func (s *Server) seatPlayer(name string) (*game.Player, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match != nil {
		return nil, 0, errors.New("match already running")
	}
	if name == "" {
		name = fmt.Sprintf("player-%d", len(s.players)+1)
	}
	player := game.NewPlayer(name)
	s.players = append(s.players, player)
	seat := len(s.players)
	stdlog.Printf("%s joined (%d/%d)", name, seat, s.Seats)

	if len(s.players) == s.Seats {
		opts := []game.MatchOption{game.WithPlayDelay(s.PlayDelay)}
		if s.Seed != 0 {
			opts = append(opts, game.WithSeed(s.Seed))
		}
		deal := game.DefaultDealConfig()
		if s.Deal != nil {
			deal = *s.Deal
		}
		m, err := game.NewDealtMatch(deal, s.players, opts...)
		if err != nil {
			return nil, 0, err
		}
		s.match = m
		s.rules = game.NewRules(m)
		close(s.started)
		stdlog.Printf("table full, match dealt")
	}
	return player, seat, nil
}

// pushLoop streams censored events to one client and announces the end of
// the match.
func (s *Server) pushLoop(ctx context.Context, conn *websocket.Conn, player *game.Player) {
	viewer := player.ID.String()
	lastSent := 0
	ticker := time.NewTicker(eventPollInterval)
	defer ticker.Stop()

	for {
		events := s.match.EventsSince(lastSent)
		if len(events) > 0 {
			lastSent = events[len(events)-1].Index
			out := ServerMessage{Type: "events", Events: log.CensorEvents(events, viewer)}
			if err := writeMsg(ctx, conn, out); err != nil {
				return
			}
		}
		if s.match.Over() {
			winner := s.match.Winner()
			out := ServerMessage{Type: "game_over", Winner: winner.ID.String(), WinnerName: winner.Name}
			_ = writeMsg(ctx, conn, out)
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// readLoop handles one client's requests until the connection drops.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, player *game.Player) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = writeMsg(ctx, conn, ServerMessage{Type: "error", Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case "state":
			state := s.stateFor(player)
			_ = writeMsg(ctx, conn, ServerMessage{Type: "state", State: &state})
		case "action":
			if err := s.applyAction(player, msg); err != nil {
				_ = writeMsg(ctx, conn, ServerMessage{Type: "error", Error: err.Error()})
				continue
			}
			state := s.stateFor(player)
			_ = writeMsg(ctx, conn, ServerMessage{Type: "state", State: &state})
		default:
			_ = writeMsg(ctx, conn, ServerMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

// stateFor builds the seat-specific view with numbered legal actions.
func (s *Server) stateFor(player *game.Player) StateView {
	return StateFor(s.match, s.rules, player)
}

// StateFor projects a match for one seat: the public table, the seat's
// private cards, and its numbered legal actions.
func StateFor(m *game.Match, rules *game.Rules, player *game.Player) StateView {
	private, _ := m.PrivateView(player.ID)
	view := StateView{
		Public: m.PublicView(),
		You:    private,
	}
	for i, a := range rules.LegalActions(player) {
		av := ActionView{Index: i, Kind: a.Kind().String(), Desc: a.String()}
		if ca, ok := a.(game.CardAction); ok {
			av.Cards = ca.Cards()
		}
		view.Actions = append(view.Actions, av)
	}
	return view
}

// applyAction resolves the numbered choice against the current legal set,
// applies any client refinements, and submits it.
func (s *Server) applyAction(player *game.Player, msg ClientMessage) error {
	actions := s.rules.LegalActions(player)
	if msg.Index < 0 || msg.Index >= len(actions) {
		return fmt.Errorf("action index %d out of range", msg.Index)
	}
	action := actions[msg.Index]
	if err := RefineAction(s.match, action, msg); err != nil {
		return err
	}
	_, err := s.match.PlayAction(action)
	return err
}

// RefineAction applies the optional fields of an action message: target,
// defuse depth, demanded kind. Shared with the MCP layer, which speaks the
// same message shape.
func RefineAction(m *game.Match, action game.GameAction, msg ClientMessage) error {
	var target *game.Player
	if msg.Target != "" {
		id, err := uuid.Parse(msg.Target)
		if err != nil {
			return fmt.Errorf("bad target id: %w", err)
		}
		p, ok := m.PlayerByID(id)
		if !ok {
			return fmt.Errorf("unknown target player")
		}
		target = p
	}

	switch a := action.(type) {
	case *game.DefuseAction:
		a.VolatileDepth = msg.Depth
	case *game.FavorAction:
		if target != nil {
			a.Target = target.ID
			a.TargetName = target.Name
		}
	case *game.DrawFromPlayerAction:
		if target != nil {
			a.Target = target.ID
			a.TargetName = target.Name
		}
	case *game.DemandCardAction:
		if target != nil {
			a.Target = target.ID
			a.TargetName = target.Name
		}
		if msg.Demand != "" {
			kind, ok := game.KindFromName(msg.Demand)
			if !ok {
				return fmt.Errorf("unknown card kind %q", msg.Demand)
			}
			a.Demanded = kind
		}
	case *game.DrawFromDiscardAction:
		if msg.Demand != "" {
			kind, ok := game.KindFromName(msg.Demand)
			if !ok {
				return fmt.Errorf("unknown card kind %q", msg.Demand)
			}
			a.Requested = kind
		}
	}
	return nil
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
