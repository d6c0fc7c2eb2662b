package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coder/websocket"

	"atomicpiglets/internal/log"
)

// Client connects to a match server and provides a terminal REPL.
type Client struct {
	conn     *websocket.Conn
	playerID string
}

// Connect joins a hosted match and runs the REPL until the game ends.
func Connect(ctx context.Context, addr, name string) error {
	url := addr
	if !strings.Contains(url, "://") {
		url = "ws://" + url
	}
	if !strings.HasSuffix(url, "/ws") {
		url = strings.TrimRight(url, "/") + "/ws"
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.CloseNow()

	c := &Client{conn: conn}
	if err := c.send(ctx, ClientMessage{Type: "join", Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	fmt.Println("Connected! Waiting for the table to fill...")

	return c.runREPL(ctx)
}

// runREPL reads server messages and prompts on state messages. The server
// pushes events as they happen; the client asks for fresh state whenever
// the player hits enter.
func (c *Client) runREPL(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)

	// Stdin prompt requests run alongside the message loop.
	inputCh := make(chan string)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(inputCh)
				return
			}
			inputCh <- strings.TrimSpace(line)
		}
	}()

	msgCh := make(chan ServerMessage)
	errCh := make(chan error, 1)
	go func() {
		for {
			_, data, err := c.conn.Read(ctx)
			if err != nil {
				errCh <- err
				return
			}
			var msg ServerMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				errCh <- fmt.Errorf("bad server message: %w", err)
				return
			}
			msgCh <- msg
		}
	}()

	var lastState *StateView
	for {
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-msgCh:
			switch msg.Type {
			case "welcome":
				c.playerID = msg.PlayerID
				fmt.Printf("You are seat %d.\n", msg.Seat)
				// First deal arrives moments later; ask for state.
				if err := c.send(ctx, ClientMessage{Type: "state"}); err != nil {
					return err
				}
			case "events":
				for _, ev := range msg.Events {
					fmt.Println(log.FormatEvent(ev))
				}
			case "state":
				lastState = msg.State
				c.renderState(msg.State)
			case "error":
				fmt.Printf("!! %s\n", msg.Error)
			case "game_over":
				fmt.Printf("\n=== %s wins! ===\n", msg.WinnerName)
				return nil
			}

		case line, ok := <-inputCh:
			if !ok {
				return nil
			}
			if err := c.handleInput(ctx, line, lastState); err != nil {
				return err
			}
		}
	}
}

// handleInput turns a REPL line into a client message. An empty line
// refreshes state; a number plays that action; extra words refine it:
//
//	2                   play action 2
//	2 @<player-id>      ... targeting a player
//	2 depth 3           ... defusing three cards down
//	2 kind Attack       ... demanding a kind
func (c *Client) handleInput(ctx context.Context, line string, state *StateView) error {
	if line == "" {
		return c.send(ctx, ClientMessage{Type: "state"})
	}

	fields := strings.Fields(line)
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		fmt.Println("enter an action number, or just enter to refresh")
		return nil
	}
	if state != nil && (idx < 0 || idx >= len(state.Actions)) {
		fmt.Printf("action %d is not on the menu\n", idx)
		return nil
	}

	msg := ClientMessage{Type: "action", Index: idx}
	for i := 1; i < len(fields); i++ {
		switch {
		case strings.HasPrefix(fields[i], "@"):
			msg.Target = strings.TrimPrefix(fields[i], "@")
		case fields[i] == "depth" && i+1 < len(fields):
			if d, err := strconv.Atoi(fields[i+1]); err == nil {
				msg.Depth = d
			}
			i++
		case fields[i] == "kind" && i+1 < len(fields):
			msg.Demand = fields[i+1]
			i++
		}
	}
	return c.send(ctx, msg)
}

func (c *Client) renderState(s *StateView) {
	if s == nil {
		return
	}
	fmt.Println()
	fmt.Printf("--- %s ---\n", s.Public.Status)
	fmt.Printf("deck: %d cards, discard: %d, turns owed: %d\n",
		s.Public.DeckSize, len(s.Public.DiscardPile), s.Public.TurnsLeft)
	for _, p := range s.Public.Players {
		marker := "  "
		if p.IsCurrent {
			marker = "> "
		}
		status := ""
		if p.Busted {
			status = " (out)"
		}
		fmt.Printf("%s%s: %d cards%s\n", marker, p.Name, p.CardsLeft, status)
	}

	var hand []string
	for _, card := range s.You.Hand {
		hand = append(hand, card.String())
	}
	fmt.Printf("hand: %s\n", strings.Join(hand, ", "))
	if len(s.You.Future) > 0 {
		var future []string
		for _, card := range s.You.Future {
			future = append(future, card.String())
		}
		fmt.Printf("foresight (top first): %s\n", strings.Join(future, ", "))
	}

	for _, a := range s.Actions {
		fmt.Printf("  [%d] %s\n", a.Index, a.Desc)
	}
	fmt.Print("> ")
}

func (c *Client) send(ctx context.Context, msg ClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}
