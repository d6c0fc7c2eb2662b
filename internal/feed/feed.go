// Package feed publishes match events to a NATS broker so spectators and
// external tooling can follow games without holding a seat.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"atomicpiglets/internal/game"
	"atomicpiglets/internal/log"
)

// DefaultURL is used when NATS_URL is unset.
const DefaultURL = "nats://localhost:4222"

// pollInterval is how often the publisher checks for new events.
const pollInterval = 250 * time.Millisecond

// BrokerConnect dials the broker named by NATS_URL.
func BrokerConnect() (*nats.Conn, error) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = DefaultURL
	}
	opts := []nats.Option{
		nats.Name("piglets-feed"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	return nats.Connect(url, opts...)
}

// EventSubject is the per-match event stream subject.
func EventSubject(matchID string) string {
	return fmt.Sprintf("piglets.match.%s.events", matchID)
}

// ResultSubject carries the final result of a match.
func ResultSubject(matchID string) string {
	return fmt.Sprintf("piglets.match.%s.result", matchID)
}

// sink is the slice of the NATS connection the publisher needs.
type sink interface {
	Publish(subj string, data []byte) error
}

// Publisher streams one match's events to the broker. Events are censored
// for the public: drawn cards appear as secrets unless they are Volatile,
// which is always announced.
type Publisher struct {
	sink    sink
	match   *game.Match
	matchID string
}

// NewPublisher builds a publisher over an established connection.
func NewPublisher(nc *nats.Conn, match *game.Match, matchID string) *Publisher {
	return &Publisher{sink: nc, match: match, matchID: matchID}
}

// Result is the terminal message on the result subject.
type Result struct {
	MatchID    string `json:"matchId"`
	Winner     string `json:"winner"`
	WinnerName string `json:"winnerName"`
	Events     int    `json:"events"`
}

// Run publishes events until the match ends or the context is cancelled.
// Each event goes out as one JSON message; a result message closes the
// stream.
func (p *Publisher) Run(ctx context.Context) error {
	subject := EventSubject(p.matchID)
	lastSent := 0
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		events := p.match.EventsSince(lastSent)
		for _, ev := range events {
			data, err := json.Marshal(log.CensorEvent(ev, ""))
			if err != nil {
				return fmt.Errorf("encode event %d: %w", ev.Index, err)
			}
			if err := p.sink.Publish(subject, data); err != nil {
				return fmt.Errorf("publish event %d: %w", ev.Index, err)
			}
			lastSent = ev.Index
		}

		if p.match.Over() {
			return p.publishResult()
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Publisher) publishResult() error {
	winner := p.match.Winner()
	result := Result{
		MatchID: p.matchID,
		Events:  len(p.match.Events()),
	}
	if winner != nil {
		result.Winner = winner.ID.String()
		result.WinnerName = winner.Name
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return p.sink.Publish(ResultSubject(p.matchID), data)
}
