package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"atomicpiglets/internal/bot"
	"atomicpiglets/internal/feed"
	"atomicpiglets/internal/game"
	pnet "atomicpiglets/internal/net"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "host":
		runHost(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "sim":
		runSim(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  piglets host [--addr A] [--seats N] [--delay D] [--seed S] [--deal FILE] [--publish]")
	fmt.Println("  piglets join [--addr A] [--name NAME]")
	fmt.Println("  piglets sim  [--seats N] [--games G] [--seed S] [--bots LIST]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Serve a match and wait for players to join")
	fmt.Println("  join    Connect to a hosted match and play in the terminal")
	fmt.Println("  sim     Run bot-only matches and report the winners")
}

func runHost(args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "address to listen on")
	seats := fs.Int("seats", 2, "number of players")
	delay := fs.Duration("delay", game.DefaultPlayDelay, "nope window length")
	seed := fs.Int64("seed", 0, "RNG seed, 0 for time-based")
	dealFile := fs.String("deal", "", "YAML deck composition, empty for the standard deck")
	publish := fs.Bool("publish", false, "publish events to NATS (NATS_URL)")
	fs.Parse(args)

	srv := &pnet.Server{
		Addr:      *addr,
		Seats:     *seats,
		Seed:      *seed,
		PlayDelay: *delay,
	}
	if *dealFile != "" {
		cfg, err := game.LoadDealConfig(*dealFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		srv.Deal = &cfg
	}

	ctx := context.Background()
	if *publish {
		nc, err := feed.BrokerConnect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: connect broker: %v\n", err)
			os.Exit(1)
		}
		defer nc.Drain()

		// The match deals once the table fills; stream it from then on.
		go func() {
			for {
				if m := srv.Match(); m != nil {
					matchID := fmt.Sprintf("%d", time.Now().Unix())
					pub := feed.NewPublisher(nc, m, matchID)
					if err := pub.Run(ctx); err != nil && err != context.Canceled {
						fmt.Fprintf(os.Stderr, "feed: %v\n", err)
					}
					return
				}
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8080", "server address to connect to")
	name := fs.String("name", "", "player name")
	fs.Parse(args)

	if err := pnet.Connect(context.Background(), *addr, *name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSim(args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	seats := fs.Int("seats", 4, "number of bot seats")
	games := fs.Int("games", 1, "number of matches to run")
	seed := fs.Int64("seed", 1, "base RNG seed")
	bots := fs.String("bots", "cautious,drawer,random", "comma-separated policy rotation")
	fs.Parse(args)

	rotation := strings.Split(*bots, ",")
	wins := make(map[string]int)

	for g := 0; g < *games; g++ {
		gameSeed := *seed + int64(g)
		policies := make([]bot.Policy, 0, *seats)
		for i := 0; i < *seats; i++ {
			policies = append(policies, policyByName(rotation[i%len(rotation)], gameSeed+int64(i)))
		}

		runner, err := bot.NewRunner(policies, gameSeed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		result, err := runner.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: game %d: %v\n", g+1, err)
			os.Exit(1)
		}
		wins[result.Winner.Name]++
		fmt.Printf("game %d: %s wins after %d rounds (%d events)\n",
			g+1, result.Winner.Name, result.Rounds, result.Events)
	}

	if *games > 1 {
		fmt.Println("\nwins:")
		for name, n := range wins {
			fmt.Printf("  %-16s %d\n", name, n)
		}
	}
}

func policyByName(name string, seed int64) bot.Policy {
	switch strings.TrimSpace(name) {
	case "drawer":
		return bot.DrawerPolicy{}
	case "cautious":
		return bot.CautiousPolicy{}
	default:
		return bot.NewRandomPolicy(seed)
	}
}
