// Command client is a terminal front-end for the trivia server, covering
// both play modes: multiplayer over the realtime channel and single-player
// over the session endpoints.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/client/realtime"
	"github.com/pkeller/movie-trivia/client/solo"
	"github.com/pkeller/movie-trivia/client/view"
)

type options struct {
	server     string
	name       string
	difficulty string
	code       string
	solo       bool
	verbose    bool
}

func main() {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "trivia-client",
		Short:         "Play movie trivia from the terminal.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			if opts.solo {
				return runSolo(cmd.Context(), opts, log)
			}
			return runMultiplayer(cmd.Context(), opts, log)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.server, "server", "s", "http://localhost:8080", "server base URL")
	fs.StringVarP(&opts.name, "name", "n", "", "player name")
	fs.StringVarP(&opts.difficulty, "difficulty", "d", "medium", "question difficulty (easy|medium|hard)")
	fs.StringVarP(&opts.code, "code", "c", "", "game code to join; omit to create a game")
	fs.BoolVar(&opts.solo, "solo", false, "play single-player instead of multiplayer")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "display additional output")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// stdioPrompt displays alerts and notifications on the terminal and reads
// y/n confirmations from stdin.
type stdioPrompt struct {
	in *bufio.Scanner
}

func (p *stdioPrompt) Alert(message string) { fmt.Println("⚠  " + message) }

func (p *stdioPrompt) Notify(message string) { fmt.Println("• " + message) }

func (p *stdioPrompt) Confirm(message string) bool {
	fmt.Print(message + " [y/N] ")
	if !p.in.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.in.Text()), "y")
}

func runMultiplayer(ctx context.Context, opts *options, log *zap.Logger) error {
	prompt := &stdioPrompt{in: bufio.NewScanner(os.Stdin)}
	c := realtime.New(wsURL(opts.server), prompt, log)
	c.OnUpdate = func() { draw(c) }

	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	errs := make(chan error, 1)
	go func() { errs <- c.Listen(ctx) }()

	if opts.code != "" {
		c.ShowJoinGame(opts.name)
		if err := c.JoinGame(ctx, opts.code); err != nil {
			return err
		}
	} else {
		c.ShowCreateGame(opts.name)
		c.SetDifficulty(opts.difficulty)
		if err := c.CreateGame(ctx); err != nil {
			return err
		}
	}

	fmt.Println("Commands: start, next, end, leave, quit, or an option number to answer.")
	input := bufio.NewScanner(os.Stdin)
	for input.Scan() {
		select {
		case err := <-errs:
			return err
		default:
		}

		line := strings.TrimSpace(input.Text())
		switch line {
		case "":
		case "start":
			_ = c.StartGame(ctx)
		case "next":
			_ = c.NextQuestion(ctx)
		case "end":
			_ = c.EndGame(ctx)
		case "leave":
			_ = c.LeaveLobby(ctx)
		case "quit":
			return nil
		default:
			n, err := strconv.Atoi(line)
			q, ok := c.CurrentQuestion()
			if err != nil || !ok || n < 1 || n > len(q.Options) {
				prompt.Alert("Unknown command")
				continue
			}
			_ = c.SubmitAnswer(ctx, q.Options[n-1])
		}
	}
	return input.Err()
}

// draw prints a text projection of the current view state.
func draw(c *realtime.Client) {
	v := c.View()
	p := c.Page()

	switch v.Active() {
	case view.ScreenLobby:
		fmt.Printf("\n-- Lobby %s -- %d player(s)\n", p.GameCode, p.PlayerCount)
		if v.HostControls {
			fmt.Println("You are the host. Type 'start' when everyone is in.")
		}
	case view.ScreenGame:
		if v.Loading {
			fmt.Println("\nLoading next question...")
			return
		}
		if q, ok := c.CurrentQuestion(); ok && v.QuestionCard {
			fmt.Printf("\nQ%d: %s\n", q.QuestionNumber, q.Question)
			for i, opt := range q.Options {
				fmt.Printf("  %d) %s\n", i+1, opt)
			}
			if !v.OptionsEnabled {
				fmt.Println("  (answer submitted, waiting for other players)")
			}
			if v.NextQuestionButton {
				fmt.Println("Type 'next' for the next question or 'end' to finish.")
			}
		}
	case view.ScreenResults:
		fmt.Printf("\n== Final results after %d question(s) ==\n", p.TotalQuestions)
	}
}

func runSolo(ctx context.Context, opts *options, log *zap.Logger) error {
	prompt := &stdioPrompt{in: bufio.NewScanner(os.Stdin)}
	c := solo.New(opts.server, prompt, log)

	if err := c.StartGame(ctx, opts.difficulty); err != nil {
		return err
	}

	input := bufio.NewScanner(os.Stdin)
	for {
		q, ok := c.CurrentQuestion()
		if !ok {
			return nil
		}
		fmt.Printf("\nQ%d: %s\n", q.QuestionNumber, q.Question)
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
		fmt.Print("Answer number (or 'q' to quit): ")

		if !input.Scan() {
			return input.Err()
		}
		line := strings.TrimSpace(input.Text())
		if line == "q" {
			break
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(q.Options) {
			prompt.Alert("Pick an option number")
			continue
		}

		if err := c.SubmitAnswer(ctx, q.Options[n-1]); err != nil {
			continue
		}
		res := c.LastResult()
		if res.Correct {
			fmt.Println("✅ Correct!")
		} else {
			fmt.Printf("❌ Incorrect. The answer was: %s\n", res.CorrectAnswer)
		}
		if res.Explanation != "" {
			fmt.Println("   " + res.Explanation)
		}
		stats := c.Stats()
		fmt.Printf("Score: %d/%d (%s)\n", stats.Score, stats.QuestionsAsked, stats.Accuracy())

		if err := c.FetchQuestion(ctx); err != nil {
			break
		}
	}

	stats := c.Stats()
	fmt.Printf("\nFinal score: %d/%d (%s)\n", stats.Score, stats.QuestionsAsked, stats.Accuracy())
	return nil
}

// wsURL derives the realtime endpoint from the HTTP base URL.
func wsURL(server string) string {
	u := strings.TrimRight(server, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u + "/ws"
}
