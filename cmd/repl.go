package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DachengChen/erdchat/tui"
)

// runner answers one user turn.
type runner interface {
	Run(ctx context.Context, query string) (string, error)
}

// readLines scans in on its own goroutine so the prompt can be
// interrupted. lines is closed at EOF or on cancellation; a scan error
// is sent on errc before the close.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- err
		}
	}()
	return lines, errc
}

// runLoop reads queries line by line until "exit", EOF or cancellation.
// A failed turn is reported and the loop keeps going.
func runLoop(ctx context.Context, in io.Reader, out io.Writer, r runner) error {
	fmt.Fprintln(out, tui.StyleTitle.Render("Database Analyst Agent is ready. Type 'exit' to quit."))
	if ctx.Err() != nil {
		return nil
	}

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, errc := readLines(readCtx, in)
	for {
		fmt.Fprint(out, "\n"+tui.StylePrompt.Render("Enter your query: "))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			line = l
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "exit") {
			fmt.Fprintln(out, tui.StyleDimmed.Render("Exiting Database Analyst Agent. Goodbye!"))
			return nil
		}

		resp, err := r.Run(ctx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintln(out, tui.StyleError.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintln(out, "\n"+tui.StyleBold.Render("Response:"))
		fmt.Fprintln(out, resp)
	}
}
