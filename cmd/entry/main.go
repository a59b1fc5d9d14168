// Command entry is a terminal bid-entry client. It drives the bidentry
// engine against a running api server: each input line becomes an engine
// event and the refreshed form is printed after every one.
//
// Lines starting with "/" are commands (/tab, /enter, /esc, /up, /down,
// /click N, /blur, /save, /nobid, /skip, /delete, /yes, /no, /ok, /grid,
// /quit); anything else replaces the focused field's text.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gavelworks/auctiondesk/internal/bidentry"
	"github.com/gavelworks/auctiondesk/pkg/config"
	"github.com/gavelworks/auctiondesk/pkg/logger"
)

func main() {
	var (
		auctionID = flag.Uint("auction", 0, "auction id to enter bids for (required)")
		baseURL   = flag.String("url", "http://localhost:8080", "base URL of the api server")
	)
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "entry"})

	if *auctionID == 0 {
		fmt.Fprintln(os.Stderr, "usage: entry -auction <id> [-url <base url>]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		logg.Debug(context.Background(), "loaded .env")
	}
	var entryCfg config.EntryConfig
	if err := envconfig.Process("", &entryCfg); err != nil {
		logg.Error(context.Background(), "failed to load entry config", err)
		os.Exit(1)
	}

	client, err := bidentry.NewClient(*baseURL)
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	ctrl, err := bidentry.NewController(bidentry.Options{
		API:       client,
		AuctionID: uint(*auctionID),
		Config:    entryCfg,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build controller", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl.Refresh()
	go ctrl.RunPoller(ctx)

	fmt.Printf("auction %d — type to fill the focused field, /quit to exit\n", *auctionID)
	render(ctrl.Snapshot())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Text()
		if line == "/quit" {
			break
		}
		dispatch(ctrl, line)
		render(ctrl.Snapshot())
	}
}

// dispatch turns one input line into an engine event.
func dispatch(ctrl *bidentry.Controller, line string) {
	vs := ctrl.Snapshot()
	if !strings.HasPrefix(line, "/") {
		ctrl.Handle(bidentry.FieldInput{Field: vs.Focus, Text: line})
		return
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	switch cmd {
	case "tab":
		ctrl.Handle(bidentry.KeyPress{Field: vs.Focus, Key: bidentry.KeyTab})
	case "enter":
		ctrl.Handle(bidentry.KeyPress{Field: vs.Focus, Key: bidentry.KeyEnter})
	case "esc":
		ctrl.Handle(bidentry.KeyPress{Field: vs.Focus, Key: bidentry.KeyEscape})
	case "up":
		ctrl.Handle(bidentry.KeyPress{Field: vs.Focus, Key: bidentry.KeyArrowUp})
	case "down":
		ctrl.Handle(bidentry.KeyPress{Field: vs.Focus, Key: bidentry.KeyArrowDown})
	case "skip":
		ctrl.Handle(bidentry.KeyPress{Field: vs.Focus, Key: bidentry.KeySkipItem})
	case "nobid":
		ctrl.Handle(bidentry.MarkNoBid{})
	case "click":
		if idx, err := strconv.Atoi(arg); err == nil {
			ctrl.Handle(bidentry.ClickRow{Field: vs.Focus, Index: idx})
		}
	case "blur":
		ctrl.Handle(bidentry.Blur{Field: vs.Focus})
	case "save":
		ctrl.Handle(bidentry.Submit{})
	case "delete":
		ctrl.Handle(bidentry.DeleteCurrent{})
	case "yes":
		ctrl.Handle(bidentry.ConfirmDelete{})
	case "no":
		ctrl.Handle(bidentry.CancelDelete{})
	case "ok":
		ctrl.DismissNotice()
	case "grid":
		ctrl.Refresh()
	default:
		fmt.Printf("unknown command /%s\n", cmd)
	}
}

func render(vs bidentry.ViewState) {
	fmt.Println(strings.Repeat("-", 60))
	renderLookup(vs, bidentry.FieldItem, "Item    ", vs.Item)
	renderLookup(vs, bidentry.FieldBidder, "Bidder  ", vs.Bidder)
	renderInput(vs, bidentry.FieldPrice, "Price   ", vs.Price)
	renderInput(vs, bidentry.FieldQuantity, "Quantity", vs.Quantity)

	fmt.Printf("[%s]", vs.SaveLabel)
	if vs.CanDelete {
		fmt.Printf("  [DELETE BID]")
	}
	if vs.ConfirmingDelete {
		fmt.Printf("  delete this bid? /yes or /no")
	}
	fmt.Println()

	if n := vs.Notice; n != nil {
		fmt.Printf("!! %s: %s", n.Kind, n.Text)
		if n.Blocking {
			fmt.Printf(" (/ok to dismiss)")
		}
		fmt.Println()
	}

	for _, b := range vs.Recent {
		fmt.Printf("   recent: bid %d bidder %d %s x%d\n", b.BidID, b.BidderID, b.WinningPrice.StringFixed(2), b.QuantityWon)
	}
	fmt.Printf("total %s — %d/%d items (%.1f%%)\n",
		vs.Summary.RunningTotal.StringFixed(2), vs.Summary.ProcessedCount,
		vs.Summary.TotalItems, vs.Summary.PercentComplete)
}

func renderLookup(vs bidentry.ViewState, f bidentry.Field, label string, view bidentry.LookupView) {
	fmt.Printf("%s %s %-15q", cursor(vs, f), label, view.Text)
	if view.Error != "" {
		fmt.Printf("  << %s", view.Error)
	}
	fmt.Println()
	switch view.Phase {
	case bidentry.PhaseLooking, bidentry.PhaseDebouncing:
		fmt.Println("      ...")
	case bidentry.PhaseNoResults:
		fmt.Println("      (no matches)")
	case bidentry.PhaseResults:
		for i, row := range view.Rows {
			marker := " "
			if i == view.Highlighted {
				marker = ">"
			}
			fmt.Printf("    %s %d: %s  %s\n", marker, row.ID, row.Label, row.Detail)
		}
	}
}

func renderInput(vs bidentry.ViewState, f bidentry.Field, label string, view bidentry.InputView) {
	fmt.Printf("%s %s %-15q", cursor(vs, f), label, view.Text)
	if view.Error != "" {
		fmt.Printf("  << %s", view.Error)
	}
	fmt.Println()
}

func cursor(vs bidentry.ViewState, f bidentry.Field) string {
	if vs.Focus == f {
		return ">"
	}
	return " "
}
