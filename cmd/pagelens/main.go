// Command pagelens is a diagnostic CLI for the perception pipeline: it loads
// a page in Chrome, runs one extraction pass, and prints the resulting tree
// and handle count.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"

	"github.com/neboloop/pagelens/internal/browser"
	"github.com/neboloop/pagelens/internal/config"
)

var (
	flagConfig      string
	flagRemote      string
	flagNoOcclusion bool
	flagAttrs       []string
	flagTimeout     time.Duration
	flagHeadless    bool
	flagVerbose     bool
)

func main() {
	root := &cobra.Command{
		Use:   "pagelens",
		Short: "Page perception for browser automation",
		Long:  "pagelens turns a loaded web page into a compact textual tree and a handle map for automated actors.",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	extract := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract one page and print its tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extract.Flags().StringVar(&flagRemote, "remote", "", "attach to a running browser's CDP websocket URL")
	extract.Flags().BoolVar(&flagNoOcclusion, "no-occlusion", false, "disable paint-order occlusion filtering")
	extract.Flags().StringSliceVar(&flagAttrs, "attrs", nil, "attribute allow-list override")
	extract.Flags().DurationVar(&flagTimeout, "timeout", 60*time.Second, "overall timeout")
	extract.Flags().BoolVar(&flagHeadless, "headless", true, "run the launched browser headlessly")
	root.AddCommand(extract)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.Options()
	if flagNoOcclusion {
		opts.OcclusionFilter = false
	}
	if len(flagAttrs) > 0 {
		opts.IncludeAttributes = flagAttrs
	}
	remote := cfg.RemoteURL
	if flagRemote != "" {
		remote = flagRemote
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	ctx, cleanup := browserContext(ctx, remote)
	defer cleanup()

	if err := chromedp.Run(ctx, chromedp.Navigate(args[0])); err != nil {
		return fmt.Errorf("navigate failed: %w", err)
	}

	page := browser.NewPage(browser.NewChromeClient(), opts)
	extraction, err := page.Perceive(ctx)
	if err != nil {
		return err
	}

	fmt.Println(extraction.Tree)
	fmt.Printf("\n%d interactive handles, %d nodes built (pass %s)\n",
		extraction.Stats.Interactive, extraction.Stats.BuiltNodes, extraction.PassID)
	return nil
}

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Config{}, nil
	}
	return config.Load(flagConfig)
}

// browserContext attaches to a remote browser when a CDP URL is given, or
// launches a local one.
func browserContext(ctx context.Context, remote string) (context.Context, context.CancelFunc) {
	if remote != "" {
		allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, remote)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)
		return browserCtx, func() {
			browserCancel()
			allocCancel()
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", flagHeadless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}
