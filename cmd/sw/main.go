package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/beevik/etree"

	"github.com/vanderheijden86/slidewalk/pkg/address"
	"github.com/vanderheijden86/slidewalk/pkg/build"
	"github.com/vanderheijden86/slidewalk/pkg/config"
	"github.com/vanderheijden86/slidewalk/pkg/deck"
	"github.com/vanderheijden86/slidewalk/pkg/ui"
	"github.com/vanderheijden86/slidewalk/pkg/version"
	"github.com/vanderheijden86/slidewalk/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	deckName := flag.String("deck", "", "Open a named deck from the config file")
	hash := flag.String("hash", "", "Start at the given address (e.g. '#2' or '#intro@recap')")
	addresses := flag.Bool("addresses", false, "Print every address the deck resolves and exit")
	annotate := flag.Bool("annotate", false, "Write build annotations back into the SVG files and exit")
	mv := flag.Bool("mv", false, "Move a slide file to a deck position and exit: sw -mv <file> <position>")
	noWatch := flag.Bool("no-watch", false, "Disable live reload on file changes")
	noNotes := flag.Bool("no-notes", false, "Hide the speaker notes pane")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: sw [options] [deck-directory]")
		fmt.Println("\nA terminal viewer for slidie SVG slide decks.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("sw %s\n", version.Version)
		os.Exit(0)
	}

	if *mv {
		if flag.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "Usage: sw -mv <slide-file> <position>")
			os.Exit(2)
		}
		position, perr := strconv.Atoi(flag.Arg(1))
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid position %q\n", flag.Arg(1))
			os.Exit(2)
		}
		if err := mvSlide(flag.Arg(0), position); err != nil {
			fmt.Fprintf(os.Stderr, "Error moving slide: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}

	dir, err := resolveDeckDir(cfg, *deckName, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	d, err := deck.Load(context.Background(), dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading deck from %s: %v\n", dir, err)
		os.Exit(1)
	}

	ix, err := build.NewIndex(d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error indexing deck: %v\n", err)
		os.Exit(1)
	}

	if *addresses {
		codec := address.NewCodec(ix)
		for _, addr := range codec.EnumerateAddresses() {
			fmt.Println(addr)
		}
		os.Exit(0)
	}

	if *annotate {
		if err := annotateDeck(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error annotating deck: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	uiCfg := cfg.UI
	if *hash != "" {
		uiCfg.InitialHash = *hash
	}
	if *noNotes {
		uiCfg.ShowNotes = false
	}

	m := ui.NewModel(d, ix, uiCfg)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	if !*noWatch && !cfg.Watch.Disabled {
		w, werr := watcher.New(dir,
			watcher.WithDebounceDuration(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
			watcher.WithPollInterval(time.Duration(cfg.Watch.PollMs)*time.Millisecond),
			watcher.WithOnChange(func() {
				reloaded, lerr := deck.Load(context.Background(), dir)
				if lerr != nil {
					p.Send(ui.ReloadFailedMsg{Err: lerr})
					return
				}
				p.Send(ui.DeckReloadedMsg{Deck: reloaded})
			}),
			watcher.WithOnError(func(werr error) {
				p.Send(ui.ReloadFailedMsg{Err: werr})
			}),
		)
		if werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload unavailable: %v\n", werr)
		} else if serr := w.Start(); serr != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload unavailable: %v\n", serr)
		} else {
			defer w.Stop()
		}
	}

	if err := runTUIProgram(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

// resolveDeckDir picks the deck directory: an explicit argument wins,
// then a named deck from the config file, then the working directory.
func resolveDeckDir(cfg config.Config, name, arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if name != "" {
		entry := cfg.FindDeck(name)
		if entry == nil {
			return "", fmt.Errorf("no deck named %q in %s", name, config.ConfigPath())
		}
		return entry.ResolvedPath(), nil
	}
	return ".", nil
}

// annotateDeck rewrites every slide file in place with its computed
// build annotations attached.
func annotateDeck(dir string) error {
	files, err := deck.Scan(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		doc := etree.NewDocument()
		if rerr := doc.ReadFromFile(path); rerr != nil {
			return fmt.Errorf("%s: %w", path, rerr)
		}
		if aerr := deck.Annotate(doc); aerr != nil {
			return fmt.Errorf("%s: %w", path, aerr)
		}
		if werr := doc.WriteToFile(path); werr != nil {
			return fmt.Errorf("%s: %w", path, werr)
		}
		fmt.Printf("annotated %s\n", path)
	}
	return nil
}

// mvSlide renames slide files so the given file sits at the given
// one-based position in the deck order. Neighbouring files are
// renumbered only when the numbering leaves no gap at the target.
func mvSlide(path string, position int) error {
	dir := filepath.Dir(path)
	files, err := deck.Scan(dir)
	if err != nil {
		return err
	}

	target := filepath.Base(path)
	byNumber := make(map[int]string)
	var existing []int
	for _, f := range files {
		if filepath.Base(f) == target {
			continue
		}
		n, perr := deck.ExtractPrefix(f)
		if perr != nil {
			return perr
		}
		byNumber[n] = f
		existing = append(existing, n)
	}

	if position < 1 || position > len(existing)+1 {
		return fmt.Errorf("position %d out of range 1..%d", position, len(existing)+1)
	}

	number, renumberings, err := deck.InsertNumber(existing, position-1, false)
	if err != nil {
		return err
	}

	for _, r := range renumberings {
		from := byNumber[r.From]
		to, rerr := deck.ReplacePrefix(from, r.To, prefixDigits(from))
		if rerr != nil {
			return rerr
		}
		if oerr := os.Rename(from, to); oerr != nil {
			return oerr
		}
		fmt.Printf("renamed %s -> %s\n", from, to)
	}

	dst, err := deck.ReplacePrefix(path, number, prefixDigits(path))
	if errors.Is(err, deck.ErrNoPrefix) {
		// A file without a prefix is being inserted rather than moved.
		dst = filepath.Join(dir, fmt.Sprintf("%03d_%s", number, target))
		err = nil
	}
	if err != nil {
		return err
	}
	if dst == path {
		return nil
	}
	if err := os.Rename(path, dst); err != nil {
		return err
	}
	fmt.Printf("renamed %s -> %s\n", path, dst)
	return nil
}

// prefixDigits returns the width of a filename's numeric prefix, for
// preserving zero padding across renames.
func prefixDigits(path string) int {
	base := filepath.Base(path)
	n := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			break
		}
		n++
	}
	return n
}

func runTUIProgram(p *tea.Program) error {
	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set SW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil
		}
	}
	return err
}
