// Package main implements the COBRA evidence collector: it enumerates known
// wallet and credential locations, optionally deep-scans the selected volumes,
// and copies every queued artefact to the destination with hash verification
// and a signed-off manifest.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ilexum-group/cobra/internal/capacity"
	"github.com/ilexum-group/cobra/internal/config"
	"github.com/ilexum-group/cobra/internal/engine"
	"github.com/ilexum-group/cobra/internal/exclusion"
	"github.com/ilexum-group/cobra/internal/locations"
	"github.com/ilexum-group/cobra/internal/manifest"
	"github.com/ilexum-group/cobra/internal/queue"
	"github.com/ilexum-group/cobra/internal/scanner"
	"github.com/ilexum-group/cobra/internal/session"
	"github.com/ilexum-group/cobra/internal/utils"
	"github.com/ilexum-group/cobra/pkg/models"
)

const version = "1.0.0"

// logTailLines is how many trailing log lines the manifest embeds.
const logTailLines = 50

func main() {
	os.Exit(run())
}

func run() int {
	if err := utils.InitDefaultLogger(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		return 1
	}

	cfg, err := config.LoadFromFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		utils.LogError("Invalid configuration", map[string]string{"error": err.Error()})
		return 1
	}

	utils.LogInfo("Starting COBRA collector", map[string]string{
		"version": version,
		"drives":  strings.Join(cfg.Drives, ","),
	})

	stdin := bufio.NewReader(os.Stdin)

	dest := cfg.Destination
	var free uint64
	if dest == "" {
		dest, free, err = promptDestination(stdin)
	} else {
		free, err = validateDestination(dest)
	}
	if err != nil {
		utils.LogError("No usable destination", map[string]string{"error": err.Error()})
		return 1
	}
	utils.LogInfo("Destination selected", map[string]string{
		"destination": dest,
		"free":        humanize.Bytes(free),
	})

	s, err := session.New(dest, cfg.Drives, cfg.Flags())
	if err != nil {
		utils.LogError("Failed to create session", map[string]string{"error": err.Error()})
		return 1
	}
	if err := utils.DefaultLogger.AttachFile(s.LogPath); err != nil {
		utils.LogError("Failed to open session log", map[string]string{"error": err.Error()})
		return 1
	}
	defer func() { _ = utils.DefaultLogger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, cfg, s, free, stdin)
}

// execute runs the post-setup flow: queue build, capacity gate, dry-run
// short-circuit, operator confirmation, collection, and manifest persistence.
// Split from run so the flow works against any prompt reader and an already
// created session.
func execute(ctx context.Context, cfg *config.Config, s *session.Session, free uint64, in *bufio.Reader) int {
	custody := models.NewCustodyRecord(version, hostname(), username())
	utils.LogInfo("Session created", map[string]string{
		"session": s.ID,
		"custody": custody.ID,
	})

	q := queue.New()
	known := locations.Enumerate(q, cfg.IncludeDPAPI)
	utils.LogInfo("Known-location sweep complete", map[string]string{
		"queued": strconv.Itoa(known),
	})

	if !cfg.Quick {
		sc := scanner.New(exclusion.DefaultFilter(), q)
		if err := sc.Scan(ctx, cfg.Drives); err != nil {
			utils.LogError("Deep scan aborted", map[string]string{"error": err.Error()})
			return 1
		}
	}

	estimate := q.EstimateTotalBytes()
	utils.LogInfo("Queue built", map[string]string{
		"items":    strconv.Itoa(q.Len()),
		"estimate": humanize.Bytes(estimate),
	})

	if _, err := capacity.Check(estimate, free); err != nil {
		utils.LogError("Insufficient destination capacity", map[string]string{"error": err.Error()})
		return 1
	}

	printPreview(q)

	if cfg.DryRun {
		utils.LogInfo("Dry run complete, nothing copied", map[string]string{
			"items":    strconv.Itoa(q.Len()),
			"estimate": humanize.Bytes(estimate),
		})
		return 0
	}

	if !cfg.Unattended {
		ok, err := confirm(in, fmt.Sprintf("Copy %d items (%s) to %s? [y/N]: ",
			q.Len(), humanize.Bytes(estimate), s.Root))
		if err != nil || !ok {
			utils.LogInfo("Collection declined by operator", nil)
			return 0
		}
	}

	eng := engine.New(s.ArtifactRoot, engine.Options{
		PreserveHierarchy: cfg.PreserveHierarchy,
		Verify:            !cfg.NoVerify,
		OnProgress:        printProgress,
	})
	stats, entries := eng.Run(q.Paths())
	fmt.Println()

	custody.Finalize(len(entries), stats.BytesCopied)

	m := &models.Manifest{
		Session: s.Info(),
		Custody: custody,
		Stats:   stats,
		Entries: entries,
		LogTail: utils.DefaultLogger.Tail(logTailLines),
	}
	if err := manifest.Write(s.ManifestPath, m); err != nil {
		utils.LogError("Failed to write manifest", map[string]string{"error": err.Error()})
		return 1
	}
	if err := manifest.WriteCatalog(s.CatalogPath, m); err != nil {
		utils.LogError("Failed to write catalog", map[string]string{"error": err.Error()})
		return 1
	}

	utils.LogInfo("Collection complete", map[string]string{
		"session": s.ID,
		"copied":  strconv.Itoa(stats.FilesCopied),
		"failed":  strconv.Itoa(stats.Failures),
		"skipped": strconv.Itoa(stats.Skips),
		"bytes":   humanize.Bytes(stats.BytesCopied),
	})
	return 0
}

// validateDestination checks that the destination is an accessible directory
// with at least the capacity reserve free, and returns its free bytes.
func validateDestination(dest string) (uint64, error) {
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		return 0, fmt.Errorf("not an accessible directory: %s", dest)
	}
	free, err := capacity.FreeBytes(dest)
	if err != nil {
		return 0, err
	}
	if free < capacity.ReserveBytes {
		return 0, fmt.Errorf("destination %s has only %s free, need at least %s",
			dest, humanize.Bytes(free), humanize.Bytes(capacity.ReserveBytes))
	}
	return free, nil
}

// promptDestination asks the operator for the destination drive or folder,
// reprompting until a usable one is named or input ends.
func promptDestination(r *bufio.Reader) (string, uint64, error) {
	for {
		fmt.Print("Destination drive or folder for collected evidence: ")
		line, err := r.ReadString('\n')
		if err != nil {
			return "", 0, err
		}
		dest := strings.TrimSpace(line)
		if dest == "" {
			continue
		}
		free, err := validateDestination(dest)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return dest, free, nil
	}
}

// confirm reads a single y/n answer; anything but an explicit yes declines.
func confirm(r *bufio.Reader, prompt string) (bool, error) {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// printPreview shows a truncated view of the queue before the copy phase.
func printPreview(q *queue.Queue) {
	const maxEntries, treeDepth = 20, 4
	preview := q.Preview(maxEntries, treeDepth)
	if len(preview) == 0 {
		fmt.Println("Queue is empty, nothing to collect.")
		return
	}
	fmt.Println("Queued artefacts:")
	for _, p := range preview {
		fmt.Println("  " + p)
	}
	if q.Len() > len(preview) {
		fmt.Printf("  ... and %d more\n", q.Len()-len(preview))
	}
}

// printProgress renders the throttled copy-phase progress on one console line.
func printProgress(p models.Progress) {
	fmt.Printf("\rCopying %d/%d (%d%%), elapsed %s, remaining %s   ",
		p.Processed, p.Total, p.Percent,
		p.Elapsed.Round(time.Second), p.Remaining.Round(time.Second))
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}

func username() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
