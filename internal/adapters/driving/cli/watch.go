package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/logger"
)

// watchSettleDelay is how long a file must stay unchanged before it is
// ingested. Editors and copies emit several writes per file.
var watchSettleDelay = 500 * time.Millisecond

var watchFlags uploadFlags

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory and ingests every supported file (.pdf, .docx, .txt)
that is created or written there. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addUploadFlags(watchCmd, &watchFlags)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return watchDirectory(cmd.Context(), cmd, args[0], watchFlags)
}

// watchDirectory ingests files written to dir until ctx is done.
func watchDirectory(ctx context.Context, cmd *cobra.Command, dir string, f uploadFlags) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok {
			if t.Stop() {
				t.Reset(watchSettleDelay)
				return
			}
		}
		wg.Add(1)
		pending[path] = time.AfterFunc(watchSettleDelay, func() {
			defer wg.Done()
			mu.Lock()
			delete(pending, path)
			mu.Unlock()

			if err := ingestFile(ctx, cmd, path, f); err != nil {
				cmd.PrintErrf("  %s: %s (%v)\n", path, domain.ErrorCode(err), err)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if _, err := domain.FileTypeFromName(event.Name); err != nil {
				logger.Debug("ignoring %s", event.Name)
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			logger.Debug("change detected: %s", filepath.Base(event.Name))
			schedule(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}
