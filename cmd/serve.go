package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/madelynarsenault/portfolio/internal/logger"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and watches for changes",
	Long: `The serve command performs an initial build of your site, then starts a local
web server to serve your output directory. It also watches your content, layouts,
and static directories for changes and automatically rebuilds the site.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.Get()

		b, err := newBuilder(appConfig, siteData)
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.Build(ctx); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		for _, name := range []string{conventionalContentDir, conventionalLayoutsDir, conventionalStaticDir} {
			watchTree(watcher, b.dir(name))
		}
		go watchLoop(ctx, watcher, b)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", serverPort),
			Handler:           devHandler(appConfig.OutputDir),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("dir", appConfig.OutputDir).Msgf("serving site on http://localhost%s", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start HTTP server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// watchTree adds root and all of its subdirectories; fsnotify is not
// recursive.
func watchTree(watcher *fsnotify.Watcher, root string) {
	log := logger.Get()
	if !isDir(root) {
		log.Debug().Str("dir", root).Msg("directory not found, not watching")
		return
	}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("error walking directory")
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to watch")
			}
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("dir", root).Msg("error during initial directory walk")
	}
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, b *builder) {
	log := logger.Get()
	var buildTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if buildTimer != nil {
				buildTimer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				watchTree(watcher, event.Name)
			}

			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, func() {
				log.Info().Msg("rebuilding site due to changes")
				if err := b.Build(ctx); err != nil {
					log.Error().Err(err).Msg("rebuild failed")
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// devHandler serves outputDir without caching and without directory
// listings.
func devHandler(outputDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(outputDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(r.URL.Path), "index.html")); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fileServer.ServeHTTP(w, r)
	})
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
