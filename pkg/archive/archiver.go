// Package archive turns resolved media descriptors into a single zip bundle:
// the media binaries, a metadata.txt sidecar, and an InternetShortcut entry
// pointing back at the tweet.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"

	"tweetarchiver/internal/fetch"
	"tweetarchiver/pkg/logger"
	"tweetarchiver/pkg/twitter"
)

// Result summarizes one archival operation. An operation with dropped media
// items still counts as completed; droppage is visible in the counts.
type Result struct {
	ArchiveName   string
	SavedPath     string
	MediaTotal    int
	MediaArchived int
}

// Archiver fetches media binaries and assembles bundles
type Archiver struct {
	client  fetch.MediaDownloader
	saver   Saver
	workers int
	logger  logger.Logger
}

// New creates an Archiver. workers bounds the concurrent media fetches.
func New(client fetch.MediaDownloader, saver Saver, workers int, log logger.Logger) *Archiver {
	if log == nil {
		log = logger.GetLogger()
	}
	if workers <= 0 {
		workers = 1
	}

	return &Archiver{
		client:  client,
		saver:   saver,
		workers: workers,
		logger:  log,
	}
}

// Archive fetches every media binary, packs the bundle, and hands it to the
// saver. A failed media fetch drops that item and continues; entry indices
// follow source-list position, so drops leave gaps rather than renumbering
// siblings. The shortcut entry is written regardless of media outcomes.
func (a *Archiver) Archive(context PostContext, media []twitter.Media) (*Result, error) {
	a.logger.InfoWithFields("archiving tweet", map[string]interface{}{
		"tweet_id":    context.TweetID,
		"author":      context.AuthorHandle,
		"media_count": len(media),
	})

	binaries := a.fetchAll(media)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	metadata := NewMetadata(context)
	archived := 0

	for i, descriptor := range media {
		data := binaries[i]
		if data == nil {
			// Fetch failed; already logged by the pool. The item is
			// dropped without renumbering the rest.
			continue
		}

		name := context.MediaName(i+1, descriptor.Ext())
		if err := writeEntry(zw, name, data); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", name, err)
		}

		metadata.AddMediaURL(descriptor.URL)
		archived++
	}

	if err := writeEntry(zw, "metadata.txt", []byte(metadata.Render())); err != nil {
		return nil, fmt.Errorf("failed to write metadata entry: %w", err)
	}

	shortcut := fmt.Sprintf("[InternetShortcut]\nURL=%s", context.TweetURL)
	if err := writeEntry(zw, context.ShortcutName(), []byte(shortcut)); err != nil {
		return nil, fmt.Errorf("failed to write shortcut entry: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	savedPath, err := a.saver.Save(context.ArchiveName(), buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to save archive: %w", err)
	}

	a.logger.InfoWithFields("archive saved", map[string]interface{}{
		"tweet_id":       context.TweetID,
		"archive":        context.ArchiveName(),
		"path":           savedPath,
		"media_total":    len(media),
		"media_archived": archived,
	})

	return &Result{
		ArchiveName:   context.ArchiveName(),
		SavedPath:     savedPath,
		MediaTotal:    len(media),
		MediaArchived: archived,
	}, nil
}

// fetchAll downloads every descriptor's binary through the worker pool and
// returns them indexed by source position. Failed fetches leave a nil slot.
func (a *Archiver) fetchAll(media []twitter.Media) [][]byte {
	binaries := make([][]byte, len(media))
	if len(media) == 0 {
		return binaries
	}

	pool := fetch.NewPool(a.workers, a.client, a.logger)
	pool.Start()

	go func() {
		for i, descriptor := range media {
			if err := pool.Submit(fetch.Job{Index: i, URL: descriptor.URL}); err != nil {
				a.logger.WithError(err).Warn("failed to submit fetch job")
			}
		}
		pool.Stop()
	}()

	for result := range pool.Results() {
		if result.Err != nil {
			continue
		}
		binaries[result.Job.Index] = result.Data
	}

	return binaries
}

// writeEntry adds one file to the zip being built
func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
