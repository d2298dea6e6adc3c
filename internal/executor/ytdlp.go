// Package executor implements the download executor on top of yt-dlp. Each
// attempt runs one yt-dlp invocation authenticated with the session's cookie
// file; failures come back classified in the result, never as panics or
// propagated errors.
package executor

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/ytget/yt-harvester/internal/scheduler"
)

// progressLogInterval throttles progress callbacks from yt-dlp.
const progressLogInterval = 2 * time.Second

// YTDLP downloads content via the yt-dlp tool. Safe for concurrent use with
// different credentials; yt-dlp processes are independent.
type YTDLP struct {
	downloadDir    string
	outputTemplate string
	cookieMaxAge   time.Duration
	logger         *zap.Logger
}

// NewYTDLP creates an executor writing artifacts into downloadDir using the
// given yt-dlp output template.
func NewYTDLP(downloadDir, outputTemplate string, cookieMaxAge time.Duration, logger *zap.Logger) *YTDLP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLP{
		downloadDir:    downloadDir,
		outputTemplate: outputTemplate,
		cookieMaxAge:   cookieMaxAge,
		logger:         logger,
	}
}

// Attempt performs one download with the given credential.
func (e *YTDLP) Attempt(ctx context.Context, req scheduler.Request) scheduler.Result {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Cookies(req.Credential).
		Output(e.downloadDir + "/" + e.outputTemplate)

	dl.ProgressFunc(progressLogInterval, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes > 0 {
			e.logger.Debug("download progress",
				zap.String("item", req.ContentID),
				zap.Int64("downloaded_bytes", int64(update.DownloadedBytes)),
				zap.Int64("total_bytes", int64(update.TotalBytes)),
			)
		}
	})

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		kind := Classify(err.Error())
		e.logger.Debug("attempt failed",
			zap.String("item", req.ContentID),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return scheduler.Result{Success: false, Kind: kind, Message: err.Error()}
	}

	artifact := ""
	if result != nil {
		if info, err := result.GetExtractedInfo(); err == nil && len(info) > 0 && info[0].Filename != nil {
			artifact = *info[0].Filename
		}
	}

	return scheduler.Result{Success: true, ArtifactPath: artifact}
}

// Validate performs the one-shot credential check before scheduling begins:
// the cookie file must exist, be non-empty, carry YouTube cookies, and not be
// older than the staleness cutoff. Stale cookies are the dominant cause of
// mid-run auth failures, so they are caught here instead.
func (e *YTDLP) Validate(_ context.Context, credential string) bool {
	info, err := os.Stat(credential)
	if err != nil {
		e.logger.Warn("cookie file unreadable", zap.String("credential", credential), zap.Error(err))
		return false
	}
	if info.Size() == 0 {
		e.logger.Warn("cookie file empty", zap.String("credential", credential))
		return false
	}
	if e.cookieMaxAge > 0 && time.Since(info.ModTime()) > e.cookieMaxAge {
		e.logger.Warn("cookie file stale",
			zap.String("credential", credential),
			zap.Time("modified", info.ModTime()),
		)
		return false
	}

	data, err := os.ReadFile(credential)
	if err != nil {
		e.logger.Warn("cookie file unreadable", zap.String("credential", credential), zap.Error(err))
		return false
	}
	if !strings.Contains(string(data), "youtube.com") {
		e.logger.Warn("cookie file has no youtube.com entries", zap.String("credential", credential))
		return false
	}
	return true
}
