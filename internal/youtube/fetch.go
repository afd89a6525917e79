package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"grabbit/internal/core"
)

// Audio quality ladder: tier name to target bitrate in bits per second.
// Unrecognized tiers fall back to the best available stream.
var audioBitrateLadder = map[string]int{
	"128k": 128_000,
	"192k": 192_000,
	"320k": 320_000,
}

// Video quality ladder: recognized progressive resolution tiers.
var videoQualityLadder = map[string]struct{}{
	"360p":  {},
	"480p":  {},
	"720p":  {},
	"1080p": {},
}

// Fetcher downloads audio and video streams. Every fetch verifies the
// artifact against the configured size cap before returning it; an
// oversized file is deleted here and never reaches delivery.
type Fetcher struct {
	config *core.DownloadConfig
	logger *zap.Logger
	client youtube.Client
}

func NewFetcher(config *core.DownloadConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		config: config,
		logger: logger,
	}
}

// VideoInfo resolves descriptive metadata for a video id.
func (f *Fetcher) VideoInfo(ctx context.Context, id string) (*core.VideoInfo, error) {
	video, err := f.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, f.mapError("get video", err)
	}
	return &core.VideoInfo{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
	}, nil
}

// FetchAudio downloads the audio stream closest to the requested bitrate
// tier.
func (f *Fetcher) FetchAudio(ctx context.Context, id, quality string, progress core.ProgressFunc) (*core.Artifact, error) {
	video, err := f.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, f.mapError("get video", err)
	}

	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		formats = video.Formats.WithAudioChannels()
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no audio formats for %s: %w", id, core.ErrNotFound)
	}

	format := selectAudioFormat(formats, quality)
	return f.download(ctx, video, format, core.MediaAudio, progress)
}

// FetchVideo downloads a progressive stream at the requested resolution
// tier.
func (f *Fetcher) FetchVideo(ctx context.Context, id, quality string, progress core.ProgressFunc) (*core.Artifact, error) {
	video, err := f.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, f.mapError("get video", err)
	}

	// Progressive formats carry audio; video-only DASH streams would
	// need muxing.
	formats := video.Formats.Type("video").WithAudioChannels()
	if len(formats) == 0 {
		return nil, fmt.Errorf("no progressive video formats for %s: %w", id, core.ErrNotFound)
	}

	format := selectVideoFormat(formats, quality)
	return f.download(ctx, video, format, core.MediaVideo, progress)
}

func (f *Fetcher) download(ctx context.Context, video *youtube.Video, format *youtube.Format, kind core.MediaKind, progress core.ProgressFunc) (*core.Artifact, error) {
	stream, size, err := f.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, f.mapError("get stream", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	// Abort early when the platform already reports an oversized stream.
	if size > 0 && size > f.config.MaxFileSizeBytes {
		return nil, &core.TooLargeError{SizeBytes: size, LimitBytes: f.config.MaxFileSizeBytes}
	}

	if err := os.MkdirAll(f.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	file, err := os.CreateTemp(f.config.Dir, "grab-*."+formatExtension(format))
	if err != nil {
		return nil, fmt.Errorf("create download file: %w", err)
	}
	path := file.Name()

	writer := io.Writer(file)
	if progress != nil {
		writer = io.MultiWriter(file, &progressWriter{total: size, notify: progress})
	}

	_, copyErr := io.Copy(writer, stream)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		f.logger.Warn("Stream download failed",
			zap.String("videoID", video.ID),
			zap.Error(errors.Join(copyErr, closeErr)))
		return nil, fmt.Errorf("download stream: %w", core.ErrUnavailable)
	}

	written, err := verifySize(path, f.config.MaxFileSizeBytes)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Stream downloaded",
		zap.String("videoID", video.ID),
		zap.String("path", path),
		zap.Int64("sizeBytes", written),
		zap.String("quality", format.QualityLabel))

	return &core.Artifact{LocalPath: path, SizeBytes: written, Kind: kind}, nil
}

// verifySize checks a downloaded file against the cap before it can be
// handed to delivery. Oversized files are removed as a side effect of
// signaling, so they never leak.
func verifySize(path string, limit int64) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		// Error exits must not leak a partial download.
		_ = os.Remove(path)
		return 0, fmt.Errorf("stat downloaded file: %w", err)
	}
	if info.Size() > limit {
		_ = os.Remove(path)
		return 0, &core.TooLargeError{SizeBytes: info.Size(), LimitBytes: limit}
	}
	return info.Size(), nil
}

// selectAudioFormat picks the stream with bitrate closest to the
// requested tier, or the highest bitrate for unknown tiers.
func selectAudioFormat(formats youtube.FormatList, quality string) *youtube.Format {
	target, known := audioBitrateLadder[quality]
	best := &formats[0]
	for i := 1; i < len(formats); i++ {
		candidate := &formats[i]
		if known {
			if abs(candidate.Bitrate-target) < abs(best.Bitrate-target) {
				best = candidate
			}
		} else if candidate.Bitrate > best.Bitrate {
			best = candidate
		}
	}
	return best
}

// selectVideoFormat picks the progressive stream matching the requested
// resolution label, or the highest resolution for unknown tiers.
func selectVideoFormat(formats youtube.FormatList, quality string) *youtube.Format {
	if _, known := videoQualityLadder[quality]; known {
		for i := range formats {
			if strings.HasPrefix(formats[i].QualityLabel, quality) {
				return &formats[i]
			}
		}
	}
	best := &formats[0]
	for i := 1; i < len(formats); i++ {
		if formats[i].Height > best.Height {
			best = &formats[i]
		}
	}
	return best
}

func formatExtension(format *youtube.Format) string {
	mimeType := strings.SplitN(format.MimeType, ";", 2)[0]
	parts := strings.SplitN(mimeType, "/", 2)
	if len(parts) != 2 {
		return "bin"
	}
	switch {
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return "m4a"
	case strings.HasPrefix(mimeType, "audio/webm"):
		return "weba"
	default:
		return parts[1]
	}
}

func (f *Fetcher) mapError(op string, err error) error {
	var playability *youtube.ErrPlayabiltyStatus
	if errors.As(err, &playability) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	f.logger.Warn("YouTube request failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, core.ErrUnavailable)
}

// progressWriter forwards byte counts to an optional sink. Sink failures
// must never abort a download, so notifications are fire and forget.
type progressWriter struct {
	written int64
	total   int64
	notify  core.ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	w.notify(w.written, w.total)
	return len(p), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
