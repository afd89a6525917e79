package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grabbit/pkg/linkref"
	"grabbit/pkg/match"
)

// Pipeline runs the five resolution stages for one user action:
// classify, resolve, search, select, fetch. Stages are strictly
// sequential within a single invocation; independent users' invocations
// may run concurrently and never share state except the session store.
type Pipeline struct {
	config    *Config
	logger    *zap.Logger
	formatter *Formatter
	metadata  MetadataProvider
	searcher  MediaSearcher
	fetcher   MediaFetcher
	social    SocialProvider
	sessions  *SessionStore
	metrics   Metrics
}

// NewPipeline assembles the pipeline. metrics may be nil.
func NewPipeline(
	config *Config,
	logger *zap.Logger,
	formatter *Formatter,
	metadata MetadataProvider,
	searcher MediaSearcher,
	fetcher MediaFetcher,
	social SocialProvider,
	sessions *SessionStore,
	metrics Metrics,
) *Pipeline {
	return &Pipeline{
		config:    config,
		logger:    logger,
		formatter: formatter,
		metadata:  metadata,
		searcher:  searcher,
		fetcher:   fetcher,
		social:    social,
		sessions:  sessions,
		metrics:   metrics,
	}
}

// Formatter exposes the formatter for the delivery layer's error texts.
func (p *Pipeline) Formatter() *Formatter {
	return p.formatter
}

// SessionCount returns the number of active sessions.
func (p *Pipeline) SessionCount() int {
	return p.sessions.Len()
}

// HandleLink classifies the input, resolves metadata on the owning
// platform and opens a session awaiting the user's follow-up choice.
// A new link from the same user replaces any previous session.
func (p *Pipeline) HandleLink(ctx context.Context, userID int64, raw string) (*Outcome, error) {
	start := time.Now()

	ref, ok := linkref.Classify(raw)
	if !ok {
		p.recordLink("unknown", "rejected")
		return nil, ErrUnknownLink
	}

	p.logger.Info("link classified",
		zap.Int64("user_id", userID),
		zap.String("platform", ref.Platform.String()),
		zap.String("kind", ref.Kind.String()))

	session := &Session{
		UserID:    userID,
		Ref:       ref,
		RawText:   raw,
		CreatedAt: time.Now(),
	}

	outcome, err := p.resolve(ctx, session)
	if err != nil {
		p.recordLink(ref.Platform.String(), "failed")
		return nil, p.sanitize("resolve", err)
	}

	p.sessions.Put(session)
	p.recordLink(ref.Platform.String(), "resolved")
	p.recordStage("resolve", time.Since(start))
	p.updateSessionGauge()
	return outcome, nil
}

// resolve dispatches on the platform tag and fills the session with the
// intermediate metadata the quality step needs.
func (p *Pipeline) resolve(ctx context.Context, session *Session) (*Outcome, error) {
	ref := session.Ref
	switch ref.Platform {
	case linkref.PlatformSpotify:
		if ref.IsCollection() {
			collection, err := p.metadata.Collection(ctx, ref.Kind, ref.NativeID)
			if err != nil {
				return nil, err
			}
			return &Outcome{
				Info:   p.formatter.CollectionCard(collection) + "\n\n" + p.localize("note.collection_download"),
				Prompt: PromptCollectionInfo,
			}, nil
		}
		track, err := p.metadata.Track(ctx, ref.NativeID)
		if err != nil {
			return nil, err
		}
		session.Track = track
		return &Outcome{
			Info:   p.formatter.TrackCard(track) + "\n\n" + p.localize("note.choose_quality"),
			Prompt: PromptTrackActions,
			Track:  track,
		}, nil

	case linkref.PlatformYouTube:
		video, err := p.fetcher.VideoInfo(ctx, ref.NativeID)
		if err != nil {
			return nil, err
		}
		session.Video = video
		return &Outcome{
			Info:   p.formatter.VideoCard(video) + "\n\n" + p.localize("note.choose_format"),
			Prompt: PromptFormatChoice,
			Video:  video,
		}, nil

	case linkref.PlatformInstagram:
		if ref.Kind == linkref.KindStory {
			// The story URL carries owner and item id; no resolver call.
			owner, itemID := ref.StoryParts()
			return &Outcome{
				Info:   p.formatter.StoryCard(owner, itemID),
				Prompt: PromptStoryActions,
			}, nil
		}
		post, err := p.social.PostInfo(ctx, ref.NativeID)
		if err != nil {
			return nil, err
		}
		session.Post = post
		return &Outcome{
			Info:   p.formatter.PostCard(post),
			Prompt: PromptPostActions,
		}, nil

	default:
		return nil, ErrUnknownLink
	}
}

// SelectQuality runs the remaining stages for the user's active session:
// cross-platform search and best-match selection where needed, then the
// fetch. The session is terminal after this call, success or failure.
// progress is optional and best effort.
func (p *Pipeline) SelectQuality(ctx context.Context, userID int64, format, quality string, progress ProgressFunc) (*Outcome, error) {
	session, ok := p.sessions.Get(userID)
	if !ok {
		return nil, ErrSessionExpired
	}
	defer func() {
		p.sessions.Delete(userID)
		p.updateSessionGauge()
	}()

	start := time.Now()
	outcome, err := p.dispatch(ctx, session, format, quality, progress)
	if err != nil {
		return nil, p.sanitize("fetch", err)
	}
	for _, artifact := range outcome.Artifacts {
		p.recordDownload(artifact.Kind.String())
	}
	p.recordStage("fetch", time.Since(start))
	return outcome, nil
}

func (p *Pipeline) dispatch(ctx context.Context, session *Session, format, quality string, progress ProgressFunc) (*Outcome, error) {
	switch {
	case session.Track != nil:
		return p.fetchTrack(ctx, session.Track, quality, progress)

	case session.Video != nil:
		return p.fetchVideo(ctx, session.Video, format, quality, progress)

	case session.Ref.Kind == linkref.KindStory:
		owner, itemID := session.Ref.StoryParts()
		artifacts, err := p.social.DownloadStory(ctx, owner, itemID)
		if err != nil {
			return nil, err
		}
		return &Outcome{Artifacts: artifacts, Caption: p.formatter.StoryCard(owner, itemID)}, nil

	case session.Post != nil:
		artifacts, err := p.social.DownloadPost(ctx, session.Post.Shortcode)
		if err != nil {
			return nil, err
		}
		outcome := &Outcome{Artifacts: artifacts, Caption: p.formatter.PostCard(session.Post)}
		if skipped := session.Post.MediaCount - len(artifacts); skipped > 0 {
			outcome.Info = p.localize("post.item_skipped", skipped)
		}
		return outcome, nil

	default:
		return nil, ErrSessionExpired
	}
}

// fetchTrack is the cross-platform path: build the query from source
// metadata, search the target platform, select the best candidate, fetch
// it as audio.
func (p *Pipeline) fetchTrack(ctx context.Context, track *TrackMetadata, quality string, progress ProgressFunc) (*Outcome, error) {
	src := track.MatchSource()
	query := match.BuildQuery(src)

	candidates, err := p.searcher.Search(ctx, query, p.config.Download.SearchLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		p.logger.Info("search returned no candidates", zap.String("query", query))
		return nil, ErrNoResults
	}

	best, ok := match.SelectBest(candidates, src)
	if !ok {
		return nil, ErrNoMatch
	}
	p.logger.Info("candidate selected",
		zap.String("query", query),
		zap.String("candidate_id", best.ID),
		zap.Int("score", match.Score(best, src)))

	if quality == "" {
		quality = p.config.Download.AudioQuality
	}
	artifact, err := p.fetcher.FetchAudio(ctx, best.ID, quality, progress)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Artifacts: []Artifact{*artifact},
		Caption:   p.formatter.TrackCard(track),
		Track:     track,
	}, nil
}

func (p *Pipeline) fetchVideo(ctx context.Context, video *VideoInfo, format, quality string, progress ProgressFunc) (*Outcome, error) {
	var (
		artifact *Artifact
		err      error
	)
	if format == "mp4" {
		artifact, err = p.fetcher.FetchVideo(ctx, video.ID, quality, progress)
	} else {
		artifact, err = p.fetcher.FetchAudio(ctx, video.ID, quality, progress)
	}
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Artifacts: []Artifact{*artifact},
		Caption:   p.formatter.VideoCard(video),
		Video:     video,
	}, nil
}

// Cancel invalidates the user's session immediately. Idempotent.
func (p *Pipeline) Cancel(userID int64) {
	p.sessions.Delete(userID)
	p.updateSessionGauge()
}

// sanitize keeps taxonomy errors as-is and collapses anything
// unanticipated into ErrUnavailable after logging the cause; raw internal
// errors never reach the user.
func (p *Pipeline) sanitize(stage string, err error) error {
	var tooLarge *TooLargeError
	if errors.As(err, &tooLarge) {
		p.recordTooLarge()
		return err
	}
	for _, known := range []error{
		ErrUnknownLink, ErrNotFound, ErrUnauthorized, ErrUnavailable,
		ErrNoResults, ErrNoMatch, ErrSessionExpired,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		p.recordError(stage, "timeout")
		return fmt.Errorf("%s: %w", stage, ErrUnavailable)
	}
	p.recordError(stage, "internal")
	p.logger.Error("pipeline stage failed",
		zap.String("stage", stage),
		zap.Error(err))
	return ErrUnavailable
}

func (p *Pipeline) localize(key string, args ...interface{}) string {
	return p.formatter.localizer.T(key, args...)
}

func (p *Pipeline) recordLink(platform, status string) {
	if p.metrics != nil {
		p.metrics.RecordLink(platform, status)
	}
}

func (p *Pipeline) recordDownload(kind string) {
	if p.metrics != nil {
		p.metrics.RecordDownload(kind)
	}
}

func (p *Pipeline) recordTooLarge() {
	if p.metrics != nil {
		p.metrics.RecordTooLarge()
	}
}

func (p *Pipeline) recordError(component, errorType string) {
	if p.metrics != nil {
		p.metrics.RecordError(component, errorType)
	}
}

func (p *Pipeline) recordStage(stage string, d time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordProcessingTime(stage, d)
	}
}

func (p *Pipeline) updateSessionGauge() {
	if p.metrics != nil {
		p.metrics.SetActiveSessions(p.sessions.Len())
	}
}
