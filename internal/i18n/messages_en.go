package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.link.unknown":     "I don't recognize that link. Send me a Spotify, YouTube or Instagram link.",
	"error.not_found":        "Couldn't find that content. It may have been removed or expired.",
	"error.unauthorized":     "The music catalog isn't available right now (credentials missing or rejected). Try a YouTube link instead.",
	"error.search.no_results": "Couldn't find that track anywhere. Try a different link.",
	"error.search.no_match":  "Found some results, but none of them matched the track. Try a different link.",
	"error.fetch.too_large":  "⚠️ File is too large to send: %s (limit is %s).",
	"error.session.expired":  "That request has expired. Send the link again.",
	"error.generic":          "Something went wrong. Please try again in a moment.",

	// Info cards
	"card.track":      "🎵 %s\n👤 %s\n💿 %s\n⏱ %s",
	"card.collection": "📀 %s\n🎶 %d tracks\n⏱ %s total",
	"card.video":      "🎬 %s\n👤 %s\n⏱ %s",
	"card.post":       "📸 Post by @%s\n❤️ %d likes · 💬 %d comments\n🖼 %d media item(s)",
	"card.story":      "📖 Story by @%s (item %s)",
	"note.story_expiry": "⏳ Stories expire 24 hours after posting — if this one is older, it can no longer be retrieved.",
	"note.choose_quality": "Choose a quality to download:",
	"note.choose_format":  "Choose a format to download:",
	"note.collection_download": "Downloading whole collections isn't supported yet — send a single track link to download it.",

	// Progress and status
	"status.processing":  "🔍 Looking that up...",
	"status.searching":   "🔎 Searching for a matching recording...",
	"status.downloading": "⬇️ Downloading... %d%% (%s/s)",
	"status.uploading":   "📤 Sending...",
	"success.delivered":  "✅ Done!",
	"success.cancelled":  "❌ Cancelled.",

	// Carousel delivery
	"post.item_skipped": "⚠️ Skipped %d item(s) that exceeded the size limit.",

	// Button texts
	"button.download": "⬇️ Download",
	"button.cancel":   "❌ Cancel",
	"button.audio":    "🎵 Audio (mp3)",
	"button.video":    "🎬 Video (mp4)",
	"button.best":     "⭐ Best available",
	"button.help":     "❓ How to use",
	"button.about":    "ℹ️ About",

	// Bot messages
	"bot.welcome": "👋 Hi! Send me a link and I'll fetch the media for you.\n\n" +
		"Supported links:\n" +
		"• Spotify tracks — I'll find the matching recording and send it as audio\n" +
		"• YouTube videos — downloadable as mp3 or mp4\n" +
		"• Instagram posts, reels and stories\n\n" +
		"Use /help for details.",
	"bot.help_message": "🤖 How to use this bot\n\n" +
		"📍 Spotify:\n" +
		"Paste a track link and pick an audio quality. Album and playlist\n" +
		"links show their contents.\n\n" +
		"🎬 YouTube:\n" +
		"Paste a video, shorts or youtu.be link, then choose mp3 or mp4\n" +
		"and a quality tier.\n\n" +
		"📸 Instagram:\n" +
		"Paste a post, reel or story link. Carousel posts are sent item\n" +
		"by item.\n\n" +
		"⚠️ Files over the size limit can't be sent through Telegram.",
	"bot.about": "🐰 Grabbit\n\n" +
		"I resolve Spotify, YouTube and Instagram links and send the media\n" +
		"back to you. Spotify tracks are matched to a recording on YouTube\n" +
		"by title, artists and duration.\n\n" +
		"No files are kept after delivery.",
}
