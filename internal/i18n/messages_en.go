package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.not_found":         "Couldn't find that on Spotify. Try `@%s add: Artist - Song` with the exact spelling.",
	"error.generic":           "Something went wrong. Please try again.",
	"error.malformed_command": "I didn't get that. Use `@%s add: Artist - Song` or drop a YouTube/Spotify link.",

	// Success messages
	"success.track_added": "Added: %s - %s",
	"success.duplicate":   "Already in the playlist: %s - %s",

	// Debug thread replies
	"debug.resolved_from_video": "Resolved video %s as %s - %s",
	"debug.search_query":        "Searched Spotify for \"%s - %s\"",

	// Bot status messages
	"bot.help_message": "🎵 Groovebot Help\n\n" +
		"I watch this channel for music and keep the shared playlist fresh:\n\n" +
		"🔗 Drop a YouTube or Spotify track link and I'll add it to the playlist.\n\n" +
		"✍️ Or ask me directly:\n" +
		"• `@%s add: Artist - Song`\n\n" +
		"I'll react to your message:\n" +
		"✅ added (or already on the playlist)\n" +
		"❓ couldn't find a match on Spotify\n" +
		"❌ something went wrong on my end",
}
