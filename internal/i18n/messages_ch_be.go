package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations.
var berneseGermanMessages = map[string]string{
	// Error messages
	"error.not_found":         "Ha das uf Spotify nid gfunde. Probiers mit `@%s add: Artist - Song` u dr gnaue Schrybwys.",
	"error.generic":           "Öppis isch schief gloffe. Probier's haut nomau, bitte.",
	"error.malformed_command": "Ha di nid ganz verstande. Bruuch `@%s add: Artist - Song` oder schick e YouTube/Spotify-Link.",

	// Success messages
	"success.track_added": "Hinzuegfüegt: %s - %s",
	"success.duplicate":   "Isch scho uf dr Playliste: %s - %s",

	// Debug thread replies
	"debug.resolved_from_video": "Ha ds Video %s aus %s - %s erkennt",
	"debug.search_query":        "Ha uf Spotify nach \"%s - %s\" gsuecht",

	// Bot status messages
	"bot.help_message": "🎵 Groovebot Hiuf\n\n" +
		"I lose i däm Kanau uf Musig u haute d'Playliste frisch:\n\n" +
		"🔗 Schick e YouTube- oder Spotify-Link u i tue ne uf d'Playliste.\n\n" +
		"✍️ Oder frag mi direkt:\n" +
		"• `@%s add: Artist - Song`\n\n" +
		"I reagiere uf dini Nachricht:\n" +
		"✅ hinzuegfüegt (oder scho uf dr Playliste)\n" +
		"❓ uf Spotify nüt gfunde\n" +
		"❌ bi mir isch öppis schief gloffe",
}
