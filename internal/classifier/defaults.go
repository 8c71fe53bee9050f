package classifier

// DefaultRules targets Spanish-language channels from Spain and Latin
// America, the audience of the curated playlists.
func DefaultRules() Rules {
	return Rules{
		Exclude: []string{
			"english", "inglés", "french", "français", "francais", "german", "deutsch",
			"italian", "italiano", "portuguese", "português", "brasil", "brazil",
			"arabic", "árabe", "russian", "русский", "turkish", "türk", "hindi",
			"chinese", "korean", "japanese", "polish", "dutch", "greek",
			"[en]", "[fr]", "[de]", "[it]", "[pt]", "[ar]", "[ru]", "[tr]", "[pl]", "[nl]",
			"(en)", "(fr)", "(de)", "(it)", "(pt)",
		},
		Include: []string{
			"español", "espanol", "spanish", "castellano", "latino", "latam",
			"españa", "spain", "méxico", "mexico", "argentina", "colombia", "chile",
			"perú", "peru", "venezuela", "ecuador", "uruguay", "paraguay", "bolivia",
			"costa rica", "panamá", "guatemala", "honduras", "el salvador", "nicaragua",
			"cuba", "puerto rico", "república dominicana", "dominicana",
			"[es]", "(es)", "[esp]",
		},
		AttributeKeys: []string{"tvg-country", "tvg-language", "country", "language"},
		Codes: []string{
			"es", "mx", "ar", "co", "cl", "pe", "ve", "ec", "uy", "py", "bo",
			"cr", "pa", "gt", "hn", "sv", "ni", "cu", "pr", "do",
		},
	}
}
