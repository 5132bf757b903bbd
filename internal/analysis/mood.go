package analysis

// Mood is a coarse characterization of a playlist derived from its mean audio
// features.
type Mood struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// moodRules are evaluated in order; the first matching rule wins.
var moodRules = []struct {
	match func(m map[string]float64) bool
	mood  Mood
}{
	{
		match: func(m map[string]float64) bool { return m["energy"] > 0.7 && m["danceability"] > 0.7 },
		mood:  Mood{Label: "Energetic & Danceable", Description: "High-energy tracks built for movement"},
	},
	{
		match: func(m map[string]float64) bool { return m["energy"] < 0.3 && m["acousticness"] > 0.7 },
		mood:  Mood{Label: "Calm & Acoustic", Description: "Low-energy, acoustic-leaning material"},
	},
	{
		match: func(m map[string]float64) bool { return m["valence"] > 0.7 },
		mood:  Mood{Label: "Happy & Positive", Description: "Bright, upbeat emotional tone"},
	},
	{
		match: func(m map[string]float64) bool { return m["valence"] < 0.3 },
		mood:  Mood{Label: "Melancholic", Description: "Darker, introspective emotional tone"},
	},
	{
		match: func(m map[string]float64) bool { return m["instrumentalness"] > 0.7 },
		mood:  Mood{Label: "Instrumental", Description: "Mostly vocal-free compositions"},
	},
	{
		match: func(m map[string]float64) bool { return m["speechiness"] > 0.66 },
		mood:  Mood{Label: "Spoken Word", Description: "Speech-heavy tracks such as rap or poetry"},
	},
}

var moodBalanced = Mood{Label: "Mixed & Balanced", Description: "No single character dominates"}

func classifyMood(means map[string]float64) Mood {
	if len(means) == 0 {
		return moodBalanced
	}
	for _, rule := range moodRules {
		if rule.match(means) {
			return rule.mood
		}
	}
	return moodBalanced
}
