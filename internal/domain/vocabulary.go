package domain

// VocabularyBank returns the canonical 20-word question bank written by the seeder.
// Returned questions carry no IDs; the store assigns them on insert.
func VocabularyBank() []Question {
	return []Question{
		{
			Question:      "What does 'ubiquitous' mean?",
			Options:       []string{"Rare and uncommon", "Present everywhere", "Ancient and old", "Difficult to understand"},
			CorrectAnswer: 1,
			Explanation:   "Ubiquitous means existing or being everywhere at the same time; omnipresent.",
		},
		{
			Question:      "What does 'ephemeral' mean?",
			Options:       []string{"Lasting forever", "Very expensive", "Lasting for a short time", "Extremely large"},
			CorrectAnswer: 2,
			Explanation:   "Ephemeral means lasting for a very short time; transitory.",
		},
		{
			Question:      "What does 'meticulous' mean?",
			Options:       []string{"Careless", "Very careful and precise", "Quickly done", "Confusing"},
			CorrectAnswer: 1,
			Explanation:   "Meticulous means showing great attention to detail; very careful and precise.",
		},
		{
			Question:      "What does 'gregarious' mean?",
			Options:       []string{"Antisocial", "Fond of company", "Angry and hostile", "Extremely quiet"},
			CorrectAnswer: 1,
			Explanation:   "Gregarious means fond of the company of others; sociable.",
		},
		{
			Question:      "What does 'pragmatic' mean?",
			Options:       []string{"Idealistic", "Practical and realistic", "Emotional", "Theoretical"},
			CorrectAnswer: 1,
			Explanation:   "Pragmatic means dealing with things sensibly and realistically in a practical way.",
		},
		{
			Question:      "What does 'eloquent' mean?",
			Options:       []string{"Silent", "Fluent and persuasive", "Confused", "Angry"},
			CorrectAnswer: 1,
			Explanation:   "Eloquent means fluent or persuasive in speaking or writing.",
		},
		{
			Question:      "What does 'redundant' mean?",
			Options:       []string{"Essential", "Not needed; superfluous", "Very important", "Complicated"},
			CorrectAnswer: 1,
			Explanation:   "Redundant means not or no longer needed or useful; superfluous.",
		},
		{
			Question:      "What does 'aesthetic' mean?",
			Options:       []string{"Ugly", "Related to beauty", "Mathematical", "Political"},
			CorrectAnswer: 1,
			Explanation:   "Aesthetic means concerned with beauty or the appreciation of beauty.",
		},
		{
			Question:      "What does 'ambiguous' mean?",
			Options:       []string{"Very clear", "Open to multiple interpretations", "Extremely simple", "Completely false"},
			CorrectAnswer: 1,
			Explanation:   "Ambiguous means open to more than one interpretation; having a double meaning.",
		},
		{
			Question:      "What does 'candid' mean?",
			Options:       []string{"Dishonest", "Truthful and straightforward", "Secretive", "Complicated"},
			CorrectAnswer: 1,
			Explanation:   "Candid means truthful and straightforward; frank and honest.",
		},
		{
			Question:      "What does 'diligent' mean?",
			Options:       []string{"Lazy", "Hardworking and careful", "Careless", "Inactive"},
			CorrectAnswer: 1,
			Explanation:   "Diligent means having or showing care and conscientiousness in one's work or duties.",
		},
		{
			Question:      "What does 'empathy' mean?",
			Options:       []string{"Hatred", "Understanding others' feelings", "Selfishness", "Confusion"},
			CorrectAnswer: 1,
			Explanation:   "Empathy means the ability to understand and share the feelings of another.",
		},
		{
			Question:      "What does 'facilitate' mean?",
			Options:       []string{"To hinder", "To make easier", "To complicate", "To destroy"},
			CorrectAnswer: 1,
			Explanation:   "Facilitate means to make an action or process easier or help achieve.",
		},
		{
			Question:      "What does 'hierarchy' mean?",
			Options:       []string{"Equality", "A system of ranking", "Chaos", "Freedom"},
			CorrectAnswer: 1,
			Explanation:   "Hierarchy means a system in which members are ranked according to status or authority.",
		},
		{
			Question:      "What does 'inevitable' mean?",
			Options:       []string{"Avoidable", "Certain to happen", "Unlikely", "Optional"},
			CorrectAnswer: 1,
			Explanation:   "Inevitable means certain to happen; unavoidable.",
		},
		{
			Question:      "What does 'juxtapose' mean?",
			Options:       []string{"To separate", "To place side by side", "To hide", "To destroy"},
			CorrectAnswer: 1,
			Explanation:   "Juxtapose means to place or deal with close together for contrasting effect.",
		},
		{
			Question:      "What does 'lucid' mean?",
			Options:       []string{"Confusing", "Clear and easy to understand", "Dark", "Complicated"},
			CorrectAnswer: 1,
			Explanation:   "Lucid means expressed clearly; easy to understand.",
		},
		{
			Question:      "What does 'mitigate' mean?",
			Options:       []string{"To worsen", "To make less severe", "To ignore", "To celebrate"},
			CorrectAnswer: 1,
			Explanation:   "Mitigate means to make less severe, serious, or painful.",
		},
		{
			Question:      "What does 'nostalgia' mean?",
			Options:       []string{"Future planning", "Sentimental longing for the past", "Present focus", "Fear of change"},
			CorrectAnswer: 1,
			Explanation:   "Nostalgia means a sentimental longing or wistful affection for a past period.",
		},
		{
			Question:      "What does 'optimize' mean?",
			Options:       []string{"To worsen", "To make the best use of", "To ignore", "To complicate"},
			CorrectAnswer: 1,
			Explanation:   "Optimize means to make the best or most effective use of a situation or resource.",
		},
	}
}
