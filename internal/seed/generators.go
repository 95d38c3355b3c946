package seed

import (
	"fmt"
	"strings"
)

var (
	firstNames = []string{
		"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
		"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
		"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
		"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
		"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
		"Kenneth", "Dorothy", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa",
		"Jose", "Virginia", "Adam", "Julie", "Henry", "Joyce", "Nathan", "Victoria",
		"Douglas", "Olivia", "Zachary", "Kelly", "Peter", "Christina", "Kyle", "Lauren",
	}

	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
		"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
		"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
		"Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
		"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
		"Ruiz", "Hughes", "Price", "Alvarez", "Castillo", "Sanders", "Patel", "Myers",
	}

	adjectives = []string{
		"amazing", "incredible", "fascinating", "challenging", "excited", "happy", "proud",
		"grateful", "inspired", "motivated", "curious", "passionate", "creative", "innovative",
		"collaborative", "productive", "beautiful", "elegant", "robust", "fast", "reliable",
		"intense", "focused", "driven", "ambitious", "humble", "thoughtful", "kind",
	}

	nouns = []string{
		"project", "team", "community", "recipe", "design", "garden", "trail", "album",
		"weekend", "platform", "workout", "library", "tool", "idea", "concept",
		"challenge", "opportunity", "goal", "dream", "journey", "experience", "lesson", "skill",
		"technology", "future", "world", "life", "work", "passion", "hobby",
	}

	verbs = []string{
		"built", "created", "designed", "finished", "launched", "started", "shipped",
		"fixed", "solved", "learned", "discovered", "explored", "mastered", "shared",
		"wrote", "read", "watched", "listened", "played", "enjoyed", "loved",
		"improved", "planned", "organized", "hosted", "tried", "tested",
	}

	groupTopics = []string{
		"hikers", "readers", "gamers", "cooks", "runners", "photographers",
		"gardeners", "travelers", "musicians", "makers", "cyclists", "painters",
	}
)

func (s *Seeder) randomName() (string, string) {
	return firstNames[s.rng.Intn(len(firstNames))], lastNames[s.rng.Intn(len(lastNames))]
}

func (s *Seeder) username(first, last string) string {
	formats := []string{"%s%s", "%s.%s", "%s_%s"}
	format := formats[s.rng.Intn(len(formats))]
	return strings.ToLower(fmt.Sprintf(format, first, last))
}

func (s *Seeder) sentence() string {
	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	verb := verbs[s.rng.Intn(len(verbs))]

	templates := []string{
		"Just %s an %s %s.",
		"The %s %s was %s.",
		"I %s this %s %s!",
		"What an %s %s to %s.",
		"Time to %s the %s %s.",
	}
	return fmt.Sprintf(templates[s.rng.Intn(len(templates))], verb, adj, noun)
}

func (s *Seeder) paragraph(sentences int) string {
	var sb strings.Builder
	for i := 0; i < sentences; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(s.sentence())
	}
	return sb.String()
}

// titleCase uppercases the first letter of a word.
func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
