package question

import (
	"context"
	"slices"
	"sync"
)

// Bank serves questions from a built-in list, used whenever no OpenAI key is
// configured (and in tests). Selection is deterministic: first question whose
// topic has not been asked yet, wrapping around once the list is exhausted.
// One Bank is shared by every game, so it locks around its cursor.
type Bank struct {
	mu        sync.Mutex
	questions map[Difficulty][]Question
	served    int
}

func NewBank() *Bank {
	return &Bank{questions: builtinQuestions}
}

func (b *Bank) Next(_ context.Context, d Difficulty, askedTopics []string) (Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pool := b.questions[d]
	if len(pool) == 0 {
		pool = b.questions[DifficultyMedium]
	}

	for _, q := range pool {
		if !slices.Contains(askedTopics, q.Topic) {
			b.served++
			return q, nil
		}
	}

	// Every topic used up; start repeating.
	q := pool[b.served%len(pool)]
	b.served++
	return q, nil
}

var builtinQuestions = map[Difficulty][]Question{
	DifficultyEasy: {
		{
			Text:          "In 'The Lion King', what is the name of Simba's father?",
			Options:       []string{"Scar", "Mufasa", "Zazu", "Rafiki"},
			CorrectAnswer: "Mufasa",
			Explanation:   "Mufasa rules Pride Rock until his brother Scar betrays him.",
			Topic:         "The Lion King",
		},
		{
			Text:          "What kind of fish is Nemo in 'Finding Nemo'?",
			Options:       []string{"Clownfish", "Blue tang", "Pufferfish", "Seahorse"},
			CorrectAnswer: "Clownfish",
			Explanation:   "Nemo and his father Marlin are clownfish living in a sea anemone.",
			Topic:         "Finding Nemo",
		},
		{
			Text:          "In 'The Wizard of Oz', what does Dorothy click together to return home?",
			Options:       []string{"Her fingers", "Her ruby slippers", "Two emeralds", "Her braids"},
			CorrectAnswer: "Her ruby slippers",
			Explanation:   "Clicking the ruby slippers three times takes Dorothy back to Kansas.",
			Topic:         "The Wizard of Oz",
		},
		{
			Text:          "Which movie features a toy cowboy named Woody?",
			Options:       []string{"Shrek", "Toy Story", "Cars", "Up"},
			CorrectAnswer: "Toy Story",
			Explanation:   "Woody leads Andy's toys in Pixar's first feature film.",
			Topic:         "Toy Story",
		},
		{
			Text:          "In 'Home Alone', where is Kevin's family flying to when they leave him behind?",
			Options:       []string{"London", "Paris", "Rome", "New York"},
			CorrectAnswer: "Paris",
			Explanation:   "The McCallisters are headed to Paris for Christmas.",
			Topic:         "Home Alone",
		},
	},
	DifficultyMedium: {
		{
			Text:          "In 'Inception', what object does Cobb use as his totem?",
			Options:       []string{"A chess piece", "A spinning top", "A pocket watch", "A poker chip"},
			CorrectAnswer: "A spinning top",
			Explanation:   "The top spins forever in a dream, telling Cobb he is not awake.",
			Topic:         "Inception",
		},
		{
			Text:          "Who directed 'Pulp Fiction'?",
			Options:       []string{"Martin Scorsese", "Quentin Tarantino", "David Fincher", "Oliver Stone"},
			CorrectAnswer: "Quentin Tarantino",
			Explanation:   "Tarantino won the Palme d'Or for it at Cannes in 1994.",
			Topic:         "Pulp Fiction",
		},
		{
			Text:          "In 'The Matrix', which pill does Neo take?",
			Options:       []string{"The blue pill", "The red pill", "The green pill", "Both pills"},
			CorrectAnswer: "The red pill",
			Explanation:   "The red pill wakes Neo from the simulation into the real world.",
			Topic:         "The Matrix",
		},
		{
			Text:          "What is the name of the hotel in 'The Shining'?",
			Options:       []string{"The Overlook", "The Stanley", "The Grand Budapest", "The Bates Motel"},
			CorrectAnswer: "The Overlook",
			Explanation:   "The Torrance family winters as caretakers of the Overlook Hotel.",
			Topic:         "The Shining",
		},
		{
			Text:          "In 'Back to the Future', what speed must the DeLorean reach to travel through time?",
			Options:       []string{"66 mph", "77 mph", "88 mph", "99 mph"},
			CorrectAnswer: "88 mph",
			Explanation:   "At 88 miles per hour the flux capacitor kicks in.",
			Topic:         "Back to the Future",
		},
	},
	DifficultyHard: {
		{
			Text:          "Which film won the first Academy Award for Best Picture?",
			Options:       []string{"Wings", "Sunrise", "Metropolis", "The Jazz Singer"},
			CorrectAnswer: "Wings",
			Explanation:   "Wings (1927) won at the first Oscars ceremony in 1929.",
			Topic:         "Wings",
		},
		{
			Text:          "In 'Blade Runner', what is the four-year-lifespan replicant model called?",
			Options:       []string{"Nexus-6", "Series 800", "MK II", "Unit 7"},
			CorrectAnswer: "Nexus-6",
			Explanation:   "The Nexus-6 replicants were built with a four-year failsafe lifespan.",
			Topic:         "Blade Runner",
		},
		{
			Text:          "Who composed the score for 'The Good, the Bad and the Ugly'?",
			Options:       []string{"John Williams", "Ennio Morricone", "Bernard Herrmann", "Hans Zimmer"},
			CorrectAnswer: "Ennio Morricone",
			Explanation:   "Morricone's theme is among the most recognizable in film history.",
			Topic:         "The Good, the Bad and the Ugly",
		},
		{
			Text:          "What is the name of the fictional newspaper magnate in 'Citizen Kane'?",
			Options:       []string{"Charles Foster Kane", "John Foster Dulles", "Jedediah Leland", "Walter Parks Thatcher"},
			CorrectAnswer: "Charles Foster Kane",
			Explanation:   "Kane was loosely modeled on William Randolph Hearst.",
			Topic:         "Citizen Kane",
		},
		{
			Text:          "In 'Seven Samurai', how many samurai actually survive the final battle?",
			Options:       []string{"Two", "Three", "Four", "Five"},
			CorrectAnswer: "Three",
			Explanation:   "Kambei, Shichiroji and Katsushiro survive; four samurai fall.",
			Topic:         "Seven Samurai",
		},
	},
}
