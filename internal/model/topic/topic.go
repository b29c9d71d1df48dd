package topic

// Category names one grouping of conversation starters.
type Category string

const (
	General       Category = "general"
	Work          Category = "work"
	Hobbies       Category = "hobbies"
	Entertainment Category = "entertainment"
	Food          Category = "food"
)

var order = []Category{General, Work, Hobbies, Entertainment, Food}

// Order returns the fixed enumeration order of categories.
func Order() []Category {
	return append([]Category(nil), order...)
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	for _, item := range order {
		if item == c {
			return true
		}
	}
	return false
}

// Group pairs a category with its ordered topics.
type Group struct {
	Category Category `json:"category" yaml:"name"`
	Topics   []string `json:"topics" yaml:"topics"`
}

// Seed provides the built-in TalkEasy conversation starters.
func Seed() []Group {
	return []Group{
		{
			Category: General,
			Topics: []string{
				"What's the most interesting thing you've read or seen recently?",
				"If you could have dinner with any historical figure, who would it be and why?",
				"What's something you're looking forward to in the coming year?",
				"If you could master any skill instantly, what would you choose?",
				"What's a place you've always wanted to visit but haven't had the chance yet?",
				"What's your favorite way to spend a rainy day?",
				"If you could live in any fictional world, which would you choose?",
				"What's a small thing that always brightens your day?",
				"What's something you've changed your mind about in the last few years?",
				"If you could solve one global problem instantly, which would you choose?",
			},
		},
		{
			Category: Work,
			Topics: []string{
				"What's the most rewarding project you've worked on?",
				"What's a skill you'd like to develop further in your professional life?",
				"How do you stay productive during busy periods?",
				"What's the best piece of career advice you've received?",
				"How do you approach work-life balance?",
				"What workplace culture elements do you find most important?",
				"How do you handle difficult feedback or criticism?",
				"What industry trends are you most excited about?",
				"What's your approach to professional networking?",
				"How do you stay motivated on challenging projects?",
			},
		},
		{
			Category: Hobbies,
			Topics: []string{
				"What hobby would you pursue if time and money were no object?",
				"What's a hobby that taught you something unexpected about yourself?",
				"Have you picked up any new interests recently?",
				"What activity makes you lose track of time?",
				"Is there a hobby you enjoyed as a child that you'd like to revisit?",
				"What's something creative you enjoy doing?",
				"How do your hobbies affect other aspects of your life?",
				"Do you prefer solo activities or group hobbies?",
				"What's a hobby you'd recommend to others and why?",
				"Is there a hobby or skill you admire in others?",
			},
		},
		{
			Category: Entertainment,
			Topics: []string{
				"What's the last great book you read? What did you enjoy about it?",
				"Which movie or TV show do you think everyone should watch?",
				"Is there an artist or band that's significantly influenced your taste in music?",
				"What's your go-to recommendation for someone looking for a new podcast?",
				"Do you have a favorite museum or art exhibit you've visited?",
				"What's a show you've watched multiple times?",
				"What kind of content do you enjoy that might surprise people?",
				"Is there a performance (concert, play, etc.) that left a lasting impression on you?",
				"How has your taste in entertainment evolved over the years?",
				"What's something you enjoy that's considered underrated?",
			},
		},
		{
			Category: Food,
			Topics: []string{
				"If you had to eat one cuisine for the rest of your life, what would it be?",
				"Do you have a signature dish that you love to cook?",
				"What's your favorite food memory?",
				"Is there an unusual food combination you enjoy?",
				"What's a food from your childhood that you still love?",
				"If someone visited your area, what local food would you recommend?",
				"What's the most memorable meal you've ever had?",
				"Is there a food you didn't like as a child but enjoy now?",
				"What's your approach to trying new foods?",
				"Do you have any food traditions or rituals?",
			},
		},
	}
}
