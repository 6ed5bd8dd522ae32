package reply

const (
	emptyReply = "I'm here to listen. Could you share what's on your mind?"

	// DefaultCrisisReply points the user at crisis resources.
	DefaultCrisisReply = "I'm very concerned about what you're sharing. Your life is precious and there are people who want to help right now. Please call the National Suicide Prevention Lifeline at 988 or text HOME to 741741. You don't have to face this alone."

	defaultReply = "Thank you for sharing that with me. I'm listening and I care about what you're going through. Could you tell me more?"
)

// concern templates
const (
	suicidalReply     = "I hear that you're having thoughts about ending your life. That sounds incredibly painful and overwhelming. Would you be willing to reach out to a crisis counselor? They're available 24/7 and it's completely confidential."
	selfHarmReply     = "It sounds like you're experiencing urges to harm yourself. That must feel really overwhelming and scary. Can you tell me more about what's triggering these feelings? I'm here to listen without judgment."
	depressionReply   = "The heaviness of depression can make everything feel overwhelming. Thank you for sharing that with me. What does this depressive state feel like for you right now?"
	anxietyReply      = "Anxiety can make it feel like everything is spinning out of control. That constant worry must be exhausting. What's the main thing causing you anxiety right now?"
	stressReply       = "Stress can build up and feel completely overwhelming. It sounds like you're carrying a heavy load right now. What aspects feel most pressing to you?"
	relationshipNamed = "Relationship challenges with %s can touch some of our deepest emotions. That pain must feel really intense. What would feel most supportive to you right now?"
	relationshipReply = "Relationship issues can be really painful and complex. It takes courage to acknowledge when relationships are difficult. Would you like to explore what's happening?"
)

// entity templates, keyed by entity label
var entityReplies = map[string]string{
	"Friends":       "Friendships and social connections can be really important for our wellbeing. It sounds like your relationships with friends are affecting you. What's been happening with your friends?",
	"Social":        "Social situations can be challenging sometimes. That sense of isolation or social pressure must be really tough. Would you like to talk more about what social situations are affecting you?",
	"Work":          "Work-related stress%s can be really challenging. The pressure must feel overwhelming at times. What aspect of work is affecting you the most right now?",
	"School":        "Academic pressure can feel incredibly heavy. It sounds like school is causing you significant stress. What specifically about school is weighing on you?",
	"Family":        "Family dynamics%s can be complex and emotionally draining. It takes courage to acknowledge when family relationships are difficult. Would you like to explore this more?",
	"Relationship":  "Relationship challenges can touch some of our deepest emotions. That pain must feel really intense. What would feel most supportive to you right now as you navigate this?",
	"Health":        "Health-related issues can be incredibly challenging. It's important to take care of both your physical and mental health. What specific health concerns are you facing right now?",
	"Financial":     "Financial stress can be overwhelming. It's tough to manage money worries on top of everything else. What specific financial challenges are you dealing with right now?",
	"Future":        "Uncertainty about the future can create a lot of anxiety. It's completely normal to feel this way when facing the unknown. What aspects of the future are causing you the most concern?",
	"Trauma":        "Traumatic experiences can have a lasting impact on our mental health. It's important to process these feelings. What specific trauma would you like to talk about?",
	"Grief":         "Grief and loss can be incredibly painful. It's okay to feel a wide range of emotions during this time. Would you like to share more about your loss and how you're feeling?",
	"Substance":     "Struggling with substance use can be really tough. It's a brave step to acknowledge this challenge. What kind of support do you think would help you the most right now?",
	"Mental_Health": "Mental health challenges can feel isolating, but you're not alone. Many people face similar struggles. What specific mental health issues are you dealing with right now?",
	"Emotions":      "Emotions can be complex and difficult to navigate. That pain must feel really intense. What would feel most supportive to you right now as you navigate this?",
	"Self_Esteem":   "How we feel about ourselves can deeply impact our daily life. It sounds like you're struggling with self-worth right now. Those feelings can be really painful. Would you like to explore what's affecting your self-esteem?",
}

// entityOrder is the priority of entity labels when several are present.
var entityOrder = []string{
	"Friends", "Social", "Work", "School", "Family", "Relationship", "Health", "Financial",
	"Future", "Trauma", "Grief", "Substance", "Mental_Health", "Emotions", "Self_Esteem",
}

// moodGroups are checked in order against whole words of the message.
var moodGroups = []struct {
	name  string
	words []string
	reply string
}{
	{
		name:  "sad",
		words: []string{"sad", "sadness", "depressed", "depressing", "unhappy", "down"},
		reply: "I'm really sorry you're feeling this way. It takes courage to share these feelings. Would you like to talk more about what's bothering you?",
	},
	{
		name:  "anxious",
		words: []string{"anxious", "nervous", "worried", "worry", "worrying", "stress", "stressed", "stressful"},
		reply: "I understand anxiety can be overwhelming. Let's take a moment to breathe together. What specifically is causing you stress right now?",
	},
	{
		name:  "angry",
		words: []string{"angry", "mad", "frustrated", "frustrating", "upset"},
		reply: "It's completely normal to feel angry sometimes. Would it help to talk about what triggered these feelings?",
	},
	{
		name:  "greeting",
		words: []string{"hello", "hi", "hey", "start"},
		reply: "Hello! I'm here to listen and support you. How are you feeling today?",
	},
	{
		name:  "help",
		words: []string{"help", "support", "need help"},
		reply: "I'm here for you. You're not alone in this. Can you tell me more about what kind of support you're looking for?",
	},
	{
		name:  "gratitude",
		words: []string{"thank", "thanks", "thank you", "appreciate"},
		reply: "You're very welcome! I'm glad I can be here for you. Remember, reaching out is a sign of strength.",
	},
}
