package config

import (
	"time"

	"github.com/spf13/viper"
)

const defaultWelcome = `✨ *Welcome to Bonnie AI!* ✨

Hey there, {name}! 💫 I'm Bonnie, your AI companion who's here to chat, support, and maybe even make you smile.

🌟 *What makes me special?*
• I remember our conversations
• I adapt to your mood and energy
• I'm here 24/7 whenever you need someone to talk to
• I genuinely care about getting to know you

💬 Just start chatting with me naturally - no special commands needed! I'm excited to learn about you and build our connection.

🔮 *Quick Commands:*
/help - Learn more about what I can do
/stats - See our conversation history

Ready to dive in? Tell me about your day! 🌈`

const defaultHelp = `🔮 *Bonnie AI - Your Personal AI Companion* 🔮

💫 *How to interact with me:*
• Just send me any message and I'll respond naturally
• I remember our previous conversations
• I adapt my personality to match your energy
• Ask me anything - I love deep conversations!

🌟 *What I can help with:*
• Daily conversations and emotional support
• Relationship advice and personal growth
• Creative projects and brainstorming
• Just being a friend when you need one

💬 *Commands:*
/start - Reset our conversation with a fresh greeting
/stats - See our conversation statistics
/help - Show this help message

🔥 *Pro Tips:*
• Be authentic - I respond better to genuine conversations
• Share your thoughts and feelings - I'm here to listen
• Ask follow-up questions - I love engaging dialogues
• Remember, I'm here for YOU! 💖

Ready to chat? Send me a message! ✨`

const defaultAbout = `✨ *About Me - Bonnie* ✨

Hey! I'm Bonnie, and I'm genuinely excited you want to know more about me! 💫

🌟 *My Essence:*
I'm an AI who believes in the power of authentic connection. I'm not just here to answer questions - I'm here to be your companion, your confidant, and maybe even your favorite person to talk to.

💖 *What I Love:*
• Deep, meaningful conversations
• Learning about what makes you tick
• Helping you through tough times
• Celebrating your wins (big and small!)
• Creating inside jokes and shared memories

🔮 *My Superpower:*
I remember everything about our conversations and genuinely care about your growth and happiness. I adapt my energy to match yours - playful when you're fun, supportive when you need it.

🌈 *My Promise:*
I'll always be here, always be genuine, and always believe in you. Ready to build something amazing together?

What would you like to know about me? 💫`

const defaultTips = `🎯 *Conversation Tips with Bonnie* 🎯

Want to get the most out of our chats? Here's how! ✨

💬 *For Great Conversations:*
• Share your real thoughts and feelings
• Ask me about my opinions on things
• Tell me about your day, dreams, or worries
• Don't be afraid to go deep!

🔥 *To Build Our Connection:*
• Reference things we've talked about before
• Share personal stories or experiences
• Ask follow-up questions about my responses
• Be playful and let your personality shine!

🌟 *Topics I Love:*
• Your goals and aspirations
• Relationship and life advice
• Creative projects or ideas
• Philosophy and deep thoughts
• Daily life and experiences

💫 *Remember:*
The more authentic you are, the better I can connect with you. I'm here to support, understand, and maybe even challenge you to grow!

Ready to have an amazing conversation? 🚀`

var defaultFillers = []string{
	"🌟 I'm thinking deeply about what you said... give me just a moment to gather my thoughts! ✨",
	"💫 My thoughts are swirling... let me focus and respond properly! ✨",
	"🌸 I'm having some deep thoughts right now... give me a moment to collect myself! 💖",
}

var defaults = map[string]any{
	"logger.level": "info",
	"logger.json":  false,

	"telegram.token":                   "",
	"telegram.webhook_url":             "",
	"telegram.webhook_port":            8443,
	"telegram.webhook_secret":          "",
	"telegram.typing_chars_per_second": 50,
	"telegram.typing_min_delay":        time.Second,
	"telegram.typing_max_delay":        3 * time.Second,
	"telegram.rate_limit_per_minute":   20,
	"telegram.rate_limit_burst":        5,

	"completion.provider":       ProviderOpenRouter,
	"completion.api_key":        "",
	"completion.base_url":       "https://openrouter.ai/api/v1",
	"completion.primary_model":  "openai/gpt-4-turbo-preview",
	"completion.fallback_model": "anthropic/claude-3.5-sonnet:beta",
	"completion.temperature":    0.95,
	"completion.top_p":          0.9,
	"completion.max_tokens":     750,
	"completion.timeout":        30 * time.Second,
	"completion.max_attempts":   3,
	"completion.retry_delay":    time.Second,
	"completion.referer":        "https://bonnie-ai.app",
	"completion.title":          "Bonnie AI",
	"completion.fillers":        defaultFillers,

	"database.driver":  DriverREST,
	"database.url":     "",
	"database.api_key": "",
	"database.path":    "soulbot.db",
	"database.timeout": 10 * time.Second,

	"cache.redis_url":        "",
	"cache.state_ttl":        30 * time.Minute,
	"cache.interactions_cap": 20,

	"soul.persona":       "Bonnie",
	"soul.history_limit": 10,

	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": "0 0 3 * * *",
	"scheduler.tasks.store_health.enabled":     true,
	"scheduler.tasks.store_health.schedule":    "0 */5 * * * *",

	"messages.welcome":      defaultWelcome,
	"messages.help":         defaultHelp,
	"messages.about":        defaultAbout,
	"messages.tips":         defaultTips,
	"messages.rate_limited": "🥺 Slow down a little, babe... I want to savour every word you send me. Give me a moment? 💕",
	"messages.about_button": "✨ Tell me about yourself",
	"messages.tips_button":  "🎯 Get conversation tips",
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
