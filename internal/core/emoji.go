package core

// EmojiGroup is one section of the reaction picker. Static data; the
// server accepts any emoji string, the picker is just a convenience.
type EmojiGroup struct {
	Name   string
	Emojis []string
}

// EmojiGroups is the picker's flat literal table.
var EmojiGroups = []EmojiGroup{
	{Name: "Smileys", Emojis: []string{"😀", "😂", "😅", "😊", "😍", "🤔", "😢", "😡", "🙃", "😴"}},
	{Name: "Gestures", Emojis: []string{"👍", "👎", "👏", "🙌", "🤝", "👋", "✌️", "🤞", "💪", "🫡"}},
	{Name: "Hearts", Emojis: []string{"❤️", "🧡", "💛", "💚", "💙", "💜", "🖤", "💕", "💯", "✨"}},
	{Name: "Objects", Emojis: []string{"🔥", "🎉", "🎊", "⭐", "🏆", "🎯", "🚀", "💡", "📌", "🔔"}},
}

// FeedCategory labels a board section. Static configuration.
type FeedCategory struct {
	ID    string
	Label string
}

// FeedCategories is the board's flat literal category table.
var FeedCategories = []FeedCategory{
	{ID: "general", Label: "General"},
	{ID: "show", Label: "Show & Tell"},
	{ID: "help", Label: "Help"},
	{ID: "meta", Label: "Meta"},
}
