package devserver

import "github.com/agora-sh/agora/internal/types"

// Seed populates a store with enough content to exercise the client:
// a few channels with chat history and a feed deep enough to page.
func Seed(store *Store) {
	residents := []types.Identity{
		{Name: "ada", Password: "seed-ada"},
		{Name: "grace", Password: "seed-grace"},
		{Name: "linus", Password: "seed-linus"},
		{Name: "margaret", Password: "seed-margaret"},
	}

	chat := []struct {
		channel string
		who     int
		body    string
	}{
		{"general", 0, "morning all"},
		{"general", 1, "anyone around for the standup?"},
		{"general", 2, "give me five minutes"},
		{"general", 0, "no rush"},
		{"random", 3, "found a great coffee place near the office"},
		{"random", 1, "which one?"},
		{"random", 3, "the little one behind the library"},
		{"help", 2, "how do I reset my client config?"},
		{"help", 0, "delete ~/.config/agora/config.json and restart"},
	}
	for _, m := range chat {
		_, _ = store.AddMessage(residents[m.who], m.channel, m.body)
	}

	feed := []struct {
		who   int
		title string
		body  string
	}{
		{0, "Welcome to the hub", "Introduce yourself in #general."},
		{1, "Reading group, round two", "We are starting SICP next month. Reply if you want in."},
		{2, "Show: terminal dashboard", "Small weekend project, feedback welcome."},
		{3, "Potluck this Friday", "Sign-up sheet is on the board by the kitchen."},
		{0, "Lost keys", "Found a set of keys in the hallway, blue keychain."},
		{1, "Garden plot share", "Half my plot is free this season."},
		{2, "Board game night", "Thursday 7pm, common room."},
		{3, "Bike repair workshop", "Bring your own bike, tools provided."},
	}
	for _, f := range feed {
		post, err := store.CreatePost(residents[f.who], f.title, f.body, nil)
		if err != nil {
			continue
		}
		// A spread of votes so the popular sort differs from latest.
		for j, voter := range residents {
			if (post.ID+int64(j))%3 == 0 {
				_, _ = store.ToggleVote(voter, post.ID, types.VoteUp)
			}
		}
	}
}
