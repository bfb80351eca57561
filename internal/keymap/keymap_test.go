package keymap

import "testing"

func TestByContext(t *testing.T) {
	tests := []struct {
		name            string
		context         string
		expectMinLength int
	}{
		{"global context", ContextGlobal, 4},
		{"playback context", ContextPlayback, 5},
		{"list context", ContextList, 5},
		{"episodes context", ContextEpisodes, 2},
		{"feeds context", ContextFeeds, 1},
		{"unknown context returns empty", "unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ByContext(tt.context)

			if tt.expectMinLength == 0 && len(result) != 0 {
				t.Errorf("ByContext(%q) returned %d items, expected empty", tt.context, len(result))
			}
			if len(result) < tt.expectMinLength {
				t.Errorf("ByContext(%q) returned %d items, expected at least %d", tt.context, len(result), tt.expectMinLength)
			}
			for _, binding := range result {
				if binding.Context != tt.context {
					t.Errorf("binding context = %q, want %q", binding.Context, tt.context)
				}
			}
		})
	}
}

func TestAll_NoDuplicateKeys(t *testing.T) {
	seen := make(map[string]Action)
	for _, b := range All {
		if len(b.Keys) == 0 {
			t.Errorf("action %q has no keys", b.Action)
		}
		for _, k := range b.Keys {
			if prev, ok := seen[k]; ok {
				t.Errorf("key %q bound to both %q and %q", k, prev, b.Action)
			}
			seen[k] = b.Action
		}
	}
}

func TestBinding_Key(t *testing.T) {
	b := Binding{ActionPlayPause, []string{" ", "k"}, "Play/pause", ContextPlayback}

	kb := b.Key()

	if got := kb.Help().Key; got != "space" {
		t.Errorf("help key = %q, want %q", got, "space")
	}
	if got := kb.Help().Desc; got != "Play/pause" {
		t.Errorf("help desc = %q, want %q", got, "Play/pause")
	}
	if got := kb.Keys(); len(got) != 2 {
		t.Errorf("keys = %v, want 2 keys", got)
	}
}

func TestHelpKeys(t *testing.T) {
	keys := HelpKeys(ContextPlayback, ContextFeeds)

	want := len(ByContext(ContextPlayback)) + len(ByContext(ContextFeeds))
	if len(keys) != want {
		t.Fatalf("HelpKeys returned %d bindings, want %d", len(keys), want)
	}
	if got := keys[len(keys)-1].Help().Desc; got != "Remove feed" {
		t.Errorf("last binding = %q, want %q", got, "Remove feed")
	}
}
