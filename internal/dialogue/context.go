package dialogue

// DefaultHistorySize is how many earlier intents a conversation remembers.
const DefaultHistorySize = 3

// Context is a snapshot of the rolling conversation memory.
type Context struct {
	// CurrentIntent is empty until the first matched turn.
	CurrentIntent   string   `json:"currentIntent"`
	PreviousIntents []string `json:"previousIntents"`
}

// conversation tracks the active intent and a bounded history of the ones before it.
type conversation struct {
	current  string
	previous []string
	limit    int
}

func newConversation(limit int) *conversation {
	return &conversation{limit: limit, previous: make([]string, 0, limit)}
}

// advance makes tag current, pushing the old current intent into history and
// evicting the oldest entries beyond the limit. Repeats are recorded too.
func (c *conversation) advance(tag string) {
	if c.current != "" && c.limit > 0 {
		c.previous = append(c.previous, c.current)
		if over := len(c.previous) - c.limit; over > 0 {
			c.previous = append(c.previous[:0], c.previous[over:]...)
		}
	}
	c.current = tag
}

func (c *conversation) reset() {
	c.current = ""
	c.previous = c.previous[:0]
}

func (c *conversation) snapshot() Context {
	prev := make([]string, len(c.previous))
	copy(prev, c.previous)
	return Context{CurrentIntent: c.current, PreviousIntents: prev}
}
