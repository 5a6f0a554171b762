package chat

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"support-bot/internal/catalog"
	"support-bot/internal/dialogue"
	"support-bot/internal/models"
	"support-bot/internal/nlp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identity struct{}

func (identity) Lemma(word string) string { return word }

func newREPL(t *testing.T) (*REPL, *bytes.Buffer, *models.Catalog) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	norm, err := nlp.New(nlp.WithLemmatizer(identity{}))
	require.NoError(t, err)
	e, err := dialogue.New(cat,
		dialogue.WithNormalizer(norm),
		dialogue.WithChooser(dialogue.FirstChooser{}),
		dialogue.WithEntities(),
	)
	require.NoError(t, err)

	var out bytes.Buffer
	return New(e, &out), &out, cat
}

func TestHandle_QuitWords(t *testing.T) {
	r, _, _ := newREPL(t)
	for _, word := range []string{"quit", "EXIT", " Bye "} {
		reply, done := r.Handle(word)
		assert.True(t, done, word)
		assert.Equal(t, Farewell, reply)
	}
}

func TestHandle_Conversation(t *testing.T) {
	r, _, cat := newREPL(t)
	greeting, _ := cat.Lookup("greeting")

	reply, done := r.Handle("Hello")
	assert.False(t, done)
	assert.Equal(t, greeting.Responses[0], reply)

	reply, _ = r.Handle("Where is my order number AB12CD34?")
	assert.Contains(t, reply, "I've located your order #AB12CD34.")

	assert.Equal(t, "order_number=AB12CD34", r.command("/entities"))
	assert.Equal(t, "current=order_status previous=[greeting]", r.command("/context"))

	reply, _ = r.Handle("/reset")
	assert.Equal(t, "Conversation context cleared.", reply)
	assert.Equal(t, "current=none previous=[]", r.command("/context"))
	assert.Equal(t, "order_number=AB12CD34", r.command("/entities"))
}

func TestHandle_Commands(t *testing.T) {
	r, _, _ := newREPL(t)

	assert.Equal(t, "No details collected yet.", r.command("/entities"))
	assert.Contains(t, r.command("/help"), "/reset")

	reply, done := r.Handle("/rset")
	assert.False(t, done)
	assert.Equal(t, "Unknown command /rset. Did you mean /reset?", reply)

	reply, _ = r.Handle("/ENTITIES please")
	assert.Equal(t, "No details collected yet.", reply)

	assert.Equal(t, "Unknown command /zzz. Type /help for the list.", r.command("/zzz"))
}

func TestRun(t *testing.T) {
	r, out, cat := newREPL(t)
	greeting, _ := cat.Lookup("greeting")

	err := r.Run(context.Background(), strings.NewReader("Hello\nquit\nHello\n"))
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, Banner))
	assert.Contains(t, text, "Bot: "+greeting.Responses[0]+"\n")
	assert.Contains(t, text, "Bot: "+Farewell+"\n")
	assert.Equal(t, 1, strings.Count(text, "Bot: "+greeting.Responses[0]))
}

func TestRun_EOF(t *testing.T) {
	r, out, _ := newREPL(t)
	require.NoError(t, r.Run(context.Background(), strings.NewReader("")))
	assert.Contains(t, out.String(), "You: ")
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	r, _, _ := newREPL(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, pr) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
