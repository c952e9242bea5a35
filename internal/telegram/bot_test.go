package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/agent"
	"github.com/siftlabs/sift/internal/log"
)

type fakeRunner struct {
	answer  string
	err     error
	threads []string
	inputs  []string
}

func (f *fakeRunner) Run(_ context.Context, threadID, input string, _ agent.EmitFunc) (string, error) {
	f.threads = append(f.threads, threadID)
	f.inputs = append(f.inputs, input)
	return f.answer, f.err
}

func newTestBot(runner Runner) *Bot {
	return &Bot{
		runner:  runner,
		logger:  log.NewNop(),
		threads: make(map[int64]string),
	}
}

func TestRespondFreeText(t *testing.T) {
	runner := &fakeRunner{answer: "Paris is the capital of France."}
	bot := newTestBot(runner)

	reply := bot.respond(context.Background(), 7, "capital of France?", "")
	assert.Equal(t, "Paris is the capital of France.", reply)
	assert.Equal(t, []string{"capital of France?"}, runner.inputs)
}

func TestRespondKeepsThreadAcrossMessages(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	bot := newTestBot(runner)

	bot.respond(context.Background(), 7, "first", "")
	bot.respond(context.Background(), 7, "second", "")

	require.Len(t, runner.threads, 2)
	assert.Equal(t, runner.threads[0], runner.threads[1])
	assert.NotEmpty(t, runner.threads[0])
}

func TestRespondIsolatesUsers(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	bot := newTestBot(runner)

	bot.respond(context.Background(), 1, "hi", "")
	bot.respond(context.Background(), 2, "hi", "")

	require.Len(t, runner.threads, 2)
	assert.NotEqual(t, runner.threads[0], runner.threads[1])
}

func TestClearResetsThread(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	bot := newTestBot(runner)

	bot.respond(context.Background(), 7, "before", "")
	reply := bot.respond(context.Background(), 7, "/clear", "clear")
	assert.Equal(t, clearedText, reply)
	bot.respond(context.Background(), 7, "after", "")

	require.Len(t, runner.threads, 2)
	assert.NotEqual(t, runner.threads[0], runner.threads[1])
}

func TestStartResetsThreadAndWelcomes(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	bot := newTestBot(runner)

	bot.respond(context.Background(), 7, "before", "")
	reply := bot.respond(context.Background(), 7, "/start", "start")
	assert.Equal(t, welcomeText, reply)
	bot.respond(context.Background(), 7, "after", "")

	assert.NotEqual(t, runner.threads[0], runner.threads[1])
}

func TestHelpAndUnknownCommand(t *testing.T) {
	bot := newTestBot(&fakeRunner{})

	assert.Equal(t, helpText, bot.respond(context.Background(), 7, "/help", "help"))
	assert.Equal(t, helpText, bot.respond(context.Background(), 7, "/frobnicate", "frobnicate"))
}

func TestRespondRunnerFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("model unavailable")}
	bot := newTestBot(runner)

	reply := bot.respond(context.Background(), 7, "hello", "")
	assert.Equal(t, errorText, reply)
	assert.Contains(t, reply, "/clear")
}

func TestChunkMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, chunkMessage("short", messageLimit))

	long := strings.Repeat("a", messageLimit+10)
	chunks := chunkMessage(long, messageLimit)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], messageLimit)
	assert.Len(t, chunks[1], 10)

	// Splits on rune boundaries, not bytes.
	multibyte := strings.Repeat("界", 5)
	chunks = chunkMessage(multibyte, 3)
	require.Len(t, chunks, 2)
	assert.Equal(t, "界界界", chunks[0])
	assert.Equal(t, "界界", chunks[1])
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{Runner: &fakeRunner{}, Logger: log.NewNop()})
	assert.Error(t, err)
}
