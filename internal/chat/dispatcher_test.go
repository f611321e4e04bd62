package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/models"
)

func newTestDispatcher(gen *fakeGenerator, opts ...DispatcherOption) *Dispatcher {
	opts = append([]DispatcherOption{
		WithImageDelay(0),
		WithSeed(func() int { return 42 }),
	}, opts...)
	return NewDispatcher(gen, fakeLinker{}, opts...)
}

func TestSend_Chat(t *testing.T) {
	gen := &fakeGenerator{reply: "Halo juga!"}
	store := &memStore{}
	conv := NewConversation(nil, store)

	reply, err := newTestDispatcher(gen).Send(context.Background(), conv, "  halo  ", nil)
	require.NoError(t, err)

	assert.Equal(t, models.RoleModel, reply.Role)
	assert.Equal(t, "Halo juga!", reply.Text)

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "halo", msgs[0].Text)
	assert.Equal(t, reply, msgs[1])

	require.Len(t, gen.calls(), 1)
	assert.Equal(t, "halo", gen.calls()[0].Prompt)
	assert.Empty(t, gen.calls()[0].History)

	assert.Len(t, store.saves, 2, "user message and reply are each persisted")
	pending, _ := conv.Pending()
	assert.False(t, pending)
}

func TestSend_AttachmentOnlyUsesDefaultPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "Itu kucing."}
	conv := NewConversation(nil, nil)
	att := &Attachment{Name: "a.png", MimeType: "image/png", DataURI: "data:image/png;base64,AAAA"}

	_, err := newTestDispatcher(gen).Send(context.Background(), conv, "", att)
	require.NoError(t, err)

	call := gen.calls()[0]
	assert.Equal(t, models.DefaultChatPrompt, call.Prompt)
	assert.Equal(t, att.DataURI, call.ImageDataURI)

	user := conv.Messages()[0]
	assert.Equal(t, "", user.Text)
	assert.Equal(t, att.DataURI, user.ImageURL)
}

func TestSend_AttachmentBeatsImageTrigger(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	conv := NewConversation(nil, nil)
	att := &Attachment{DataURI: "data:image/png;base64,AAAA"}

	reply, err := newTestDispatcher(gen).Send(context.Background(), conv, "/img edit ini", att)
	require.NoError(t, err)

	assert.Equal(t, "ok", reply.Text)
	assert.Len(t, gen.calls(), 1)
}

func TestSend_EmptyReplyFallback(t *testing.T) {
	gen := &fakeGenerator{reply: ""}
	conv := NewConversation(nil, nil)

	reply, err := newTestDispatcher(gen).Send(context.Background(), conv, "halo", nil)
	require.NoError(t, err)
	assert.Equal(t, models.TextEmptyReply, reply.Text)
}

func TestSend_Image(t *testing.T) {
	gen := &fakeGenerator{}
	conv := NewConversation(nil, nil)

	reply, err := newTestDispatcher(gen).Send(context.Background(), conv, "/img kucing terbang", nil)
	require.NoError(t, err)

	assert.Equal(t, "Ini adalah gambar untuk: **kucing terbang**", reply.Text)
	assert.Equal(t, "https://img.test/kucing terbang?seed=42", reply.ImageURL)
	assert.Empty(t, gen.calls(), "image requests never reach the chat model")

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "/img kucing terbang", msgs[0].Text)
}

func TestSend_ImageWaitsForDelay(t *testing.T) {
	conv := NewConversation(nil, nil)
	d := newTestDispatcher(&fakeGenerator{}, WithImageDelay(30*time.Millisecond))

	start := time.Now()
	_, err := d.Send(context.Background(), conv, "/foto", nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSend_ImageCancelled(t *testing.T) {
	conv := NewConversation(nil, nil)
	d := newTestDispatcher(&fakeGenerator{}, WithImageDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	reply, err := d.Send(ctx, conv, "/gambar laut", nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.TextRequestFailed, reply.Text)
	assert.Equal(t, 2, conv.Len())
}

func TestSend_RemoteError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	conv := NewConversation(nil, nil)

	reply, err := newTestDispatcher(gen).Send(context.Background(), conv, "halo", nil)

	assert.EqualError(t, err, "boom")
	assert.Equal(t, models.RoleModel, reply.Role)
	assert.Equal(t, models.TextRequestFailed, reply.Text)

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.TextRequestFailed, msgs[1].Text)

	pending, _ := conv.Pending()
	assert.False(t, pending)
}

func TestSend_EmptyInputRejected(t *testing.T) {
	gen := &fakeGenerator{}
	conv := NewConversation(nil, nil)

	_, err := newTestDispatcher(gen).Send(context.Background(), conv, "   \n", nil)

	assert.ErrorIs(t, err, apierrors.ErrEmptyInput)
	assert.Equal(t, 0, conv.Len())
	assert.Empty(t, gen.calls())
}

func TestSubmit_BusyWhilePending(t *testing.T) {
	gen := &fakeGenerator{reply: "ok", block: make(chan struct{})}
	conv := NewConversation(nil, nil)
	d := newTestDispatcher(gen)

	req, err := d.Submit(conv, "pertama", nil)
	require.NoError(t, err)
	assert.Equal(t, IntentChat, req.Intent())
	assert.Equal(t, "pertama", req.UserMessage().Text)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = req.Run(context.Background())
	}()

	_, err = d.Submit(conv, "kedua", nil)
	assert.ErrorIs(t, err, apierrors.ErrBusy)
	assert.Equal(t, 1, conv.Len(), "a rejected submission appends nothing")

	close(gen.block)
	<-done

	pending, _ := conv.Pending()
	assert.False(t, pending)
	assert.Equal(t, 2, conv.Len())
}

func TestSubmit_UserMessageBeforeRemoteCall(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	conv := NewConversation(nil, nil)

	req, err := newTestDispatcher(gen).Submit(conv, "halo", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, conv.Len())
	assert.Empty(t, gen.calls())

	pending, intent := conv.Pending()
	assert.True(t, pending)
	assert.Equal(t, IntentChat, intent)

	_, err = req.Run(context.Background())
	require.NoError(t, err)
}

func TestSend_HistoryTurns(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	conv := NewConversation([]models.Message{
		models.NewUserMessage("satu", ""),
		models.NewModelMessage("dua", ""),
		models.NewUserMessage("tiga", ""),
	}, nil)

	_, err := newTestDispatcher(gen, WithHistoryTurns(2)).Send(context.Background(), conv, "empat", nil)
	require.NoError(t, err)

	history := gen.calls()[0].History
	require.Len(t, history, 2)
	assert.Equal(t, "dua", history[0].Text)
	assert.Equal(t, "tiga", history[1].Text)
}

func TestSend_PersistFailureDoesNotAbort(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	conv := NewConversation(nil, &memStore{err: errors.New("read-only")})

	reply, err := newTestDispatcher(gen).Send(context.Background(), conv, "halo", nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text)
	assert.Equal(t, 2, conv.Len())
}

func TestNewDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher(&fakeGenerator{}, fakeLinker{})

	assert.Equal(t, DefaultImageDelay, d.imageDelay)
	assert.Equal(t, 0, d.historyTurns)
	for i := 0; i < 100; i++ {
		seed := d.seed()
		assert.True(t, seed >= 0 && seed < models.ImageSeeds)
	}
}
