package chat

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diogo/sanai/internal/api"
	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/logging"
	"github.com/diogo/sanai/internal/models"
)

// DefaultImageDelay gives the image service time to render before the link is shown
const DefaultImageDelay = 3500 * time.Millisecond

// Generator produces chat replies
type Generator interface {
	GenerateContent(ctx context.Context, req api.GenerateRequest) (string, error)
}

// ImageLinker builds the URL of a generated image
type ImageLinker interface {
	ImageURL(prompt string, seed int) string
}

// Dispatcher turns user submissions into remote requests
type Dispatcher struct {
	gen          Generator
	images       ImageLinker
	imageDelay   time.Duration
	historyTurns int
	seed         func() int
	log          logrus.FieldLogger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithImageDelay sets the wait before an image reply is produced
func WithImageDelay(delay time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if delay >= 0 {
			d.imageDelay = delay
		}
	}
}

// WithHistoryTurns sets how many earlier messages go along with a chat request
func WithHistoryTurns(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.historyTurns = n
		}
	}
}

// WithSeed replaces the random image seed source
func WithSeed(seed func() int) DispatcherOption {
	return func(d *Dispatcher) {
		if seed != nil {
			d.seed = seed
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher creates a Dispatcher. *api.Client satisfies both collaborators.
func NewDispatcher(gen Generator, images ImageLinker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gen:        gen,
		images:     images,
		imageDelay: DefaultImageDelay,
		seed:       func() int { return rand.IntN(models.ImageSeeds) },
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Request is a submission whose user message is already in the conversation
// and whose remote call has not run yet.
type Request struct {
	d       *Dispatcher
	conv    *Conversation
	intent  Intent
	input   string
	image   string
	history []models.Message
	user    models.Message
}

// Intent returns the request kind
func (r *Request) Intent() Intent { return r.intent }

// UserMessage returns the message appended by Submit
func (r *Request) UserMessage() models.Message { return r.user }

// Submit validates input, marks the conversation pending and appends the user
// message. The remote call happens in Run.
func (d *Dispatcher) Submit(conv *Conversation, input string, att *Attachment) (*Request, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" && att == nil {
		return nil, apierrors.ErrEmptyInput
	}

	intent := Classify(trimmed, att != nil)
	if err := conv.Begin(intent); err != nil {
		return nil, err
	}

	req := &Request{
		d:       d,
		conv:    conv,
		intent:  intent,
		input:   trimmed,
		image:   att.dataURI(),
		history: d.recentHistory(conv),
	}
	req.user = models.NewUserMessage(trimmed, req.image)

	if err := conv.Append(req.user); err != nil {
		d.log.WithError(err).Warn("failed to persist conversation")
	}

	d.log.WithField("intent", intent.String()).WithField("attachment", att != nil).Debug("submitted")
	return req, nil
}

func (d *Dispatcher) recentHistory(conv *Conversation) []models.Message {
	if d.historyTurns == 0 {
		return nil
	}
	messages := conv.Messages()
	if len(messages) > d.historyTurns {
		messages = messages[len(messages)-d.historyTurns:]
	}
	return messages
}

// Run performs the remote call, appends the reply and clears the pending flag.
// On failure the fallback reply is appended and returned together with the error.
func (r *Request) Run(ctx context.Context) (models.Message, error) {
	defer r.conv.End()

	var (
		reply models.Message
		err   error
	)
	if r.intent == IntentImage {
		reply, err = r.runImage(ctx)
	} else {
		reply, err = r.runChat(ctx)
	}

	if err != nil {
		r.d.log.WithError(err).WithField("intent", r.intent.String()).Warn("request failed")
		reply = models.NewModelMessage(models.TextRequestFailed, "")
	}

	if appendErr := r.conv.Append(reply); appendErr != nil {
		r.d.log.WithError(appendErr).Warn("failed to persist conversation")
	}
	return reply, err
}

func (r *Request) runImage(ctx context.Context) (models.Message, error) {
	prompt := ImagePrompt(r.input)
	url := r.d.images.ImageURL(prompt, r.d.seed())

	if err := sleep(ctx, r.d.imageDelay); err != nil {
		return models.Message{}, err
	}

	r.d.log.WithField("prompt", prompt).Info("image ready")
	return models.NewModelMessage(fmt.Sprintf(models.ImageReplyFormat, prompt), url), nil
}

func (r *Request) runChat(ctx context.Context) (models.Message, error) {
	prompt := r.input
	if prompt == "" {
		prompt = models.DefaultChatPrompt
	}

	text, err := r.d.gen.GenerateContent(ctx, api.GenerateRequest{
		Prompt:       prompt,
		ImageDataURI: r.image,
		History:      r.history,
	})
	if err != nil {
		return models.Message{}, err
	}

	if text == "" {
		text = models.TextEmptyReply
	}
	return models.NewModelMessage(text, ""), nil
}

// Send submits input and waits for the reply
func (d *Dispatcher) Send(ctx context.Context, conv *Conversation, input string, att *Attachment) (models.Message, error) {
	req, err := d.Submit(conv, input, att)
	if err != nil {
		return models.Message{}, err
	}
	return req.Run(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
