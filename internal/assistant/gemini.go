package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Gemini talks to the Gemini API. It implements both Connector and Generator.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

var ErrNoAPIKey = errors.New("gemini api key is empty")

// GenerateText runs a single non-streaming completion.
func (g *Gemini) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// Connect opens a live audio session that answers in speech with the given
// prebuilt voice and transcribes both sides of the conversation.
func (g *Gemini) Connect(ctx context.Context, cfg LiveConfig) (LiveSession, error) {
	conf := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}

	sess, err := g.client.Live.Connect(ctx, cfg.Model, conf)
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}
	return &geminiLive{sess: sess, closed: make(chan struct{})}, nil
}

type geminiLive struct {
	sess      *genai.Session
	sendMu    sync.Mutex
	startOnce sync.Once
	closeOnce sync.Once
	closed    chan struct{}
}

func (l *geminiLive) Send(ctx context.Context, chunk AudioChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mime := chunk.MIMEType
	if mime == "" {
		mime = DefaultInputMIMEType
	}

	l.sendMu.Lock()
	defer l.sendMu.Unlock()
	return l.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{MIMEType: mime, Data: chunk.Data},
	})
}

func (l *geminiLive) OnMessage(handler func(Message)) {
	l.startOnce.Do(func() {
		go l.receive(handler)
	})
}

func (l *geminiLive) receive(handler func(Message)) {
	for {
		msg, err := l.sess.Receive()
		if err != nil {
			select {
			case <-l.closed:
			default:
				handler(Message{Err: err})
			}
			return
		}
		if m, ok := toMessage(msg); ok {
			handler(m)
		}
	}
}

func (l *geminiLive) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.sess.Close()
	})
	return err
}

func toMessage(msg *genai.LiveServerMessage) (Message, bool) {
	sc := msg.ServerContent
	if sc == nil {
		return Message{}, false
	}

	var m Message
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p != nil && p.InlineData != nil {
				m.Audio = append(m.Audio, p.InlineData.Data...)
				m.AudioMIMEType = p.InlineData.MIMEType
			}
		}
	}
	if sc.InputTranscription != nil {
		m.InputTranscript = sc.InputTranscription.Text
	}
	if sc.OutputTranscription != nil {
		m.OutputTranscript = sc.OutputTranscription.Text
	}
	m.TurnComplete = sc.TurnComplete
	m.Interrupted = sc.Interrupted
	return m, true
}
