package assistant

import "context"

// DefaultInputMIMEType is 16 kHz mono little-endian PCM, the format the live
// model expects from a microphone.
const DefaultInputMIMEType = "audio/pcm;rate=16000"

// AudioChunk is one slice of captured microphone audio.
type AudioChunk struct {
	Data     []byte
	MIMEType string
}

type LiveConfig struct {
	Model             string
	Voice             string
	SystemInstruction string
}

// Message is one event from the live model. Err is set once when the session
// ends abnormally; no messages follow it.
type Message struct {
	Audio            []byte `json:"audio,omitempty"`
	AudioMIMEType    string `json:"audio_mime_type,omitempty"`
	InputTranscript  string `json:"input_transcript,omitempty"`
	OutputTranscript string `json:"output_transcript,omitempty"`
	TurnComplete     bool   `json:"turn_complete,omitempty"`
	Interrupted      bool   `json:"interrupted,omitempty"`
	Err              error  `json:"-"`
}

// Connector opens live sessions with a hosted model.
type Connector interface {
	Connect(ctx context.Context, cfg LiveConfig) (LiveSession, error)
}

// LiveSession is a bidirectional audio conversation. OnMessage must be called
// once before the first Send; the handler runs on the session's receive
// goroutine.
type LiveSession interface {
	Send(ctx context.Context, chunk AudioChunk) error
	OnMessage(handler func(Message))
	Close() error
}
