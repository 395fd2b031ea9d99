package entities

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ServerMessage is one inbound message from the live API, decoded once
// at the transport boundary. Exactly which of the optional fields are
// set determines the message kind; a single message may carry more
// than one (e.g. a resumption update alongside content).
type ServerMessage struct {
	SetupComplete           *SetupComplete           `json:"setupComplete,omitempty"`
	ServerContent           *ServerContent           `json:"serverContent,omitempty"`
	ToolCall                *ToolCall                `json:"toolCall,omitempty"`
	ToolCallCancellation    *ToolCallCancellation    `json:"toolCallCancellation,omitempty"`
	GoAway                  *GoAway                  `json:"goAway,omitempty"`
	SessionResumptionUpdate *SessionResumptionUpdate `json:"sessionResumptionUpdate,omitempty"`
}

// SetupComplete acknowledges the client's setup frame; the session is
// ready to accept input once it arrives.
type SetupComplete struct{}

// ServerContent carries incremental model output and turn signals.
type ServerContent struct {
	ModelTurn          *Content `json:"modelTurn,omitempty"`
	TurnComplete       bool     `json:"turnComplete,omitempty"`
	Interrupted        bool     `json:"interrupted,omitempty"`
	GenerationComplete bool     `json:"generationComplete,omitempty"`
}

// Content is an ordered list of parts attributed to a role.
type Content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*Part `json:"parts,omitempty"`
}

// Part is a single unit of content: text or an inline binary blob.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// IsAudio reports whether the part carries an inline payload whose
// declared media type is an audio type.
func (p *Part) IsAudio() bool {
	return p != nil && p.InlineData != nil &&
		strings.HasPrefix(strings.ToLower(p.InlineData.MIMEType), "audio/")
}

// Blob is binary data in its transport encoding (base64).
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// NewBlob builds a Blob from raw bytes, applying the transport
// encoding.
func NewBlob(mimeType string, raw []byte) Blob {
	return Blob{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}
}

// ToolCall asks the client to execute one or more function calls.
type ToolCall struct {
	FunctionCalls []*FunctionCall `json:"functionCalls,omitempty"`
}

// FunctionCall is a single tool invocation requested by the model.
type FunctionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name,omitempty"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ToolCallCancellation tells the client to abandon in-flight tool
// calls identified by their IDs.
type ToolCallCancellation struct {
	IDs []string `json:"ids,omitempty"`
}

// GoAway warns that the server will terminate the connection within
// the given time budget. It does not itself close the connection.
type GoAway struct {
	TimeLeft Duration `json:"timeLeft,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// SessionResumptionUpdate reports the latest resumption handle and
// whether the session is currently resumable with it.
type SessionResumptionUpdate struct {
	NewHandle string `json:"newHandle,omitempty"`
	Resumable bool   `json:"resumable,omitempty"`
}

// Duration decodes the wire duration format ("12.5s") into a
// time.Duration.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// ClientMessage is one outbound message to the live API. Exactly one
// field is set per message.
type ClientMessage struct {
	Setup         *Setup         `json:"setup,omitempty"`
	ClientContent *ClientContent `json:"clientContent,omitempty"`
	RealtimeInput *RealtimeInput `json:"realtimeInput,omitempty"`
	ToolResponse  *ToolResponse  `json:"toolResponse,omitempty"`
}

// Setup is the first frame of every connection. A resumption handle,
// when present, asks the server to continue the prior session.
type Setup struct {
	Model             string                   `json:"model"`
	GenerationConfig  *GenerationConfig        `json:"generationConfig,omitempty"`
	SystemInstruction *Content                 `json:"systemInstruction,omitempty"`
	Tools             []*Tool                  `json:"tools,omitempty"`
	SessionResumption *SessionResumptionConfig `json:"sessionResumption,omitempty"`
}

// SessionResumptionConfig requests resumption updates; Handle, when
// non-empty, resumes the identified session.
type SessionResumptionConfig struct {
	Handle string `json:"handle,omitempty"`
}

// GenerationConfig tunes model output for the session.
type GenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// SpeechConfig selects the voice used for audio output.
type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

// Tool declares function tools available to the model.
type Tool struct {
	FunctionDeclarations []*FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// FunctionDeclaration describes one callable function. Parameters is a
// JSON schema object.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ClientContent submits turns of user content. TurnComplete marks the
// end of the logical turn; a content-free, turn-incomplete message is
// a valid keepalive.
type ClientContent struct {
	Turns        []*Content `json:"turns,omitempty"`
	TurnComplete bool       `json:"turnComplete"`
}

// RealtimeInput streams media chunks (audio frames, video frames)
// outside the turn structure.
type RealtimeInput struct {
	MediaChunks []Blob `json:"mediaChunks,omitempty"`
}

// ToolResponse returns the results of previously requested function
// calls.
type ToolResponse struct {
	FunctionResponses []*FunctionResponse `json:"functionResponses,omitempty"`
}

// FunctionResponse is the result of a single function call.
type FunctionResponse struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}
