package entities

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func TestServerMessageDecode(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
	raw := `{
		"serverContent": {
			"modelTurn": {
				"role": "model",
				"parts": [
					{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "` + audio + `"}},
					{"text": "hello"}
				]
			},
			"turnComplete": true
		}
	}`

	var msg ServerMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if msg.ServerContent == nil {
		t.Fatal("expected serverContent")
	}
	if !msg.ServerContent.TurnComplete {
		t.Error("expected turnComplete")
	}
	parts := msg.ServerContent.ModelTurn.Parts
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if !parts[0].IsAudio() {
		t.Error("expected first part to be audio")
	}
	if parts[1].IsAudio() {
		t.Error("expected second part to not be audio")
	}
	if parts[1].Text != "hello" {
		t.Errorf("expected text part, got %q", parts[1].Text)
	}
}

func TestGoAwayDurationDecode(t *testing.T) {
	var msg ServerMessage
	if err := json.Unmarshal([]byte(`{"goAway": {"timeLeft": "2.5s"}}`), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.GoAway == nil {
		t.Fatal("expected goAway")
	}
	if got := time.Duration(msg.GoAway.TimeLeft); got != 2500*time.Millisecond {
		t.Errorf("expected 2.5s, got %s", got)
	}
}

func TestGoAwayDurationDecodeInvalid(t *testing.T) {
	var msg ServerMessage
	if err := json.Unmarshal([]byte(`{"goAway": {"timeLeft": "soon"}}`), &msg); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestSessionResumptionUpdateDecode(t *testing.T) {
	var msg ServerMessage
	raw := `{"sessionResumptionUpdate": {"newHandle": "H1", "resumable": true}}`
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u := msg.SessionResumptionUpdate
	if u == nil {
		t.Fatal("expected sessionResumptionUpdate")
	}
	if u.NewHandle != "H1" || !u.Resumable {
		t.Errorf("unexpected update: %+v", u)
	}
}

func TestToolCallDecode(t *testing.T) {
	raw := `{"toolCall": {"functionCalls": [{"id": "fc-1", "name": "lookup", "args": {"q": "weather"}}]}}`
	var msg ServerMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ToolCall == nil || len(msg.ToolCall.FunctionCalls) != 1 {
		t.Fatal("expected one function call")
	}
	fc := msg.ToolCall.FunctionCalls[0]
	if fc.Name != "lookup" || fc.ID != "fc-1" {
		t.Errorf("unexpected function call: %+v", fc)
	}
}

func TestClientMessageSetupEncode(t *testing.T) {
	msg := ClientMessage{
		Setup: &Setup{
			Model:             "models/test",
			SessionResumption: &SessionResumptionConfig{Handle: "H9"},
		},
	}
	b, err := json.Marshal(&msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if _, ok := decoded["setup"]; !ok {
		t.Fatal("expected setup field")
	}
	if _, ok := decoded["clientContent"]; ok {
		t.Fatal("unset fields must be omitted")
	}
}

func TestNewBlobEncodesBase64(t *testing.T) {
	b := NewBlob("audio/pcm", []byte{0xDE, 0xAD})
	raw, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 2 || raw[0] != 0xDE {
		t.Errorf("roundtrip mismatch: %v", raw)
	}
}
