package ws

import (
	"encoding/json"
	"testing"
)

func TestInboundEnvelopeKeepsRawPayload(t *testing.T) {
	data := []byte(`{"type":"select_slot","row":6,"col":3}`)
	var env InboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "select_slot" {
		t.Errorf("type = %q, want select_slot", env.Type)
	}

	var msg SelectSlotMsg
	if err := json.Unmarshal(env.Raw, &msg); err != nil {
		t.Fatalf("unmarshal raw payload: %v", err)
	}
	if msg.Row != 6 || msg.Col != 3 {
		t.Errorf("payload = (%d,%d), want (6,3)", msg.Row, msg.Col)
	}
}

func TestInboundEnvelopeRejectsGarbage(t *testing.T) {
	var env InboundEnvelope
	if err := json.Unmarshal([]byte(`{]`), &env); err == nil {
		t.Error("malformed JSON accepted")
	}
}
