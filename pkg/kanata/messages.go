package kanata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type layer struct {
	New string `json:"new"`
}

// ClientMessage is sent to kanata.
type ClientMessage struct {
	ChangeLayer *layer `json:"ChangeLayer,omitempty"`
}

func ChangeLayer(name string) ClientMessage {
	return ClientMessage{ChangeLayer: &layer{New: name}}
}

func EncodeChangeLayer(name string) ([]byte, error) {
	msg, err := json.Marshal(ChangeLayer(name))
	if err != nil {
		return nil, fmt.Errorf("marshal change layer: %w", err)
	}
	return msg, nil
}

// ParseLayerChange accepts exactly {"LayerChange":{"new":"<layer>"}} with a
// non-empty layer. Keys are matched case-sensitively and may not repeat,
// which encoding/json's struct decoding does not enforce.
func ParseLayerChange(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	expect := func(want json.Token) error {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		if tok != want {
			return fmt.Errorf("got %v, want %v: %w", tok, want, ErrProtocol)
		}
		return nil
	}

	for _, want := range []json.Token{json.Delim('{'), "LayerChange", json.Delim('{'), "new"} {
		if err := expect(want); err != nil {
			return "", err
		}
	}

	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	name, ok := tok.(string)
	if !ok || name == "" {
		return "", fmt.Errorf("layer name %v: %w", tok, ErrProtocol)
	}

	for _, want := range []json.Token{json.Delim('}'), json.Delim('}')} {
		if err := expect(want); err != nil {
			return "", err
		}
	}

	return name, nil
}
