package models

import (
	"encoding/json"
	"fmt"
)

// Label is the predicted stock movement for a headline.
type Label int

const (
	LabelDownOrFlat Label = iota
	LabelUp
)

func (l Label) String() string {
	switch l {
	case LabelUp:
		return "UP"
	case LabelDownOrFlat:
		return "DOWN_OR_FLAT"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// ParseLabel is the inverse of String.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "UP":
		return LabelUp, nil
	case "DOWN_OR_FLAT":
		return LabelDownOrFlat, nil
	default:
		return 0, fmt.Errorf("unknown label %q", s)
	}
}

func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
