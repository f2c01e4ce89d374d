package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type valueKind uint8

const (
	valueNone valueKind = iota
	valueIndex
	valueText
)

// AnswerValue is either an option index or free text. The zero value means no answer.
type AnswerValue struct {
	kind  valueKind
	index int
	text  string
}

// IndexAnswer selects an option by position.
func IndexAnswer(i int) AnswerValue {
	return AnswerValue{kind: valueIndex, index: i}
}

// TextAnswer carries a free-text answer.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{kind: valueText, text: s}
}

func (v AnswerValue) IsZero() bool { return v.kind == valueNone }

func (v AnswerValue) Index() (int, bool) { return v.index, v.kind == valueIndex }

func (v AnswerValue) Text() (string, bool) { return v.text, v.kind == valueText }

// Equal is strict: an index never equals text, even "2" and 2.
func (v AnswerValue) Equal(other AnswerValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case valueIndex:
		return v.index == other.index
	case valueText:
		return v.text == other.text
	default:
		return true
	}
}

func (v AnswerValue) String() string {
	switch v.kind {
	case valueIndex:
		return strconv.Itoa(v.index)
	case valueText:
		return strconv.Quote(v.text)
	default:
		return "null"
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueIndex:
		return []byte(strconv.Itoa(v.index)), nil
	case valueText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = AnswerValue{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
		return nil
	default:
		i, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("answer must be an option index or text: %w", err)
		}
		*v = IndexAnswer(i)
		return nil
	}
}
