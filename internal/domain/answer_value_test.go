package domain

import (
	"encoding/json"
	"testing"
)

func TestAnswerValueDecodesNumbersAndText(t *testing.T) {
	var payload struct {
		A AnswerValue `json:"a"`
		B AnswerValue `json:"b"`
		C AnswerValue `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 2, "b": "2", "c": null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if i, ok := payload.A.Index(); !ok || i != 2 {
		t.Fatalf("expected index 2, got %v", payload.A)
	}
	if s, ok := payload.B.Text(); !ok || s != "2" {
		t.Fatalf("expected text \"2\", got %v", payload.B)
	}
	if !payload.C.IsZero() {
		t.Fatalf("expected null to decode as zero value")
	}
	if payload.A.Equal(payload.B) {
		t.Fatalf("index and text must never be equal")
	}
}

func TestAnswerValueRejectsFractions(t *testing.T) {
	var v AnswerValue
	if err := json.Unmarshal([]byte(`1.5`), &v); err == nil {
		t.Fatalf("expected error for fractional index")
	}
}

func TestQuestionJSONKeepsCorrectAnswerForm(t *testing.T) {
	q := Question{ID: "q1", Kind: KindEssay, CorrectAnswer: TextAnswer("free text")}
	raw, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Question
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.CorrectAnswer.Equal(q.CorrectAnswer) {
		t.Fatalf("expected %v, got %v", q.CorrectAnswer, back.CorrectAnswer)
	}
}
