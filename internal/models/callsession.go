package models

import (
	"time"
)

// CallState tracks where a call is in the dialogue state machine
type CallState string

const (
	StateGreeting      CallState = "greeting"
	StateAwaitingInput CallState = "awaiting_input"
	StateProcessing    CallState = "processing"
	StateEscalated     CallState = "escalated"
	StateTerminated    CallState = "terminated"
)

// Speaker identifies who produced a turn in the transcript
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one utterance in a call's transcript
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// CallSession holds the conversational state for one active phone call.
// Sessions live in memory only and die with the call.
type CallSession struct {
	SessionID              string    `json:"session_id"`
	CallID                 string    `json:"call_id"`       // provider call SID, primary key
	CallerNumber           string    `json:"caller_number"` // immutable after creation
	Turns                  []Turn    `json:"turns"`         // append-only transcript
	LastUserUtterance      string    `json:"last_user_utterance"`
	ConsecutiveEmptyInputs int       `json:"consecutive_empty_inputs"`
	State                  CallState `json:"state"`
	CreatedAt              time.Time `json:"created_at"`
	LastTouchedAt          time.Time `json:"last_touched_at"`
}

// AppendTurn records an utterance at the end of the transcript
func (s *CallSession) AppendTurn(speaker Speaker, text string) {
	s.Turns = append(s.Turns, Turn{
		Speaker: speaker,
		Text:    text,
		At:      time.Now(),
	})
}

// Terminal reports whether the session reached an absorbing state
func (s *CallSession) Terminal() bool {
	return s.State == StateEscalated || s.State == StateTerminated
}
