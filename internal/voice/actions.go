// Package voice defines the dialogue actions the turn controller emits and
// renders them into Twilio call-control markup. The controller only speaks
// this vocabulary; TwiML stays at the transport edge.
package voice

// Action is one instruction to the telephony provider. A controller
// response is an ordered sequence of actions, e.g. Speak then Listen.
type Action interface {
	isAction()
}

// Speak renders spoken text to the caller
type Speak struct {
	Text string
}

// Listen requests the next utterance with a bounded silence timeout
type Listen struct{}

// Redirect hands call control to another callback target
type Redirect struct {
	URL string
}

// Hangup ends the call
type Hangup struct{}

func (Speak) isAction()    {}
func (Listen) isAction()   {}
func (Redirect) isAction() {}
func (Hangup) isAction()   {}
