package interview

import (
	"time"

	"github.com/abhisek/crispterm/internal/resume"
)

// startedMsg is sent when the engine has entered profile collection or
// adopted a recovered session.
type startedMsg struct {
	Err error
}

// resumeParsedMsg is sent when resume file parsing completes.
type resumeParsedMsg struct {
	Parsed *resume.Parsed
	Err    error
}

// beginDoneMsg is sent when question generation has finished and the
// interview is running.
type beginDoneMsg struct {
	Err error
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// answerResolvedMsg is sent when the active question has been resolved,
// by explicit submit or by timer expiry.
type answerResolvedMsg struct{}

// questionEnsuredMsg is sent after a regeneration request for an empty
// question slot completes.
type questionEnsuredMsg struct{}
