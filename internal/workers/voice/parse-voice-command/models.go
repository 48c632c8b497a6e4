package parsevoicecommand

import "crime-case-workers/internal/interpreter"

type Input struct {
	Transcript Transcript     `json:"transcript"`
	Voice      *VoiceSettings `json:"voice,omitempty"`
}

// Transcript is the recognizer output. Interim results arrive with IsFinal false.
type Transcript struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// VoiceSettings are optional synthesis overrides; nil fields fall back to 1.0.
type VoiceSettings struct {
	Rate   *float64 `json:"rate,omitempty"`
	Pitch  *float64 `json:"pitch,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

type Output struct {
	Command interpreter.ParsedCommand `json:"command"`
	Summary string                    `json:"summary"`
	Speech  SpeechReply               `json:"speech"`
}

type SpeechReply struct {
	Utterance string  `json:"utterance"`
	Rate      float64 `json:"rate"`
	Pitch     float64 `json:"pitch"`
	Volume    float64 `json:"volume"`
}
