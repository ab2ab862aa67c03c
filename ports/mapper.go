package ports

import (
	"wavetrack/domain/core"
)

// QuestionMapper resolves, per tracked question and per wave, the
// wave-specific column or field identifier to read, supporting questions
// renamed or renumbered between waves. Implemented by the configuration
// layer outside this engine.
type QuestionMapper interface {
	// FieldFor returns the wave-specific identifier for a question, with
	// present=false marking "not fielded in this wave".
	FieldFor(question core.QuestionCode, wave core.WaveID) (field string, present bool)
}

// StaticMapper is the trivial mapper for studies whose questions keep their
// identifiers across every wave.
type StaticMapper struct{}

func (StaticMapper) FieldFor(question core.QuestionCode, wave core.WaveID) (string, bool) {
	return string(question), true
}
