package sawchat

// Answer is the finalized record of a completed turn. Empty SQL and
// DownloadURL mean the agent did not provide them.
type Answer struct {
	Text        string
	SQL         string
	DownloadURL string
}

// Effect is a sealed interface for the observable results of a turn, in the
// order the UI should render them.
type Effect interface {
	effect()
}

// EffectProgress replaces the current progress label.
type EffectProgress struct {
	Label string
}

func (EffectProgress) effect() {}

// EffectAnswer reports a newly streamed fragment and the full answer so far.
type EffectAnswer struct {
	Delta string
	Text  string
}

func (EffectAnswer) effect() {}

// EffectFinal reports the finalized answer.
type EffectFinal struct {
	Answer Answer
}

func (EffectFinal) effect() {}

// EffectArtifact offers a downloaded artifact to the user.
type EffectArtifact struct {
	Artifact Artifact
}

func (EffectArtifact) effect() {}

// EffectArtifactError reports that the artifact of a completed turn could
// not be downloaded. The turn itself still stands.
type EffectArtifactError struct {
	URL string
	Err error
}

func (EffectArtifactError) effect() {}

// Interface compliance checks.
var (
	_ Effect = EffectProgress{}
	_ Effect = EffectAnswer{}
	_ Effect = EffectFinal{}
	_ Effect = EffectArtifact{}
	_ Effect = EffectArtifactError{}
)
