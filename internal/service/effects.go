package service

type EffectKind string

const (
	EffectPlaySound      EffectKind = "play_sound"
	EffectStartNarration EffectKind = "start_narration"
	EffectShowHint       EffectKind = "show_hint"
	EffectCelebrate      EffectKind = "celebrate"
)

const (
	SoundStart     = "start"
	SoundExplosion = "explosion"
	SoundPerfect   = "perfect"
	SoundGreat     = "great"
	SoundMiss      = "miss"
)

// Effect is a presentation side effect produced by a transition. The engine never performs them itself.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Sound string     `json:"sound,omitempty"`
	Text  string     `json:"text,omitempty"`
	Asset string     `json:"asset,omitempty"`
}

func playSound(name string) Effect {
	return Effect{Kind: EffectPlaySound, Sound: name}
}

func resultEffects(score int) []Effect {
	switch {
	case score >= 5:
		return []Effect{playSound(SoundPerfect), {Kind: EffectCelebrate}}
	case score == 4:
		return []Effect{playSound(SoundGreat)}
	default:
		return []Effect{playSound(SoundMiss)}
	}
}
