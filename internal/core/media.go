package core

import "time"

// MediaEvents are the callbacks a media handle reports for one loaded source.
// Handles may invoke them from any goroutine; nil fields are skipped.
type MediaEvents struct {
	MetadataLoaded func(duration time.Duration)
	TimeUpdate     func(position time.Duration)
	Ended          func()
}

// Media is the narrow adapter around a concrete audio output.
//
// Play is asynchronous: resolve is called exactly once with nil when audio
// started or an error when the start request was rejected. Loading a new
// source replaces the previous one and stops its events.
type Media interface {
	Load(track Track, events MediaEvents) error
	Play(resolve func(error))
	Pause()
	Seek(position time.Duration)
	SetVolume(volume float64)
	Unload()
	Close() error
}

// Emit helpers tolerate nil callbacks.

func (e MediaEvents) EmitMetadata(d time.Duration) {
	if e.MetadataLoaded != nil {
		e.MetadataLoaded(d)
	}
}

func (e MediaEvents) EmitTime(p time.Duration) {
	if e.TimeUpdate != nil {
		e.TimeUpdate(p)
	}
}

func (e MediaEvents) EmitEnded() {
	if e.Ended != nil {
		e.Ended()
	}
}
