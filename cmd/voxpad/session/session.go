// Package session holds the per-user state that survives across page
// interactions: the latest successful transcription and its detected language.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// State is the per-session transcription state. It is mutated only after a
// successful transcription; failed attempts leave the previous values in
// place, so a user can still score an earlier transcript.
type State struct {
	mut sync.RWMutex

	transcribedText  string
	detectedLanguage string
	hasTranscript    bool
	previewPath      string
}

// SetTranscript stores a successful transcription result and the path of the
// normalized copy kept for playback. It returns the previous preview path so
// the caller can remove the stale working file.
func (s *State) SetTranscript(text, language, previewPath string) (prevPreview string) {
	s.mut.Lock()
	defer s.mut.Unlock()

	prevPreview = s.previewPath
	s.transcribedText = text
	s.detectedLanguage = language
	s.hasTranscript = true
	s.previewPath = previewPath
	return prevPreview
}

// Transcript returns the stored text and language. ok is false until a
// transcription has succeeded in this session.
func (s *State) Transcript() (text, language string, ok bool) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.transcribedText, s.detectedLanguage, s.hasTranscript
}

func (s *State) PreviewPath() string {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.previewPath
}

// Store maps session IDs to their state. Sessions are created on first
// access and start empty.
type Store struct {
	mut      sync.Mutex
	sessions map[string]*State
}

func NewStore() *Store {
	return &Store{
		sessions: map[string]*State{},
	}
}

// NewID generates a fresh session ID.
func (st *Store) NewID() string {
	return uuid.NewString()
}

// Get returns the state for id, creating it if needed.
func (st *Store) Get(id string) *State {
	st.mut.Lock()
	defer st.mut.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		s = &State{}
		st.sessions[id] = s
	}
	return s
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mut.Lock()
	defer st.mut.Unlock()
	return len(st.sessions)
}
