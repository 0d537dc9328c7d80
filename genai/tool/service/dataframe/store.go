package dataframe

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/datacrew/internal/dataframe"
)

// Store keeps frames loaded during a crew run keyed by source.
type Store struct {
	mux    sync.RWMutex
	frames map[string]*dataframe.Frame
	latest string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{frames: map[string]*dataframe.Frame{}}
}

// Put stores frame under its source and marks it as the latest.
func (s *Store) Put(frame *dataframe.Frame) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.frames[frame.Source] = frame
	s.latest = frame.Source
}

// Get returns the frame loaded from source, or the latest one when source is empty.
func (s *Store) Get(source string) (*dataframe.Frame, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if source == "" {
		source = s.latest
	}
	if source == "" {
		return nil, fmt.Errorf("no dataset loaded, use DataFrameLoader first")
	}
	frame, ok := s.frames[source]
	if !ok {
		return nil, fmt.Errorf("dataset %s was not loaded (loaded: %s), use DataFrameLoader first", source, strings.Join(s.sources(), ", "))
	}
	return frame, nil
}

// sources returns loaded sources in order; callers hold the lock.
func (s *Store) sources() []string {
	result := make([]string, 0, len(s.frames))
	for source := range s.frames {
		result = append(result, source)
	}
	sort.Strings(result)
	return result
}
