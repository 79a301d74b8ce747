package engine

import "github.com/linecrew/makeready-cli/internal/spida"

// spidaSequence is the engineering pole visitation order, used for backspan
// inference and final report ordering. A nil sequence behaves as empty.
type spidaSequence struct {
	seq   []string
	order map[string]int
}

func newSequence(d *spida.Dataset) *spidaSequence {
	s := &spidaSequence{order: map[string]int{}}
	if d == nil {
		return s
	}
	s.seq = d.Sequence()
	for i, pole := range s.seq {
		if _, dup := s.order[pole]; !dup {
			s.order[pole] = i
		}
	}
	return s
}

// predecessorOf returns the pole visited immediately before norm, or "" when
// norm is first, absent, or the sequence is empty.
func (s *spidaSequence) predecessorOf(norm string) string {
	if s == nil || norm == "" {
		return ""
	}
	i, ok := s.order[norm]
	if !ok || i == 0 {
		return ""
	}
	return s.seq[i-1]
}

// orderOf returns norm's 1-based operation number, 0 when absent.
func (s *spidaSequence) orderOf(norm string) int {
	if s == nil {
		return 0
	}
	i, ok := s.order[norm]
	if !ok {
		return 0
	}
	return i + 1
}
