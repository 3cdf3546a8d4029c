package service

import (
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionMechanism
	sectionRiskRationale
	sectionPatientFriendly
)

var sectionMarkers = []struct {
	marker  string
	section section
}{
	{"SUMMARY:", sectionSummary},
	{"MECHANISM:", sectionMechanism},
	{"RISK_RATIONALE:", sectionRiskRationale},
	{"PATIENT_FRIENDLY:", sectionPatientFriendly},
}

// responseParser splits a completion into the four marked sections. Text before the
// first marker is discarded; a section that reappears replaces its earlier text.
type responseParser struct {
	sections domain.ExplanationSections
	current  section
	buffer   []string
}

// ParseCompletion extracts the four sections from completion text. Missing sections
// are left empty.
func ParseCompletion(content string) domain.ExplanationSections {
	p := &responseParser{}
	for _, line := range strings.Split(content, "\n") {
		p.feed(strings.TrimSpace(line))
	}
	p.flush()
	return p.sections
}

func (p *responseParser) feed(line string) {
	if next, rest, ok := findMarker(line); ok {
		p.flush()
		p.current = next
		if rest != "" {
			p.buffer = append(p.buffer, rest)
		}
		return
	}
	if p.current != sectionNone && line != "" {
		p.buffer = append(p.buffer, line)
	}
}

// flush closes the open section. A section closed without text keeps what it had.
func (p *responseParser) flush() {
	defer func() { p.buffer = p.buffer[:0] }()
	if p.current == sectionNone || len(p.buffer) == 0 {
		return
	}

	text := strings.TrimSpace(strings.Join(p.buffer, " "))
	switch p.current {
	case sectionSummary:
		p.sections.Summary = text
	case sectionMechanism:
		p.sections.Mechanism = text
	case sectionRiskRationale:
		p.sections.RiskRationale = text
	case sectionPatientFriendly:
		p.sections.PatientFriendly = text
	}
}

// findMarker returns the leftmost marker on line and the trimmed text after it
func findMarker(line string) (section, string, bool) {
	best, bestIdx, bestLen := sectionNone, -1, 0
	for _, m := range sectionMarkers {
		idx := strings.Index(line, m.marker)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx, bestLen = m.section, idx, len(m.marker)
		}
	}
	if bestIdx < 0 {
		return sectionNone, "", false
	}
	return best, strings.TrimSpace(line[bestIdx+bestLen:]), true
}
