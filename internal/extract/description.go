package extract

import (
	"log/slog"
	"regexp"
	"strings"
)

// descriptionWindow bounds how far below the header the table is read.
const descriptionWindow = 30

type segmentState int

const (
	seekingHeader segmentState = iota
	collecting
	stopped
)

func (s segmentState) String() string {
	switch s {
	case seekingHeader:
		return "seeking_header"
	case collecting:
		return "collecting"
	default:
		return "stopped"
	}
}

// Segment is the line-item block of an invoice.
type Segment struct {
	Description string
	HSNCode     string
	ASIN        string
	SKU         string
}

type segmenter struct {
	state     segmentState
	fragments []string
	raw       []string
	hsn       string
	logger    *slog.Logger
}

// feed consumes one line while collecting. It returns false once the table has ended.
func (s *segmenter) feed(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if isStopLine(line) {
		s.logger.Debug("description table ended", "line", line)
		s.state = stopped
		return false
	}
	s.raw = append(s.raw, line)
	for _, r := range lineRules {
		if r.match(line) {
			s.logger.Debug("description line", "rule", r.name, "line", line)
			r.apply(s, line)
			return true
		}
	}
	return true
}

// finish joins the collected fragments and pulls identifiers out of the raw lines.
func (s *segmenter) finish() Segment {
	s.state = stopped
	seg := Segment{HSNCode: s.hsn}
	desc := strings.TrimSpace(strings.Join(s.fragments, " "))
	raw := strings.Join(s.raw, " ")

	if m := reASIN.FindStringSubmatch(raw); m != nil {
		seg.ASIN = m[1]
		desc = strings.TrimSpace(strings.ReplaceAll(desc, seg.ASIN, ""))
	}
	if m := reParenCode.FindStringSubmatch(raw); m != nil {
		code := m[1]
		if code != seg.ASIN && strings.Contains(code, "-") {
			seg.SKU = code
			strip := regexp.MustCompile(`\(\s*` + regexp.QuoteMeta(code) + `\s*\)`)
			desc = strings.TrimSpace(strip.ReplaceAllString(desc, ""))
		}
	}
	seg.Description = cleanDescription(desc)
	return seg
}

// SegmentDescription reads the line-item table that follows a "Description" header and
// falls back to whole-text searches for anything the table did not yield.
func SegmentDescription(text string, logger *slog.Logger) Segment {
	if logger == nil {
		logger = slog.Default()
	}
	lines := strings.Split(text, "\n")
	s := &segmenter{state: seekingHeader, logger: logger}

	var seg Segment
	for i, line := range lines {
		if !reDescHeader.MatchString(line) {
			continue
		}
		s.state = collecting
		end := min(i+descriptionWindow, len(lines))
		for _, l := range lines[i+1 : end] {
			if !s.feed(l) {
				break
			}
		}
		seg = s.finish()
		break
	}
	if s.state == seekingHeader {
		logger.Debug("description header not found")
	}
	return fallback(text, seg)
}

func fallback(text string, seg Segment) Segment {
	if seg.Description == "" {
		if m := reLooseDesc.FindStringSubmatch(text); m != nil {
			seg.Description = strings.Join(strings.Fields(m[1]), " ")
			if m[2] != "" {
				seg.HSNCode = m[2]
			}
		}
	}
	if seg.HSNCode == "" {
		if m := reLooseHSN.FindStringSubmatch(text); m != nil {
			seg.HSNCode = m[1]
		}
	}
	if seg.ASIN == "" {
		if m := reASIN.FindStringSubmatch(text); m != nil {
			seg.ASIN = m[1]
		}
	}
	if seg.SKU == "" {
		if m := reThreePartSKU.FindStringSubmatch(text); m != nil {
			seg.SKU = m[1]
		}
	}
	return seg
}
