package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reSerial        = regexp.MustCompile(`^\d{1,3}$`)
	reRepeatedAmt   = regexp.MustCompile(`(?i)^(Amount\s*){2,}`)
	reHeaderPair    = regexp.MustCompile(`(?i)^(Amount|Net|Tax|Total|Type|Rate|Qty|Price)\s+(Amount|Net|Tax|Total|Type|Rate|Qty|Price)`)
	reNumeric       = regexp.MustCompile(`^[\d,.\s₹$€£%]+$`)
	reCurrency      = regexp.MustCompile(`^[₹$€£]\s*[\d,]+\.?\d*$`)
	reNumberOrPct   = regexp.MustCompile(`^(\d+%?|[\d,]+\.?\d*|[₹$€£][\d,]+\.?\d*)$`)
	reTaxType       = regexp.MustCompile(`(?i)^(IGST|CGST|SGST|GST)$`)
	reColumnHeader  = regexp.MustCompile(`(?i)^(Sl\.?\s*No|Unit\s+Price|Qty|Net\s+Amount|Tax\s+Rate|Tax\s+Type|Tax\s+Amount|Total\s+Amount)$`)
	reSymbolChar    = regexp.MustCompile(`[\d₹$€£,%.]`)
	reLetterChar    = regexp.MustCompile(`[a-zA-Z]`)
	reLabelNumber   = regexp.MustCompile(`(?i)^(Amount|Net|Tax|Total|Price|Rate)\s+\d+$`)
	reHSN           = regexp.MustCompile(`(?i)HSN\s*:?\s*(\d+)`)
	reHSNLeftover   = regexp.MustCompile(`(?i)^(Amount|Net|Tax|Total|\d{1,3})$`)
	reLetterRun     = regexp.MustCompile(`[a-zA-Z]{3,}`)
	reUpperCode     = regexp.MustCompile(`^[A-Z0-9\-]{8,}$`)
	reHeaderPrefix  = regexp.MustCompile(`(?i)^(Amount|Net|Tax|Total|Type|Rate|Qty|Price)`)
	stopKeywords    = []string{"TOTAL:", "Subtotal", "Grand Total", "Mode of Payment", "Date & Time", "Transaction"}
	reDescHeader    = regexp.MustCompile(`(?i)\bDescription\b`)
	reASIN          = regexp.MustCompile(`\b(B0[A-Z0-9]{8})\b`)
	reParenCode     = regexp.MustCompile(`\(\s*([A-Z0-9\-]+)\s*\)`)
	reLooseDesc     = regexp.MustCompile(`(?i)\d+\s+([A-Za-z][^₹\d\n]{20,}?)(?:\s*HSN\s*:?\s*(\d+)|\s*₹|\s+\d+\.\d{2})`)
	reLooseHSN      = regexp.MustCompile(`(?i)HSN\s*:?\s*(\d{6,10})`)
	reThreePartSKU  = regexp.MustCompile(`\(\s*([A-Z0-9]+-[A-Z0-9]+-[A-Z0-9]+)\s*\)`)
	reLeadingSerial = regexp.MustCompile(`^\d{1,3}\s+`)
	reNumericTail   = regexp.MustCompile(`\s+[\d,]+\.?\d*\s*$`)
	reTrailingPipe  = regexp.MustCompile(`\s*\|\s*$`)
	reSpaces        = regexp.MustCompile(`\s+`)
	reHeaderTail    = regexp.MustCompile(`(?i)\b(Amount|Net|Tax|Total|Type|Rate)\s+\d*\s*$`)
)

// lineRule classifies one collected line. Rules are tried in order and the first match
// applies; a line no rule matches is dropped.
type lineRule struct {
	name  string
	match func(line string) bool
	apply func(s *segmenter, line string)
}

func matches(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

func discard(*segmenter, string) {}

func numericHeavy(line string) bool {
	nums := len(reSymbolChar.FindAllStringIndex(line, -1))
	letters := len(reLetterChar.FindAllStringIndex(line, -1))
	return nums > letters && nums > 5
}

func captureHSN(s *segmenter, line string) {
	s.hsn = reHSN.FindStringSubmatch(line)[1]
	rest := strings.TrimSpace(reHSN.ReplaceAllString(line, ""))
	if utf8.RuneCountInString(rest) > 3 && !reHSNLeftover.MatchString(rest) {
		s.fragments = append(s.fragments, rest)
	}
}

func descriptive(line string) bool {
	return utf8.RuneCountInString(line) > 5 &&
		reLetterRun.MatchString(line) &&
		!reUpperCode.MatchString(line) &&
		!reHeaderPrefix.MatchString(line)
}

func appendFragment(s *segmenter, line string) {
	s.fragments = append(s.fragments, line)
}

var lineRules = []lineRule{
	{name: "serial number", match: matches(reSerial), apply: discard},
	{name: "repeated amount header", match: matches(reRepeatedAmt), apply: discard},
	{name: "header pair", match: matches(reHeaderPair), apply: discard},
	{name: "numeric", match: matches(reNumeric), apply: discard},
	{name: "currency amount", match: matches(reCurrency), apply: discard},
	{name: "number or percentage", match: matches(reNumberOrPct), apply: discard},
	{name: "tax type", match: matches(reTaxType), apply: discard},
	{name: "column header", match: matches(reColumnHeader), apply: discard},
	{name: "numeric heavy", match: numericHeavy, apply: discard},
	{name: "label with number", match: matches(reLabelNumber), apply: discard},
	{name: "hsn code", match: matches(reHSN), apply: captureHSN},
	{name: "description text", match: descriptive, apply: appendFragment},
}

func isStopLine(line string) bool {
	for _, k := range stopKeywords {
		if strings.Contains(line, k) {
			return true
		}
	}
	return false
}

// cleanDescription strips table residue from a joined description.
func cleanDescription(d string) string {
	if d == "" {
		return d
	}
	d = reLeadingSerial.ReplaceAllString(d, "")
	d = strings.Join(strings.Fields(d), " ")
	d = strings.TrimRight(d, "|,;")
	d = reNumericTail.ReplaceAllString(d, "")
	d = reTrailingPipe.ReplaceAllString(d, "")
	d = reSpaces.ReplaceAllString(d, " ")
	d = reHeaderTail.ReplaceAllString(d, "")
	return strings.TrimSpace(d)
}
