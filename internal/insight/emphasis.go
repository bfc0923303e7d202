package insight

import "strings"

// EmphasisMarker delimits emphasised text in service recommendations.
const EmphasisMarker = "**"

// Segment is one run of recommendation text.
// Segments alternate plain/emphasis starting with plain, so even indexes are
// plain and odd indexes are emphasised.
type Segment struct {
	Text     string `json:"text"`
	Emphasis bool   `json:"emphasis"`
}

// ParseEmphasis splits text on paired EmphasisMarker sequences.
// The output always has odd length: plain segments may be empty (text that
// starts with a marker yields a leading empty plain segment). A marker pairs
// with the next marker only when no line break lies between them; unpaired
// markers are kept as literal plain text.
func ParseEmphasis(text string) []Segment {
	var out []Segment
	plain, i := 0, 0
	for {
		open := strings.Index(text[i:], EmphasisMarker)
		if open < 0 {
			break
		}
		open += i
		body := open + len(EmphasisMarker)
		closing := strings.Index(text[body:], EmphasisMarker)
		if closing < 0 {
			break
		}
		if strings.ContainsAny(text[body:body+closing], lineBreaks) {
			i = open + 1
			continue
		}
		out = append(out,
			Segment{Text: text[plain:open]},
			Segment{Text: text[body : body+closing], Emphasis: true},
		)
		plain = body + closing + len(EmphasisMarker)
		i = plain
	}
	return append(out, Segment{Text: text[plain:]})
}

// lineBreaks never occur inside an emphasised run.
const lineBreaks = "\n\r\u2028\u2029"

// PlainText joins segments back together without markers.
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
