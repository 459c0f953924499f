// Package extract turns raw model output into a structured answer. Model
// responses are unreliable: sometimes well-formed JSON, sometimes JSON-ish
// text, sometimes plain prose with marker phrases. Each field is recovered
// by an ordered chain of attempts where the first success wins, so malformed
// input always degrades to a smaller but valid result and never to an error.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RelatedLimit caps the number of related questions kept from a response.
const RelatedLimit = 3

// Marker phrases scanned for when the response is not parseable JSON.
// The primary related marker includes the trailing full-width colon and is
// tried before the looser secondary forms.
const primaryRelatedMarker = "你可能还想知道："

var (
	secondaryRelatedMarkers = []string{
		"你可能还想知道",
		"你可能还会问",
		"相关问题",
		"延伸问题",
		"进一步探索",
	}
	experimentMarkers = []string{"推荐实验：", "小实验：", "实验活动：", "动手实验："}
	gameMarkers       = []string{"推荐游戏：", "小游戏：", "互动游戏：", "趣味游戏："}
)

// DefaultRelatedQuestions is the synthetic last resort when no related
// questions can be recovered from the response by any strategy.
var DefaultRelatedQuestions = []string{
	"为什么会这样呢？",
	"这个现象还有什么例子？",
	"这和我们的日常生活有什么关系？",
}

// Loose key lookups for responses that look like JSON but fail strict
// parsing (truncated output, stray trailing commas, unescaped quotes).
var (
	answerPattern      = regexp.MustCompile(`(?s)"answer"\s*:\s*"(.*?)"`)
	relatedPattern     = regexp.MustCompile(`(?s)"relatedQuestions"\s*:\s*\[(.*?)\]`)
	experimentsPattern = regexp.MustCompile(`(?s)"experiments"\s*:\s*\[(.*?)\]`)
	gamesPattern       = regexp.MustCompile(`(?s)"games"\s*:\s*\[(.*?)\]`)
	quotedPattern      = regexp.MustCompile(`"(.*?)"`)
)

// Strategy names which attempt in the chain produced a field's value.
// Exposed so callers can count how often extraction degrades.
type Strategy string

const (
	StrategyJSON     Strategy = "json"     // strict parse of a well-formed object
	StrategyRegex    Strategy = "regex"    // key pattern match on JSON-shaped text
	StrategyText     Strategy = "text"     // whole trimmed response used as-is
	StrategyMarker   Strategy = "marker"   // marker phrase plus line scan
	StrategySplit    Strategy = "split"    // marker phrase plus question-mark split
	StrategyFallback Strategy = "fallback" // fixed synthetic defaults
	StrategyNone     Strategy = "none"     // nothing recovered, field left empty
)

// Content is the structured result recovered from one model response.
type Content struct {
	Answer           string
	RelatedQuestions []string
	Experiments      []string
	Games            []string
}

// Strategies records the winning attempt per field.
type Strategies struct {
	Answer  Strategy
	Related Strategy
	// Experiments and Games share one chain shape but are tracked apart.
	Experiments Strategy
	Games       Strategy
}

// Result bundles the recovered content with per-field strategy provenance.
type Result struct {
	Content    Content
	Strategies Strategies
}

// Extract recovers structured content from raw model output. It never
// returns an error: the worst case is the trimmed input as the answer,
// the fixed default related questions, and empty experiment/game lists.
func Extract(raw string) Result {
	trimmed := strings.TrimSpace(raw)

	// JSON-shaped is a cheap heuristic, not validation. Text passing it
	// still goes through strict parse and the regex fallback.
	jsonShaped := strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")

	var fields map[string]json.RawMessage
	if jsonShaped {
		if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
			fields = nil
		}
	}

	var res Result
	res.Content.Answer, res.Strategies.Answer = extractAnswer(trimmed, jsonShaped, fields)
	res.Content.RelatedQuestions, res.Strategies.Related = extractRelated(trimmed, jsonShaped, fields)
	res.Content.Experiments, res.Strategies.Experiments = extractList(
		trimmed, jsonShaped, fields, "experiments", experimentsPattern, experimentMarkers)
	res.Content.Games, res.Strategies.Games = extractList(
		trimmed, jsonShaped, fields, "games", gamesPattern, gameMarkers)
	return res
}

func extractAnswer(trimmed string, jsonShaped bool, fields map[string]json.RawMessage) (string, Strategy) {
	attempts := []func() (string, Strategy, bool){
		func() (string, Strategy, bool) {
			raw, ok := fields["answer"]
			if !ok {
				return "", "", false
			}
			var answer string
			if err := json.Unmarshal(raw, &answer); err != nil {
				return "", "", false
			}
			return answer, StrategyJSON, true
		},
		func() (string, Strategy, bool) {
			if !jsonShaped {
				return "", "", false
			}
			m := answerPattern.FindStringSubmatch(trimmed)
			if m == nil {
				return "", "", false
			}
			return m[1], StrategyRegex, true
		},
	}
	for _, attempt := range attempts {
		if value, strategy, ok := attempt(); ok {
			return value, strategy
		}
	}
	return trimmed, StrategyText
}

func extractRelated(trimmed string, jsonShaped bool, fields map[string]json.RawMessage) ([]string, Strategy) {
	attempts := []func() ([]string, Strategy, bool){
		func() ([]string, Strategy, bool) {
			raw, ok := fields["relatedQuestions"]
			if !ok {
				return nil, "", false
			}
			var questions []string
			if err := json.Unmarshal(raw, &questions); err != nil {
				return nil, "", false
			}
			// A present key wins even when the array is empty; the
			// caller decides whether to synthesize follow-ups then.
			return capAt(questions, RelatedLimit), StrategyJSON, true
		},
		func() ([]string, Strategy, bool) {
			if !jsonShaped {
				return nil, "", false
			}
			questions := quotedValues(relatedPattern, trimmed, RelatedLimit)
			return questions, StrategyRegex, len(questions) > 0
		},
		func() ([]string, Strategy, bool) {
			after, found := textAfter(trimmed, primaryRelatedMarker)
			if !found {
				return nil, "", false
			}
			questions := questionLines(after)
			return questions, StrategyMarker, len(questions) > 0
		},
		func() ([]string, Strategy, bool) {
			after, found := textAfter(trimmed, primaryRelatedMarker)
			if !found {
				return nil, "", false
			}
			questions := splitQuestions(after)
			return questions, StrategySplit, len(questions) > 0
		},
		func() ([]string, Strategy, bool) {
			for _, marker := range secondaryRelatedMarkers {
				after, found := textAfter(trimmed, marker)
				if !found {
					continue
				}
				if questions := splitQuestions(after); len(questions) > 0 {
					return questions, StrategySplit, true
				}
			}
			return nil, "", false
		},
	}
	for _, attempt := range attempts {
		if questions, strategy, ok := attempt(); ok {
			return questions, strategy
		}
	}
	defaults := make([]string, len(DefaultRelatedQuestions))
	copy(defaults, DefaultRelatedQuestions)
	return defaults, StrategyFallback
}

// extractList handles the experiments and games fields, which share a chain:
// strict JSON, then the key regex, then a marker scan bounded by the next
// blank line. Unlike related questions there is no synthetic fallback and
// no cap.
func extractList(trimmed string, jsonShaped bool, fields map[string]json.RawMessage,
	key string, pattern *regexp.Regexp, markers []string) ([]string, Strategy) {
	attempts := []func() ([]string, Strategy, bool){
		func() ([]string, Strategy, bool) {
			raw, ok := fields[key]
			if !ok {
				return nil, "", false
			}
			var items []string
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, "", false
			}
			return items, StrategyJSON, true
		},
		func() ([]string, Strategy, bool) {
			if !jsonShaped {
				return nil, "", false
			}
			items := quotedValues(pattern, trimmed, 0)
			return items, StrategyRegex, len(items) > 0
		},
		func() ([]string, Strategy, bool) {
			for _, marker := range markers {
				after, found := textAfter(trimmed, marker)
				if !found {
					continue
				}
				if end := strings.Index(after, "\n\n"); end >= 0 {
					after = after[:end]
				}
				if items := nonBlankLines(after); len(items) > 0 {
					return items, StrategyMarker, true
				}
			}
			return nil, "", false
		},
	}
	for _, attempt := range attempts {
		if items, strategy, ok := attempt(); ok {
			return items, strategy
		}
	}
	return []string{}, StrategyNone
}

// quotedValues applies a key pattern, then pulls the quoted strings out of
// the captured array body. A limit of 0 means unbounded.
func quotedValues(pattern *regexp.Regexp, text string, limit int) []string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var values []string
	for _, quoted := range quotedPattern.FindAllStringSubmatch(m[1], -1) {
		values = append(values, quoted[1])
		if limit > 0 && len(values) == limit {
			break
		}
	}
	return values
}

func textAfter(content, marker string) (string, bool) {
	idx := strings.Index(content, marker)
	if idx < 0 {
		return "", false
	}
	return content[idx+len(marker):], true
}

// questionLines keeps non-blank lines ending in a question mark, half or
// full width, capped at RelatedLimit.
func questionLines(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, "?") && !strings.HasSuffix(line, "？") {
			continue
		}
		questions = append(questions, line)
		if len(questions) == RelatedLimit {
			break
		}
	}
	return questions
}

// splitQuestions cuts text on question marks of either width and restores a
// full-width mark on each non-blank fragment, capped at RelatedLimit.
func splitQuestions(text string) []string {
	var questions []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '?' || r == '？'
	}) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		questions = append(questions, part+"？")
		if len(questions) == RelatedLimit {
			break
		}
	}
	return questions
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func capAt(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
