// Package related synthesizes follow-up questions when the model response
// carries none. The question is classified by its interrogative form, the
// matching template set is filled with extracted keywords, and three of the
// candidates are picked at random.
package related

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Count is the number of follow-up questions returned by Generate.
const Count = 3

// Placeholder terms substituted when fewer than three keywords exist.
const (
	placeholderPrimary   = "这个主题"
	placeholderSecondary = "相关内容"
	placeholderTertiary  = "这个领域"
)

// category identifies an interrogative pattern. Matching order is fixed:
// causal, procedural, definitional, enumerative, comparative, then generic.
type category int

const (
	categoryCausal category = iota
	categoryProcedural
	categoryDefinitional
	categoryEnumerative
	categoryComparative
	categoryGeneric
)

var categoryMarkers = []struct {
	cat     category
	markers []string
}{
	{categoryCausal, []string{"为什么", "为何"}},
	{categoryProcedural, []string{"怎么", "如何", "怎样"}},
	{categoryDefinitional, []string{"是什么", "什么是"}},
	{categoryEnumerative, []string{"有哪些", "列举"}},
	{categoryComparative, []string{"区别", "不同"}},
}

// Generator produces follow-up questions from keywords. The randomness
// source is injectable so tests can assert deterministic subsets. Safe for
// concurrent use; rand sources are not, so rng access is locked.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the current time.
func NewGenerator() *Generator {
	return NewGeneratorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGeneratorWithRand creates a generator using the provided randomness source.
func NewGeneratorWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns exactly Count follow-up questions, each ending in a
// question mark. The candidate pool depends on the question's interrogative
// category and the supplied keywords; the selection is random.
func (g *Generator) Generate(question string, keywords []string) []string {
	primary := keywordOr(keywords, 0, placeholderPrimary)
	secondary := keywordOr(keywords, 1, placeholderSecondary)
	tertiary := keywordOr(keywords, 2, placeholderTertiary)

	var candidates []string
	switch classify(question) {
	case categoryCausal:
		candidates = []string{
			fmt.Sprintf("这个%s的科学原理是什么？", primary),
			fmt.Sprintf("%s与%s之间有什么关联？", primary, secondary),
			fmt.Sprintf("%s在历史上是如何被发现和研究的？", primary),
			fmt.Sprintf("%s对%s有什么影响？", primary, tertiary),
			fmt.Sprintf("为什么%s在不同条件下会有不同表现？", primary),
		}
	case categoryProcedural:
		candidates = []string{
			fmt.Sprintf("为什么%s的方法会有效？", primary),
			fmt.Sprintf("除了常规方法外，还有哪些创新方式可以%s？", secondary),
			fmt.Sprintf("%s的过程中最容易出现哪些问题？", primary),
			fmt.Sprintf("专家们是如何高效地%s的？", primary),
			fmt.Sprintf("%s的技术在未来会如何发展？", primary),
		}
	case categoryDefinitional:
		candidates = []string{
			fmt.Sprintf("%s的核心特征是什么？", primary),
			fmt.Sprintf("%s与%s有什么区别和联系？", primary, secondary),
			fmt.Sprintf("%s在%s中扮演什么角色？", primary, tertiary),
			fmt.Sprintf("%s的发展历程是怎样的？", primary),
			fmt.Sprintf("为什么%s对现代社会如此重要？", primary),
		}
	case categoryEnumerative:
		candidates = []string{
			fmt.Sprintf("这些%s有什么共同特点和区别？", primary),
			fmt.Sprintf("在%s领域，哪个%s最具代表性？", secondary, primary),
			fmt.Sprintf("如何评价不同%s的优劣？", primary),
			fmt.Sprintf("这些%s是如何演变发展的？", primary),
			fmt.Sprintf("未来可能会出现哪些新的%s？", primary),
		}
	case categoryComparative:
		candidates = []string{
			fmt.Sprintf("%s和%s在哪些方面最为相似？", primary, secondary),
			fmt.Sprintf("是什么因素导致了%s和%s的差异？", primary, secondary),
			fmt.Sprintf("在实际应用中，如何选择%s或%s？", primary, secondary),
			fmt.Sprintf("%s和%s各自的优势是什么？", primary, secondary),
			fmt.Sprintf("未来%s和%s的发展趋势如何？", primary, secondary),
		}
	default:
		if len(keywords) > 0 {
			candidates = []string{
				fmt.Sprintf("%s的基本原理是什么？", primary),
				fmt.Sprintf("%s在日常生活中有哪些应用？", primary),
				fmt.Sprintf("%s与%s之间有什么关系？", primary, secondary),
				fmt.Sprintf("%s的历史发展过程是怎样的？", primary),
				fmt.Sprintf("未来%s可能会有哪些创新和突破？", primary),
				fmt.Sprintf("%s在不同文化背景下有什么不同理解？", primary),
				fmt.Sprintf("如何评价%s对社会的影响？", primary),
			}
		} else {
			candidates = []string{
				"这个现象背后的原理是什么？",
				"这个问题在历史上是如何被研究的？",
				"这个领域还有哪些相关的重要概念？",
				"这个主题与日常生活有什么联系？",
				"专家们对这个问题有哪些不同见解？",
			}
		}
	}

	g.mu.Lock()
	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	g.mu.Unlock()

	if len(candidates) > Count {
		candidates = candidates[:Count]
	}
	return candidates
}

// classify picks the first category whose marker appears in the question.
func classify(question string) category {
	for _, cm := range categoryMarkers {
		for _, marker := range cm.markers {
			if strings.Contains(question, marker) {
				return cm.cat
			}
		}
	}
	return categoryGeneric
}

func keywordOr(keywords []string, index int, fallback string) string {
	if index < len(keywords) && keywords[index] != "" {
		return keywords[index]
	}
	return fallback
}
