package keyword

// Language bundles the fixed word lists the extractor needs. The pipeline
// ships with Simplified Chinese defaults matching the mobile client; other
// languages can supply their own lists.
type Language struct {
	// QuestionWords are interrogative markers removed before splitting.
	// Longer markers must come before their prefixes (e.g. "如何才能" before "如何").
	QuestionWords []string

	// StopWords are fragments with no topical value. A multi-character
	// fragment containing any stop word as a substring is discarded.
	StopWords []string

	// Splitters are the punctuation runes the text is split on, in addition
	// to spaces.
	Splitters []rune
}

// Chinese returns the default Simplified Chinese language pack.
func Chinese() Language {
	return Language{
		QuestionWords: []string{
			"为什么", "如何才能", "怎么", "如何", "是什么", "有哪些", "列举",
			"什么是", "怎样", "为何", "能否", "可以吗",
		},
		StopWords: []string{
			"的", "是", "在", "了", "吗", "呢", "啊", "哪些", "这个", "那个",
			"一个", "这些", "那些", "和", "与", "以及", "或者", "还是",
		},
		Splitters: []rune{
			' ', '，', '。', '？', '！', '、', '：', '；',
			',', '.', '?', '!', ':', ';',
		},
	}
}
