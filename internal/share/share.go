// Package share renders a question and its answer as plain text suitable
// for pasting into chat apps.
package share

import (
	"strings"

	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
	"github.com/zzy/curiosity-engine-go/internal/storage"
)

const (
	appName       = "好奇心引擎"
	shareTitle    = "我在好奇心引擎发现了一个有趣的问题！"
	questionLabel = "问题："
	answerLabel   = "答案："
)

// Text renders the share text for a question and answer pair.
func Text(question *storage.Question, answer *storage.Answer) (string, error) {
	if question == nil {
		return "", apperrors.ErrQuestionNotFound
	}
	if answer == nil {
		return "", apperrors.ErrAnswerNotFound
	}

	var sb strings.Builder
	sb.WriteString(shareTitle)
	sb.WriteString("\n")
	sb.WriteString(questionLabel)
	sb.WriteString("\n")
	sb.WriteString(question.Content)
	sb.WriteString("\n\n")
	sb.WriteString(answerLabel)
	sb.WriteString("\n")
	sb.WriteString(answer.Content)
	sb.WriteString("\n\n")
	sb.WriteString("——来自 ")
	sb.WriteString(appName)
	return sb.String(), nil
}
