package share

import (
	"errors"
	"testing"

	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
	"github.com/zzy/curiosity-engine-go/internal/storage"
)

func TestText(t *testing.T) {
	t.Parallel()

	question := &storage.Question{Content: "为什么天空是蓝色的？"}
	answer := &storage.Answer{Content: "因为大气会散射蓝光。"}

	got, err := Text(question, answer)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}

	want := "我在好奇心引擎发现了一个有趣的问题！\n" +
		"问题：\n" +
		"为什么天空是蓝色的？\n\n" +
		"答案：\n" +
		"因为大气会散射蓝光。\n\n" +
		"——来自 好奇心引擎"
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestTextNilArguments(t *testing.T) {
	t.Parallel()

	if _, err := Text(nil, &storage.Answer{}); !errors.Is(err, apperrors.ErrQuestionNotFound) {
		t.Errorf("nil question: err = %v, want ErrQuestionNotFound", err)
	}
	if _, err := Text(&storage.Question{}, nil); !errors.Is(err, apperrors.ErrAnswerNotFound) {
		t.Errorf("nil answer: err = %v, want ErrAnswerNotFound", err)
	}
}
