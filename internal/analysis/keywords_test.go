package analysis

import (
	"testing"

	"github.com/climatestory/storyboard/internal/convo"
)

func TestTopKeywords(t *testing.T) {
	records := []*convo.Record{
		{
			Messages: []convo.Turn{
				userTurn("기후 위기 스토리보드, 기후 만화!", "2026-05-13 09:00:00"),
				assistantTurn("기후 기후 기후 기후", "2026-05-13 09:00:10"), // assistant turns never count
				userTurn("스토리보드 장면 구성", "2026-05-13 09:01:00"),
			},
		},
		{
			Messages: []convo.Turn{
				userTurn("기후 장면", "2026-05-13 09:00:00"),
			},
		},
	}

	got := TopKeywords(records, 3)
	if len(got) != 3 {
		t.Fatalf("got %d keywords, want 3", len(got))
	}
	if got[0].Word != "기후" || got[0].Count != 3 {
		t.Errorf("top keyword = %+v, want 기후 x3", got[0])
	}
	// 스토리보드 and 장면 both appear twice; ties break alphabetically.
	if got[1].Word != "스토리보드" || got[1].Count != 2 {
		t.Errorf("second keyword = %+v, want 스토리보드 x2", got[1])
	}
	if got[2].Word != "장면" || got[2].Count != 2 {
		t.Errorf("third keyword = %+v, want 장면 x2", got[2])
	}
}

func TestTopKeywords_FiltersShortAndStopWords(t *testing.T) {
	records := []*convo.Record{
		{
			Messages: []convo.Turn{
				userTurn("그 수 어떻게 탄소", "2026-05-13 09:00:00"),
			},
		},
	}
	got := TopKeywords(records, 10)
	if len(got) != 1 || got[0].Word != "탄소" {
		t.Errorf("TopKeywords = %+v, want only 탄소", got)
	}
}

func TestTopKeywords_LowercasesAndStripsPunctuation(t *testing.T) {
	records := []*convo.Record{
		{
			Messages: []convo.Turn{
				userTurn("Climate! CLIMATE? climate.", "2026-05-13 09:00:00"),
			},
		},
	}
	got := TopKeywords(records, 10)
	if len(got) != 1 || got[0].Word != "climate" || got[0].Count != 3 {
		t.Errorf("TopKeywords = %+v, want climate x3", got)
	}
}

func TestTopKeywords_Empty(t *testing.T) {
	if got := TopKeywords(nil, 5); len(got) != 0 {
		t.Errorf("TopKeywords(nil) = %+v, want empty", got)
	}
}
