package relevance

import (
	"bytes"
	"text/template"
)

// tokenRelevant / tokenOffTopic are the only two answers the gateway is
// instructed to produce. OFF-TOPIC deliberately does not contain the
// RELEVANT substring, so a contains-check is unambiguous.
const (
	tokenRelevant = "RELEVANT"
	tokenOffTopic = "OFF-TOPIC"
)

const judgeSystemPrompt = `당신은 중학교 수업에서 학생이 기후 위기 스토리보드 과제에 집중하고 있는지 판정하는 채점 보조자입니다.

학생의 발화 하나를 보고 과제와 관련된 의미 있는 프롬프트인지 판단하세요.

RELEVANT로 판정하는 경우:
- 스토리보드의 주제, 구성, 등장인물, 장면에 대한 실질적인 질문이나 아이디어
- 기후 위기 내용(해수면 상승, 탄소 배출, 생물다양성 감소 등)에 대한 논의
- 만화, 시나리오, 광고 등 구체적인 창작·제작 관련 질문
- 발표 준비에 대한 질문

OFF-TOPIC으로 판정하는 경우:
- 인사, 감사 표현, 단순한 맞장구
- 과제와 무관한 잡담
- 매우 짧거나 내용이 없는 답변

반드시 RELEVANT 또는 OFF-TOPIC 중 하나의 단어로만 답하세요. 다른 말은 덧붙이지 마세요.`

var judgeUserTemplate = template.Must(template.New("judge").Parse(`학생의 발화:
{{.Utterance}}`))

func buildJudgeMessage(utterance string) string {
	var buf bytes.Buffer
	// The template cannot fail on a plain string field.
	_ = judgeUserTemplate.Execute(&buf, struct{ Utterance string }{Utterance: utterance})
	return buf.String()
}
