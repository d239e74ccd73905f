package chat

import "fmt"

// systemPrompt frames the assistant for middle-school storyboard work.
// Carried over verbatim from the classroom deployment so replies keep the
// same register students are used to.
const systemPrompt = `당신은 중학교 3학년 학생들이 기후 위기 관련 스토리보드를 작성하는 것을 돕는 조수입니다.
학생들에게 친절하고 이해하기 쉬운 언어로 응답해 주세요. 핵심 메시지는 기후 위기와 관련된 것이어야 합니다.
스토리보드는 시각적 요소와 내러티브를 결합하여 이야기를 전달합니다.
학생들이 창의적이고 효과적인 스토리보드를 만들 수 있도록 도와주세요.`

// feedbackPrompt asks for rubric-aligned feedback over the whole
// conversation. Sent as a user turn on top of the session history.
const feedbackPrompt = `지금까지의 대화를 바탕으로 내 스토리보드 작업에 대해 다음 항목에 대한 피드백을 제공해주세요:
1. 사용한 프롬프트의 수와 질 (평가 기준에 따른 현재 등급)
2. 스토리보드의 기후 위기 관련성
3. 개선할 점과 강화할 점
4. 발표 시 핵심적으로 강조해야 할 메시지

피드백은 구체적이고 건설적이며 격려하는 방식으로 제공해주세요.`

// apologyMessage replaces a chat reply when generation fails. Generation
// never fails open the way relevance judgments do; the student just sees
// an apology and can retry.
const apologyMessage = "죄송합니다, 응답을 생성하는 중에 오류가 발생했습니다. 다시 시도해 주세요."

// quotaMessage replaces a chat reply once the per-student call cap is hit.
const quotaMessage = "API 호출 횟수가 제한에 도달했습니다. 선생님에게 문의해주세요."

// welcomeMessage greets a student right after registration.
func welcomeMessage(studentName string) string {
	return fmt.Sprintf(`안녕하세요, %s 학생! 기후 위기 스토리보드 작성을 도와드릴게요.

여러분의 스토리보드는 기후 위기에 관한 중요한 메시지를 전달하는 도구가 될 거예요.
어떤 아이디어나 질문이 있으신가요?

예를 들어:
- 특정 기후 문제(해수면 상승, 이상기후, 생물다양성 감소 등)에 초점을 맞추고 싶으신가요?
- 어떤 형식의 스토리보드를 만들고 싶으신가요? (짧은 만화, 시나리오, 광고 등)
- 스토리보드에 어떤 캐릭터나 상황을 포함시키고 싶으신가요?

자유롭게 질문하거나 아이디어를 나눠주세요!`, studentName)
}
