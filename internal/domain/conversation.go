package domain

// EditTarget — настройка, которую оператор редактирует в диалоге.
type EditTarget int

const (
	TargetNone EditTarget = iota
	TargetPrimaryTemplate
	TargetFollowUpTemplate
	TargetPassword
)

func (t EditTarget) String() string {
	switch t {
	case TargetPrimaryTemplate:
		return "PrimaryTemplate"
	case TargetFollowUpTemplate:
		return "FollowUpTemplate"
	case TargetPassword:
		return "Password"
	default:
		return "None"
	}
}

// Step — шаг двухфазного протокола редактирования.
type Step int

const (
	StepIdle Step = iota
	StepAwaiting
	StepConfirming
)

// ConversationState — состояние диалога одного чата:
// Idle | Awaiting<Target> | Confirming<Target>(Draft).
type ConversationState struct {
	Step   Step
	Target EditTarget
	Draft  string
}

// IdleState — состояние по умолчанию.
func IdleState() ConversationState { return ConversationState{} }

// AwaitingState — ожидание текста для target.
func AwaitingState(target EditTarget) ConversationState {
	return ConversationState{Step: StepAwaiting, Target: target}
}

// ConfirmingState — черновик получен, ждём подтверждения.
func ConfirmingState(target EditTarget, draft string) ConversationState {
	return ConversationState{Step: StepConfirming, Target: target, Draft: draft}
}

// IsIdle — true для Idle.
func (s ConversationState) IsIdle() bool { return s.Step == StepIdle }

// String — имя варианта, например "ConfirmingPassword".
func (s ConversationState) String() string {
	switch s.Step {
	case StepAwaiting:
		return "Awaiting" + s.Target.String()
	case StepConfirming:
		return "Confirming" + s.Target.String()
	default:
		return "Idle"
	}
}
