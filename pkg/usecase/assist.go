package usecase

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// AssistUseCase drafts text for risks from fixed templates. No language
// model is called.
type AssistUseCase struct{}

func NewAssistUseCase() *AssistUseCase {
	return &AssistUseCase{}
}

type SummarizeInput struct {
	Title       string
	Description string
	Severity    types.Severity
	Status      types.RiskStatus
}

type DraftMitigationInput struct {
	RiskTitle       string
	RiskDescription string
	Severity        types.Severity
}

const urgencySentence = "Given its high severity, immediate action is recommended. "

var mitigationSteps = []string{
	"Assess the current state and identify gaps",
	"Implement technical controls to address the vulnerability",
	"Establish monitoring and alerting",
	"Document the mitigation plan and assign ownership",
	"Schedule regular reviews to ensure effectiveness",
}

// Summarize returns a short summary. High and critical risks get an
// urgency sentence.
func (uc *AssistUseCase) Summarize(input SummarizeInput) string {
	var b strings.Builder
	b.WriteString("This risk requires attention. ")
	if input.Severity.IsUrgent() {
		b.WriteString(urgencySentence)
	}
	b.WriteString("Consider implementing appropriate mitigations to reduce the risk to an acceptable level.")
	return b.String()
}

// DraftMitigation returns a numbered list of mitigation actions
func (uc *AssistUseCase) DraftMitigation(input DraftMitigationInput) string {
	var b strings.Builder
	b.WriteString("Recommended mitigation actions:")
	if input.Severity.IsUrgent() {
		b.WriteString(" " + strings.TrimSpace(urgencySentence))
	}
	for i, step := range mitigationSteps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	return b.String()
}
