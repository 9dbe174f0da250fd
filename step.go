package sawchat

import "fmt"

// StepKind classifies a unit of agent-side work.
type StepKind string

const (
	StepRouter     StepKind = "router"
	StepToolCall   StepKind = "tool_call"
	StepToolResult StepKind = "tool_result"
	StepLLM        StepKind = "llm"
)

// Tool names reported by the agent in tool_call steps.
const (
	ToolTotalCount       = "get_total_consultas"
	ToolDailyAverage     = "get_media_consultas_diaria"
	ToolSpecialtyRanking = "get_ranking_especialidades"
	ToolProviderRanking  = "get_ranking_tipo_atendimento"
	ToolTextToSQL        = "run_generic_text_to_sql_query"
)

// StepInfo describes one step of the agent's work.
type StepInfo struct {
	Type    StepKind
	Tool    string
	Message string
	Args    map[string]any
}

var toolLabels = map[string]string{
	ToolTotalCount:       "Computing total record count.",
	ToolDailyAverage:     "Computing daily average.",
	ToolSpecialtyRanking: "Building specialty ranking.",
	ToolProviderRanking:  "Building provider-type ranking.",
	ToolTextToSQL:        "Generating and executing a data query.",
}

// Describe returns a short progress label for a step. It never fails:
// unknown kinds and tools get a generic label.
func Describe(step StepInfo) string {
	switch step.Type {
	case StepRouter:
		return "Understanding which metric/tool to use."
	case StepToolCall:
		if label, ok := toolLabels[step.Tool]; ok {
			return label
		}
		return fmt.Sprintf("Using tool '%s'.", step.Tool)
	case StepToolResult:
		return "Results obtained; preparing explanation."
	case StepLLM:
		return "Organizing the answer."
	default:
		return "Processing your request."
	}
}
