package models

// Blueprint modes. Assembly walks from parts to a finished object,
// disassembly the reverse.
const (
	ModeAssembly    = "assembly"
	ModeDisassembly = "disassembly"
)

// BlueprintStep is one ordered instruction in a blueprint.
type BlueprintStep struct {
	ID            int    `json:"id"`
	Text          string `json:"text"`
	VideoPrompt   string `json:"videoPrompt"`
	DiagramPrompt string `json:"diagramPrompt"`
}

// Blueprint is the structured build/teardown plan parsed from model output.
// Validation is limited to "is it well-formed JSON"; field contents are
// whatever the model produced.
type Blueprint struct {
	Title      string          `json:"title"`
	Mode       string          `json:"mode"`
	Difficulty string          `json:"difficulty"`
	Time       string          `json:"time"`
	Materials  []string        `json:"materials"`
	Tools      []string        `json:"tools"`
	Summary    string          `json:"summary"`
	Steps      []BlueprintStep `json:"steps"`
}
