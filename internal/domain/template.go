package domain

// FieldKind is the input type of a template question.
type FieldKind string

const (
	FieldFreeText FieldKind = "free-text"
	FieldDropdown FieldKind = "dropdown"
)

// Field is one question a template asks before generation.
type Field struct {
	ID       string    `json:"id"`
	Kind     FieldKind `json:"type"`
	Question string    `json:"question"`
	Options  []string  `json:"options,omitempty"`
}

// Template drives the AI writer for one kind of content.
type Template struct {
	ID             string  `json:"_id,omitempty"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	AIInstructions string  `json:"aiInstructions"`
	Fields         []Field `json:"fields"`
	Active         bool    `json:"isActive"`
}
