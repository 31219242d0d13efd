package card

// Adaptive Card 1.5 elements used by the intervention card. Only the
// properties the card sets are modelled; zero values are omitted.

const (
	SchemaURL         = "http://adaptivecards.io/schemas/adaptive-card.json"
	SchemaVersion     = "1.5"
	AttachmentType    = "application/vnd.microsoft.card.adaptive"
	MessageType       = "message"
	typeAdaptiveCard  = "AdaptiveCard"
	typeTextBlock     = "TextBlock"
	typeColumnSet     = "ColumnSet"
	typeColumn        = "Column"
	typeContainer     = "Container"
	typeFactSet       = "FactSet"
	typeActionSet     = "ActionSet"
	typeActionOpenURL = "Action.OpenUrl"
)

// Element is any item that may appear in a card body or container.
type Element interface {
	element()
}

type AdaptiveCard struct {
	Type    string    `json:"type"`
	Schema  string    `json:"$schema"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
}

type TextBlock struct {
	Type                string `json:"type"`
	Text                string `json:"text"`
	Weight              string `json:"weight,omitempty"`
	Size                string `json:"size,omitempty"`
	Color               string `json:"color,omitempty"`
	Wrap                bool   `json:"wrap,omitempty"`
	Spacing             string `json:"spacing,omitempty"`
	HorizontalAlignment string `json:"horizontalAlignment,omitempty"`
	Style               string `json:"style,omitempty"`
}

type ColumnSet struct {
	Type    string   `json:"type"`
	Columns []Column `json:"columns"`
}

type Column struct {
	Type  string    `json:"type"`
	Width string    `json:"width,omitempty"`
	Items []Element `json:"items"`
}

type Container struct {
	Type    string    `json:"type"`
	Style   string    `json:"style,omitempty"`
	Spacing string    `json:"spacing,omitempty"`
	Items   []Element `json:"items"`
}

type FactSet struct {
	Type    string `json:"type"`
	Spacing string `json:"spacing,omitempty"`
	Facts   []Fact `json:"facts"`
}

type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type ActionSet struct {
	Type    string    `json:"type"`
	Actions []OpenURL `json:"actions"`
}

type OpenURL struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"`
}

func (TextBlock) element() {}
func (ColumnSet) element() {}
func (Container) element() {}
func (FactSet) element() {}
func (ActionSet) element() {}

// Message is the Teams webhook envelope carrying one card attachment.
type Message struct {
	Type        string       `json:"type"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	ContentType string       `json:"contentType"`
	Content     AdaptiveCard `json:"content"`
}
