package card

import (
	"fmt"
	"strings"

	"github.com/global-trade-alert/ms-teams-push/internal/model"
)

// maxListed is how many jurisdiction names are shown before summarising.
const maxListed = 5

var evaluationColors = map[string]string{
	"Red":   "attention",
	"Amber": "warning",
	"Green": "good",
}

// DisplayJurisdictions joins names for display. More than five names are cut
// to the first five followed by ", and N more."; an empty list is "N/A".
func DisplayJurisdictions(names []string) string {
	switch {
	case len(names) == 0:
		return model.Placeholder
	case len(names) > maxListed:
		return strings.Join(names[:maxListed], ", ") + fmt.Sprintf(", and %d more.", len(names)-maxListed)
	default:
		return strings.Join(names, ", ")
	}
}

// StatusColor maps a GTA evaluation to an Adaptive Card text color.
func StatusColor(evaluation string) string {
	if c, ok := evaluationColors[evaluation]; ok {
		return c
	}
	return "default"
}

// ForceStatus returns the in-force label and its color.
func ForceStatus(inForce bool) (label, color string) {
	if inForce {
		return "In Force", "good"
	}
	return "Not In Force", "attention"
}

// Build renders one intervention as an Adaptive Card. Missing fields fall back
// to placeholders, so it never fails.
func Build(rec model.Intervention) AdaptiveCard {
	var (
		title         = rec.Str("state_act_title", model.Placeholder)
		url           = rec.Str("intervention_url", "#")
		evaluation    = rec.Str("gta_evaluation", model.Placeholder)
		interventionT = rec.Str("intervention_type", model.Placeholder)
		mastChapter   = rec.Str("mast_chapter", model.Placeholder)
		dateImpl      = rec.Str("date_implemented", model.Placeholder)
		implLevel     = rec.Str("implementation_level", model.Placeholder)
		implementers  = DisplayJurisdictions(rec.Names("implementing_jurisdictions"))
		affected      = DisplayJurisdictions(rec.Names("affected_jurisdictions"))
		numProducts   = rec.Len("affected_products")
		numSectors    = rec.Len("affected_sectors")
	)
	forceLabel, forceColor := ForceStatus(rec.Truthy("is_in_force"))

	return AdaptiveCard{
		Type:    typeAdaptiveCard,
		Schema:  SchemaURL,
		Version: SchemaVersion,
		Body: []Element{
			TextBlock{
				Type:                typeTextBlock,
				Text:                title,
				Weight:              "bolder",
				Size:                "medium",
				Wrap:                true,
				HorizontalAlignment: "Center",
				Style:               "heading",
			},
			ColumnSet{
				Type: typeColumnSet,
				Columns: []Column{
					{
						Type:  typeColumn,
						Width: "stretch",
						Items: []Element{TextBlock{
							Type:    typeTextBlock,
							Text:    "GTA Evaluation: " + evaluation,
							Weight:  "bolder",
							Color:   StatusColor(evaluation),
							Spacing: "small",
						}},
					},
					{
						Type:  typeColumn,
						Width: "stretch",
						Items: []Element{TextBlock{
							Type:                typeTextBlock,
							Text:                "Status: " + forceLabel,
							Weight:              "bolder",
							Color:               forceColor,
							Spacing:             "small",
							HorizontalAlignment: "right",
						}},
					},
				},
			},
			Container{
				Type:    typeContainer,
				Style:   "emphasis",
				Spacing: "medium",
				Items: []Element{FactSet{
					Type:    typeFactSet,
					Spacing: "medium",
					Facts: []Fact{
						{Title: "Intervention Type", Value: interventionT},
						{Title: "MAST Chapter", Value: mastChapter},
						{Title: "Implementation Level", Value: implLevel},
						{Title: "Date Implemented", Value: dateImpl},
						{Title: "Affected Products", Value: fmt.Sprintf("%d product(s)", numProducts)},
						{Title: "Affected Sectors", Value: fmt.Sprintf("%d sector(s)", numSectors)},
					},
				}},
			},
			labelledBlock("**Implementing Jurisdictions:**", implementers),
			labelledBlock("**Affected Jurisdictions:**", affected),
			Container{
				Type:    typeContainer,
				Spacing: "medium",
				Items: []Element{ActionSet{
					Type: typeActionSet,
					Actions: []OpenURL{{
						Type:  typeActionOpenURL,
						Title: "View Full Intervention Details",
						URL:   url,
						Style: "positive",
					}},
				}},
			},
		},
	}
}

func labelledBlock(label, text string) Container {
	return Container{
		Type:    typeContainer,
		Spacing: "medium",
		Items: []Element{
			TextBlock{Type: typeTextBlock, Text: label, Wrap: true, Weight: "bolder", Spacing: "medium"},
			TextBlock{Type: typeTextBlock, Text: text, Wrap: true, Spacing: "small"},
		},
	}
}

// NewMessage wraps a card in the Teams message envelope.
func NewMessage(c AdaptiveCard) Message {
	return Message{
		Type:        MessageType,
		Attachments: []Attachment{{ContentType: AttachmentType, Content: c}},
	}
}

// BuildMessage is Build followed by NewMessage.
func BuildMessage(rec model.Intervention) Message {
	return NewMessage(Build(rec))
}
