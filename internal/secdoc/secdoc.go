package secdoc

// SectionType classifies a section for the renderer's styling decisions.
type SectionType string

const (
	TypeHeading    SectionType = "heading"
	TypeSubheading SectionType = "subheading"
	TypeContent    SectionType = "content"
	TypeList       SectionType = "list"
	TypeBullet     SectionType = "bullet"
	TypeParagraph  SectionType = "paragraph"
	TypeQuote      SectionType = "quote"
	TypeEmphasis   SectionType = "emphasis"
)

// FragmentStyle is a pure formatting annotation. It carries no markup and no
// rendering-technology assumptions.
type FragmentStyle string

const (
	StylePlain       FragmentStyle = "plain"
	StyleBold        FragmentStyle = "bold"
	StyleItalic      FragmentStyle = "italic"
	StyleEmphasis    FragmentStyle = "emphasis"
	StyleHighlight   FragmentStyle = "highlight"
	StyleQuote       FragmentStyle = "quote"
	StyleKey         FragmentStyle = "keyvalue-key"
	StyleValue       FragmentStyle = "keyvalue-value"
	StyleStructural  FragmentStyle = "structural"
	StylePunctuation FragmentStyle = "punctuation"
	StyleHeading     FragmentStyle = "heading"
	StyleParagraph   FragmentStyle = "paragraph"
)

// Fragment is the smallest formatted unit of decoded content.
type Fragment struct {
	Text  string        `json:"text"`
	Style FragmentStyle `json:"style"`
}

// Section is one flat entry in the decoder's output. The result of a decode is
// an ordered []Section in pre-order of the source value; a renderer rebuilds
// visual nesting purely from Level and ordering. There is no parent pointer.
type Section struct {
	Heading string      `json:"heading"`
	Content []Fragment  `json:"content"`
	Level   int         `json:"level"`
	Type    SectionType `json:"type"`
}

// TypeForLevel maps nesting depth to the default section type.
func TypeForLevel(level int) SectionType {
	switch level {
	case 0:
		return TypeHeading
	case 1:
		return TypeSubheading
	default:
		return TypeContent
	}
}
