package types

// Record type numbers as they appear in exported JSON.
const (
	TypeHeader      = 1
	TypeLineItem    = 2
	TypeInstallment = 4
	TypeDetail      = 8
)

// DecodedLine is one line sliced into typed fields.
type DecodedLine struct {
	LineNumber    int
	Discriminator string
	Fields        Fields
}

// HeaderRecord is the top of the record tree. It exclusively owns its line
// items and installments. Orphan marks headers synthesized for child lines
// that appeared before any header line.
type HeaderRecord struct {
	Type         int                  `json:"type"`
	Fields       Fields               `json:"fields"`
	LineItems    []*LineItemRecord    `json:"lineItems"`
	Installments []*InstallmentRecord `json:"installments"`
	Orphan       bool                 `json:"orphan,omitempty"`
}

// LineItemRecord belongs to a header and owns its details. Placeholder marks
// items synthesized for detail lines with no preceding item line.
type LineItemRecord struct {
	Type        int             `json:"type"`
	Fields      Fields          `json:"fields"`
	Details     []*DetailRecord `json:"details"`
	Placeholder bool            `json:"placeholder,omitempty"`
}

// DetailRecord is a leaf under a line item.
type DetailRecord struct {
	Type   int    `json:"type"`
	Fields Fields `json:"fields"`
}

// InstallmentRecord is a leaf under a header.
type InstallmentRecord struct {
	Type   int    `json:"type"`
	Fields Fields `json:"fields"`
}

// NewHeaderRecord creates a header with empty child sequences.
func NewHeaderRecord(fields Fields) *HeaderRecord {
	return &HeaderRecord{
		Type:         TypeHeader,
		Fields:       nonNilFields(fields),
		LineItems:    []*LineItemRecord{},
		Installments: []*InstallmentRecord{},
	}
}

// NewLineItemRecord creates a line item with no details.
func NewLineItemRecord(fields Fields) *LineItemRecord {
	return &LineItemRecord{
		Type:    TypeLineItem,
		Fields:  nonNilFields(fields),
		Details: []*DetailRecord{},
	}
}

// NewDetailRecord creates a detail leaf.
func NewDetailRecord(fields Fields) *DetailRecord {
	return &DetailRecord{Type: TypeDetail, Fields: nonNilFields(fields)}
}

// NewInstallmentRecord creates an installment leaf.
func NewInstallmentRecord(fields Fields) *InstallmentRecord {
	return &InstallmentRecord{Type: TypeInstallment, Fields: nonNilFields(fields)}
}

func nonNilFields(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return f
}
