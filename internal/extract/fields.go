// Package extract turns raw document text into structured fields and
// line items by querying the text-generation service.
package extract

// NotFound is the sentinel value a field resolves to when no chunk
// yields a usable answer.
const NotFound = "Not Found"

// Field enumerates the recognized extraction fields. A closed set
// rather than a runtime map, so schema drift fails at compile time.
type Field string

const (
	FieldID             Field = "rfp_id"
	FieldTitle          Field = "rfp_title"
	FieldBuyer          Field = "buyer"
	FieldDeadline       Field = "submission_deadline"
	FieldScopeCategory  Field = "scope_category"
	FieldEstimatedValue Field = "estimated_project_value"
	FieldScopeItems     Field = "scope_items"
)

// FieldSpec pairs a field with the natural-language description the
// prompt is built from.
type FieldSpec struct {
	Field       Field
	Description string
}

// DefaultSchema is the field schema for solicitation documents.
func DefaultSchema() []FieldSpec {
	return []FieldSpec{
		{FieldID, "The official RFP / Tender / Bid reference number or ID."},
		{FieldTitle, "The title or name of the RFP / tender / project."},
		{FieldBuyer, "The organization or authority issuing the RFP."},
		{FieldDeadline, "The final date or date-time for bid submission in YYYY-MM-DD format."},
		{FieldScopeCategory, "Classify the RFP into ONE of these categories ONLY:\n" +
			"- Consulting / Services\n- Works / Materials\n- Goods Supply\n- IT / Software\n- Other"},
		{FieldEstimatedValue, "The estimated project value, tender value, or budget " +
			"(include currency if mentioned, e.g., '₹5.2 Cr', 'Rs. 3 Cr')."},
		{FieldScopeItems, "The number of items or line items in the RFP scope (return as a number, or 0 if not found)."},
	}
}

// FieldMap is one document's extraction output: exactly one value per
// declared field, NotFound when unresolved.
type FieldMap map[Field]string

// Get returns the value for f, or NotFound when absent.
func (m FieldMap) Get(f Field) string {
	if v, ok := m[f]; ok {
		return v
	}
	return NotFound
}
