package doctree

import "time"

// SectionType is the semantic role of a section. The set is closed: every
// consumer switches over AllSectionTypes and anything else is treated as
// SectionUnknown.
type SectionType string

const (
	SectionMetadata         SectionType = "metadata"
	SectionRoleOverview     SectionType = "role_overview"
	SectionResponsibilities SectionType = "responsibilities"
	SectionQualifications   SectionType = "qualifications"
	SectionCompensation     SectionType = "compensation"
	SectionCompanyInfo      SectionType = "company_info"
	SectionLegal            SectionType = "legal"
	SectionApplication      SectionType = "application"
	SectionUnknown          SectionType = "unknown"
)

// AllSectionTypes lists every section type in canonical priority order.
func AllSectionTypes() []SectionType {
	return []SectionType{
		SectionMetadata,
		SectionRoleOverview,
		SectionResponsibilities,
		SectionQualifications,
		SectionCompensation,
		SectionCompanyInfo,
		SectionApplication,
		SectionLegal,
		SectionUnknown,
	}
}

// Valid reports whether t is one of the known section types.
func (t SectionType) Valid() bool {
	switch t {
	case SectionMetadata, SectionRoleOverview, SectionResponsibilities,
		SectionQualifications, SectionCompensation, SectionCompanyInfo,
		SectionLegal, SectionApplication, SectionUnknown:
		return true
	}
	return false
}

// Priority is the canonical presentation rank (metadata=0 ... unknown=8).
func (t SectionType) Priority() int {
	switch t {
	case SectionMetadata:
		return 0
	case SectionRoleOverview:
		return 1
	case SectionResponsibilities:
		return 2
	case SectionQualifications:
		return 3
	case SectionCompensation:
		return 4
	case SectionCompanyInfo:
		return 5
	case SectionApplication:
		return 6
	case SectionLegal:
		return 7
	case SectionUnknown:
		return 8
	}
	return 8
}

// RawSection is a contiguous span of the document as cut by the boundary detector.
type RawSection struct {
	ID            string `json:"id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	Content       string `json:"content" yaml:"content"`
	OriginalOrder int    `json:"original_order" yaml:"original_order"`
}

// ClassifiedSection is a RawSection with its semantic type.
type ClassifiedSection struct {
	RawSection `yaml:",inline"`
	Type       SectionType `json:"section_type" yaml:"section_type"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
}

// Bullet is a line item owned by exactly one section.
type Bullet struct {
	ID           string  `json:"id" yaml:"id"`
	Label        string  `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string  `json:"description" yaml:"description"`
	Level        int     `json:"level" yaml:"level"`
	OriginalText string  `json:"original_text" yaml:"original_text"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
}

// ProcessedSection is a classified section with its extracted bullets.
type ProcessedSection struct {
	ClassifiedSection `yaml:",inline"`
	Bullets           []Bullet `json:"bullets" yaml:"bullets"`
}

// JobMetadata holds independently extracted fields. Absent fields are nil.
type JobMetadata struct {
	Title           *string `json:"title" yaml:"title"`
	Company         *string `json:"company" yaml:"company"`
	Location        *string `json:"location" yaml:"location"`
	Salary          *string `json:"salary" yaml:"salary"`
	Date            *string `json:"date" yaml:"date"`
	RequisitionID   *string `json:"requisition_id" yaml:"requisition_id"`
	JobType         *string `json:"job_type" yaml:"job_type"`
	ExperienceLevel *string `json:"experience_level" yaml:"experience_level"`
	Department      *string `json:"department" yaml:"department"`
	Industry        *string `json:"industry" yaml:"industry"`
}

// MissingRequired returns the names of required fields that were not found.
func (m JobMetadata) MissingRequired() []string {
	var missing []string
	if m.Title == nil {
		missing = append(missing, "title")
	}
	if m.Company == nil {
		missing = append(missing, "company")
	}
	if m.Location == nil {
		missing = append(missing, "location")
	}
	return missing
}

// MetadataFields lists JobMetadata fields by their JSON names.
var MetadataFields = []string{
	"title", "company", "location", "salary", "date", "requisition_id",
	"job_type", "experience_level", "department", "industry",
}

func (m *JobMetadata) ref(name string) **string {
	switch name {
	case "title":
		return &m.Title
	case "company":
		return &m.Company
	case "location":
		return &m.Location
	case "salary":
		return &m.Salary
	case "date":
		return &m.Date
	case "requisition_id":
		return &m.RequisitionID
	case "job_type":
		return &m.JobType
	case "experience_level":
		return &m.ExperienceLevel
	case "department":
		return &m.Department
	case "industry":
		return &m.Industry
	}
	return nil
}

// Field returns the named field, or nil when unset or unknown.
func (m *JobMetadata) Field(name string) *string {
	if p := m.ref(name); p != nil {
		return *p
	}
	return nil
}

// SetField assigns the named field. It reports false for unknown names.
func (m *JobMetadata) SetField(name, value string) bool {
	p := m.ref(name)
	if p == nil {
		return false
	}
	*p = &value
	return true
}

// StructureQuality is the composite reliability estimate of a parse.
type StructureQuality struct {
	SectionCompleteness     float64 `json:"section_completeness" yaml:"section_completeness"`
	BulletPointQuality      float64 `json:"bullet_point_quality" yaml:"bullet_point_quality"`
	HierarchicalConsistency float64 `json:"hierarchical_consistency" yaml:"hierarchical_consistency"`
	ContentFidelity         float64 `json:"content_fidelity" yaml:"content_fidelity"`
	OverallStructureScore   float64 `json:"overall_structure_score" yaml:"overall_structure_score"`
}

type Timestamps struct {
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// ProcessingInfo carries the numeric and boolean signals callers use to
// decide on retry or escalation.
type ProcessingInfo struct {
	ParserVersion       string   `json:"parser_version" yaml:"parser_version"`
	ProcessingTimeMs    int64    `json:"processing_time_ms" yaml:"processing_time_ms"`
	OriginalLength      int      `json:"original_length" yaml:"original_length"`
	CleanedLength       int      `json:"cleaned_length" yaml:"cleaned_length"`
	RemovedLines        int      `json:"removed_lines" yaml:"removed_lines"`
	HeadersDetected     int      `json:"headers_detected" yaml:"headers_detected"`
	SectionCount        int      `json:"section_count" yaml:"section_count"`
	BulletCount         int      `json:"bullet_count" yaml:"bullet_count"`
	ContentLossDetected bool     `json:"content_loss_detected" yaml:"content_loss_detected"`
	ValidationPassed    bool     `json:"validation_passed" yaml:"validation_passed"`
	Language            string   `json:"language,omitempty" yaml:"language,omitempty"`
	Warnings            []string `json:"warnings" yaml:"warnings"`
}

// Document is the immutable result of one parse call.
type Document struct {
	DocumentID       string             `json:"document_id" yaml:"document_id"`
	OriginalURL      string             `json:"original_url" yaml:"original_url"`
	Timestamps       Timestamps         `json:"timestamps" yaml:"timestamps"`
	OriginalContent  string             `json:"original_content" yaml:"original_content"`
	CleanedContent   string             `json:"cleaned_content" yaml:"cleaned_content"`
	Sections         []ProcessedSection `json:"sections" yaml:"sections"`
	JobMetadata      JobMetadata        `json:"job_metadata" yaml:"job_metadata"`
	StructureQuality StructureQuality   `json:"structure_quality" yaml:"structure_quality"`
	ProcessingInfo   ProcessingInfo     `json:"processing_info" yaml:"processing_info"`
}

// BulletCount returns the total number of bullets across all sections.
func (d *Document) BulletCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Bullets)
	}
	return n
}
