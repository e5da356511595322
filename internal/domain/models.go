// Package domain defines the persistence models for uploaded resumes,
// extracted/summarized artifacts, generated outputs, provider telemetry,
// and accounts. These types are mapped with GORM and form the core data
// layer of the resume-roaster application.
//
// Every content-addressed entity is immutable once created: the row keyed
// by a content hash is never updated, and regeneration always inserts a
// new row. Only Account carries mutable counters.
package domain

import "time"

// Extraction methods recorded on extracted documents.
const (
	MethodBasic  = "basic"
	MethodText   = "text"
	MethodVision = "vision"
)

// Subscription tiers.
const (
	TierFree    = "free"
	TierPlus    = "plus"
	TierPremium = "premium"
)

// Generated artifact kinds.
const (
	KindRoast           = "roast"
	KindCoverLetter     = "cover_letter"
	KindOptimizedResume = "optimized_resume"
	KindInterviewPrep   = "interview_prep"
)

// ValidArtifactKind reports whether kind is one of the supported artifact
// kinds.
func ValidArtifactKind(kind string) bool {
	switch kind {
	case KindRoast, KindCoverLetter, KindOptimizedResume, KindInterviewPrep:
		return true
	}
	return false
}

// Provider call statuses.
const (
	CallCompleted = "completed"
	CallFailed    = "failed"
	CallTimeout   = "timeout"
)

// RawDocument identifies an uploaded file by the digest of its raw bytes.
// The first upload of a given byte sequence creates the row; subsequent
// uploads of identical bytes resolve to it. Anonymous rows (no OwnerID)
// are eligible for the retention sweep.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FileHash: SHA-256 hex digest of the raw file bytes (unique).
//   - Filename / MimeType: as supplied by the uploader.
//   - OwnerID: optional owner; nil for anonymous uploads.
//   - PageImages: JSON array of base64 page renderings, when available.
//   - Metadata: free-form JSON blob (page count, byte size, ...).
type RawDocument struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	FileHash   string    `json:"file_hash"   gorm:"type:char(64);not null;uniqueIndex:ux_raw_file_hash"`
	Filename   string    `json:"filename"    gorm:"type:varchar(255);not null"`
	MimeType   string    `json:"mime_type"   gorm:"type:varchar(64);not null"`
	OwnerID    *string   `json:"owner_id,omitempty" gorm:"type:varchar(64);index:idx_raw_owner"`
	PageImages string    `json:"-"           gorm:"type:text"`
	Metadata   string    `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for RawDocument.
func (RawDocument) TableName() string { return "raw_documents" }

// ExtractedDocument is the structured data parsed from a RawDocument.
// One raw document may yield several extracted rows over time (prompt or
// schema revisions change the normalized content, hence a distinct hash
// from the source fingerprint).
//
// Fields:
//   - ContentHash: digest of the normalized extracted content (unique).
//   - RawDocumentID: source upload.
//   - Payload: versioned JSON document (see SchemaVersion).
//   - Method / Provider / Model: provenance of the extraction.
type ExtractedDocument struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ContentHash   string    `json:"content_hash"    gorm:"type:char(64);not null;uniqueIndex:ux_extracted_content_hash"`
	RawDocumentID string    `json:"raw_document_id" gorm:"type:char(36);not null;index"`
	Payload       string    `json:"payload"         gorm:"type:text;not null"`
	SchemaVersion int       `json:"schema_version"  gorm:"not null;default:1"`
	Method        string    `json:"method"          gorm:"type:varchar(16);not null;check:method IN ('basic','text','vision')"`
	Provider      string    `json:"provider,omitempty" gorm:"type:varchar(32)"`
	Model         string    `json:"model,omitempty"    gorm:"type:varchar(64)"`
	CreatedAt     time.Time `json:"created_at"`

	// RawDocument is the source upload. Extracted rows are cascade-deleted
	// when the upload is purged by the retention sweep.
	RawDocument RawDocument `json:"-" gorm:"foreignKey:RawDocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ExtractedDocument.
func (ExtractedDocument) TableName() string { return "extracted_documents" }

// ExtractedJobPosting is the structured data parsed from free-text job
// descriptions, keyed by the digest of the normalized job text. It is not
// linked to an upload.
type ExtractedJobPosting struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	ContentHash   string    `json:"content_hash"   gorm:"type:char(64);not null;uniqueIndex:ux_jobposting_content_hash"`
	Payload       string    `json:"payload"        gorm:"type:text;not null"`
	SchemaVersion int       `json:"schema_version" gorm:"not null;default:1"`
	Provider      string    `json:"provider,omitempty" gorm:"type:varchar(32)"`
	Model         string    `json:"model,omitempty"    gorm:"type:varchar(64)"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name for ExtractedJobPosting.
func (ExtractedJobPosting) TableName() string { return "extracted_job_postings" }

// SummarizedDocument is a condensed derivative of an ExtractedDocument,
// independently content-addressed so a new summarization prompt version
// produces a new row rather than shadowing the old one.
type SummarizedDocument struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ContentHash string    `json:"content_hash" gorm:"type:char(64);not null;uniqueIndex:ux_summary_doc_hash"`
	SourceID    string    `json:"source_id"    gorm:"type:char(36);not null;index"`
	Summary     string    `json:"summary"      gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for SummarizedDocument.
func (SummarizedDocument) TableName() string { return "summarized_documents" }

// SummarizedJobPosting is the job-posting counterpart of SummarizedDocument.
type SummarizedJobPosting struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ContentHash string    `json:"content_hash" gorm:"type:char(64);not null;uniqueIndex:ux_summary_job_hash"`
	SourceID    string    `json:"source_id"    gorm:"type:char(36);not null;index"`
	Summary     string    `json:"summary"      gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for SummarizedJobPosting.
func (SummarizedJobPosting) TableName() string { return "summarized_job_postings" }

// GeneratedArtifact is the output of an LLM generation step (roast, cover
// letter, optimized resume, interview prep). The hash covers the exact set
// of inputs that determined it, so a cache hit returns the existing row.
// Regenerating with bypass_cache inserts a new row; rows are never updated.
//
// Fields:
//   - Kind: artifact variant (see Kind* constants).
//   - ContentHash: digest over source text + job text + template/analysis
//     ids; unique per kind.
//   - Payload: versioned JSON artifact body.
//   - Score / MatchedKeywords / Tone / Difficulty: kind-specific side
//     metadata (zero-valued when not applicable).
type GeneratedArtifact struct {
	ID              string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Kind            string    `json:"kind"         gorm:"type:varchar(32);not null;uniqueIndex:ux_artifact_kind_hash,priority:1;check:kind IN ('roast','cover_letter','optimized_resume','interview_prep')"`
	ContentHash     string    `json:"content_hash" gorm:"type:char(64);not null;uniqueIndex:ux_artifact_kind_hash,priority:2"`
	OwnerID         *string   `json:"owner_id,omitempty" gorm:"type:varchar(64);index:idx_artifact_owner"`
	Payload         string    `json:"payload"      gorm:"type:text;not null"`
	SchemaVersion   int       `json:"schema_version" gorm:"not null;default:1"`
	Score           *int      `json:"score,omitempty"`
	MatchedKeywords string    `json:"matched_keywords,omitempty" gorm:"type:text"`
	Tone            string    `json:"tone,omitempty"       gorm:"type:varchar(32)"`
	Difficulty      string    `json:"difficulty,omitempty" gorm:"type:varchar(32)"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for GeneratedArtifact.
func (GeneratedArtifact) TableName() string { return "generated_artifacts" }

// ProviderCall records one external AI invocation: token counts, cost,
// latency, outcome, and a link to whatever artifact it produced. Child
// ProviderCallMessage rows keep the per-turn slices so multi-turn
// tool-calling conversations can be audited turn by turn.
//
// CostUSD is a fixed-point decimal serialized as a string with six
// fractional digits.
type ProviderCall struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Provider     string    `json:"provider"      gorm:"type:varchar(32);not null;index:idx_call_provider"`
	Model        string    `json:"model"         gorm:"type:varchar(64);not null"`
	Operation    string    `json:"operation"     gorm:"type:varchar(32);not null"`
	UserID       *string   `json:"user_id,omitempty" gorm:"type:varchar(64);index:idx_call_user"`
	InputTokens  int       `json:"input_tokens"  gorm:"not null"`
	OutputTokens int       `json:"output_tokens" gorm:"not null"`
	TotalTokens  int       `json:"total_tokens"  gorm:"not null"`
	CostUSD      string    `json:"cost_usd"      gorm:"type:decimal(12,6);not null;default:'0'"`
	Status       string    `json:"status"        gorm:"type:varchar(16);not null;check:status IN ('completed','failed','timeout')"`
	DurationMs   int64     `json:"duration_ms"   gorm:"not null"`
	ArtifactKind string    `json:"artifact_kind,omitempty" gorm:"type:varchar(32)"`
	ArtifactID   string    `json:"artifact_id,omitempty"   gorm:"type:char(36);index"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for ProviderCall.
func (ProviderCall) TableName() string { return "provider_calls" }

// ProviderCallMessage is one prompt/response turn within a provider call.
type ProviderCallMessage struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	CallID       string    `json:"call_id"       gorm:"type:char(36);not null;index:idx_msg_call,priority:1"`
	Turn         int       `json:"turn"          gorm:"not null;index:idx_msg_call,priority:2"`
	Role         string    `json:"role"          gorm:"type:varchar(16);not null"`
	Content      string    `json:"content"       gorm:"type:text;not null"`
	InputTokens  int       `json:"input_tokens"  gorm:"not null"`
	OutputTokens int       `json:"output_tokens" gorm:"not null"`
	CostUSD      string    `json:"cost_usd"      gorm:"type:decimal(12,6);not null;default:'0'"`
	CreatedAt    time.Time `json:"created_at"`

	// Call is the parent invocation. Turns are cascade-deleted with it.
	Call ProviderCall `json:"-" gorm:"foreignKey:CallID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ProviderCallMessage.
func (ProviderCallMessage) TableName() string { return "provider_call_messages" }

// Account tracks a user's subscription tier, monthly and lifetime usage,
// and the non-expiring bonus credit balance. MonthlyUsed is only ever
// reset forward in time by the calendar rollover; it is never decremented
// otherwise.
type Account struct {
	ID           string    `json:"id"            gorm:"type:varchar(64);primaryKey"`
	Tier         string    `json:"tier"          gorm:"type:varchar(16);not null;default:'free';check:tier IN ('free','plus','premium')"`
	MonthlyUsed  int       `json:"monthly_used"  gorm:"not null;default:0"`
	LifetimeUsed int64     `json:"lifetime_used" gorm:"not null;default:0"`
	BonusCredits int       `json:"bonus_credits" gorm:"not null;default:0"`
	LastReset    time.Time `json:"last_reset"    gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }
