// Package registrations implements the livestock registration domain: owner
// and animal records held in the local store, their photos and attachments in
// blob storage, AI identification of each animal, and the synced flag the
// background sync loop maintains.
package registrations

import (
	"time"

	"github.com/JaimeStill/pashuvision/internal/gateway"
)

// Registration statuses. Records persisted before drafts existed carry no
// status and count as completed.
const (
	StatusDraft     = "Draft"
	StatusCompleted = "Completed"
)

// Age units.
const (
	AgeYears  = "Years"
	AgeMonths = "Months"
)

// Attachment kinds.
const (
	AttachmentOwnerID     = "owner_id"
	AttachmentCertificate = "certificate"
	AttachmentOther       = "other"
)

// OwnerData identifies the animal owner.
type OwnerData struct {
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	Dob           string `json:"dob"`
	Gender        string `json:"gender"`
	Address       string `json:"address"`
	Village       string `json:"village"`
	District      string `json:"district"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	IDType        string `json:"id_type"`
	IDNumber      string `json:"id_number"`
	CasteCategory string `json:"caste_category"`
	BankAccount   string `json:"bank_account"`
	IFSCCode      string `json:"ifsc_code"`
}

// PhotoFile references an animal photo held in blob storage.
type PhotoFile struct {
	ID         string `json:"id"`
	MimeType   string `json:"mime_type"`
	StorageKey string `json:"storage_key"`
	SizeBytes  int64  `json:"size_bytes"`
}

// VaccinationRecord is one administered vaccine. Dates are YYYY-MM-DD.
type VaccinationRecord struct {
	ID               string `json:"id"`
	VaccineName      string `json:"vaccine_name"`
	AdministeredDate string `json:"administered_date"`
	DueDate          string `json:"due_date"`
	Notes            string `json:"notes,omitempty"`
}

// AnimalResult is one animal of a registration with its AI identification.
type AnimalResult struct {
	ID            string                       `json:"id"`
	Species       string                       `json:"species"`
	AgeValue      string                       `json:"age_value"`
	AgeUnit       string                       `json:"age_unit"`
	Sex           string                       `json:"sex"`
	Photos        []PhotoFile                  `json:"photos"`
	SexConfidence string                       `json:"sex_confidence,omitempty"`
	AIResult      gateway.IdentificationResult `json:"ai_result"`
	Vaccinations  []VaccinationRecord          `json:"vaccinations,omitempty"`
}

// Identified reports whether the animal carries an AI result, failed or not.
func (a AnimalResult) Identified() bool {
	return a.AIResult.Error != nil || a.AIResult.BreedName != ""
}

// Attachment is a supporting document uploaded for a registration.
type Attachment struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count,omitempty"`
	StorageKey  string    `json:"storage_key"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Registration is one owner's visit with every animal registered.
type Registration struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Owner       OwnerData      `json:"owner"`
	Animals     []AnimalResult `json:"animals"`
	IsSample    bool           `json:"is_sample"`
	Synced      bool           `json:"synced"`
	Status      string         `json:"status"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero"`
}

// Completed reports whether the registration is past the draft stage.
func (r Registration) Completed() bool {
	return r.Status != StatusDraft
}

// Animal returns the animal with id and its index.
func (r *Registration) Animal(id string) (*AnimalResult, int) {
	for i := range r.Animals {
		if r.Animals[i].ID == id {
			return &r.Animals[i], i
		}
	}
	return nil, -1
}

// SaveCommand carries a wizard result. An empty ID creates a new record.
type SaveCommand struct {
	ID        string         `json:"id,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Owner     OwnerData      `json:"owner"`
	Animals   []AnimalResult `json:"animals"`
}

// VaccinationCommand adds a vaccination to an animal.
type VaccinationCommand struct {
	VaccineName      string `json:"vaccine_name"`
	AdministeredDate string `json:"administered_date"`
	DueDate          string `json:"due_date"`
	Notes            string `json:"notes,omitempty"`
}

// UploadCommand carries file bytes for a photo or attachment.
type UploadCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Kind        string
	PageCount   *int
}
