package model

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidConfidence = goerr.New("invalid confidence")

type ScanID string

// NewScanID generates a new unique ScanID
func NewScanID() ScanID {
	return ScanID(uuid.New().String())
}

// Confidence is the model's self-reported certainty of an identification
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Validate checks if the confidence is valid
func (c Confidence) Validate() error {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return nil
	default:
		return goerr.Wrap(ErrInvalidConfidence, "unknown value", goerr.V("confidence", c))
	}
}

// Sentinel values the model uses for fields it cannot identify. They are
// part of the wire contract and distinct from an absent field.
const (
	SentinelUnknown = "Unknown"
	SentinelNA      = "N/A"
)

// MedicineRecord is the normalized result of one identification. Field names
// match the JSON payload exchanged with the proxy, so the struct doubles as
// the wire format and the persisted history entry.
type MedicineRecord struct {
	MedicineName string     `json:"medicineName"`
	GenericName  string     `json:"genericName"`
	Dosage       string     `json:"dosage"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Uses         string     `json:"uses"`
	SideEffects  string     `json:"sideEffects"`
	Precautions  string     `json:"precautions"`
	Confidence   Confidence `json:"confidence"`

	// CapturedAt is epoch milliseconds, stamped once when the record enters
	// the local history. The proxy never sets it.
	CapturedAt int64 `json:"capturedAt,omitempty"`
}
