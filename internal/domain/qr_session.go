package domain

import "time"

// QrTokenType is the claim type embedded in vaccine access tokens.
const QrTokenType = "VACCINE_ACCESS"

// VaccineQrSession is a short-lived capability binding one pet to one signed
// access token. Consumed flips false→true exactly once, when a vet writes a
// vaccination record with the token; it never reverts.
type VaccineQrSession struct {
	ID         string     `json:"id"                    gorm:"type:char(36);primaryKey"`
	Token      string     `json:"token"                 gorm:"type:text;not null;uniqueIndex:ux_qr_sessions_token"`
	PetID      string     `json:"pet_id"                gorm:"type:char(36);not null;index:idx_qr_sessions_pet_owner,priority:1"`
	OwnerID    string     `json:"owner_id"              gorm:"type:char(36);not null;index:idx_qr_sessions_pet_owner,priority:2"`
	CreatedAt  time.Time  `json:"created_at"            gorm:"not null"`
	ExpiresAt  time.Time  `json:"expires_at"            gorm:"not null;index"`
	Consumed   bool       `json:"consumed"              gorm:"not null;default:false"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// TableName returns the database table name for VaccineQrSession.
func (VaccineQrSession) TableName() string { return "vaccine_qr_sessions" }

// QrStatus classifies a session at a point in time.
type QrStatus string

const (
	QrActive   QrStatus = "ACTIVE"
	QrUsed     QrStatus = "USED"
	QrExpired  QrStatus = "EXPIRED"
	QrNotFound QrStatus = "NOT_FOUND"

	// QrInvalid is what pollers see instead of QrNotFound.
	QrInvalid QrStatus = "INVALID"
)

// ClassifyQrSession decides the state of s at now. A nil session is
// QrNotFound. Consumption wins over expiry: a consumed session reports
// QrUsed even after its expiry has passed. A session whose expiry is at or
// before now is QrExpired.
func ClassifyQrSession(s *VaccineQrSession, now time.Time) QrStatus {
	switch {
	case s == nil:
		return QrNotFound
	case s.Consumed:
		return QrUsed
	case !s.ExpiresAt.After(now):
		return QrExpired
	default:
		return QrActive
	}
}

// Public maps a status to the values exposed to polling clients.
func (s QrStatus) Public() string {
	if s == QrNotFound || s == "" {
		return string(QrInvalid)
	}
	return string(s)
}
