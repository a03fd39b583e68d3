package models

import (
	"fmt"
	"time"
)

// ContactMethod preferred way to reach the requester
type ContactMethod string

const (
	ContactMethodEmail    ContactMethod = "Email"
	ContactMethodPhone    ContactMethod = "Phone"
	ContactMethodTelegram ContactMethod = "Telegram"
	ContactMethodSignal   ContactMethod = "Signal"
	ContactMethodWhatsApp ContactMethod = "WhatsApp"
)

// ContactMethods accepted contact methods, in display order
var ContactMethods = []string{
	string(ContactMethodEmail),
	string(ContactMethodPhone),
	string(ContactMethodTelegram),
	string(ContactMethodSignal),
	string(ContactMethodWhatsApp),
}

// WalletType kind of wallet the assets were held in
type WalletType string

const (
	WalletTypeHardware   WalletType = "Hardware"
	WalletTypeSoftware   WalletType = "Software"
	WalletTypeCustodial  WalletType = "Custodial"
	WalletTypeSeedPhrase WalletType = "Seed Phrase"
	WalletTypeOther      WalletType = "Other"
)

var WalletTypes = []string{
	string(WalletTypeHardware),
	string(WalletTypeSoftware),
	string(WalletTypeCustodial),
	string(WalletTypeSeedPhrase),
	string(WalletTypeOther),
}

// IncidentType what happened to the assets
type IncidentType string

const (
	IncidentTypeLostAccess        IncidentType = "Lost Access"
	IncidentTypePhishingHack      IncidentType = "Phishing/Hack"
	IncidentTypeFailedTransaction IncidentType = "Failed Transaction"
	IncidentTypeDamagedHardware   IncidentType = "Damaged Hardware"
	IncidentTypeUnknown           IncidentType = "Unknown"
)

var IncidentTypes = []string{
	string(IncidentTypeLostAccess),
	string(IncidentTypePhishingHack),
	string(IncidentTypeFailedTransaction),
	string(IncidentTypeDamagedHardware),
	string(IncidentTypeUnknown),
}

// Urgency requester-declared urgency
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

var Urgencies = []string{
	string(UrgencyLow),
	string(UrgencyMedium),
	string(UrgencyHigh),
	string(UrgencyCritical),
}

// RecoveryRequest a submitted request to recover lost or compromised crypto assets.
// Records are immutable once stored; ID and timestamps are assigned by the store.
type RecoveryRequest struct {
	ID string `json:"id,omitempty"`

	// Requester
	FullName      string        `json:"full_name"`
	Email         string        `json:"email"`
	ContactMethod ContactMethod `json:"contact_method"`
	ContactHandle *string       `json:"contact_handle"` // phone number or messenger handle

	// Incident
	WalletType      WalletType   `json:"wallet_type"`
	Network         *string      `json:"network"`         // e.g. Bitcoin, Ethereum, Solana
	AffectedAssets  *string      `json:"affected_assets"` // coins/tokens involved
	IncidentType    IncidentType `json:"incident_type"`
	TransactionHash *string      `json:"transaction_hash"`
	AmountOrValue   *string      `json:"amount_or_value"`
	Description     string       `json:"description"`
	Urgency         Urgency      `json:"urgency"`

	PrivacyConsent bool `json:"privacy_consent"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Document field names, shared by every store backend
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// ToDocument flattens the request into the store's document shape.
// ID and timestamps are left to the store.
func (r *RecoveryRequest) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"full_name":        r.FullName,
		"email":            r.Email,
		"contact_method":   string(r.ContactMethod),
		"contact_handle":   r.ContactHandle,
		"wallet_type":      string(r.WalletType),
		"network":          r.Network,
		"affected_assets":  r.AffectedAssets,
		"incident_type":    string(r.IncidentType),
		"transaction_hash": r.TransactionHash,
		"amount_or_value":  r.AmountOrValue,
		"description":      r.Description,
		"urgency":          string(r.Urgency),
		"privacy_consent":  r.PrivacyConsent,
	}
}

// RecoveryRequestFromDocument rebuilds a request from a stored document
func RecoveryRequestFromDocument(doc map[string]interface{}) (*RecoveryRequest, error) {
	id, ok := doc[FieldID].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("document has no text identifier")
	}

	r := &RecoveryRequest{
		ID:              id,
		FullName:        docString(doc, "full_name"),
		Email:           docString(doc, "email"),
		ContactMethod:   ContactMethod(docString(doc, "contact_method")),
		ContactHandle:   docOptionalString(doc, "contact_handle"),
		WalletType:      WalletType(docString(doc, "wallet_type")),
		Network:         docOptionalString(doc, "network"),
		AffectedAssets:  docOptionalString(doc, "affected_assets"),
		IncidentType:    IncidentType(docString(doc, "incident_type")),
		TransactionHash: docOptionalString(doc, "transaction_hash"),
		AmountOrValue:   docOptionalString(doc, "amount_or_value"),
		Description:     docString(doc, "description"),
		Urgency:         Urgency(docString(doc, "urgency")),
		CreatedAt:       docTime(doc, FieldCreatedAt),
		UpdatedAt:       docTime(doc, FieldUpdatedAt),
	}
	if consent, ok := doc["privacy_consent"].(bool); ok {
		r.PrivacyConsent = consent
	}
	return r, nil
}

func docString(doc map[string]interface{}, key string) string {
	if s := docOptionalString(doc, key); s != nil {
		return *s
	}
	return ""
}

func docOptionalString(doc map[string]interface{}, key string) *string {
	switch v := doc[key].(type) {
	case string:
		return &v
	case *string:
		if v == nil {
			return nil
		}
		s := *v
		return &s
	}
	return nil
}

func docTime(doc map[string]interface{}, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
