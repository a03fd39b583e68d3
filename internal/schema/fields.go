package schema

import (
	"recovery-backend/internal/models"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindEmail
	kindChoice
	kindBool
)

// fieldDef one declared field of an intake form
type fieldDef struct {
	Name     string
	Kind     fieldKind
	Required bool
	Choices  []string // kindChoice only
	Default  string   // applied when the field is absent or null

	setText func(r *models.RecoveryRequest, v string)
	setBool func(r *models.RecoveryRequest, v bool)
}

func optional(dst func(r *models.RecoveryRequest) **string) func(*models.RecoveryRequest, string) {
	return func(r *models.RecoveryRequest, v string) {
		s := v
		*dst(r) = &s
	}
}

// recoveryRequestFields field table for RecoveryRequest, in validation order
var recoveryRequestFields = []fieldDef{
	{
		Name: "full_name", Kind: kindText, Required: true,
		setText: func(r *models.RecoveryRequest, v string) { r.FullName = v },
	},
	{
		Name: "email", Kind: kindEmail, Required: true,
		setText: func(r *models.RecoveryRequest, v string) { r.Email = v },
	},
	{
		Name: "contact_method", Kind: kindChoice, Choices: models.ContactMethods, Default: string(models.ContactMethodEmail),
		setText: func(r *models.RecoveryRequest, v string) { r.ContactMethod = models.ContactMethod(v) },
	},
	{
		Name: "contact_handle", Kind: kindText,
		setText: optional(func(r *models.RecoveryRequest) **string { return &r.ContactHandle }),
	},
	{
		Name: "wallet_type", Kind: kindChoice, Required: true, Choices: models.WalletTypes,
		setText: func(r *models.RecoveryRequest, v string) { r.WalletType = models.WalletType(v) },
	},
	{
		Name: "network", Kind: kindText,
		setText: optional(func(r *models.RecoveryRequest) **string { return &r.Network }),
	},
	{
		Name: "affected_assets", Kind: kindText,
		setText: optional(func(r *models.RecoveryRequest) **string { return &r.AffectedAssets }),
	},
	{
		Name: "incident_type", Kind: kindChoice, Required: true, Choices: models.IncidentTypes,
		setText: func(r *models.RecoveryRequest, v string) { r.IncidentType = models.IncidentType(v) },
	},
	{
		Name: "transaction_hash", Kind: kindText,
		setText: optional(func(r *models.RecoveryRequest) **string { return &r.TransactionHash }),
	},
	{
		Name: "amount_or_value", Kind: kindText,
		setText: optional(func(r *models.RecoveryRequest) **string { return &r.AmountOrValue }),
	},
	{
		Name: "description", Kind: kindText, Required: true,
		setText: func(r *models.RecoveryRequest, v string) { r.Description = v },
	},
	{
		Name: "urgency", Kind: kindChoice, Choices: models.Urgencies, Default: string(models.UrgencyMedium),
		setText: func(r *models.RecoveryRequest, v string) { r.Urgency = models.Urgency(v) },
	},
	{
		Name: "privacy_consent", Kind: kindBool, Required: true,
		setBool: func(r *models.RecoveryRequest, v bool) { r.PrivacyConsent = v },
	},
}

// FieldNames declared RecoveryRequest field names, in validation order
func FieldNames() []string {
	names := make([]string, 0, len(recoveryRequestFields))
	for _, f := range recoveryRequestFields {
		names = append(names, f.Name)
	}
	return names
}
