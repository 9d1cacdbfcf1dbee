package domain

import "fmt"

// RecipientID identifies a fixed household member.
type RecipientID string

const (
	RecipientLinda RecipientID = "linda"
	RecipientSean  RecipientID = "sean"
)

// HouseholdIDs lists all household recipients in display order.
var HouseholdIDs = []RecipientID{RecipientLinda, RecipientSean}

// canonicalPhones maps E.164 numbers to household identities.
var canonicalPhones = map[string]RecipientID{
	"+14693059242": RecipientLinda,
	"+12149090499": RecipientSean,
}

// Recipient is one notification target. Household members carry an ID and
// participate in snoozing; legacy numbers have an empty ID and are always
// notified.
type Recipient struct {
	ID    RecipientID
	Name  string
	Phone string // E.164
}

// Household reports whether the recipient is a snoozable household member.
func (r Recipient) Household() bool { return r.ID != "" }

// Registry resolves configured notification numbers to recipients.
// Built once at startup; immutable afterwards.
type Registry struct {
	recipients []Recipient
	byPhone    map[string]Recipient
}

// NewRegistry normalizes the raw configured numbers and matches them
// against the canonical household numbers. A number that cannot be
// normalized is a configuration error and fails startup.
func NewRegistry(rawNumbers []string) (*Registry, error) {
	household := make(map[RecipientID]Recipient)
	var legacy []Recipient

	for _, raw := range rawNumbers {
		phone, err := NormalizePhone(raw)
		if err != nil {
			return nil, fmt.Errorf("notify number %q: %w", raw, err)
		}
		if id, ok := canonicalPhones[phone]; ok {
			household[id] = Recipient{ID: id, Name: displayName(id), Phone: phone}
			continue
		}
		legacy = append(legacy, Recipient{Name: phone, Phone: phone})
	}

	r := &Registry{byPhone: make(map[string]Recipient)}
	for _, id := range HouseholdIDs {
		if rcpt, ok := household[id]; ok {
			r.recipients = append(r.recipients, rcpt)
		}
	}
	r.recipients = append(r.recipients, legacy...)
	for _, rcpt := range r.recipients {
		r.byPhone[rcpt.Phone] = rcpt
	}
	return r, nil
}

// All returns every configured recipient: household members first
// (Linda before Sean), then legacy numbers in configuration order.
func (r *Registry) All() []Recipient {
	out := make([]Recipient, len(r.recipients))
	copy(out, r.recipients)
	return out
}

// Resolve maps a raw phone number to a configured recipient.
func (r *Registry) Resolve(raw string) (Recipient, bool) {
	phone, err := NormalizePhone(raw)
	if err != nil {
		return Recipient{}, false
	}
	rcpt, ok := r.byPhone[phone]
	return rcpt, ok
}

// ParseRecipientID validates a recipient id from an external request.
func ParseRecipientID(s string) (RecipientID, error) {
	switch RecipientID(s) {
	case RecipientLinda:
		return RecipientLinda, nil
	case RecipientSean:
		return RecipientSean, nil
	default:
		return "", fmt.Errorf("unknown recipient %q", s)
	}
}

func displayName(id RecipientID) string {
	switch id {
	case RecipientLinda:
		return "Linda"
	case RecipientSean:
		return "Sean"
	default:
		return string(id)
	}
}
