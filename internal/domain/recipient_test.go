package domain

import (
	"errors"
	"testing"
)

func TestNewRegistryOrder(t *testing.T) {
	// Configured out of order, with a legacy number mixed in.
	reg, err := NewRegistry([]string{"214-909-0499", "+15550001111", "+14693059242"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("want 3 recipients, got %d", len(all))
	}
	if all[0].ID != RecipientLinda || all[1].ID != RecipientSean {
		t.Errorf("household order wrong: %v, %v", all[0].ID, all[1].ID)
	}
	if all[2].Household() {
		t.Errorf("legacy number should not be a household member")
	}
	if all[2].Phone != "+15550001111" {
		t.Errorf("legacy phone = %q", all[2].Phone)
	}
}

func TestNewRegistryMalformedNumber(t *testing.T) {
	if _, err := NewRegistry([]string{"not-a-number"}); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("want ErrInvalidPhone, got %v", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry([]string{"+12149090499"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	rcpt, ok := reg.Resolve("(214) 909-0499")
	if !ok || rcpt.ID != RecipientSean {
		t.Fatalf("Resolve = %+v, %v", rcpt, ok)
	}
	if _, ok := reg.Resolve("+14693059242"); ok {
		t.Errorf("unconfigured number should not resolve")
	}
}

func TestSnoozeStateNormalize(t *testing.T) {
	s := SnoozeState{"linda": true, "ghost": true}
	n := s.Normalize()
	if len(n) != len(HouseholdIDs) {
		t.Fatalf("want %d keys, got %d", len(HouseholdIDs), len(n))
	}
	if !n.Snoozed(RecipientLinda) || n.Snoozed(RecipientSean) {
		t.Errorf("normalized state wrong: %v", n)
	}
	if _, ok := n["ghost"]; ok {
		t.Errorf("unknown key survived normalization")
	}
}

func TestParseRecipientID(t *testing.T) {
	if id, err := ParseRecipientID("sean"); err != nil || id != RecipientSean {
		t.Errorf("ParseRecipientID(sean) = %v, %v", id, err)
	}
	if _, err := ParseRecipientID("bob"); err == nil {
		t.Errorf("ParseRecipientID(bob) should fail")
	}
}
