package sim

import (
	"errors"
	"strings"
	"testing"
)

func TestLookupObjectImpactAliases(t *testing.T) {
	english, err := LookupObjectImpact("park")
	if err != nil {
		t.Fatalf("park: %v", err)
	}
	russian, err := LookupObjectImpact("  ПАРК ")
	if err != nil {
		t.Fatalf("парк: %v", err)
	}
	if english != russian {
		t.Fatalf("alias mismatch: %+v vs %+v", english, russian)
	}
	if english.ObjectType != "park" {
		t.Fatalf("object_type = %s, want park", english.ObjectType)
	}
	if english.Impact.Ecology != 12 || english.Impact.TrafficLoad != -4 || english.Impact.SocialScore != 10 {
		t.Fatalf("park impact = %+v", english.Impact)
	}
	if !strings.Contains(english.Message, "вырастет") {
		t.Fatalf("park message should promise ecology growth: %s", english.Message)
	}
}

func TestLookupObjectImpactFactory(t *testing.T) {
	got, err := LookupObjectImpact("завод")
	if err != nil {
		t.Fatalf("завод: %v", err)
	}
	if got.Impact.Ecology != -20 {
		t.Fatalf("factory ecology = %f, want -20", got.Impact.Ecology)
	}
	if !strings.Contains(got.Message, "упадет на 20%") {
		t.Fatalf("factory message = %s", got.Message)
	}
}

func TestLookupObjectImpactUnknown(t *testing.T) {
	_, err := LookupObjectImpact("spaceport")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
}
