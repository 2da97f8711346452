package amqp

import (
	"testing"
)

func TestContributionEventJSON(t *testing.T) {
	event := NewContributionEvent(ActionRegistered, 7, 3, "maria")

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := ContributionEventFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Action != ActionRegistered || got.ContributionID != 7 || got.ContributorID != 3 || got.RecordedBy != "maria" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestContributionEventFromJSONInvalid(t *testing.T) {
	if _, err := ContributionEventFromJSON([]byte("{")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if _, err := ContributionEventFromJSON([]byte("{}")); err == nil {
		t.Fatal("expected error for missing action")
	}
}
