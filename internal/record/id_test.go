package record

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalKeepsKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{name: "string", input: `"T1"`, want: StringID("T1")},
		{name: "number", input: `42`, want: NumericID("42")},
		{name: "null", input: `null`, want: ID{}},
		{name: "bool rejected", input: `true`, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got ID
			err := json.Unmarshal([]byte(tc.input), &got)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestID_EqualityIsTypeStable(t *testing.T) {
	t.Parallel()

	if StringID("1") == NumericID("1") {
		t.Fatalf("string and numeric ids with the same digits must differ")
	}
	if NumericID("7") != NumericID("7") {
		t.Fatalf("identical numeric ids must be equal")
	}
	if !ParseID("", true).IsZero() {
		t.Fatalf("empty value must produce the zero id")
	}
}

func TestID_SameValueIgnoresKind(t *testing.T) {
	t.Parallel()

	if !NumericID("42").SameValue(StringID("42")) {
		t.Fatalf("ids with the same value must match regardless of kind")
	}
	if NumericID("42").SameValue(StringID("420")) {
		t.Fatalf("different values must not match")
	}
	if (ID{}).SameValue(ID{}) {
		t.Fatalf("absent ids never match")
	}
}

func TestRecord_DecodesBackendPayload(t *testing.T) {
	t.Parallel()

	payload := `{"id":1,"date":"2024-03-05T00:00:00Z","isActive":false,"createdById":"A","title":"Yoga"}`

	var schedule Schedule
	if err := json.Unmarshal([]byte(payload), &schedule); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if schedule.ID != NumericID("1") {
		t.Fatalf("unexpected id %#v", schedule.ID)
	}
	if schedule.OwnerID() != StringID("A") {
		t.Fatalf("unexpected owner %#v", schedule.OwnerID())
	}
	if schedule.Active() {
		t.Fatalf("explicit false must mark the record inactive")
	}
	if !schedule.UpdatedByID.IsZero() {
		t.Fatalf("missing updatedById must decode to the zero id")
	}

	encoded, err := json.Marshal(schedule.Record)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	want := `{"id":1,"date":"2024-03-05T00:00:00Z","isActive":false,"createdById":"A","updatedById":null}`
	if string(encoded) != want {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", encoded, want)
	}
}
