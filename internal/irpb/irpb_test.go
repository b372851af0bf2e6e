package irpb

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := Artifact{
		Quads: []Quad{
			{Op: "+", Arg1: "1", Arg2: "2", Result: "t0"},
			{Op: "=", Arg1: "t0", Arg2: "", Result: "x"},
		},
		Assembly: ".data\n.text\n_start:\n\tli $v0, 10\n\tsyscall\n",
		BuildID:  "test-build-id",
	}

	data := Encode(a)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.Assembly != a.Assembly || got.BuildID != a.BuildID {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
	if len(got.Quads) != len(a.Quads) {
		t.Fatalf("expected %d quads, got %d", len(a.Quads), len(got.Quads))
	}
	for i := range a.Quads {
		if got.Quads[i] != a.Quads[i] {
			t.Fatalf("quad %d mismatch: want %+v got %+v", i, a.Quads[i], got.Quads[i])
		}
	}
}

func TestDecodeRejectsFutureSchemaVersion(t *testing.T) {
	a := Artifact{Assembly: "x", BuildID: "id"}
	data := Encode(a)
	// Hand-corrupt the version varint (first two bytes: tag, then value 1) to 99.
	data[1] = 99
	if _, err := Decode(data); err == nil {
		t.Fatal("expected an error decoding an artifact claiming a newer schema version")
	}
}

func TestDecodeEmptyQuadsRoundTrips(t *testing.T) {
	a := Artifact{Assembly: "", BuildID: "b"}
	data := Encode(a)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Quads) != 0 {
		t.Fatalf("expected no quads, got %d", len(got.Quads))
	}
}
