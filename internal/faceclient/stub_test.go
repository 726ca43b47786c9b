package faceclient

import (
	"bytes"
	"context"
	"testing"
)

func TestStubIdentifySkipsUnenrolledCandidates(t *testing.T) {
	stub := &Stub{}
	match, err := stub.Identify(context.Background(), []byte("frame"), []Candidate{
		{StudentID: "no-face"},
		{StudentID: "enrolled", Encoding: []byte{1, 2, 3}},
		{StudentID: "also-enrolled", Encoding: []byte{4}},
	})
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if match == nil || match.StudentID != "enrolled" {
		t.Fatalf("match = %+v, want first enrolled candidate", match)
	}
	if match.Confidence != stubConfidence {
		t.Fatalf("confidence = %v, want %v", match.Confidence, stubConfidence)
	}
}

func TestStubIdentifyNoCandidates(t *testing.T) {
	stub := &Stub{}
	match, err := stub.Identify(context.Background(), []byte("frame"), []Candidate{{StudentID: "no-face"}})
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if match != nil {
		t.Fatalf("match = %+v, want nil when nobody is enrolled", match)
	}
}

func TestStubEncodeIsDeterministic(t *testing.T) {
	stub := &Stub{}
	ctx := context.Background()

	first, err := stub.Encode(ctx, []byte("photo"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := stub.Encode(ctx, []byte("photo"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("same image produced different encodings")
	}

	other, err := stub.Encode(ctx, []byte("different photo"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if bytes.Equal(first, other) {
		t.Fatal("different images produced the same encoding")
	}

	empty, err := stub.Encode(ctx, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if empty != nil {
		t.Fatal("empty image should produce no encoding")
	}
}

func TestSelectPicksBackend(t *testing.T) {
	if _, ok := Select("", true).(*Stub); !ok {
		t.Fatal("simulate mode should return the stub")
	}
	if _, ok := Select("http://faces.local", false).(*Client); !ok {
		t.Fatal("real mode should return the HTTP client")
	}
}
