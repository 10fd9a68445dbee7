package textutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Jane   Doe ": "jane doe",
		"JANE DOE.":     "jane doe",
		"Jane-Doe":      "janedoe",
		"":              "",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q want %q", input, got, want)
		}
	}
}

func TestContainsName(t *testing.T) {
	if !ContainsName("Jane Doe", "Jane") {
		t.Fatal("expected performer name inside songwriter credit")
	}
	if !ContainsName("jane  doe", "JANE DOE") {
		t.Fatal("expected case and whitespace insensitive match")
	}
	if ContainsName("John Smith", "Jane") {
		t.Fatal("unexpected match")
	}
	if ContainsName("Jane Doe", "") {
		t.Fatal("empty needle must not match")
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Jane Doe", "Jane Doe"); got != 1 {
		t.Fatalf("identical names should score 1, got %v", got)
	}
	if got := Similarity("Jane Doe", "Jane Do"); got < 0.8 {
		t.Fatalf("near-identical names should score high, got %v", got)
	}
	if got := Similarity("", "Jane"); got != 0 {
		t.Fatalf("empty name should score 0, got %v", got)
	}
}
