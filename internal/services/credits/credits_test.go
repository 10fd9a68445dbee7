package credits

import "testing"

func TestExtractCreditsFromPanel(t *testing.T) {
	panel := "Credits\nPerformed by Jane\nWritten by: Jane Doe, John Smith\nProduced by Someone\nSource: DIY Records"
	got := extractCredits(panel, "irrelevant body text")
	if len(got.Writers) != 2 || got.Writers[0] != "Jane Doe" || got.Writers[1] != "John Smith" {
		t.Fatalf("unexpected writers: %v", got.Writers)
	}
	if got.Publisher != "DIY Records" {
		t.Fatalf("unexpected publisher: %q", got.Publisher)
	}
}

func TestExtractCreditsFallsBackToBody(t *testing.T) {
	body := "Some Track\nWritten by Jane Doe & John Smith and Alex Ray\nPublisher: Indie House"
	got := extractCredits("", body)
	if len(got.Writers) != 3 {
		t.Fatalf("expected 3 writers, got %v", got.Writers)
	}
	if got.Publisher != "Indie House" {
		t.Fatalf("expected explicit publisher line to win, got %q", got.Publisher)
	}
}

func TestExtractCreditsEmpty(t *testing.T) {
	got := extractCredits("", "a page with no credit lines at all")
	if !got.Empty() {
		t.Fatalf("expected empty credits, got %+v", got)
	}
}

func TestIsLoginWall(t *testing.T) {
	if !isLoginWall("https://example.com/login?continue=/track/1", "") {
		t.Fatal("expected login redirect to be detected")
	}
	if !isLoginWall("https://example.com/track/1", "Please Log in to continue listening") {
		t.Fatal("expected login marker in body to be detected")
	}
	if isLoginWall("https://example.com/track/1", "Written by Jane Doe") {
		t.Fatal("expected content page to pass")
	}
}
