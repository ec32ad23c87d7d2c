package common

import "testing"

func TestWhatsAppLinkStripsFormatting(t *testing.T) {
	link := WhatsAppLink("+20 100-555-0199", "")
	if link != "https://wa.me/201005550199" {
		t.Fatalf("unexpected link %q", link)
	}
}

func TestWhatsAppLinkEncodesMessage(t *testing.T) {
	link := WhatsAppLink("201005550199", "Hi Nile Dreams, I need help with my booking list.")
	want := "https://wa.me/201005550199?text=Hi+Nile+Dreams%2C+I+need+help+with+my+booking+list."
	if link != want {
		t.Fatalf("got %q want %q", link, want)
	}
}

func TestWhatsAppLinkEmptyNumber(t *testing.T) {
	if link := WhatsAppLink("", "hello"); link != "" {
		t.Fatalf("expected empty link, got %q", link)
	}
	if link := WhatsAppLink("call us", "hello"); link != "" {
		t.Fatalf("expected empty link for non-numeric input, got %q", link)
	}
}

func TestAtoiDefault(t *testing.T) {
	if got := AtoiDefault("", 7); got != 7 {
		t.Fatalf("empty input: got %d", got)
	}
	if got := AtoiDefault("abc", 7); got != 7 {
		t.Fatalf("invalid input: got %d", got)
	}
	if got := AtoiDefault("12", 7); got != 12 {
		t.Fatalf("valid input: got %d", got)
	}
}
