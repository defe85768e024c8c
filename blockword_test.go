package gcgcode

import "testing"

func TestBlocked(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"xx64yy", "64"},
		{"xx6+4yy", "64"},
		{"xx6+++4yy", "64"},
		{"abNTRcd", "ntr"},
		{"abN+t++Rcd", "ntr"},
		{"8+9", "89"},
		{"6/4", ""},
		{"46", ""},
		{"n+t/r", ""},
		{"", ""},
	}
	for _, tt := range tests {
		word, blocked := DefaultCodec.Blocked(tt.in)
		if blocked != (tt.want != "") || word != tt.want {
			t.Errorf("Blocked(%q) = (%q, %v), want %q", tt.in, word, blocked, tt.want)
		}
	}
}

func TestBlockedCustomWords(t *testing.T) {
	codec, err := NewCodec("a.c")
	if err != nil {
		t.Fatal(err)
	}
	if _, blocked := codec.Blocked("abc"); blocked {
		t.Error(`Blocked("abc") with word "a.c": metacharacters must be literal`)
	}
	if _, blocked := codec.Blocked("A+.+C"); !blocked {
		t.Error(`Blocked("A+.+C") with word "a.c" = false, want true`)
	}
}
