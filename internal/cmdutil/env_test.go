package cmdutil

import (
	"slices"
	"testing"
	"time"
)

func TestEnvString(t *testing.T) {
	t.Setenv("RAKDIAL_TEST_STR", "  value  ")
	if got := EnvString("RAKDIAL_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("got %q", got)
	}
	if got := EnvString("RAKDIAL_TEST_STR_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("RAKDIAL_TEST_INT", "42")
	if got, err := EnvInt("RAKDIAL_TEST_INT", 7); err != nil || got != 42 {
		t.Fatalf("got %d, %v", got, err)
	}
	if got, err := EnvInt("RAKDIAL_TEST_INT_UNSET", 7); err != nil || got != 7 {
		t.Fatalf("got %d, %v", got, err)
	}
	t.Setenv("RAKDIAL_TEST_INT_BAD", "many")
	if _, err := EnvInt("RAKDIAL_TEST_INT_BAD", 7); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("RAKDIAL_TEST_DUR", "1500ms")
	if got, err := EnvDuration("RAKDIAL_TEST_DUR", time.Second); err != nil || got != 1500*time.Millisecond {
		t.Fatalf("got %v, %v", got, err)
	}
	if got, err := EnvDuration("RAKDIAL_TEST_DUR_UNSET", time.Second); err != nil || got != time.Second {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestParsePortList(t *testing.T) {
	got, err := ParsePortList(" 25565, 19132 ")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []uint16{25565, 19132}) {
		t.Fatalf("got %v", got)
	}

	if out, err := ParsePortList(""); err != nil || out != nil {
		t.Fatalf("blank list: %v, %v", out, err)
	}
	for _, bad := range []string{"0", "65536", "19132,abc"} {
		if _, err := ParsePortList(bad); err == nil {
			t.Errorf("ParsePortList(%q) accepted invalid input", bad)
		}
	}
}

func TestParseVersionList(t *testing.T) {
	got, err := ParseVersionList("11,10,9,8")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []byte{11, 10, 9, 8}) {
		t.Fatalf("got %v", got)
	}
	if _, err := ParseVersionList("256"); err == nil {
		t.Fatal("expected range error")
	}
}
