package checklist

import "testing"

func TestEnsureOthersAppends(t *testing.T) {
	tasks := []Task{{ID: "t1", Name: "Inspect window"}, {ID: "t2", Name: "Inspect door"}}
	got := EnsureOthers(tasks)
	if len(got) != 3 {
		t.Fatalf("expected synthetic Others task, got %d tasks", len(got))
	}
	if got[2].Name != OthersTaskName {
		t.Fatalf("last task = %q, want %q", got[2].Name, OthersTaskName)
	}
	if len(tasks) != 2 {
		t.Fatal("EnsureOthers must not mutate its input")
	}
}

func TestEnsureOthersIdempotent(t *testing.T) {
	tasks := []Task{{Name: "others"}}
	if got := EnsureOthers(tasks); len(got) != 1 {
		t.Fatalf("case-insensitive match failed, got %d tasks", len(got))
	}
}

func TestNormalizeCondition(t *testing.T) {
	cases := map[string]string{
		" fair ": "FAIR",
		"Good":   "GOOD",
		"":       "",
	}
	for in, want := range cases {
		if got := NormalizeCondition(in); got != want {
			t.Errorf("NormalizeCondition(%q) = %q, want %q", in, got, want)
		}
	}
}
