package review

import "testing"

func TestSeverityValid(t *testing.T) {
	valid := []Severity{SeverityCritical, SeverityMajor, SeverityMinor, SeverityNitpick}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}

	invalid := []Severity{"", "high", "CRITICAL", "blocker"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("%q.Valid() = true, want false", s)
		}
	}
}

func TestCommentValidate(t *testing.T) {
	good := Comment{FilePath: "src/db.py", LineNumber: 42, Body: "use parameterized queries", Severity: SeverityCritical}

	tests := []struct {
		name    string
		mutate  func(Comment) Comment
		wantErr bool
	}{
		{"valid", func(c Comment) Comment { return c }, false},
		{"missing file path", func(c Comment) Comment { c.FilePath = ""; return c }, true},
		{"zero line", func(c Comment) Comment { c.LineNumber = 0; return c }, true},
		{"negative line", func(c Comment) Comment { c.LineNumber = -3; return c }, true},
		{"empty body", func(c Comment) Comment { c.Body = ""; return c }, true},
		{"unknown severity", func(c Comment) Comment { c.Severity = "high"; return c }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(good).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReduce(t *testing.T) {
	t.Run("delta fields replace", func(t *testing.T) {
		prev := State{RepoName: "acme/widgets", PRNumber: 42}
		delta := State{
			PRDiff:           "diff --git a/x b/x",
			ProposedComments: []Comment{{FilePath: "x", LineNumber: 1, Body: "b", Severity: SeverityMinor}},
		}

		got := Reduce(prev, delta)
		if got.RepoName != "acme/widgets" || got.PRNumber != 42 {
			t.Errorf("identity fields changed: %+v", got)
		}
		if got.PRDiff != delta.PRDiff {
			t.Errorf("PRDiff = %q, want delta's diff", got.PRDiff)
		}
		if len(got.ProposedComments) != 1 {
			t.Errorf("ProposedComments = %v, want delta's comments", got.ProposedComments)
		}
	})

	t.Run("zero delta preserves previous", func(t *testing.T) {
		prev := State{
			RepoName:         "acme/widgets",
			PRNumber:         42,
			PRDiff:           "existing diff",
			ProposedComments: []Comment{{FilePath: "x", LineNumber: 1, Body: "b", Severity: SeverityMinor}},
			ReviewApproved:   true,
		}

		got := Reduce(prev, State{})
		if got.PRDiff != "existing diff" || len(got.ProposedComments) != 1 || !got.ReviewApproved {
			t.Errorf("zero delta clobbered state: %+v", got)
		}
	})

	t.Run("approval latches true", func(t *testing.T) {
		got := Reduce(State{ReviewApproved: true}, State{ReviewApproved: false})
		if !got.ReviewApproved {
			t.Error("approval was un-latched by a false delta")
		}
	})

	t.Run("empty comment slice replaces", func(t *testing.T) {
		prev := State{ProposedComments: []Comment{{FilePath: "x", LineNumber: 1, Body: "b", Severity: SeverityMinor}}}
		got := Reduce(prev, State{ProposedComments: []Comment{}})
		if len(got.ProposedComments) != 0 {
			t.Errorf("ProposedComments = %v, want replaced by empty slice", got.ProposedComments)
		}
	})

	t.Run("messages append in order", func(t *testing.T) {
		s := State{}
		s = Reduce(s, State{Messages: []Message{{Role: RoleAI, Text: "first"}}})
		s = Reduce(s, State{Messages: []Message{{Role: RoleAI, Text: "second"}}})

		if len(s.Messages) != 2 {
			t.Fatalf("len(Messages) = %d, want 2", len(s.Messages))
		}
		if s.Messages[0].Text != "first" || s.Messages[1].Text != "second" {
			t.Errorf("Messages out of order: %+v", s.Messages)
		}
	})

	t.Run("append does not alias previous slice", func(t *testing.T) {
		base := State{Messages: []Message{{Role: RoleAI, Text: "base"}}}
		a := Reduce(base, State{Messages: []Message{{Role: RoleAI, Text: "a"}}})
		b := Reduce(base, State{Messages: []Message{{Role: RoleAI, Text: "b"}}})

		if a.Messages[1].Text != "a" || b.Messages[1].Text != "b" {
			t.Errorf("branches share backing array: a=%+v b=%+v", a.Messages, b.Messages)
		}
	})
}
