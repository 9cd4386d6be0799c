package repometa

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleRecord = `{"nameWithOwner":"a/b","stars":150,"forks":2,"isArchived":false,"primaryLanguage":"Go","diskUsageKb":120,"pullRequests":5,"watchers":10,"createdAt":"2020-01-01T00:00:00Z","pushedAt":"2021-01-01T00:00:00Z","license":"MIT"}`

func formatted(rec OutputRecord) []string {
	out := make([]string, rec.Len())
	for i := range out {
		out[i] = FormatValue(rec.Value(i))
	}
	return out
}

func TestProject(t *testing.T) {
	rec, err := Project(NewSourceRecord(0, sampleRecord))
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !reflect.DeepEqual(rec.Keys(), OutputKeys()) {
		t.Fatalf("unexpected keys %v", rec.Keys())
	}
	want := "a/b,150,2,false,Go,120,5,10,2020-01-01T00:00:00Z,2021-01-01T00:00:00Z,MIT"
	if got := strings.Join(formatted(rec), ","); got != want {
		t.Fatalf("unexpected values\n got: %s\nwant: %s", got, want)
	}
}

func TestProjectIgnoresSourceOrderAndExtraKeys(t *testing.T) {
	raw := `{"license":null,"pushedAt":"2021-01-01T00:00:00Z","createdAt":"2020-01-01T00:00:00Z","watchers":10,
		"pullRequests":{"totalCount": 5},"diskUsageKb":120,"primaryLanguage":null,"isArchived":true,
		"forks":2,"stars":150,"nameWithOwner":"a/b","description":"ignored","topics":["x"]}`
	rec, err := Project(NewSourceRecord(3, raw))
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !reflect.DeepEqual(rec.Keys(), OutputKeys()) {
		t.Fatalf("unexpected keys %v", rec.Keys())
	}
	if _, ok := rec.Get("description"); ok {
		t.Fatalf("unmapped key leaked into output")
	}

	lang, _ := rec.Get("language")
	if lang.Raw != "null" {
		t.Fatalf("expected null language, got %q", lang.Raw)
	}
	prs, _ := rec.Get("pull_requests")
	if got := FormatValue(prs); got != `{"totalCount":5}` {
		t.Fatalf("expected object passed through, got %q", got)
	}
	archived, _ := rec.Get("is_archived")
	if FormatValue(archived) != "true" {
		t.Fatalf("expected true, got %q", FormatValue(archived))
	}
}

func TestProjectMissingKey(t *testing.T) {
	raw := strings.Replace(sampleRecord, `,"license":"MIT"`, "", 1)
	_, err := Project(NewSourceRecord(4, raw))
	var kerr *KeyMissingError
	if !errors.As(err, &kerr) {
		t.Fatalf("expected *KeyMissingError, got %v", err)
	}
	if kerr.Key != "license" || kerr.Index != 4 {
		t.Fatalf("unexpected error fields %+v", kerr)
	}
}

func TestProjectKeysAreLiteral(t *testing.T) {
	// A key containing path syntax must not resolve against nested values.
	rec := NewSourceRecord(0, `{"a":{"b":1}}`)
	if _, err := rec.Lookup("a.b"); !errors.Is(err, ErrKeyMissing) {
		t.Fatalf("expected literal key lookup, got %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `{"v":"plain"}`, want: "plain"},
		{raw: `{"v":"with, comma"}`, want: "with, comma"},
		{raw: `{"v":"quote \" and \n newline"}`, want: "quote \" and \n newline"},
		{raw: `{"v":12345678901234567890}`, want: "12345678901234567890"},
		{raw: `{"v":-1.50}`, want: "-1.50"},
		{raw: `{"v":true}`, want: "true"},
		{raw: `{"v":false}`, want: "false"},
		{raw: `{"v":null}`, want: ""},
		{raw: `{"v":{ "a" : [1, 2] }}`, want: `{"a":[1,2]}`},
		{raw: `{"v":[ 1, "x" ]}`, want: `[1,"x"]`},
	}
	for _, tt := range tests {
		v, err := NewSourceRecord(0, tt.raw).Lookup("v")
		if err != nil {
			t.Fatalf("%s: %v", tt.raw, err)
		}
		if got := FormatValue(v); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}

func TestOutputKeysMatchFields(t *testing.T) {
	want := []string{"repo", "stars", "forks", "is_archived", "language", "disk_usage_kb",
		"pull_requests", "watchers", "created_at", "pushed_at", "license"}
	if !reflect.DeepEqual(OutputKeys(), want) {
		t.Fatalf("unexpected column order %v", OutputKeys())
	}
}

func TestDuplicateKeyUsesFirstOccurrence(t *testing.T) {
	raw := strings.Replace(sampleRecord, `"stars":150`, `"stars":50,"stars":150`, 1)
	src := NewSourceRecord(0, raw)

	ok, err := MinStars(DefaultStarThreshold)(src)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if ok {
		t.Fatalf("expected the first stars value (50) to be filtered out")
	}

	rec, err := Project(src)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if got, _ := rec.Get("stars"); got.Raw != "50" {
		t.Fatalf("expected stars 50, got %s", got.Raw)
	}
}
