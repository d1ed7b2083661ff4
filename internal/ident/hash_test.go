// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ident

import (
	"crypto/sha1"
	"fmt"
	"testing"
	"time"
)

func verify(t *testing.T, data map[string]any, linearForm string) {
	t.Helper()
	want := fmt.Sprintf("%x", sha1.Sum([]byte("object type#"+linearForm)))
	got := GenerateHash("Object Type", data)
	if got != want {
		t.Errorf("GenerateHash() = %s, want %s (linear form %q)", got, want, linearForm)
	}
}

func TestGenerateHashLowercasesStrings(t *testing.T) {
	verify(t, map[string]any{"str": "A String"}, "{str=a string}")
}

func TestGenerateHashFormatsIntegers(t *testing.T) {
	verify(t,
		map[string]any{"simple": 1234, "long": int64(0xDEADCAFEBABE)},
		"{long=244838016400062,simple=1234}",
	)
}

func TestGenerateHashSortsMapKeys(t *testing.T) {
	verify(t,
		map[string]any{"zeta": "z", "alpha": "a", "mid": "m"},
		"{alpha=a,mid=m,zeta=z}",
	)
}

func TestGenerateHashTruncatesTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC)
	verify(t, map[string]any{"when": now}, "{when=2026-03-14T15:09:26}")
}

func TestGenerateHashFormatsMidnightAsDate(t *testing.T) {
	day := time.Date(1923, 6, 1, 0, 0, 0, 0, time.UTC)
	verify(t, map[string]any{"date": day}, "{date=1923-06-01}")
}

func TestGenerateHashBracketsLists(t *testing.T) {
	verify(t,
		map[string]any{"a list": []any{"one", 2, "Three"}},
		"{a list=[one,2,three]}",
	)
}

func TestGenerateHashBracketsStringSlices(t *testing.T) {
	verify(t,
		map[string]any{"names": []string{"Ada", "Grace"}},
		"{names=[ada,grace]}",
	)
}

func TestGenerateHashBracesEmbeddedMaps(t *testing.T) {
	verify(t,
		map[string]any{"a dict": map[string]any{"key": "Value"}},
		"{a dict={key=value}}",
	)
}

func TestGenerateHashIsDeterministic(t *testing.T) {
	data := map[string]any{
		"first_name": "Mary", "last_name": "Shaw",
		"gender": "female", "birth_date": "about 1850",
	}
	first := GenerateHash("Person", data)
	for i := 0; i < 10; i++ {
		if got := GenerateHash("Person", data); got != first {
			t.Fatalf("hash varied between calls: %s vs %s", first, got)
		}
	}
}

func TestGenerateHashDependsOnObjectType(t *testing.T) {
	data := map[string]any{"title": "1901 Census"}
	if GenerateHash("Person", data) == GenerateHash("Source", data) {
		t.Error("different object types produced the same hash")
	}
}

func TestSourceIDIncludesDay(t *testing.T) {
	day1 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	id1 := SourceID("1901 Census", "census", day1)
	id2 := SourceID("1901 Census", "census", day2)
	if id1 == id2 {
		t.Error("sources recorded on different days produced the same ID")
	}

	want := fmt.Sprintf("%x", sha1.Sum([]byte("source:1901 Census:census:2026-01-02")))
	if id1 != want {
		t.Errorf("SourceID() = %s, want %s", id1, want)
	}
}
