package payload

import (
	"testing"
	"time"
)

func TestParseRejectsNonObjects(t *testing.T) {
	for _, bad := range []string{`[]`, `"str"`, `42`, `null`, `{invalid`} {
		if _, err := Parse([]byte(bad)); err == nil {
			t.Fatalf("expected parse failure for %q", bad)
		}
	}

	o, err := Parse([]byte(`{"id":"123"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, ok := o.Str("id"); !ok || got != "123" {
		t.Fatalf("expected id, got %q ok=%v", got, ok)
	}
}

func TestAccessorsDistinguishAbsentNullAndMismatch(t *testing.T) {
	o := MustParse(`{"name":"general","topic":null,"position":3,"nsfw":false}`)

	if _, ok := o.Str("missing"); ok {
		t.Fatalf("absent key should report false")
	}
	if _, ok := o.Str("topic"); ok {
		t.Fatalf("null value should report false")
	}
	if !o.Has("topic") {
		t.Fatalf("null value is still present")
	}
	if !o.IsNull("topic") {
		t.Fatalf("expected topic to be null")
	}
	if o.IsNull("name") {
		t.Fatalf("name is not null")
	}

	if _, ok := o.Str("position"); ok {
		t.Fatalf("number should not decode as string")
	}
	if n, ok := o.Int("position"); !ok || n != 3 {
		t.Fatalf("expected position 3, got %d ok=%v", n, ok)
	}
	if _, ok := o.Int("name"); ok {
		t.Fatalf("string should not decode as int")
	}
	if b, ok := o.Bool("nsfw"); !ok || b {
		t.Fatalf("expected nsfw false, got %v ok=%v", b, ok)
	}
}

func TestTimeParsesPlatformTimestamps(t *testing.T) {
	o := MustParse(`{"joined_at":"2021-03-04T05:06:07.123000+00:00","edited_timestamp":null,"bad":"yesterday"}`)

	ts, ok := o.Time("joined_at")
	if !ok {
		t.Fatalf("expected timestamp to parse")
	}
	want := time.Date(2021, 3, 4, 5, 6, 7, 123000000, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}

	if _, ok := o.Time("edited_timestamp"); ok {
		t.Fatalf("null timestamp should report false")
	}
	if _, ok := o.Time("bad"); ok {
		t.Fatalf("unparseable timestamp should report false")
	}
}

func TestNestedAccessors(t *testing.T) {
	o := MustParse(`{
		"author": {"id": "42", "username": "tester"},
		"mentions": [{"id": "1"}, {"id": "2"}],
		"roles": ["10", "11"],
		"flat": "x"
	}`)

	author, ok := o.Obj("author")
	if !ok {
		t.Fatalf("expected author object")
	}
	if id, _ := author.Str("id"); id != "42" {
		t.Fatalf("expected author id 42, got %q", id)
	}

	mentions, ok := o.Objs("mentions")
	if !ok || len(mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d ok=%v", len(mentions), ok)
	}

	roles, ok := o.Strs("roles")
	if !ok || len(roles) != 2 || roles[0] != "10" {
		t.Fatalf("unexpected roles: %v ok=%v", roles, ok)
	}

	if _, ok := o.Obj("flat"); ok {
		t.Fatalf("scalar should not decode as object")
	}
	if _, ok := o.Objs("flat"); ok {
		t.Fatalf("scalar should not decode as object array")
	}
}

func TestMergeSemantics(t *testing.T) {
	o := MustParse(`{"id":"1","name":"old","topic":"news","position":5}`)
	patch := MustParse(`{"name":"new","topic":null}`)

	o.Merge(patch)

	if name, _ := o.Str("name"); name != "new" {
		t.Fatalf("expected overwritten name, got %q", name)
	}
	if o.Has("topic") {
		t.Fatalf("null in patch should clear the field")
	}
	if pos, ok := o.Int("position"); !ok || pos != 5 {
		t.Fatalf("field absent from patch must be kept, got %d ok=%v", pos, ok)
	}
	if id, _ := o.Str("id"); id != "1" {
		t.Fatalf("expected untouched id, got %q", id)
	}
}

func TestCloneIsDeep(t *testing.T) {
	o := MustParse(`{"id":"1","name":"orig"}`)
	c := o.Clone()

	c.Merge(MustParse(`{"name":"changed","extra":"x"}`))

	if name, _ := o.Str("name"); name != "orig" {
		t.Fatalf("clone mutation leaked into original: %q", name)
	}
	if o.Has("extra") {
		t.Fatalf("clone mutation leaked new key into original")
	}
	if name, _ := c.Str("name"); name != "changed" {
		t.Fatalf("clone did not take mutation: %q", name)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	o := MustParse(`{"id":"9","nested":{"a":1}}`)
	data, err := o.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}
	if id, _ := back.Str("id"); id != "9" {
		t.Fatalf("round trip lost id: %q", id)
	}
	if nested, ok := back.Obj("nested"); !ok {
		t.Fatalf("round trip lost nested object")
	} else if n, _ := nested.Int("a"); n != 1 {
		t.Fatalf("round trip lost nested value")
	}
}

func TestSetStrAndSetRaw(t *testing.T) {
	o := MustParse(`{"id":"1"}`)
	o.SetStr("guild_id", "g1")
	if gid, _ := o.Str("guild_id"); gid != "g1" {
		t.Fatalf("expected injected guild_id, got %q", gid)
	}

	src := MustParse(`{"user":{"id":"u1"}}`)
	raw, _ := src.Raw("user")
	o.SetRaw("user", raw)
	raw[2] = 'X'
	user, ok := o.Obj("user")
	if !ok {
		t.Fatalf("expected embedded user object")
	}
	if id, _ := user.Str("id"); id != "u1" {
		t.Fatalf("raw mutation leaked into stored copy: %q", id)
	}
}
