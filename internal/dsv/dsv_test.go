package dsv

import "testing"

func TestParseSimpleCSV(t *testing.T) {
	p := New(DefaultOptions())
	recs, err := p.Parse("src/a.bin,/data/z.bin\nsrc/b.bin,/data/a.bin\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if recs[0].Fields[0] != "src/a.bin" || recs[0].Fields[1] != "/data/z.bin" {
		t.Fatalf("recs[0] = %+v", recs[0])
	}
	if recs[1].Fields[0] != "src/b.bin" || recs[1].Fields[1] != "/data/a.bin" {
		t.Fatalf("recs[1] = %+v", recs[1])
	}
}

func TestParseNoTrailingNewline(t *testing.T) {
	p := New(DefaultOptions())
	recs, err := p.Parse("a,b")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 || recs[0].Fields[1] != "b" {
		t.Fatalf("recs = %+v", recs)
	}
}

func TestParseEnclosedField(t *testing.T) {
	p := New(DefaultOptions())
	recs, err := p.Parse(`"hello, world",plain` + "\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if recs[0].Fields[0] != "hello, world" {
		t.Fatalf("Fields[0] = %q", recs[0].Fields[0])
	}
	if recs[0].Enclosed&1 == 0 {
		t.Fatalf("expected field 0 marked enclosed")
	}
	if recs[0].Enclosed&2 != 0 {
		t.Fatalf("expected field 1 not marked enclosed")
	}
}

func TestParseDoubledEncloserIsLiteral(t *testing.T) {
	p := New(DefaultOptions())
	recs, err := p.Parse(`"say ""hi""",b` + "\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if recs[0].Fields[0] != `say "hi"` {
		t.Fatalf("Fields[0] = %q, want %q", recs[0].Fields[0], `say "hi"`)
	}
}

func TestParseEnclosedFieldWithEmbeddedNewline(t *testing.T) {
	p := New(DefaultOptions())
	recs, err := p.Parse("\"line1\nline2\",b\nc,d\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if recs[0].Fields[0] != "line1\nline2" {
		t.Fatalf("Fields[0] = %q", recs[0].Fields[0])
	}
}

func TestParseUnenclosedEncloserErrors(t *testing.T) {
	p := New(DefaultOptions())
	_, err := p.Parse(`a"b,c` + "\n")
	var dErr *Error
	if !asDsvError(err, &dErr) || dErr.Kind != Unenclosed {
		t.Fatalf("err = %v, want Unenclosed", err)
	}
}

func TestParseUnterminatedEnclosedField(t *testing.T) {
	p := New(DefaultOptions())
	_, err := p.Parse(`"unterminated,b`)
	var dErr *Error
	if !asDsvError(err, &dErr) || dErr.Kind != Unterminated {
		t.Fatalf("err = %v, want Unterminated", err)
	}
}

func TestParseNumFieldsMismatch(t *testing.T) {
	p := New(DefaultOptions())
	_, err := p.Parse("a,b\nc,d,e\n")
	var dErr *Error
	if !asDsvError(err, &dErr) || dErr.Kind != NumFields {
		t.Fatalf("err = %v, want NumFields", err)
	}
}

func TestParseIdempotentOnWellFormedInput(t *testing.T) {
	// CSV parser is idempotent on well-formed input: splitting the unparsed
	// bytes yields the same field sequence (property from the testable
	// properties list).
	p := New(DefaultOptions())
	input := "src/a.bin,/data/z.bin\nsrc/b.bin,/data/a.bin\n"
	r1, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r2, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Parse (second): %v", err)
	}
	if len(r1) != len(r2) {
		t.Fatalf("non-idempotent: %d vs %d records", len(r1), len(r2))
	}
	for i := range r1 {
		for j := range r1[i].Fields {
			if r1[i].Fields[j] != r2[i].Fields[j] {
				t.Fatalf("non-idempotent at record %d field %d", i, j)
			}
		}
	}
}

func asDsvError(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}
